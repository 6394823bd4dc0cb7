package projects

import (
	"slices"
	"strings"
)

func Normalize(p *Project) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Status == "" {
		p.Status = StatusActive
	}
	switch {
	case p.Name == "":
		return ErrNameRequired
	case p.ClientID == "":
		return ErrClientRequired
	case p.StartDate.IsZero():
		return ErrStartRequired
	case p.EndDate != nil && p.EndDate.Before(p.StartDate):
		return ErrDateOrder
	case p.Budget < 0:
		return ErrNegativeBudget
	case !slices.Contains(Statuses, p.Status):
		return ErrInvalidStatus
	}
	return nil
}
