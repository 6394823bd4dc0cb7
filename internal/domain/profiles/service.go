package profiles

import (
	"context"
	"fmt"
	"strings"

	"workforce/internal/domain/auth"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, user auth.UserContext, filter Filter, limit, offset int) ([]Profile, int, error) {
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		FilterSensitive(&out[i], user)
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, user auth.UserContext, id string) (*Profile, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	FilterSensitive(p, user)
	return p, nil
}

// Me returns the caller's own profile unfiltered.
func (s *Service) Me(ctx context.Context, user auth.UserContext) (*Profile, error) {
	return s.store.Get(ctx, user.UserID)
}

// HourlyRate is the rate working-hour entries fall back to.
func (s *Service) HourlyRate(ctx context.Context, id string) (float64, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.HourlyRate, nil
}

func (s *Service) Create(ctx context.Context, p Profile, password string) (string, error) {
	p.Email = NormalizeEmail(p.Email)
	p.FullName = strings.TrimSpace(p.FullName)
	if p.Role == "" {
		p.Role = auth.RoleEmployee
	}
	if p.EmploymentType == "" {
		p.EmploymentType = EmploymentCasual
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if err := Validate(p); err != nil {
		return "", err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	return s.store.Create(ctx, p, hash)
}

// Update applies u and returns the profile before and after the change.
// A role change or deactivation ends every open session of the profile.
func (s *Service) Update(ctx context.Context, user auth.UserContext, id string, u Update) (*Profile, *Profile, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	before := *current
	if id == user.UserID {
		if u.Role != nil && *u.Role != current.Role {
			return nil, nil, ErrSelfDemote
		}
		if u.Status != nil && *u.Status != current.Status {
			return nil, nil, ErrSelfDeactivate
		}
	}
	if err := Apply(current, u); err != nil {
		return nil, nil, err
	}
	if err := s.store.Update(ctx, *current); err != nil {
		return nil, nil, err
	}
	if current.Role != before.Role || (current.Status == StatusInactive && before.Status != StatusInactive) {
		if err := s.store.RevokeSessions(ctx, id); err != nil {
			return nil, nil, fmt.Errorf("revoke sessions: %w", err)
		}
	}
	return &before, current, nil
}

func (s *Service) Deactivate(ctx context.Context, user auth.UserContext, id string) error {
	if id == user.UserID {
		return ErrSelfDeactivate
	}
	return s.store.SetStatus(ctx, id, StatusInactive)
}
