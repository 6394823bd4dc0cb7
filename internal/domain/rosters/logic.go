package rosters

import (
	"slices"
	"strings"

	"workforce/internal/domain/timecalc"
)

// Normalize validates r and derives its expected daily hours.
func Normalize(r *Roster) error {
	r.Name = strings.TrimSpace(r.Name)
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.EndTime = strings.TrimSpace(r.EndTime)
	r.Notes = strings.TrimSpace(r.Notes)
	if r.Status == "" {
		r.Status = StatusDraft
	}
	switch {
	case r.Name == "":
		return ErrNameRequired
	case r.ProjectID == "":
		return ErrProjectRequired
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return ErrDatesRequired
	case r.EndDate.Before(r.StartDate):
		return ErrDateOrder
	case timecalc.DayCount(r.StartDate, r.EndDate) > maxRosterDays:
		return ErrRangeTooLong
	case r.StartTime == "" || r.EndTime == "":
		return ErrTimesRequired
	case !slices.Contains(Statuses, r.Status):
		return ErrInvalidStatus
	}
	hours, err := timecalc.ClockHours(r.StartDate, r.StartTime, r.EndTime)
	if err != nil {
		return err
	}
	r.ExpectedHours = timecalc.Round2(hours)
	return nil
}

// Closed reports whether r no longer accepts assignments or generated hours.
func Closed(r Roster) bool {
	return r.Status == StatusCompleted || r.Status == StatusCancelled
}

// CanTransition lists the status moves a roster allows.
func CanTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusPublished || to == StatusCancelled
	case StatusPublished:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}
