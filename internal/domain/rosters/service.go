package rosters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/timecalc"
	"workforce/internal/domain/workhours"
	"workforce/internal/platform/jobs"
)

// HoursWriter is the slice of the working-hours store roster generation needs.
type HoursWriter interface {
	ExistsForRoster(ctx context.Context, rosterID, profileID string, day time.Time) (bool, error)
	Create(ctx context.Context, e workhours.Entry) (string, error)
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error)
}

type Service struct {
	store    StoreAPI
	hours    HoursWriter
	rates    workhours.RateSource
	notifier workhours.Notifier
	perms    workhours.PermissionChecker
	jobs     JobRunner
}

func NewService(store StoreAPI, hours HoursWriter, rates workhours.RateSource, notifier workhours.Notifier, perms workhours.PermissionChecker, runner JobRunner) *Service {
	return &Service{store: store, hours: hours, rates: rates, notifier: notifier, perms: perms, jobs: runner}
}

func (s *Service) canManage(ctx context.Context, user auth.UserContext) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	return s.perms.HasPermission(ctx, user.RoleName, auth.PermRostersWrite)
}

// List shows non-managers only the rosters they are assigned to.
func (s *Service) List(ctx context.Context, user auth.UserContext, filter Filter, limit, offset int) ([]Roster, int, error) {
	manage, err := s.canManage(ctx, user)
	if err != nil {
		return nil, 0, err
	}
	if !manage {
		filter.ProfileID = user.UserID
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get returns the roster with its assignments.
func (s *Service) Get(ctx context.Context, user auth.UserContext, id string) (*Roster, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.Assignments(ctx, id)
	if err != nil {
		return nil, err
	}
	manage, err := s.canManage(ctx, user)
	if err != nil {
		return nil, err
	}
	if !manage && !slices.ContainsFunc(assignments, func(a Assignment) bool { return a.ProfileID == user.UserID }) {
		return nil, pgx.ErrNoRows
	}
	r.Assignments = assignments
	return r, nil
}

func (s *Service) resolveClient(ctx context.Context, r *Roster) error {
	clientID, err := s.store.ProjectClientID(ctx, r.ProjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProjectNotFound
	}
	if err != nil {
		return err
	}
	r.ClientID = clientID
	return nil
}

func (s *Service) Create(ctx context.Context, user auth.UserContext, r Roster) (*Roster, error) {
	r.Status = StatusDraft
	r.CreatedBy = user.UserID
	if err := Normalize(&r); err != nil {
		return nil, err
	}
	if err := s.resolveClient(ctx, &r); err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return &r, nil
}

func (s *Service) Update(ctx context.Context, id string, r Roster) (*Roster, *Roster, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if Closed(*current) {
		return nil, nil, ErrClosed
	}
	r.ID = id
	r.Status = current.Status
	r.CreatedBy = current.CreatedBy
	if err := Normalize(&r); err != nil {
		return nil, nil, err
	}
	if err := s.resolveClient(ctx, &r); err != nil {
		return nil, nil, err
	}
	if err := s.store.Update(ctx, r); err != nil {
		return nil, nil, err
	}
	return current, &r, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*Roster, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusDraft {
		return nil, ErrNotDraft
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotDraft
	}
	return current, nil
}

// Transition moves the roster to status when the lifecycle allows it.
func (s *Service) Transition(ctx context.Context, id, status string) (*Roster, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(Statuses, status) {
		return nil, ErrInvalidStatus
	}
	if !CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, current.Status, status)
	}
	if err := s.store.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	current.Status = status
	return current, nil
}

func (s *Service) Publish(ctx context.Context, id string) (*Roster, error) {
	return s.Transition(ctx, id, StatusPublished)
}

// Assign adds each profile once and notifies only the newly assigned ones.
func (s *Service) Assign(ctx context.Context, id string, profileIDs []string) (AssignResult, error) {
	result := AssignResult{Assigned: []string{}, Existing: []string{}}
	if len(profileIDs) == 0 {
		return result, ErrNoProfiles
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return result, err
	}
	if Closed(*r) {
		return result, ErrClosed
	}
	seen := make(map[string]bool, len(profileIDs))
	for _, profileID := range profileIDs {
		if profileID == "" || seen[profileID] {
			continue
		}
		seen[profileID] = true
		created, err := s.store.Assign(ctx, id, profileID)
		if err != nil {
			return result, err
		}
		if !created {
			result.Existing = append(result.Existing, profileID)
			continue
		}
		result.Assigned = append(result.Assigned, profileID)
		s.notifyAssigned(ctx, *r, profileID)
	}
	return result, nil
}

func (s *Service) notifyAssigned(ctx context.Context, r Roster, profileID string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, notifications.Notification{
		ProfileID:  profileID,
		Type:       notifications.TypeRosterAssigned,
		Title:      "New roster assignment",
		Message:    fmt.Sprintf("You were assigned to %s from %s to %s, %s-%s.", r.Name, r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.StartTime, r.EndTime),
		EntityType: notifications.EntityRoster,
		EntityID:   r.ID,
	})
	if err != nil {
		slog.Warn("roster assignment notification failed", "rosterId", r.ID, "profileId", profileID, "err", err)
	}
}

func (s *Service) Unassign(ctx context.Context, id, profileID string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Unassign(ctx, id, profileID)
}

// Respond sets an assignment's status. Only the assigned profile may
// confirm or decline unless the caller manages rosters.
func (s *Service) Respond(ctx context.Context, user auth.UserContext, id, profileID, status string) error {
	if !slices.Contains(AssignmentStatuses, status) {
		return ErrInvalidAssignmentStatus
	}
	if profileID != user.UserID {
		manage, err := s.canManage(ctx, user)
		if err != nil {
			return err
		}
		if !manage {
			return ErrNotAssignee
		}
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if Closed(*r) {
		return ErrClosed
	}
	return s.store.SetAssignmentStatus(ctx, id, profileID, status)
}

// GenerateWorkingHours creates a pending entry per assigned profile per day of
// the roster, skipping days that already have one. Declined assignments are
// ignored. The run is recorded as a job.
func (s *Service) GenerateWorkingHours(ctx context.Context, id string) (GenerateResult, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return GenerateResult{}, err
	}
	if Closed(*r) {
		return GenerateResult{}, ErrClosed
	}
	out, err := s.jobs.RunNow(ctx, jobs.JobRosterHours, func(ctx context.Context) (any, error) {
		return s.generate(ctx, *r)
	})
	if err != nil {
		return GenerateResult{}, err
	}
	result, _ := out.(GenerateResult)
	return result, nil
}

func (s *Service) generate(ctx context.Context, r Roster) (GenerateResult, error) {
	result := GenerateResult{RosterID: r.ID}
	assignments, err := s.store.Assignments(ctx, r.ID)
	if err != nil {
		return result, err
	}
	days := timecalc.Days(r.StartDate, r.EndDate)
	for _, a := range assignments {
		if a.Status == AssignmentDeclined {
			continue
		}
		rate, err := s.rates.HourlyRate(ctx, a.ProfileID)
		if err != nil {
			return result, fmt.Errorf("rate for %s: %w", a.ProfileID, err)
		}
		for _, day := range days {
			exists, err := s.hours.ExistsForRoster(ctx, r.ID, a.ProfileID, day)
			if err != nil {
				return result, err
			}
			if exists {
				result.Skipped++
				continue
			}
			entry := workhours.Entry{
				ProfileID:      a.ProfileID,
				ClientID:       r.ClientID,
				ProjectID:      r.ProjectID,
				RosterID:       r.ID,
				WorkDate:       day,
				ScheduledStart: r.StartTime,
				ScheduledEnd:   r.EndTime,
				Category:       workhours.CategoryRegular,
				Status:         workhours.StatusPending,
			}
			if err := workhours.Derive(&entry, rate); err != nil {
				return result, err
			}
			if _, err := s.hours.Create(ctx, entry); err != nil {
				return result, err
			}
			result.Created++
		}
	}
	return result, nil
}
