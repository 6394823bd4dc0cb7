package workhours

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/notifications"
)

type RateSource interface {
	HourlyRate(ctx context.Context, profileID string) (float64, error)
}

type Notifier interface {
	Notify(ctx context.Context, n notifications.Notification) error
}

type PermissionChecker interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

type Service struct {
	store    StoreAPI
	rates    RateSource
	notifier Notifier
	perms    PermissionChecker
}

func NewService(store StoreAPI, rates RateSource, notifier Notifier, perms PermissionChecker) *Service {
	return &Service{store: store, rates: rates, notifier: notifier, perms: perms}
}

// canManage reports whether user may act on other profiles' entries.
func (s *Service) canManage(ctx context.Context, user auth.UserContext) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	return s.perms.HasPermission(ctx, user.RoleName, auth.PermHoursApprove)
}

func (s *Service) List(ctx context.Context, user auth.UserContext, filter Filter, limit, offset int) ([]Entry, int, error) {
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

func (s *Service) Get(ctx context.Context, user auth.UserContext, id string) (*Entry, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, user, e.ProfileID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) checkOwner(ctx context.Context, user auth.UserContext, profileID string) error {
	if profileID == user.UserID {
		return nil
	}
	manage, err := s.canManage(ctx, user)
	if err != nil {
		return err
	}
	if !manage {
		return ErrNotOwner
	}
	return nil
}

// prepare validates in, resolves the client and derives the computed columns.
// Only approvers may override the rate. Otherwise stored falls back to the
// profile rate when nil.
func (s *Service) prepare(ctx context.Context, user auth.UserContext, e *Entry, in Input, stored *float64) error {
	if err := Apply(e, in); err != nil {
		return err
	}
	clientID, err := s.store.ProjectClientID(ctx, e.ProjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProjectNotFound
	}
	if err != nil {
		return err
	}
	if e.ClientID == "" {
		e.ClientID = clientID
	} else if e.ClientID != clientID {
		return ErrClientMismatch
	}

	var rate float64
	switch {
	case in.HourlyRate != nil:
		manage, err := s.canManage(ctx, user)
		if err != nil {
			return err
		}
		if !manage {
			return ErrRateNotAllowed
		}
		rate = *in.HourlyRate
	case stored != nil:
		rate = *stored
	default:
		rate, err = s.rates.HourlyRate(ctx, e.ProfileID)
		if err != nil {
			return fmt.Errorf("profile rate: %w", err)
		}
	}
	return Derive(e, rate)
}

func (s *Service) Create(ctx context.Context, user auth.UserContext, in Input) (*Entry, error) {
	if in.ProfileID == "" {
		in.ProfileID = user.UserID
	}
	if err := s.checkOwner(ctx, user, in.ProfileID); err != nil {
		return nil, err
	}
	e := Entry{Status: StatusPending}
	if err := s.prepare(ctx, user, &e, in, nil); err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return &e, nil
}

// Update edits a pending entry and returns it before and after.
func (s *Service) Update(ctx context.Context, user auth.UserContext, id string, in Input) (*Entry, *Entry, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkOwner(ctx, user, current.ProfileID); err != nil {
		return nil, nil, err
	}
	if current.Status != StatusPending {
		return nil, nil, ErrNotPending
	}
	before := *current
	in.ProfileID = current.ProfileID
	if err := s.prepare(ctx, user, current, in, &before.HourlyRate); err != nil {
		return nil, nil, err
	}
	if err := s.store.Update(ctx, *current); err != nil {
		return nil, nil, err
	}
	return &before, current, nil
}

func (s *Service) Delete(ctx context.Context, user auth.UserContext, id string) (*Entry, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, user, current.ProfileID); err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, ErrNotPending
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) Approve(ctx context.Context, user auth.UserContext, id string) (*Entry, error) {
	return s.decide(ctx, user, id, StatusApproved, "")
}

func (s *Service) Reject(ctx context.Context, user auth.UserContext, id, reason string) (*Entry, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.decide(ctx, user, id, StatusRejected, reason)
}

func (s *Service) decide(ctx context.Context, user auth.UserContext, id, status, reason string) (*Entry, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, ErrNotPending
	}
	changed, err := s.store.SetStatus(ctx, id, status, user.UserID, reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNotPending
	}
	current.Status = status
	current.RejectionReason = reason
	current.ApprovedBy = user.UserID
	s.notifyDecision(ctx, *current)
	return current, nil
}

func (s *Service) notifyDecision(ctx context.Context, e Entry) {
	if s.notifier == nil {
		return
	}
	n := notifications.Notification{
		ProfileID:  e.ProfileID,
		EntityType: notifications.EntityWorkingHours,
		EntityID:   e.ID,
	}
	day := e.WorkDate.Format("2006-01-02")
	if e.Status == StatusApproved {
		n.Type = notifications.TypeHoursApproved
		n.Title = "Working hours approved"
		n.Message = fmt.Sprintf("Your %.2f hours on %s were approved.", e.ActualHours, day)
	} else {
		n.Type = notifications.TypeHoursRejected
		n.Title = "Working hours rejected"
		n.Message = fmt.Sprintf("Your hours on %s were rejected: %s", day, e.RejectionReason)
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		slog.Warn("hours decision notification failed", "entryId", e.ID, "err", err)
	}
}

// BulkApprove approves each pending id independently; the rest are reported
// as skipped with a reason.
func (s *Service) BulkApprove(ctx context.Context, user auth.UserContext, ids []string) (BulkResult, error) {
	if len(ids) > maxBulkApprove {
		return BulkResult{}, ErrTooManyEntries
	}
	result := BulkResult{Approved: []string{}, Skipped: map[string]string{}}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		_, err := s.Approve(ctx, user, id)
		switch {
		case err == nil:
			result.Approved = append(result.Approved, id)
		case errors.Is(err, pgx.ErrNoRows):
			result.Skipped[id] = "not_found"
		case errors.Is(err, ErrNotPending):
			result.Skipped[id] = "not_pending"
		default:
			return result, err
		}
	}
	return result, nil
}
