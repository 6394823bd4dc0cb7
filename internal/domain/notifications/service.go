package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"workforce/internal/domain/auth"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, Mailer: mailer, DefaultFrom: from}
}

// Notify stores n and, when a mailer is set, emails the recipient. Email
// failures are logged and never returned.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	if n.ProfileID == "" {
		return nil
	}
	if _, err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.ProfileEmail(ctx, n.ProfileID)
	if err != nil {
		slog.Warn("notification email lookup failed", "profileId", n.ProfileID, "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, n.Title, n.Message); err != nil {
		slog.Warn("notification email send failed", "profileId", n.ProfileID, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, profileID string, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	total, err := s.store.Count(ctx, profileID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.store.List(ctx, profileID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Service) UnreadCount(ctx context.Context, profileID string) (int, error) {
	return s.store.Count(ctx, profileID, true)
}

func (s *Service) MarkRead(ctx context.Context, profileID, id string) error {
	return s.store.MarkRead(ctx, profileID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, profileID string) (int64, error) {
	return s.store.MarkAllRead(ctx, profileID)
}

// PendingDigest tells every approver how many entries await review. It is
// scheduled through the job service.
func (s *Service) PendingDigest(ctx context.Context) (any, error) {
	pending, err := s.store.PendingHoursCount(ctx)
	if err != nil {
		return nil, err
	}
	digest := Digest{PendingEntries: pending}
	if pending == 0 {
		return digest, nil
	}
	approvers, err := s.store.ApproverIDs(ctx, auth.PermHoursApprove)
	if err != nil {
		return digest, err
	}
	for _, id := range approvers {
		err := s.Notify(ctx, Notification{
			ProfileID:  id,
			Type:       TypePendingHoursDigest,
			Title:      "Working hours awaiting approval",
			Message:    fmt.Sprintf("%d working-hour entries are pending approval.", pending),
			EntityType: EntityWorkingHours,
		})
		if err != nil {
			slog.Warn("pending digest notify failed", "profileId", id, "err", err)
			continue
		}
		digest.Notified++
	}
	return digest, nil
}
