package notifications

import "context"

type StoreAPI interface {
	Create(ctx context.Context, n Notification) (string, error)
	ProfileEmail(ctx context.Context, profileID string) (string, error)
	List(ctx context.Context, profileID string, unreadOnly bool, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, profileID string, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, profileID, id string) error
	MarkAllRead(ctx context.Context, profileID string) (int64, error)
	PendingHoursCount(ctx context.Context) (int, error)
	ApproverIDs(ctx context.Context, permission string) ([]string, error)
}
