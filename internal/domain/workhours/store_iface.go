package workhours

import (
	"context"
	"time"
)

type StoreAPI interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Get(ctx context.Context, id string) (*Entry, error)
	ProjectClientID(ctx context.Context, projectID string) (string, error)
	Create(ctx context.Context, e Entry) (string, error)
	Update(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id string) error
	// SetStatus moves a pending entry to status and reports whether it did.
	SetStatus(ctx context.Context, id, status, actorID, reason string) (bool, error)
	ExistsForRoster(ctx context.Context, rosterID, profileID string, day time.Time) (bool, error)
}
