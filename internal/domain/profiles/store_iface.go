package profiles

import "context"

type StoreAPI interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Profile, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Get(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, p Profile, passwordHash string) (string, error)
	Update(ctx context.Context, p Profile) error
	SetStatus(ctx context.Context, id, status string) error
	RevokeSessions(ctx context.Context, id string) error
}
