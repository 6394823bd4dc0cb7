package projects

import "context"

type StoreAPI interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Project, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Get(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, p Project) (string, error)
	Update(ctx context.Context, p Project) error
	HoursCount(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}
