package clients

import "context"

type StoreAPI interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Client, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Get(ctx context.Context, id string) (*Client, error)
	Create(ctx context.Context, c Client) (string, error)
	Update(ctx context.Context, c Client) error
	ProjectCount(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}
