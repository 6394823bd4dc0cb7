package clients

import "context"

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Client, int, error) {
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

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Client) (string, error) {
	if err := Normalize(&c); err != nil {
		return "", err
	}
	return s.store.Create(ctx, c)
}

// Update replaces the client's fields and returns the previous version.
func (s *Service) Update(ctx context.Context, id string, c Client) (*Client, error) {
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := Normalize(&c); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return before, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	count, err := s.store.ProjectCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasProjects
	}
	return s.store.Delete(ctx, id)
}
