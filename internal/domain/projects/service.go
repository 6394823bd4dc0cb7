package projects

import "context"

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Project, int, error) {
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

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Project) (string, error) {
	if err := Normalize(&p); err != nil {
		return "", err
	}
	return s.store.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, p Project) (*Project, error) {
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := Normalize(&p); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return before, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	count, err := s.store.HoursCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasHours
	}
	return s.store.Delete(ctx, id)
}
