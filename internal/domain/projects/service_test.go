package projects

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	projects map[string]Project
	hours    map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: map[string]Project{}, hours: map[string]int{}}
}

func (f *fakeStore) List(ctx context.Context, filter Filter, limit, offset int) ([]Project, error) {
	var out []Project
	for _, p := range f.projects {
		if filter.ClientID != "" && p.ClientID != filter.ClientID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) Count(ctx context.Context, filter Filter) (int, error) {
	out, _ := f.List(ctx, filter, 0, 0)
	return len(out), nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (f *fakeStore) Create(ctx context.Context, p Project) (string, error) {
	p.ID = "p-" + p.Name
	f.projects[p.ID] = p
	return p.ID, nil
}

func (f *fakeStore) Update(ctx context.Context, p Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeStore) HoursCount(ctx context.Context, id string) (int, error) {
	return f.hours[id], nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	delete(f.projects, id)
	return nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestNormalize(t *testing.T) {
	end := day("2024-01-31")
	early := day("2023-12-31")
	tests := []struct {
		name string
		p    Project
		err  error
	}{
		{"valid", Project{Name: "Fitout", ClientID: "c1", StartDate: day("2024-01-01"), EndDate: &end}, nil},
		{"open ended", Project{Name: "Fitout", ClientID: "c1", StartDate: day("2024-01-01")}, nil},
		{"missing name", Project{ClientID: "c1", StartDate: day("2024-01-01")}, ErrNameRequired},
		{"missing client", Project{Name: "Fitout", StartDate: day("2024-01-01")}, ErrClientRequired},
		{"missing start", Project{Name: "Fitout", ClientID: "c1"}, ErrStartRequired},
		{"end before start", Project{Name: "Fitout", ClientID: "c1", StartDate: day("2024-01-01"), EndDate: &early}, ErrDateOrder},
		{"negative budget", Project{Name: "Fitout", ClientID: "c1", StartDate: day("2024-01-01"), Budget: -5}, ErrNegativeBudget},
		{"bad status", Project{Name: "Fitout", ClientID: "c1", StartDate: day("2024-01-01"), Status: "paused"}, ErrInvalidStatus},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.p
			err := Normalize(&p)
			if tc.err == nil {
				require.NoError(t, err)
				assert.Equal(t, StatusActive, p.Status)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDeleteRejectsProjectWithHours(t *testing.T) {
	store := newFakeStore()
	store.projects["p1"] = Project{ID: "p1"}
	store.projects["p2"] = Project{ID: "p2"}
	store.hours["p1"] = 3
	svc := NewService(store)

	assert.ErrorIs(t, svc.Delete(context.Background(), "p1"), ErrHasHours)
	require.NoError(t, svc.Delete(context.Background(), "p2"))
	assert.NotContains(t, store.projects, "p2")
}

func TestUpdate(t *testing.T) {
	store := newFakeStore()
	store.projects["p1"] = Project{ID: "p1", Name: "Old", ClientID: "c1", StartDate: day("2024-01-01"), Status: StatusActive}
	svc := NewService(store)

	before, err := svc.Update(context.Background(), "p1", Project{Name: "New", ClientID: "c1", StartDate: day("2024-02-01"), Status: StatusOnHold})
	require.NoError(t, err)
	assert.Equal(t, "Old", before.Name)
	assert.Equal(t, StatusOnHold, store.projects["p1"].Status)

	list, total, err := svc.List(context.Background(), Filter{ClientID: "c1"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}
