package projectshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/projects"
	"workforce/internal/transport/http/middleware"
)

type fakeService struct {
	items map[string]projects.Project
	hours map[string]int
}

func (f *fakeService) List(_ context.Context, filter projects.Filter, _, _ int) ([]projects.Project, int, error) {
	var out []projects.Project
	for _, p := range f.items {
		if filter.ClientID == "" || p.ClientID == filter.ClientID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (f *fakeService) Get(_ context.Context, id string) (*projects.Project, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (f *fakeService) Create(_ context.Context, p projects.Project) (string, error) {
	if err := projects.Normalize(&p); err != nil {
		return "", err
	}
	p.ID = "pr-new"
	f.items[p.ID] = p
	return p.ID, nil
}

func (f *fakeService) Update(_ context.Context, id string, p projects.Project) (*projects.Project, error) {
	before, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if err := projects.Normalize(&p); err != nil {
		return nil, err
	}
	p.ID = id
	f.items[id] = p
	return &before, nil
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	if f.hours[id] > 0 {
		return projects.ErrHasHours
	}
	delete(f.items, id)
	return nil
}

type perms struct{}

func (perms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allowed(role, permission, auth.DefaultRolePermissions), nil
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRouter() (*fakeService, http.Handler) {
	svc := &fakeService{
		items: map[string]projects.Project{
			"pr1": {ID: "pr1", ClientID: "c1", Name: "Fitout", StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: projects.StatusActive},
		},
		hours: map[string]int{"pr1": 3},
	}
	r := chi.NewRouter()
	NewHandler(svc, perms{}, nil).RegisterRoutes(r)
	return svc, r
}

func TestCreateProjectValidation(t *testing.T) {
	_, h := newRouter()

	rec := serve(h, http.MethodPost, "/projects", `{"name":"Audit","clientId":"c1","startDate":"2026-03-10","endDate":"2026-03-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be on or before endDate")

	rec = serve(h, http.MethodPost, "/projects", `{"name":"Audit","clientId":"c1","startDate":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPost, "/projects", `{"name":"Audit","clientId":"c1","startDate":"2026-03-01","budget":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectLifecycle(t *testing.T) {
	svc, h := newRouter()

	rec := serve(h, http.MethodPost, "/projects", `{"name":"Audit","clientId":"c1","startDate":"2026-03-01","endDate":"2026-06-30","budget":12000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := svc.items["pr-new"]
	assert.Equal(t, projects.StatusActive, created.Status)
	require.NotNil(t, created.EndDate)
	assert.Equal(t, "2026-06-30", created.EndDate.Format("2006-01-02"))

	rec = serve(h, http.MethodGet, "/projects?clientId=c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)

	rec = serve(h, http.MethodPut, "/projects/pr-new", `{"name":"Audit","clientId":"c1","startDate":"2026-03-01","status":"on_hold"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, projects.StatusOnHold, svc.items["pr-new"].Status)
	assert.Nil(t, svc.items["pr-new"].EndDate)

	rec = serve(h, http.MethodDelete, "/projects/pr1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h, http.MethodDelete, "/projects/pr-new", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodDelete, "/projects/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
