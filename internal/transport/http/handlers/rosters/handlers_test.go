package rostershandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/rosters"
	"workforce/internal/transport/http/middleware"
)

type fakeService struct {
	items       map[string]rosters.Roster
	assignments map[string]string
	generated   int
}

func (f *fakeService) List(_ context.Context, _ auth.UserContext, _ rosters.Filter, _, _ int) ([]rosters.Roster, int, error) {
	out := make([]rosters.Roster, 0, len(f.items))
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeService) Get(_ context.Context, _ auth.UserContext, id string) (*rosters.Roster, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &r, nil
}

func (f *fakeService) Create(_ context.Context, user auth.UserContext, r rosters.Roster) (*rosters.Roster, error) {
	r.ID = "r-new"
	r.Status = rosters.StatusDraft
	r.CreatedBy = user.UserID
	if err := rosters.Normalize(&r); err != nil {
		return nil, err
	}
	f.items[r.ID] = r
	return &r, nil
}

func (f *fakeService) Update(ctx context.Context, id string, r rosters.Roster) (*rosters.Roster, *rosters.Roster, error) {
	before, err := f.Get(ctx, auth.UserContext{}, id)
	if err != nil {
		return nil, nil, err
	}
	r.ID = id
	r.Status = before.Status
	f.items[id] = r
	return before, &r, nil
}

func (f *fakeService) Delete(ctx context.Context, id string) (*rosters.Roster, error) {
	r, err := f.Get(ctx, auth.UserContext{}, id)
	if err != nil {
		return nil, err
	}
	if r.Status != rosters.StatusDraft {
		return nil, rosters.ErrNotDraft
	}
	delete(f.items, id)
	return r, nil
}

func (f *fakeService) Transition(ctx context.Context, id, status string) (*rosters.Roster, error) {
	r, err := f.Get(ctx, auth.UserContext{}, id)
	if err != nil {
		return nil, err
	}
	if !rosters.CanTransition(r.Status, status) {
		return nil, rosters.ErrInvalidStatus
	}
	r.Status = status
	f.items[id] = *r
	return r, nil
}

func (f *fakeService) Publish(ctx context.Context, id string) (*rosters.Roster, error) {
	return f.Transition(ctx, id, rosters.StatusPublished)
}

func (f *fakeService) Assign(_ context.Context, _ string, profileIDs []string) (rosters.AssignResult, error) {
	result := rosters.AssignResult{Assigned: []string{}, Existing: []string{}}
	if len(profileIDs) == 0 {
		return result, rosters.ErrNoProfiles
	}
	for _, id := range profileIDs {
		if _, ok := f.assignments[id]; ok {
			result.Existing = append(result.Existing, id)
			continue
		}
		f.assignments[id] = rosters.AssignmentAssigned
		result.Assigned = append(result.Assigned, id)
	}
	return result, nil
}

func (f *fakeService) Unassign(_ context.Context, _, profileID string) error {
	if _, ok := f.assignments[profileID]; !ok {
		return rosters.ErrNotAssigned
	}
	delete(f.assignments, profileID)
	return nil
}

func (f *fakeService) Respond(_ context.Context, user auth.UserContext, _, profileID, status string) error {
	if profileID != user.UserID && user.RoleName == auth.RoleEmployee {
		return rosters.ErrNotAssignee
	}
	f.assignments[profileID] = status
	return nil
}

func (f *fakeService) GenerateWorkingHours(_ context.Context, id string) (rosters.GenerateResult, error) {
	f.generated++
	return rosters.GenerateResult{RosterID: id, Created: 10, Skipped: 2}, nil
}

type perms struct{}

func (perms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allowed(role, permission, auth.DefaultRolePermissions), nil
}

var (
	manager  = auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}
	employee = auth.UserContext{UserID: "e1", RoleName: auth.RoleEmployee}
)

func serve(h http.Handler, user auth.UserContext, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func newRouter() (*fakeService, http.Handler) {
	svc := &fakeService{items: map[string]rosters.Roster{}, assignments: map[string]string{}}
	r := chi.NewRouter()
	NewHandler(svc, perms{}, nil).RegisterRoutes(r)
	return svc, r
}

func TestRosterWorkflow(t *testing.T) {
	svc, h := newRouter()

	rec, env := serve(h, manager, http.MethodPost, "/rosters",
		`{"name":"Night shift","projectId":"pr1","startDate":"2026-04-01","endDate":"2026-04-07","startTime":"22:00","endTime":"23:30"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, rosters.StatusDraft, env["data"].(map[string]any)["status"])
	assert.EqualValues(t, 1.5, env["data"].(map[string]any)["expectedHours"])

	rec, env = serve(h, manager, http.MethodPost, "/rosters/r-new/assignments", `{"profileIds":["e1","e2"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env["data"].(map[string]any)["assigned"], 2)

	rec, env = serve(h, manager, http.MethodPost, "/rosters/r-new/assignments", `{"profileIds":["e1"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"e1"}, env["data"].(map[string]any)["existing"])

	rec, _ = serve(h, manager, http.MethodPost, "/rosters/r-new/publish", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rosters.StatusPublished, svc.items["r-new"].Status)

	rec, _ = serve(h, manager, http.MethodDelete, "/rosters/r-new", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "published rosters cannot be deleted")

	rec, _ = serve(h, employee, http.MethodPut, "/rosters/r-new/assignments/e1", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rosters.AssignmentConfirmed, svc.assignments["e1"])

	rec, _ = serve(h, employee, http.MethodPut, "/rosters/r-new/assignments/e2", `{"status":"declined"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(h, employee, http.MethodPut, "/rosters/r-new/assignments/e1", `{"status":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = serve(h, manager, http.MethodPost, "/rosters/r-new/generate-hours", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 10, env["data"].(map[string]any)["created"])
	assert.Equal(t, 1, svc.generated)

	rec, _ = serve(h, employee, http.MethodPost, "/rosters/r-new/generate-hours", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(h, manager, http.MethodDelete, "/rosters/r-new/assignments/e9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRosterValidationAndStatus(t *testing.T) {
	svc, h := newRouter()
	svc.items["r1"] = rosters.Roster{ID: "r1", Status: rosters.StatusCompleted}

	rec, env := serve(h, manager, http.MethodPost, "/rosters", `{"name":"x","projectId":"pr1","startDate":"2026-04-07","endDate":"2026-04-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env["error"].(map[string]any)["code"])

	rec, _ = serve(h, manager, http.MethodPost, "/rosters/r1/status", `{"status":"draft"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = serve(h, manager, http.MethodPost, "/rosters/r1/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, manager, http.MethodGet, "/rosters/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
