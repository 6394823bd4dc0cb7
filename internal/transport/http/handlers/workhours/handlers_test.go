package workhourshandler

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
	"workforce/internal/domain/timecalc"
	"workforce/internal/domain/workhours"
	"workforce/internal/transport/http/middleware"
)

type fakeService struct {
	entries    map[string]workhours.Entry
	lastFilter workhours.Filter
	lastInput  workhours.Input
}

func (f *fakeService) List(_ context.Context, user auth.UserContext, filter workhours.Filter, _, _ int) ([]workhours.Entry, int, error) {
	if user.RoleName == auth.RoleEmployee {
		filter.ProfileID = user.UserID
	}
	f.lastFilter = filter
	var out []workhours.Entry
	for _, e := range f.entries {
		if filter.ProfileID == "" || e.ProfileID == filter.ProfileID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (f *fakeService) Get(_ context.Context, user auth.UserContext, id string) (*workhours.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if user.RoleName == auth.RoleEmployee && e.ProfileID != user.UserID {
		return nil, workhours.ErrNotOwner
	}
	return &e, nil
}

func (f *fakeService) Create(_ context.Context, user auth.UserContext, in workhours.Input) (*workhours.Entry, error) {
	f.lastInput = in
	if in.ProfileID == "" {
		in.ProfileID = user.UserID
	}
	e := workhours.Entry{ID: "w-new", Status: workhours.StatusPending}
	if err := workhours.Apply(&e, in); err != nil {
		return nil, err
	}
	rate := 40.0
	if in.HourlyRate != nil {
		if user.RoleName == auth.RoleEmployee {
			return nil, workhours.ErrRateNotAllowed
		}
		rate = *in.HourlyRate
	}
	if err := workhours.Derive(&e, rate); err != nil {
		return nil, err
	}
	f.entries[e.ID] = e
	return &e, nil
}

func (f *fakeService) Update(ctx context.Context, user auth.UserContext, id string, in workhours.Input) (*workhours.Entry, *workhours.Entry, error) {
	before, err := f.Get(ctx, user, id)
	if err != nil {
		return nil, nil, err
	}
	if before.Status != workhours.StatusPending {
		return nil, nil, workhours.ErrNotPending
	}
	after := *before
	if err := workhours.Apply(&after, in); err != nil {
		return nil, nil, err
	}
	f.entries[id] = after
	return before, &after, nil
}

func (f *fakeService) Delete(ctx context.Context, user auth.UserContext, id string) (*workhours.Entry, error) {
	e, err := f.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	delete(f.entries, id)
	return e, nil
}

func (f *fakeService) decide(id, status, reason string) (*workhours.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if e.Status != workhours.StatusPending {
		return nil, workhours.ErrNotPending
	}
	e.Status = status
	e.RejectionReason = reason
	f.entries[id] = e
	return &e, nil
}

func (f *fakeService) Approve(_ context.Context, _ auth.UserContext, id string) (*workhours.Entry, error) {
	return f.decide(id, workhours.StatusApproved, "")
}

func (f *fakeService) Reject(_ context.Context, _ auth.UserContext, id, reason string) (*workhours.Entry, error) {
	return f.decide(id, workhours.StatusRejected, reason)
}

func (f *fakeService) BulkApprove(_ context.Context, _ auth.UserContext, ids []string) (workhours.BulkResult, error) {
	result := workhours.BulkResult{Approved: []string{}, Skipped: map[string]string{}}
	for _, id := range ids {
		if _, err := f.decide(id, workhours.StatusApproved, ""); err != nil {
			result.Skipped[id] = "not_pending"
			continue
		}
		result.Approved = append(result.Approved, id)
	}
	return result, nil
}

type perms struct{}

func (perms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allowed(role, permission, auth.DefaultRolePermissions), nil
}

type recorder struct{ actions []string }

func (r *recorder) Record(_ context.Context, _, action, _, _, _, _ string, _, _ any) error {
	r.actions = append(r.actions, action)
	return nil
}

var (
	manager  = auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}
	employee = auth.UserContext{UserID: "e1", RoleName: auth.RoleEmployee}
)

func newRouter() (*fakeService, *recorder, http.Handler) {
	svc := &fakeService{entries: map[string]workhours.Entry{
		"w1": {ID: "w1", ProfileID: "e1", ProjectID: "pr1", Status: workhours.StatusPending},
		"w2": {ID: "w2", ProfileID: "e2", ProjectID: "pr1", Status: workhours.StatusPending},
		"w3": {ID: "w3", ProfileID: "e2", ProjectID: "pr1", Status: workhours.StatusApproved},
	}}
	rec := &recorder{}
	r := chi.NewRouter()
	NewHandler(svc, perms{}, rec).RegisterRoutes(r)
	return svc, rec, r
}

func serve(h http.Handler, user auth.UserContext, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestCreateDerivesHours(t *testing.T) {
	svc, audits, h := newRouter()

	rec, env := serve(h, employee, http.MethodPost, "/working-hours",
		`{"projectId":"pr1","workDate":"2026-03-02","scheduledStart":"09:00","scheduledEnd":"17:00","actualStart":"09:00","actualEnd":"18:30"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := env["data"].(map[string]any)
	assert.EqualValues(t, 8, data["scheduledHours"])
	assert.EqualValues(t, 9.5, data["actualHours"])
	assert.EqualValues(t, 1.5, data["overtimeHours"])
	assert.EqualValues(t, 380, data["payableAmount"])
	assert.Equal(t, "e1", data["profileId"])
	assert.Nil(t, svc.lastInput.HourlyRate)
	assert.Equal(t, []string{"hours.create"}, audits.actions)
}

func TestEmployeeCannotSetRate(t *testing.T) {
	svc, audits, h := newRouter()
	body := `{"projectId":"pr1","workDate":"2026-03-02","actualStart":"09:00","actualEnd":"17:00","hourlyRate":900}`

	rec, env := serve(h, employee, http.MethodPost, "/working-hours", body)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	assert.Equal(t, "forbidden", env["error"].(map[string]any)["code"])
	assert.NotContains(t, svc.entries, "w-new")
	assert.Empty(t, audits.actions)

	rec, env = serve(h, manager, http.MethodPost, "/working-hours", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 7200, env["data"].(map[string]any)["payableAmount"])
}

func TestCreateValidation(t *testing.T) {
	_, _, h := newRouter()

	rec, env := serve(h, employee, http.MethodPost, "/working-hours", `{"workDate":"2026-13-40","category":"lunch"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := env["error"].(map[string]any)["details"].(map[string]any)["fields"].([]any)
	assert.Len(t, fields, 4)

	rec, env = serve(h, employee, http.MethodPost, "/working-hours", `{"projectId":"pr1","workDate":"2026-03-02","actualStart":"9am","actualEnd":"17:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, timecalc.ErrInvalidClock.Error(), env["error"].(map[string]any)["message"])
}

func TestEmployeeScope(t *testing.T) {
	svc, _, h := newRouter()

	rec, env := serve(h, employee, http.MethodGet, "/working-hours?profileId=e2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e1", svc.lastFilter.ProfileID)
	assert.Len(t, env["data"], 1)

	rec, _ = serve(h, employee, http.MethodGet, "/working-hours/w2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(h, employee, http.MethodPost, "/working-hours/w1/approve", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApproveRejectAndBulk(t *testing.T) {
	svc, audits, h := newRouter()

	rec, _ := serve(h, manager, http.MethodPost, "/working-hours/w1/reject", `{"reason":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, manager, http.MethodPost, "/working-hours/w1/reject", `{"reason":"wrong project"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, workhours.StatusRejected, svc.entries["w1"].Status)

	rec, _ = serve(h, manager, http.MethodPost, "/working-hours/w3/approve", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = serve(h, manager, http.MethodPost, "/working-hours/bulk-approve", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := serve(h, manager, http.MethodPost, "/working-hours/bulk-approve", `{"ids":["w2","w3"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]any)
	assert.Equal(t, []any{"w2"}, data["approved"])
	assert.Equal(t, map[string]any{"w3": "not_pending"}, data["skipped"])
	assert.Equal(t, []string{"hours.reject", "hours.approve"}, audits.actions)
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	_, _, h := newRouter()
	body := `{"projectId":"pr1","workDate":"2026-03-02","scheduledStart":"08:00","scheduledEnd":"12:00"}`

	rec, _ := serve(h, manager, http.MethodPut, "/working-hours/w3", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = serve(h, manager, http.MethodPut, "/working-hours/w2", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(h, manager, http.MethodDelete, "/working-hours/w2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
