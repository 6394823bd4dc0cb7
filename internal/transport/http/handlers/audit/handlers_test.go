package audithandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/transport/http/middleware"
)

type fakeService struct {
	events  []audit.Event
	details bool
}

func (f *fakeService) match(filter audit.Filter) []audit.Event {
	out := []audit.Event{}
	for _, e := range f.events {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (f *fakeService) Count(_ context.Context, filter audit.Filter) (int, error) {
	return len(f.match(filter)), nil
}

func (f *fakeService) List(_ context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error) {
	f.details = includeDetails
	out := f.match(filter)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type perms struct{}

func (perms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allowed(role, permission, auth.DefaultRolePermissions), nil
}

func newRouter() (*fakeService, http.Handler) {
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	svc := &fakeService{events: []audit.Event{
		{ID: "ev1", ActorID: "a1", Action: "payroll.pay", EntityType: "payroll", EntityID: "p1", CreatedAt: at},
		{ID: "ev2", ActorID: "m1", Action: "hours.approve", EntityType: "working_hours", EntityID: "w1", CreatedAt: at},
		{ID: "ev3", ActorID: "a1", Action: "payroll.approve", EntityType: "payroll", EntityID: "p1", CreatedAt: at},
	}}
	r := chi.NewRouter()
	NewHandler(svc, perms{}).RegisterRoutes(r)
	return svc, r
}

func serve(h http.Handler, user auth.UserContext, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var admin = auth.UserContext{UserID: "ad1", RoleName: auth.RoleAdmin}

func TestListEvents(t *testing.T) {
	svc, h := newRouter()

	rec := serve(h, admin, "/audit/events?actorId=a1&includeDetails=true&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.EqualValues(t, 2, env["meta"].(map[string]any)["total"])
	assert.Len(t, env["data"], 1)
	assert.True(t, svc.details)

	rec = serve(h, admin, "/audit/events?action=nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, []any{}, env["data"])
}

func TestEventsRequireAuditPermission(t *testing.T) {
	_, h := newRouter()
	for _, role := range []string{auth.RoleManager, auth.RoleAccountant, auth.RoleEmployee} {
		rec := serve(h, auth.UserContext{UserID: "x", RoleName: role}, "/audit/events")
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}
}

func TestExportEvents(t *testing.T) {
	_, h := newRouter()

	rec := serve(h, admin, "/audit/events/export?action=payroll.pay")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,actor_id,action,entity_type,entity_id,request_id,ip,created_at", lines[0])
	assert.Equal(t, "ev1,a1,payroll.pay,payroll,p1,,,2026-04-02T09:30:00Z", lines[1])
}
