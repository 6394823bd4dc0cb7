package reportshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/banking"
	"workforce/internal/domain/reports"
	"workforce/internal/platform/jobs"
	"workforce/internal/transport/http/middleware"
)

type fakeService struct {
	lastFilter reports.HoursFilter
	exportErr  error
	runs       []jobs.Run
}

func (f *fakeService) Hours(_ context.Context, filter reports.HoursFilter) (reports.HoursReport, error) {
	f.lastFilter = filter
	return reports.HoursReport{GroupBy: filter.GroupBy, Rows: []reports.HoursRow{{Key: "e1", Label: "Ella", Entries: 2, ActualHours: 15.5}}}, nil
}

func (f *fakeService) ExportHoursCSV(_ context.Context, w io.Writer, filter reports.HoursFilter) error {
	f.lastFilter = filter
	if f.exportErr != nil {
		return f.exportErr
	}
	_, err := fmt.Fprint(w, "key,label,entries\ne1,Ella,2\n")
	return err
}

func (f *fakeService) Payroll(_ context.Context, from, to time.Time) (reports.PayrollSummary, error) {
	return reports.PayrollSummary{From: from.Format("2006-01-02"), To: to.Format("2006-01-02"), Records: 3, NetPay: 2400}, nil
}

func (f *fakeService) Bank(context.Context) (banking.Summary, error) {
	return banking.Summary{Balance: 1200}, nil
}

func (f *fakeService) AdminDashboard(context.Context) (reports.AdminDashboard, error) {
	return reports.AdminDashboard{ActiveProfiles: 4, PendingHours: 2}, nil
}

func (f *fakeService) EmployeeDashboard(_ context.Context, user auth.UserContext) (reports.EmployeeDashboard, error) {
	return reports.EmployeeDashboard{PeriodStart: "2026-10-01", PendingEntries: len(user.UserID)}, nil
}

func (f *fakeService) JobRuns(_ context.Context, jobType string, _, _ int) ([]jobs.Run, int, error) {
	out := []jobs.Run{}
	for _, run := range f.runs {
		if jobType == "" || run.JobType == jobType {
			out = append(out, run)
		}
	}
	return out, len(out), nil
}

func (f *fakeService) JobRun(_ context.Context, id string) (*jobs.Run, error) {
	for _, run := range f.runs {
		if run.ID == id {
			return &run, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type perms struct{}

func (perms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allowed(role, permission, auth.DefaultRolePermissions), nil
}

var (
	manager  = auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}
	employee = auth.UserContext{UserID: "e1", RoleName: auth.RoleEmployee}
)

func newRouter() (*fakeService, http.Handler) {
	svc := &fakeService{runs: []jobs.Run{
		{ID: "run1", JobType: "pending_digest", Status: "completed"},
		{ID: "run2", JobType: "payroll_generate", Status: "failed"},
	}}
	r := chi.NewRouter()
	NewHandler(svc, perms{}).RegisterRoutes(r)
	return svc, r
}

func serve(h http.Handler, user auth.UserContext, path string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestHoursReportFilters(t *testing.T) {
	svc, h := newRouter()

	rec, env := serve(h, manager, "/reports/hours?from=2026-04-01&to=2026-04-30&groupBy=project&status=approved&clientId=c1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "project", env["data"].(map[string]any)["groupBy"])
	assert.Equal(t, "c1", svc.lastFilter.ClientID)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), svc.lastFilter.From)

	rec, _ = serve(h, manager, "/reports/hours?groupBy=weekday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, manager, "/reports/hours?from=2026-04-30&to=2026-04-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, manager, "/reports/hours?status=void")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, employee, "/reports/hours")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHoursExport(t *testing.T) {
	svc, h := newRouter()

	rec, _ := serve(h, manager, "/reports/hours/export?groupBy=profile")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "hours-report.csv")
	assert.Equal(t, "key,label,entries\ne1,Ella,2\n", rec.Body.String())

	svc.exportErr = errors.New("db down")
	rec, env := serve(h, manager, "/reports/hours/export")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.NotNil(t, env["error"])
}

func TestDashboards(t *testing.T) {
	_, h := newRouter()

	rec, env := serve(h, manager, "/reports/dashboard/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, env["data"].(map[string]any)["activeProfiles"])

	rec, _ = serve(h, employee, "/reports/dashboard/admin")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = serve(h, employee, "/reports/dashboard/employee")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-01", env["data"].(map[string]any)["periodStart"])

	rec, env = serve(h, manager, "/reports/payroll?from=2026-04-01&to=2026-04-30")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2400, env["data"].(map[string]any)["netPay"])

	rec, _ = serve(h, manager, "/reports/bank")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = serve(h, employee, "/reports/bank")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJobRuns(t *testing.T) {
	_, h := newRouter()

	rec, env := serve(h, manager, "/reports/jobs?type=pending_digest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, env["meta"].(map[string]any)["total"])

	rec, env = serve(h, manager, "/reports/jobs/run2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "failed", env["data"].(map[string]any)["status"])

	rec, _ = serve(h, manager, "/reports/jobs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
