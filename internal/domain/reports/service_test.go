package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/banking"
	"workforce/internal/platform/jobs"
)

type fakeStore struct {
	lines      []HoursLine
	lastFilter HoursFilter
	byStatus   []StatusTotal
	admin      AdminCounts
	employee   EmployeeCounts
	countedFor string
}

func (f *fakeStore) HoursLines(ctx context.Context, filter HoursFilter) ([]HoursLine, error) {
	f.lastFilter = filter
	return f.lines, nil
}

func (f *fakeStore) PayrollByStatus(ctx context.Context, from, to time.Time) ([]StatusTotal, error) {
	return f.byStatus, nil
}

func (f *fakeStore) AdminCounts(ctx context.Context) (AdminCounts, error) {
	return f.admin, nil
}

func (f *fakeStore) EmployeeCounts(ctx context.Context, profileID string, today time.Time) (EmployeeCounts, error) {
	f.countedFor = profileID
	return f.employee, nil
}

func (f *fakeStore) JobRun(ctx context.Context, id string) (*jobs.Run, error) {
	return &jobs.Run{ID: id, JobType: jobs.JobPayrollGenerate}, nil
}

type fakeBank struct{ balance float64 }

func (b fakeBank) Summary(ctx context.Context) (banking.Summary, error) {
	return banking.Summary{Balance: b.balance, Accounts: []banking.AccountBalance{}}, nil
}

type fakeRuns struct{}

func (fakeRuns) List(ctx context.Context, jobType string, limit, offset int) ([]jobs.Run, int, error) {
	return nil, 0, nil
}

func TestHoursValidatesFilter(t *testing.T) {
	svc := NewService(&fakeStore{}, fakeBank{}, fakeRuns{})
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Hours(context.Background(), HoursFilter{From: from, To: from.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, ErrRangeOrder)
	_, err = svc.Hours(context.Background(), HoursFilter{GroupBy: "team"})
	assert.ErrorIs(t, err, ErrInvalidGroupBy)
}

func TestExportHoursCSV(t *testing.T) {
	store := &fakeStore{lines: []HoursLine{line("p1", "Ann", "x", "regular", 8, 0, 200)}}
	svc := NewService(store, fakeBank{}, fakeRuns{})

	var buf bytes.Buffer
	require.NoError(t, svc.ExportHoursCSV(context.Background(), &buf, HoursFilter{GroupBy: "project", Status: "approved"}))
	assert.True(t, strings.HasPrefix(buf.String(), "key,label"))
	assert.Contains(t, buf.String(), "x,Project x,1,8.00")
	assert.Equal(t, "approved", store.lastFilter.Status)
}

func TestAdminDashboardIncludesBankBalance(t *testing.T) {
	svc := NewService(&fakeStore{admin: AdminCounts{ActiveClients: 2}}, fakeBank{balance: 5000}, fakeRuns{})
	d, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.ActiveClients)
	assert.Equal(t, 5000.0, d.TotalBankBalance)
}

func TestEmployeeDashboardScopesToCaller(t *testing.T) {
	store := &fakeStore{
		lines:    []HoursLine{line("p1", "Ann", "x", "regular", 8, 0, 200)},
		employee: EmployeeCounts{PendingEntries: 1},
	}
	svc := NewService(store, fakeBank{}, fakeRuns{})
	svc.now = func() time.Time { return time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC) }

	d, err := svc.EmployeeDashboard(context.Background(), auth.UserContext{UserID: "p1", RoleName: auth.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, "p1", store.lastFilter.ProfileID)
	assert.Equal(t, "approved", store.lastFilter.Status)
	assert.Equal(t, "p1", store.countedFor)
	assert.Equal(t, "2026-04-01", d.PeriodStart)
	assert.Equal(t, "2026-04-30", d.PeriodEnd)
	assert.Equal(t, 8.0, d.Hours.ActualHours)
	assert.Equal(t, 1, d.PendingEntries)
}

func TestJobRunsNeverNil(t *testing.T) {
	svc := NewService(&fakeStore{}, fakeBank{}, fakeRuns{})
	runs, total, err := svc.JobRuns(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Zero(t, total)
}
