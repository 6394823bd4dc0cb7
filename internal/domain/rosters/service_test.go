package rosters

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/workhours"
	"workforce/internal/platform/jobs"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

type fakeStore struct {
	rosters     map[string]*Roster
	assignments map[string][]Assignment
	next        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rosters: map[string]*Roster{}, assignments: map[string][]Assignment{}}
}

func (f *fakeStore) List(ctx context.Context, filter Filter, limit, offset int) ([]Roster, error) {
	var out []Roster
	for id, r := range f.rosters {
		if filter.ProfileID != "" && !f.assigned(id, filter.ProfileID) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) assigned(rosterID, profileID string) bool {
	for _, a := range f.assignments[rosterID] {
		if a.ProfileID == profileID {
			return true
		}
	}
	return false
}

func (f *fakeStore) Count(ctx context.Context, filter Filter) (int, error) {
	out, _ := f.List(ctx, filter, 0, 0)
	return len(out), nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Roster, error) {
	r, ok := f.rosters[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ProjectClientID(ctx context.Context, projectID string) (string, error) {
	if projectID != "proj" {
		return "", pgx.ErrNoRows
	}
	return "client", nil
}

func (f *fakeStore) Create(ctx context.Context, r Roster) (string, error) {
	f.next++
	r.ID = fmt.Sprintf("r%d", f.next)
	f.rosters[r.ID] = &r
	return r.ID, nil
}

func (f *fakeStore) Update(ctx context.Context, r Roster) error {
	f.rosters[r.ID] = &r
	return nil
}

func (f *fakeStore) SetStatus(ctx context.Context, id, status string) error {
	f.rosters[id].Status = status
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) (bool, error) {
	if f.rosters[id].Status != StatusDraft {
		return false, nil
	}
	delete(f.rosters, id)
	return true, nil
}

func (f *fakeStore) Assignments(ctx context.Context, rosterID string) ([]Assignment, error) {
	return f.assignments[rosterID], nil
}

func (f *fakeStore) Assign(ctx context.Context, rosterID, profileID string) (bool, error) {
	if f.assigned(rosterID, profileID) {
		return false, nil
	}
	f.assignments[rosterID] = append(f.assignments[rosterID], Assignment{RosterID: rosterID, ProfileID: profileID, Status: AssignmentAssigned})
	return true, nil
}

func (f *fakeStore) Unassign(ctx context.Context, rosterID, profileID string) error {
	list := f.assignments[rosterID]
	for i, a := range list {
		if a.ProfileID == profileID {
			f.assignments[rosterID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotAssigned
}

func (f *fakeStore) SetAssignmentStatus(ctx context.Context, rosterID, profileID, status string) error {
	for i, a := range f.assignments[rosterID] {
		if a.ProfileID == profileID {
			f.assignments[rosterID][i].Status = status
			return nil
		}
	}
	return ErrNotAssigned
}

type fakeHours struct {
	created []workhours.Entry
}

func (h *fakeHours) ExistsForRoster(ctx context.Context, rosterID, profileID string, d time.Time) (bool, error) {
	for _, e := range h.created {
		if e.RosterID == rosterID && e.ProfileID == profileID && e.WorkDate.Equal(d) {
			return true, nil
		}
	}
	return false, nil
}

func (h *fakeHours) Create(ctx context.Context, e workhours.Entry) (string, error) {
	h.created = append(h.created, e)
	return fmt.Sprintf("wh%d", len(h.created)), nil
}

type rates map[string]float64

func (r rates) HourlyRate(ctx context.Context, profileID string) (float64, error) {
	return r[profileID], nil
}

type captureNotifier struct {
	sent []notifications.Notification
}

func (c *captureNotifier) Notify(ctx context.Context, n notifications.Notification) error {
	c.sent = append(c.sent, n)
	return nil
}

type grants map[string][]string

func (g grants) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	return auth.Allowed(role, permission, g), nil
}

type inlineRunner struct {
	ran []string
}

func (r *inlineRunner) RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error) {
	r.ran = append(r.ran, jobType)
	return run(ctx)
}

var (
	manager  = auth.UserContext{UserID: "mgr", RoleName: auth.RoleManager}
	employee = auth.UserContext{UserID: "e1", RoleName: auth.RoleEmployee}
)

type fixture struct {
	store    *fakeStore
	hours    *fakeHours
	notifier *captureNotifier
	runner   *inlineRunner
	svc      *Service
}

func newFixture() fixture {
	f := fixture{store: newFakeStore(), hours: &fakeHours{}, notifier: &captureNotifier{}, runner: &inlineRunner{}}
	f.svc = NewService(f.store, f.hours, rates{"e1": 30, "e2": 40}, f.notifier, grants(auth.DefaultRolePermissions), f.runner)
	return f
}

func weekRoster() Roster {
	return Roster{Name: "Site A", ProjectID: "proj", StartDate: day("2024-06-03"), EndDate: day("2024-06-05"), StartTime: "07:00", EndTime: "15:30"}
}

func TestCreateDerivesExpectedHours(t *testing.T) {
	f := newFixture()
	r, err := f.svc.Create(context.Background(), manager, weekRoster())
	require.NoError(t, err)
	assert.Equal(t, 8.5, r.ExpectedHours)
	assert.Equal(t, "client", r.ClientID)
	assert.Equal(t, StatusDraft, r.Status)
	assert.Equal(t, "mgr", r.CreatedBy)

	bad := weekRoster()
	bad.EndDate = day("2024-06-01")
	_, err = f.svc.Create(context.Background(), manager, bad)
	assert.ErrorIs(t, err, ErrDateOrder)

	bad = weekRoster()
	bad.StartDate = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	bad.EndDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.Create(context.Background(), manager, bad)
	assert.ErrorIs(t, err, ErrRangeTooLong)

	quarter := weekRoster()
	quarter.EndDate = quarter.StartDate.AddDate(0, 0, 92)
	_, err = f.svc.Create(context.Background(), manager, quarter)
	assert.NoError(t, err, "93 days is the limit")

	bad = weekRoster()
	bad.ProjectID = "ghost"
	_, err = f.svc.Create(context.Background(), manager, bad)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestAssignIsIdempotentAndNotifiesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, err := f.svc.Create(ctx, manager, weekRoster())
	require.NoError(t, err)

	res, err := f.svc.Assign(ctx, r.ID, []string{"e1", "e2", "e1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, res.Assigned)

	res, err = f.svc.Assign(ctx, r.ID, []string{"e1"})
	require.NoError(t, err)
	assert.Empty(t, res.Assigned)
	assert.Equal(t, []string{"e1"}, res.Existing)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, notifications.TypeRosterAssigned, f.notifier.sent[0].Type)
	assert.Equal(t, r.ID, f.notifier.sent[0].EntityID)

	_, err = f.svc.Assign(ctx, r.ID, nil)
	assert.ErrorIs(t, err, ErrNoProfiles)
}

func TestEmployeesSeeOnlyTheirRosters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mine, _ := f.svc.Create(ctx, manager, weekRoster())
	other, _ := f.svc.Create(ctx, manager, weekRoster())
	_, err := f.svc.Assign(ctx, mine.ID, []string{"e1"})
	require.NoError(t, err)

	list, total, err := f.svc.List(ctx, employee, Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, mine.ID, list[0].ID)

	got, err := f.svc.Get(ctx, employee, mine.ID)
	require.NoError(t, err)
	assert.Len(t, got.Assignments, 1)

	_, err = f.svc.Get(ctx, employee, other.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestRespond(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, _ := f.svc.Create(ctx, manager, weekRoster())
	_, err := f.svc.Assign(ctx, r.ID, []string{"e1", "e2"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Respond(ctx, employee, r.ID, "e1", AssignmentConfirmed))
	assert.ErrorIs(t, f.svc.Respond(ctx, employee, r.ID, "e2", AssignmentDeclined), ErrNotAssignee)
	require.NoError(t, f.svc.Respond(ctx, manager, r.ID, "e2", AssignmentDeclined))
	assert.ErrorIs(t, f.svc.Respond(ctx, employee, r.ID, "e1", "maybe"), ErrInvalidAssignmentStatus)
	assert.Equal(t, AssignmentConfirmed, f.store.assignments[r.ID][0].Status)
}

func TestLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, _ := f.svc.Create(ctx, manager, weekRoster())

	published, err := f.svc.Publish(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, published.Status)

	_, err = f.svc.Publish(ctx, r.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.Delete(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotDraft)

	_, err = f.svc.Transition(ctx, r.ID, StatusCancelled)
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, r.ID, []string{"e1"})
	assert.ErrorIs(t, err, ErrClosed)

	draft, _ := f.svc.Create(ctx, manager, weekRoster())
	_, err = f.svc.Delete(ctx, draft.ID)
	require.NoError(t, err)
	assert.NotContains(t, f.store.rosters, draft.ID)
}

func TestGenerateWorkingHours(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, _ := f.svc.Create(ctx, manager, weekRoster())
	_, err := f.svc.Assign(ctx, r.ID, []string{"e1", "e2"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Respond(ctx, manager, r.ID, "e2", AssignmentDeclined))

	res, err := f.svc.GenerateWorkingHours(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, GenerateResult{RosterID: r.ID, Created: 3, Skipped: 0}, res)
	assert.Equal(t, []string{jobs.JobRosterHours}, f.runner.ran)

	first := f.hours.created[0]
	assert.Equal(t, "e1", first.ProfileID)
	assert.Equal(t, "client", first.ClientID)
	assert.Equal(t, day("2024-06-03"), first.WorkDate)
	assert.Equal(t, 8.5, first.ScheduledHours)
	assert.Equal(t, 255.0, first.PayableAmount)
	assert.Equal(t, workhours.StatusPending, first.Status)

	res, err = f.svc.GenerateWorkingHours(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 3, res.Skipped)
}
