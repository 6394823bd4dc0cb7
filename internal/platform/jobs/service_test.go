package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/platform/metrics"
)

type memRunStore struct {
	mu   sync.Mutex
	runs []Run
}

func (m *memRunStore) CreateRun(ctx context.Context, jobType, status string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := jobType + "-" + string(rune('a'+len(m.runs)))
	m.runs = append(m.runs, Run{ID: id, JobType: jobType, Status: status, StartedAt: time.Now()})
	return id, nil
}

func (m *memRunStore) CompleteRun(ctx context.Context, runID, status string, detailsJSON []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == runID {
			now := time.Now()
			m.runs[i].Status = status
			m.runs[i].Details = detailsJSON
			m.runs[i].CompletedAt = &now
		}
	}
	return nil
}

func (m *memRunStore) ListRuns(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Run
	for _, r := range m.runs {
		if jobType == "" || r.JobType == jobType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRunStore) CountRuns(ctx context.Context, jobType string) (int, error) {
	runs, _ := m.ListRuns(ctx, jobType, 0, 0)
	return len(runs), nil
}

func (m *memRunStore) snapshot() []Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Run(nil), m.runs...)
}

func TestRunNowRecordsCompletedRun(t *testing.T) {
	store := &memRunStore{}
	svc := New(store, metrics.New())

	out, err := svc.RunNow(context.Background(), JobPayrollGenerate, func(context.Context) (any, error) {
		return map[string]int{"created": 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"created": 2}, out)

	runs := store.snapshot()
	require.Len(t, runs, 1)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.JSONEq(t, `{"created":2}`, string(runs[0].Details))
}

func TestRunNowRecordsFailure(t *testing.T) {
	store := &memRunStore{}
	svc := New(store, nil)

	_, err := svc.RunNow(context.Background(), JobPayrollGenerate, func(context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	require.EqualError(t, err, "boom")

	runs := store.snapshot()
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailed, runs[0].Status)
	var details map[string]any
	require.NoError(t, json.Unmarshal(runs[0].Details, &details))
	assert.Equal(t, "boom", details["error"])
}

func TestWorkerDrainsQueue(t *testing.T) {
	store := &memRunStore{}
	svc := New(store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)

	done := make(chan struct{})
	require.True(t, svc.Enqueue(JobPendingHoursDigest, func(context.Context) (any, error) {
		close(done)
		return nil, nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job did not run")
	}
	require.Eventually(t, func() bool {
		runs := store.snapshot()
		return len(runs) == 1 && runs[0].Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	svc.Wait()

	runs, total, err := svc.List(context.Background(), JobPendingHoursDigest, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, runs, 1)
}
