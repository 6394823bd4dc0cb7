package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"workforce/internal/platform/metrics"
)

const (
	JobPayrollGenerate    = "payroll_generate"
	JobPendingHoursDigest = "pending_hours_digest"
	JobRosterHours        = "roster_generate_hours"
	JobIdempotencyPurge   = "idempotency_purge"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type RunFunc func(context.Context) (any, error)

type RunStore interface {
	CreateRun(ctx context.Context, jobType, status string) (string, error)
	CompleteRun(ctx context.Context, runID, status string, detailsJSON []byte) error
	ListRuns(ctx context.Context, jobType string, limit, offset int) ([]Run, error)
	CountRuns(ctx context.Context, jobType string) (int, error)
}

type Service struct {
	store   RunStore
	metrics *metrics.Collector
	queue   chan job
	wg      sync.WaitGroup
}

type job struct {
	Type string
	Run  RunFunc
}

func New(store RunStore, collector *metrics.Collector) *Service {
	return &Service{
		store:   store,
		metrics: collector,
		queue:   make(chan job, 128),
	}
}

// Start runs the queue worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
}

// Every enqueues run on each tick until ctx is cancelled.
func (s *Service) Every(ctx context.Context, interval time.Duration, jobType string, run RunFunc) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Enqueue(jobType, run)
			}
		}
	}()
}

// Wait blocks until the worker and schedulers have stopped.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

// RunNow executes synchronously and records the run like a queued job.
func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) List(ctx context.Context, jobType string, limit, offset int) ([]Run, int, error) {
	total, err := s.store.CountRuns(ctx, jobType)
	if err != nil {
		return nil, 0, err
	}
	runs, err := s.store.ListRuns(ctx, jobType, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.store.CreateRun(ctx, j.Type, StatusRunning)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "partial": details}
	}
	s.metrics.JobRun(j.Type, status)

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.store.CompleteRun(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "runId", runID, "err", updErr)
		}
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}
