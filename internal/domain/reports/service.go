package reports

import (
	"context"
	"io"
	"time"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/banking"
	"workforce/internal/domain/timecalc"
	"workforce/internal/platform/jobs"
)

type BankSummarizer interface {
	Summary(ctx context.Context) (banking.Summary, error)
}

type JobLister interface {
	List(ctx context.Context, jobType string, limit, offset int) ([]jobs.Run, int, error)
}

type Service struct {
	store StoreAPI
	bank  BankSummarizer
	jobs  JobLister
	now   func() time.Time
}

func NewService(store StoreAPI, bank BankSummarizer, runs JobLister) *Service {
	return &Service{store: store, bank: bank, jobs: runs, now: time.Now}
}

func checkRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return ErrRangeOrder
	}
	return nil
}

func (s *Service) Hours(ctx context.Context, filter HoursFilter) (HoursReport, error) {
	if err := checkRange(filter.From, filter.To); err != nil {
		return HoursReport{}, err
	}
	if filter.GroupBy != "" {
		if _, ok := timecalc.KeyFunc(filter.GroupBy); !ok {
			return HoursReport{}, ErrInvalidGroupBy
		}
	}
	lines, err := s.store.HoursLines(ctx, filter)
	if err != nil {
		return HoursReport{}, err
	}
	return BuildHoursReport(lines, filter)
}

// ExportHoursCSV writes the hours report for filter as CSV.
func (s *Service) ExportHoursCSV(ctx context.Context, w io.Writer, filter HoursFilter) error {
	report, err := s.Hours(ctx, filter)
	if err != nil {
		return err
	}
	return WriteHoursCSV(w, report)
}

func (s *Service) Payroll(ctx context.Context, from, to time.Time) (PayrollSummary, error) {
	if err := checkRange(from, to); err != nil {
		return PayrollSummary{}, err
	}
	byStatus, err := s.store.PayrollByStatus(ctx, from, to)
	if err != nil {
		return PayrollSummary{}, err
	}
	return SummarizePayroll(byStatus, from, to), nil
}

func (s *Service) Bank(ctx context.Context) (banking.Summary, error) {
	return s.bank.Summary(ctx)
}

func (s *Service) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	counts, err := s.store.AdminCounts(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	bank, err := s.bank.Summary(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	return BuildAdminDashboard(counts, bank.Balance), nil
}

// EmployeeDashboard covers the caller's own data for the current month. Only
// approved hours count; pending entries are reported separately.
func (s *Service) EmployeeDashboard(ctx context.Context, user auth.UserContext) (EmployeeDashboard, error) {
	now := s.now().UTC()
	start, end := MonthBounds(now)
	lines, err := s.store.HoursLines(ctx, HoursFilter{From: start, To: end, ProfileID: user.UserID, Status: "approved"})
	if err != nil {
		return EmployeeDashboard{}, err
	}
	entries := make([]timecalc.HourEntry, 0, len(lines))
	for _, l := range lines {
		entries = append(entries, l.HourEntry)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	counts, err := s.store.EmployeeCounts(ctx, user.UserID, today)
	if err != nil {
		return EmployeeDashboard{}, err
	}
	return BuildEmployeeDashboard(counts, entries, start, end), nil
}

func (s *Service) JobRuns(ctx context.Context, jobType string, limit, offset int) ([]jobs.Run, int, error) {
	runs, total, err := s.jobs.List(ctx, jobType, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	return runs, total, nil
}

func (s *Service) JobRun(ctx context.Context, id string) (*jobs.Run, error) {
	return s.store.JobRun(ctx, id)
}
