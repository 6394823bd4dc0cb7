package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/workhours"
	"workforce/internal/platform/idx"
	"workforce/internal/platform/jobs"
	"workforce/internal/platform/metrics"
	"workforce/internal/platform/storage"
)

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run jobs.RunFunc) (any, error)
}

type Service struct {
	store    StoreAPI
	jobs     JobRunner
	notifier workhours.Notifier
	perms    workhours.PermissionChecker
	files    storage.Storage
	metrics  *metrics.Collector
	currency string
}

func NewService(store StoreAPI, runner JobRunner, notifier workhours.Notifier, perms workhours.PermissionChecker, files storage.Storage, collector *metrics.Collector, currency string) *Service {
	if currency == "" {
		currency = "AUD"
	}
	return &Service{store: store, jobs: runner, notifier: notifier, perms: perms, files: files, metrics: collector, currency: currency}
}

func (s *Service) canManage(ctx context.Context, user auth.UserContext) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	return s.perms.HasPermission(ctx, user.RoleName, auth.PermPayrollWrite)
}

func (s *Service) List(ctx context.Context, user auth.UserContext, filter Filter, limit, offset int) ([]Record, int, error) {
	manage, err := s.canManage(ctx, user)
	if err != nil {
		return nil, 0, err
	}
	if !manage {
		filter.ProfileID = user.UserID
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get hides other profiles' records from callers who cannot manage payroll.
func (s *Service) Get(ctx context.Context, user auth.UserContext, id string) (*Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.ProfileID == user.UserID {
		return r, nil
	}
	manage, err := s.canManage(ctx, user)
	if err != nil {
		return nil, err
	}
	if !manage {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

// Generate upserts pending records for every profile with approved hours in
// the period. Approved and paid records are left alone.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		return GenerateResult{}, ErrPeriodRequired
	}
	if req.PeriodEnd.Before(req.PeriodStart) {
		return GenerateResult{}, ErrPeriodOrder
	}
	out, err := s.jobs.RunNow(ctx, jobs.JobPayrollGenerate, func(ctx context.Context) (any, error) {
		return s.generate(ctx, req)
	})
	if err != nil {
		return GenerateResult{}, err
	}
	result, _ := out.(GenerateResult)
	return result, nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	result := GenerateResult{
		PeriodStart: req.PeriodStart.Format(time.DateOnly),
		PeriodEnd:   req.PeriodEnd.Format(time.DateOnly),
		Skipped:     map[string]string{},
	}
	profileIDs, err := s.store.ProfilesWithApprovedHours(ctx, req.PeriodStart, req.PeriodEnd, req.ProfileID)
	if err != nil {
		return result, err
	}
	for _, profileID := range profileIDs {
		existing, err := s.store.FindByPeriod(ctx, profileID, req.PeriodStart, req.PeriodEnd)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			existing = nil
		case err != nil:
			return result, err
		}
		deductions := 0.0
		if existing != nil {
			if existing.Status != StatusPending {
				result.Skipped[profileID] = SkipNotPending
				continue
			}
			deductions = existing.Deductions
		}

		lines, err := s.store.ApprovedHours(ctx, profileID, req.PeriodStart, req.PeriodEnd)
		if err != nil {
			return result, err
		}
		rec := Record{ProfileID: profileID, PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd, Status: StatusPending}
		Compute(lines, deductions).apply(&rec)

		_, inserted, err := s.store.Upsert(ctx, rec)
		if errors.Is(err, ErrNotPending) {
			result.Skipped[profileID] = SkipNotPending
			continue
		}
		if err != nil {
			return result, fmt.Errorf("upsert payroll for %s: %w", profileID, err)
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

// UpdateDeductions recomputes net pay on a pending record.
func (s *Service) UpdateDeductions(ctx context.Context, id string, deductions float64) (*Record, *Record, error) {
	if deductions < 0 {
		return nil, nil, ErrNegativeDeductions
	}
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if before.Status != StatusPending {
		return nil, nil, ErrNotPending
	}
	after := *before
	Computation{
		TotalHours:    before.TotalHours,
		OvertimeHours: before.OvertimeHours,
		HourlyRate:    before.HourlyRate,
		GrossPay:      before.GrossPay,
	}.withDeductions(deductions).apply(&after)
	if err := s.store.UpdateAmounts(ctx, after); err != nil {
		return nil, nil, err
	}
	return before, &after, nil
}

func (s *Service) Approve(ctx context.Context, id string) (*Record, error) {
	ok, err := s.store.SetStatus(ctx, id, StatusPending, StatusApproved)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.store.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrNotPending
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) (*Record, error) {
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.Status != StatusPending {
		return nil, ErrNotPending
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	return before, nil
}

// MarkPaid settles an approved record against a bank account and returns the
// record as it was before and after payment.
func (s *Service) MarkPaid(ctx context.Context, user auth.UserContext, id string, req PayRequest) (*Record, *Record, error) {
	if strings.TrimSpace(req.BankAccountID) == "" {
		return nil, nil, ErrBankAccountNeeded
	}
	before, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if before.Status != StatusApproved {
		return nil, nil, ErrNotApproved
	}
	if before.NetPay <= 0 {
		return nil, nil, ErrNonPositiveNet
	}
	if req.PaymentDate.IsZero() {
		req.PaymentDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if strings.TrimSpace(req.Reference) == "" {
		req.Reference = idx.New()
	}

	_, err = s.store.MarkPaid(ctx, Payment{
		PayrollID:     id,
		ProfileID:     before.ProfileID,
		BankAccountID: req.BankAccountID,
		Amount:        before.NetPay,
		PaymentDate:   req.PaymentDate,
		Reference:     req.Reference,
		ActorID:       user.UserID,
		Description: fmt.Sprintf("Payroll %s to %s",
			before.PeriodStart.Format(time.DateOnly), before.PeriodEnd.Format(time.DateOnly)),
	})
	if err != nil {
		return nil, nil, err
	}
	after, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.Payout(after.NetPay)
	s.notifyPaid(ctx, *after)
	return before, after, nil
}

func (s *Service) notifyPaid(ctx context.Context, r Record) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, notifications.Notification{
		ProfileID:  r.ProfileID,
		Type:       notifications.TypePayrollPaid,
		Title:      "Payroll paid",
		Message:    fmt.Sprintf("Your pay of %.2f %s for %s to %s has been paid.", r.NetPay, s.currency, r.PeriodStart.Format(time.DateOnly), r.PeriodEnd.Format(time.DateOnly)),
		EntityType: notifications.EntityPayroll,
		EntityID:   r.ID,
	})
	if err != nil {
		slog.Warn("payroll paid notification failed", "payrollId", r.ID, "profileId", r.ProfileID, "err", err)
	}
}
