package payroll

import (
	"context"
	"time"
)

type StoreAPI interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Record, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Get(ctx context.Context, id string) (*Record, error)
	FindByPeriod(ctx context.Context, profileID string, start, end time.Time) (*Record, error)
	ProfilesWithApprovedHours(ctx context.Context, start, end time.Time, profileID string) ([]string, error)
	ApprovedHours(ctx context.Context, profileID string, start, end time.Time) ([]HoursLine, error)
	// Upsert writes a pending record and reports whether it was inserted.
	Upsert(ctx context.Context, r Record) (string, bool, error)
	UpdateAmounts(ctx context.Context, r Record) error
	SetStatus(ctx context.Context, id, from, to string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	// MarkPaid records the withdrawal and settles the record atomically.
	MarkPaid(ctx context.Context, p Payment) (string, error)
	PayslipData(ctx context.Context, id string) (PayslipData, error)
	SetPayslipKey(ctx context.Context, id, key string) error
}
