package reports

import (
	"context"
	"time"

	"workforce/internal/platform/jobs"
)

type StoreAPI interface {
	HoursLines(ctx context.Context, filter HoursFilter) ([]HoursLine, error)
	PayrollByStatus(ctx context.Context, from, to time.Time) ([]StatusTotal, error)
	AdminCounts(ctx context.Context) (AdminCounts, error)
	EmployeeCounts(ctx context.Context, profileID string, today time.Time) (EmployeeCounts, error)
	JobRun(ctx context.Context, id string) (*jobs.Run, error)
}
