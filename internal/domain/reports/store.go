package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/platform/jobs"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) HoursLines(ctx context.Context, filter HoursFilter) ([]HoursLine, error) {
	query := `
    SELECT w.profile_id, w.project_id, w.client_id, w.category, w.work_date,
           w.actual_hours::float8, w.overtime_hours::float8, w.payable_amount::float8,
           p.full_name, pr.name, c.company_name
    FROM working_hours w
    JOIN profiles p ON p.id = w.profile_id
    JOIN projects pr ON pr.id = w.project_id
    JOIN clients c ON c.id = w.client_id
    WHERE 1=1`
	var args []any
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND w.work_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND w.work_date <= $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND w.status = $%d", len(args))
	}
	if filter.ProfileID != "" {
		args = append(args, filter.ProfileID)
		query += fmt.Sprintf(" AND w.profile_id = $%d", len(args))
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query += fmt.Sprintf(" AND w.project_id = $%d", len(args))
	}
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		query += fmt.Sprintf(" AND w.client_id = $%d", len(args))
	}
	query += " ORDER BY w.work_date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HoursLine
	for rows.Next() {
		var l HoursLine
		if err := rows.Scan(&l.ProfileID, &l.ProjectID, &l.ClientID, &l.Category, &l.Date,
			&l.ActualHours, &l.OvertimeHours, &l.PayableAmount,
			&l.ProfileName, &l.ProjectName, &l.ClientName); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) PayrollByStatus(ctx context.Context, from, to time.Time) ([]StatusTotal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT status, COUNT(1), COALESCE(SUM(gross_pay), 0)::float8,
           COALESCE(SUM(deductions), 0)::float8, COALESCE(SUM(net_pay), 0)::float8
    FROM payroll
    WHERE ($1::date IS NULL OR period_end >= $1)
      AND ($2::date IS NULL OR period_start <= $2)
    GROUP BY status
    ORDER BY status
  `, nullDate(from), nullDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusTotal
	for rows.Next() {
		var st StatusTotal
		if err := rows.Scan(&st.Status, &st.Records, &st.GrossPay, &st.Deductions, &st.NetPay); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *Store) AdminCounts(ctx context.Context) (AdminCounts, error) {
	var c AdminCounts
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM profiles WHERE status = 'active'),
      (SELECT COUNT(1) FROM clients WHERE status = 'active'),
      (SELECT COUNT(1) FROM projects WHERE status = 'active'),
      (SELECT COUNT(1) FROM working_hours WHERE status = 'pending'),
      (SELECT COUNT(1) FROM payroll WHERE status = 'pending')
  `).Scan(&c.ActiveProfiles, &c.ActiveClients, &c.ActiveProjects, &c.PendingHours, &c.PendingPayroll)
	return c, err
}

func (s *Store) EmployeeCounts(ctx context.Context, profileID string, today time.Time) (EmployeeCounts, error) {
	var c EmployeeCounts
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM working_hours WHERE profile_id = $1 AND status = 'pending'),
      (SELECT COUNT(1)
         FROM rosters r
         JOIN roster_profiles rp ON rp.roster_id = r.id
        WHERE rp.profile_id = $1 AND rp.status <> 'declined'
          AND r.status = 'published' AND r.end_date >= $2),
      (SELECT net_pay::float8 FROM payroll
        WHERE profile_id = $1 AND status = 'paid'
        ORDER BY payment_date DESC NULLS LAST, period_end DESC
        LIMIT 1)
  `, profileID, today).Scan(&c.PendingEntries, &c.UpcomingRosters, &c.LastNetPay)
	return c, err
}

func (s *Store) JobRun(ctx context.Context, id string) (*jobs.Run, error) {
	var run jobs.Run
	err := s.DB.QueryRow(ctx, `
    SELECT id, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    WHERE id = $1
  `, id).Scan(&run.ID, &run.JobType, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
