package workhours

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const entrySelect = `
    SELECT w.id, w.profile_id, p.full_name, w.client_id, w.project_id, COALESCE(w.roster_id::text, ''),
           w.work_date, w.scheduled_start, w.scheduled_end, w.actual_start, w.actual_end,
           w.scheduled_hours::float8, w.actual_hours::float8, w.overtime_hours::float8,
           w.hourly_rate::float8, w.payable_amount::float8,
           w.category, w.notes, w.status, w.rejection_reason,
           COALESCE(w.approved_by::text, ''), w.approved_at, w.created_at, w.updated_at
    FROM working_hours w
    JOIN profiles p ON p.id = w.profile_id`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(
		&e.ID, &e.ProfileID, &e.ProfileName, &e.ClientID, &e.ProjectID, &e.RosterID,
		&e.WorkDate, &e.ScheduledStart, &e.ScheduledEnd, &e.ActualStart, &e.ActualEnd,
		&e.ScheduledHours, &e.ActualHours, &e.OvertimeHours,
		&e.HourlyRate, &e.PayableAmount,
		&e.Category, &e.Notes, &e.Status, &e.RejectionReason,
		&e.ApprovedBy, &e.ApprovedAt, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func whereClause(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(cond, len(args))
	}
	if filter.ProfileID != "" {
		add(" AND w.profile_id = $%d", filter.ProfileID)
	}
	if filter.ProjectID != "" {
		add(" AND w.project_id = $%d", filter.ProjectID)
	}
	if filter.ClientID != "" {
		add(" AND w.client_id = $%d", filter.ClientID)
	}
	if filter.RosterID != "" {
		add(" AND w.roster_id = $%d", filter.RosterID)
	}
	if filter.Status != "" {
		add(" AND w.status = $%d", filter.Status)
	}
	if filter.Category != "" {
		add(" AND w.category = $%d", filter.Category)
	}
	if !filter.From.IsZero() {
		add(" AND w.work_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add(" AND w.work_date <= $%d", filter.To)
	}
	return where, args
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	where, args := whereClause(filter)
	query := entrySelect + where + fmt.Sprintf(" ORDER BY w.work_date DESC, p.full_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := whereClause(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM working_hours w"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	return scanEntry(s.DB.QueryRow(ctx, entrySelect+" WHERE w.id = $1", id))
}

func (s *Store) ProjectClientID(ctx context.Context, projectID string) (string, error) {
	var clientID string
	err := s.DB.QueryRow(ctx, "SELECT client_id FROM projects WHERE id = $1", projectID).Scan(&clientID)
	return clientID, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func (s *Store) Create(ctx context.Context, e Entry) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO working_hours (profile_id, client_id, project_id, roster_id, work_date,
                               scheduled_start, scheduled_end, actual_start, actual_end,
                               scheduled_hours, actual_hours, overtime_hours, hourly_rate, payable_amount,
                               category, notes, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    RETURNING id
  `, e.ProfileID, e.ClientID, e.ProjectID, nullIfEmpty(e.RosterID), e.WorkDate,
		e.ScheduledStart, e.ScheduledEnd, e.ActualStart, e.ActualEnd,
		e.ScheduledHours, e.ActualHours, e.OvertimeHours, e.HourlyRate, e.PayableAmount,
		e.Category, e.Notes, StatusPending).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, e Entry) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE working_hours
    SET client_id = $2, project_id = $3, roster_id = $4, work_date = $5,
        scheduled_start = $6, scheduled_end = $7, actual_start = $8, actual_end = $9,
        scheduled_hours = $10, actual_hours = $11, overtime_hours = $12,
        hourly_rate = $13, payable_amount = $14, category = $15, notes = $16,
        updated_at = now()
    WHERE id = $1 AND status = 'pending'
  `, e.ID, e.ClientID, e.ProjectID, nullIfEmpty(e.RosterID), e.WorkDate,
		e.ScheduledStart, e.ScheduledEnd, e.ActualStart, e.ActualEnd,
		e.ScheduledHours, e.ActualHours, e.OvertimeHours,
		e.HourlyRate, e.PayableAmount, e.Category, e.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM working_hours WHERE id = $1 AND status = 'pending'", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id, status, actorID, reason string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE working_hours
    SET status = $2, approved_by = $3, approved_at = now(), rejection_reason = $4, updated_at = now()
    WHERE id = $1 AND status = 'pending'
  `, id, status, nullIfEmpty(actorID), reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ExistsForRoster(ctx context.Context, rosterID, profileID string, day time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM working_hours
      WHERE roster_id = $1 AND profile_id = $2 AND work_date = $3
    )
  `, rosterID, profileID, day).Scan(&exists)
	return exists, err
}
