package rosters

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const rosterSelect = `
    SELECT r.id, r.name, r.project_id, p.name, r.client_id, r.start_date, r.end_date,
           r.start_time, r.end_time, r.expected_hours::float8, r.status, r.notes,
           COALESCE(r.created_by::text, ''), r.created_at, r.updated_at
    FROM rosters r
    JOIN projects p ON p.id = r.project_id`

func scanRoster(row pgx.Row) (*Roster, error) {
	var r Roster
	if err := row.Scan(&r.ID, &r.Name, &r.ProjectID, &r.ProjectName, &r.ClientID, &r.StartDate, &r.EndDate,
		&r.StartTime, &r.EndTime, &r.ExpectedHours, &r.Status, &r.Notes,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func whereClause(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		where += fmt.Sprintf(" AND r.project_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if filter.ProfileID != "" {
		args = append(args, filter.ProfileID)
		where += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM roster_profiles rp WHERE rp.roster_id = r.id AND rp.profile_id = $%d)", len(args))
	}
	// Overlap with [From, To].
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND r.end_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND r.start_date <= $%d", len(args))
	}
	return where, args
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Roster, error) {
	where, args := whereClause(filter)
	query := rosterSelect + where + fmt.Sprintf(" ORDER BY r.start_date DESC, r.name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Roster
	for rows.Next() {
		r, err := scanRoster(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := whereClause(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM rosters r"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) Get(ctx context.Context, id string) (*Roster, error) {
	return scanRoster(s.DB.QueryRow(ctx, rosterSelect+" WHERE r.id = $1", id))
}

func (s *Store) ProjectClientID(ctx context.Context, projectID string) (string, error) {
	var clientID string
	err := s.DB.QueryRow(ctx, "SELECT client_id FROM projects WHERE id = $1", projectID).Scan(&clientID)
	return clientID, err
}

func (s *Store) Create(ctx context.Context, r Roster) (string, error) {
	var createdBy any
	if r.CreatedBy != "" {
		createdBy = r.CreatedBy
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO rosters (name, project_id, client_id, start_date, end_date, start_time, end_time,
                         expected_hours, status, notes, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `, r.Name, r.ProjectID, r.ClientID, r.StartDate, r.EndDate, r.StartTime, r.EndTime,
		r.ExpectedHours, r.Status, r.Notes, createdBy).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, r Roster) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE rosters
    SET name = $2, project_id = $3, client_id = $4, start_date = $5, end_date = $6,
        start_time = $7, end_time = $8, expected_hours = $9, notes = $10, updated_at = now()
    WHERE id = $1
  `, r.ID, r.Name, r.ProjectID, r.ClientID, r.StartDate, r.EndDate, r.StartTime, r.EndTime, r.ExpectedHours, r.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE rosters SET status = $2, updated_at = now() WHERE id = $1", id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM rosters WHERE id = $1 AND status = 'draft'", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Assignments(ctx context.Context, rosterID string) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT rp.roster_id, rp.profile_id, p.full_name, rp.status, rp.assigned_at
    FROM roster_profiles rp
    JOIN profiles p ON p.id = rp.profile_id
    WHERE rp.roster_id = $1
    ORDER BY p.full_name
  `, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.RosterID, &a.ProfileID, &a.ProfileName, &a.Status, &a.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Assign(ctx context.Context, rosterID, profileID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO roster_profiles (roster_id, profile_id, status)
    VALUES ($1,$2,'assigned')
    ON CONFLICT (roster_id, profile_id) DO NOTHING
  `, rosterID, profileID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Unassign(ctx context.Context, rosterID, profileID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM roster_profiles WHERE roster_id = $1 AND profile_id = $2", rosterID, profileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAssigned
	}
	return nil
}

func (s *Store) SetAssignmentStatus(ctx context.Context, rosterID, profileID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE roster_profiles SET status = $3
    WHERE roster_id = $1 AND profile_id = $2
  `, rosterID, profileID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAssigned
	}
	return nil
}
