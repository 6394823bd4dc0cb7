package projects

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

const projectSelect = `
    SELECT p.id, p.client_id, c.company_name, p.name, p.description, p.start_date, p.end_date,
           p.budget::float8, p.status, p.created_at, p.updated_at
    FROM projects p
    JOIN clients c ON c.id = p.client_id`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	if err := row.Scan(&p.ID, &p.ClientID, &p.ClientName, &p.Name, &p.Description, &p.StartDate, &p.EndDate,
		&p.Budget, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func whereClause(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		where += fmt.Sprintf(" AND p.client_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	return where, args
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Project, error) {
	where, args := whereClause(filter)
	query := projectSelect + where + fmt.Sprintf(" ORDER BY p.start_date DESC, p.name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := whereClause(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM projects p"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) Get(ctx context.Context, id string) (*Project, error) {
	return scanProject(s.DB.QueryRow(ctx, projectSelect+" WHERE p.id = $1", id))
}

func (s *Store) Create(ctx context.Context, p Project) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO projects (client_id, name, description, start_date, end_date, budget, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, p.ClientID, p.Name, p.Description, p.StartDate, p.EndDate, p.Budget, p.Status).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, p Project) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE projects
    SET client_id = $2, name = $3, description = $4, start_date = $5, end_date = $6,
        budget = $7, status = $8, updated_at = now()
    WHERE id = $1
  `, p.ID, p.ClientID, p.Name, p.Description, p.StartDate, p.EndDate, p.Budget, p.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) HoursCount(ctx context.Context, id string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM working_hours WHERE project_id = $1", id).Scan(&count)
	return count, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
