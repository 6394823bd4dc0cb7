package clients

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

const clientColumns = "id, company_name, contact_person, email, phone, address, status, created_at, updated_at"

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.CompanyName, &c.ContactPerson, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func buildFilter(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM clients WHERE 1=1"
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (company_name ILIKE $%d OR contact_person ILIKE $%d)", len(args), len(args))
	}
	return query, args
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Client, error) {
	query, args := buildFilter("SELECT "+clientColumns, filter)
	query += fmt.Sprintf(" ORDER BY company_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildFilter("SELECT COUNT(1)", filter)
	var total int
	err := s.DB.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func (s *Store) Get(ctx context.Context, id string) (*Client, error) {
	return scanClient(s.DB.QueryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id))
}

func (s *Store) Create(ctx context.Context, c Client) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO clients (company_name, contact_person, email, phone, address, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, c.CompanyName, c.ContactPerson, c.Email, c.Phone, c.Address, c.Status).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, c Client) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE clients
    SET company_name = $2, contact_person = $3, email = $4, phone = $5, address = $6,
        status = $7, updated_at = now()
    WHERE id = $1
  `, c.ID, c.CompanyName, c.ContactPerson, c.Email, c.Phone, c.Address, c.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) ProjectCount(ctx context.Context, id string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM projects WHERE client_id = $1", id).Scan(&count)
	return count, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
