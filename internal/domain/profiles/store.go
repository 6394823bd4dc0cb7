package profiles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "workforce/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const profileColumns = `id, email, full_name, role, employment_type, hourly_rate::float8,
           phone, address, designation, bank_name, bank_account_enc, bank_bsb,
           status, mfa_enabled, last_login, created_at, updated_at`

func (s *Store) scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	var bankEnc []byte
	if err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.Role, &p.EmploymentType, &p.HourlyRate,
		&p.Phone, &p.Address, &p.Designation, &p.BankName, &bankEnc, &p.BankBSB,
		&p.Status, &p.MFAEnabled, &p.LastLogin, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account, err := s.Crypto.DecryptString(bankEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt bank account: %w", err)
	}
	p.BankAccount = account
	return &p, nil
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Profile, error) {
	query, args := buildFilter("SELECT "+profileColumns, filter)
	query += fmt.Sprintf(" ORDER BY full_name, email LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := s.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildFilter("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildFilter(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM profiles WHERE 1=1"
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}
	return query, args
}

func (s *Store) Get(ctx context.Context, id string) (*Profile, error) {
	return s.scanProfile(s.DB.QueryRow(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id))
}

func (s *Store) Create(ctx context.Context, p Profile, passwordHash string) (string, error) {
	bankEnc, err := s.Crypto.EncryptString(p.BankAccount)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO profiles (email, password_hash, full_name, role, employment_type, hourly_rate,
                          phone, address, designation, bank_name, bank_account_enc, bank_bsb, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id
  `, p.Email, passwordHash, p.FullName, p.Role, p.EmploymentType, p.HourlyRate,
		p.Phone, p.Address, p.Designation, p.BankName, bankEnc, p.BankBSB, p.Status).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, p Profile) error {
	bankEnc, err := s.Crypto.EncryptString(p.BankAccount)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE profiles
    SET full_name = $2, role = $3, employment_type = $4, hourly_rate = $5,
        phone = $6, address = $7, designation = $8, bank_name = $9,
        bank_account_enc = $10, bank_bsb = $11, status = $12, updated_at = now()
    WHERE id = $1
  `, p.ID, p.FullName, p.Role, p.EmploymentType, p.HourlyRate,
		p.Phone, p.Address, p.Designation, p.BankName, bankEnc, p.BankBSB, p.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE profiles SET status = $2, updated_at = now() WHERE id = $1", id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if status == StatusInactive {
		return s.RevokeSessions(ctx, id)
	}
	return nil
}

func (s *Store) RevokeSessions(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE profile_id = $1 AND revoked_at IS NULL", id)
	return err
}
