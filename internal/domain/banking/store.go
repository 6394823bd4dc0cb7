package banking

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/timecalc"
	cryptoutil "workforce/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const accountColumns = `id, bank_name, account_name, account_number_enc, opening_balance::float8,
           currency, status, created_at, updated_at`

func (s *Store) scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var numberEnc []byte
	if err := row.Scan(&a.ID, &a.BankName, &a.AccountName, &numberEnc, &a.OpeningBalance,
		&a.Currency, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	number, err := s.Crypto.DecryptString(numberEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt account number: %w", err)
	}
	a.AccountNumber = number
	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context, status string) ([]Account, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+accountColumns+`
    FROM bank_accounts
    WHERE ($1 = '' OR status = $1)
    ORDER BY bank_name, account_name
  `, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := s.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.scanAccount(s.DB.QueryRow(ctx, "SELECT "+accountColumns+" FROM bank_accounts WHERE id = $1", id))
}

func (s *Store) CreateAccount(ctx context.Context, a Account) (string, error) {
	numberEnc, err := s.Crypto.EncryptString(a.AccountNumber)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO bank_accounts (bank_name, account_name, account_number_enc, opening_balance, currency, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, a.BankName, a.AccountName, numberEnc, a.OpeningBalance, a.Currency, a.Status).Scan(&id)
	return id, err
}

func (s *Store) UpdateAccount(ctx context.Context, a Account) error {
	numberEnc, err := s.Crypto.EncryptString(a.AccountNumber)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE bank_accounts
    SET bank_name = $2, account_name = $3, account_number_enc = $4, opening_balance = $5,
        currency = $6, status = $7, updated_at = now()
    WHERE id = $1
  `, a.ID, a.BankName, a.AccountName, numberEnc, a.OpeningBalance, a.Currency, a.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) Movements(ctx context.Context, accountID string) ([]timecalc.Movement, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT type, COALESCE(SUM(amount), 0)::float8
    FROM bank_transactions
    WHERE account_id = $1
    GROUP BY type
  `, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timecalc.Movement
	for rows.Next() {
		var m timecalc.Movement
		if err := rows.Scan(&m.Kind, &m.Amount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func txWhere(filter TxFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		where += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND tx_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND tx_date <= $%d", len(args))
	}
	return where, args
}

const txColumns = `id, account_id, type, category, amount::float8, tx_date, description, reference,
           COALESCE(client_id::text, ''), COALESCE(profile_id::text, ''),
           COALESCE(payroll_id::text, ''), COALESCE(created_by::text, ''), created_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	if err := row.Scan(&t.ID, &t.AccountID, &t.Type, &t.Category, &t.Amount, &t.Date, &t.Description,
		&t.Reference, &t.ClientID, &t.ProfileID, &t.PayrollID, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter TxFilter, limit, offset int) ([]Transaction, error) {
	where, args := txWhere(filter)
	query := "SELECT " + txColumns + " FROM bank_transactions" + where +
		fmt.Sprintf(" ORDER BY tx_date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) CountTransactions(ctx context.Context, filter TxFilter) (int, error) {
	where, args := txWhere(filter)
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM bank_transactions"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	return scanTransaction(s.DB.QueryRow(ctx, "SELECT "+txColumns+" FROM bank_transactions WHERE id = $1", id))
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (s *Store) CreateTransaction(ctx context.Context, t Transaction) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO bank_transactions (account_id, type, category, amount, tx_date, description,
                                   reference, client_id, profile_id, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, t.AccountID, t.Type, t.Category, t.Amount, t.Date, t.Description,
		t.Reference, nullable(t.ClientID), nullable(t.ProfileID), nullable(t.CreatedBy)).Scan(&id)
	return id, err
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM bank_transactions WHERE id = $1 AND payroll_id IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPayrollLinked
	}
	return nil
}
