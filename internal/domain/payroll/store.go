package payroll

import (
	"context"
	"errors"
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

const recordSelect = `
    SELECT r.id, r.profile_id, p.full_name, r.period_start, r.period_end,
           r.total_hours::float8, r.overtime_hours::float8, r.hourly_rate::float8,
           r.gross_pay::float8, r.deductions::float8, r.net_pay::float8,
           r.status, r.payment_date, COALESCE(r.bank_account_id::text, ''),
           COALESCE(r.bank_transaction_id::text, ''), r.payslip_key, r.created_at, r.updated_at
    FROM payroll r
    JOIN profiles p ON p.id = r.profile_id`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	if err := row.Scan(&r.ID, &r.ProfileID, &r.ProfileName, &r.PeriodStart, &r.PeriodEnd,
		&r.TotalHours, &r.OvertimeHours, &r.HourlyRate,
		&r.GrossPay, &r.Deductions, &r.NetPay,
		&r.Status, &r.PaymentDate, &r.BankAccountID,
		&r.BankTransactionID, &r.PayslipKey, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.NegativeNet = r.NetPay < 0
	return &r, nil
}

func whereClause(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.ProfileID != "" {
		args = append(args, filter.ProfileID)
		where += fmt.Sprintf(" AND r.profile_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND r.period_end >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND r.period_start <= $%d", len(args))
	}
	return where, args
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, error) {
	where, args := whereClause(filter)
	query := recordSelect + where + fmt.Sprintf(" ORDER BY r.period_start DESC, p.full_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
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
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payroll r"+where, args...).Scan(&total)
	return total, err
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, recordSelect+" WHERE r.id = $1", id))
}

func (s *Store) FindByPeriod(ctx context.Context, profileID string, start, end time.Time) (*Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, recordSelect+`
    WHERE r.profile_id = $1 AND r.period_start = $2 AND r.period_end = $3
  `, profileID, start, end))
}

func (s *Store) ProfilesWithApprovedHours(ctx context.Context, start, end time.Time, profileID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT w.profile_id::text
    FROM working_hours w
    JOIN profiles p ON p.id = w.profile_id
    WHERE w.status = 'approved'
      AND w.work_date BETWEEN $1 AND $2
      AND p.status = 'active'
      AND ($3 = '' OR w.profile_id::text = $3)
    ORDER BY 1
  `, start, end, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) ApprovedHours(ctx context.Context, profileID string, start, end time.Time) ([]HoursLine, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT actual_hours::float8, overtime_hours::float8, payable_amount::float8
    FROM working_hours
    WHERE profile_id = $1 AND status = 'approved' AND work_date BETWEEN $2 AND $3
    ORDER BY work_date
  `, profileID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HoursLine
	for rows.Next() {
		var l HoursLine
		if err := rows.Scan(&l.ActualHours, &l.OvertimeHours, &l.PayableAmount); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, r Record) (string, bool, error) {
	var id string
	var inserted bool
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll (profile_id, period_start, period_end, total_hours, overtime_hours,
                         hourly_rate, gross_pay, deductions, net_pay, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending')
    ON CONFLICT (profile_id, period_start, period_end) DO UPDATE
      SET total_hours = EXCLUDED.total_hours,
          overtime_hours = EXCLUDED.overtime_hours,
          hourly_rate = EXCLUDED.hourly_rate,
          gross_pay = EXCLUDED.gross_pay,
          net_pay = EXCLUDED.net_pay,
          updated_at = now()
      WHERE payroll.status = 'pending'
    RETURNING id, (xmax = 0)
  `, r.ProfileID, r.PeriodStart, r.PeriodEnd, r.TotalHours, r.OvertimeHours,
		r.HourlyRate, r.GrossPay, r.Deductions, r.NetPay).Scan(&id, &inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, ErrNotPending
	}
	return id, inserted, err
}

func (s *Store) UpdateAmounts(ctx context.Context, r Record) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll
    SET deductions = $2, net_pay = $3, updated_at = now()
    WHERE id = $1 AND status = 'pending'
  `, r.ID, r.Deductions, r.NetPay)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll SET status = $3, updated_at = now()
    WHERE id = $1 AND status = $2
  `, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM payroll WHERE id = $1 AND status = 'pending'", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkPaid(ctx context.Context, p Payment) (string, error) {
	var txID string
	err := pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		var status string
		if err := tx.QueryRow(ctx, "SELECT status FROM payroll WHERE id = $1 FOR UPDATE", p.PayrollID).Scan(&status); err != nil {
			return err
		}
		if status != StatusApproved {
			return ErrNotApproved
		}

		var accountStatus string
		err := tx.QueryRow(ctx, "SELECT status FROM bank_accounts WHERE id = $1", p.BankAccountID).Scan(&accountStatus)
		if errors.Is(err, pgx.ErrNoRows) || (err == nil && accountStatus != "active") {
			return ErrBankAccountUnknown
		}
		if err != nil {
			return err
		}

		var actor any
		if p.ActorID != "" {
			actor = p.ActorID
		}
		if err := tx.QueryRow(ctx, `
      INSERT INTO bank_transactions (account_id, type, category, amount, tx_date, description,
                                     reference, profile_id, payroll_id, created_by)
      VALUES ($1,'withdrawal',$2,$3,$4,$5,$6,$7,$8,$9)
      RETURNING id
    `, p.BankAccountID, TransactionCategoryPayroll, p.Amount, p.PaymentDate, p.Description,
			p.Reference, p.ProfileID, p.PayrollID, actor).Scan(&txID); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
      UPDATE payroll
      SET status = 'paid', payment_date = $2, bank_account_id = $3, bank_transaction_id = $4, updated_at = now()
      WHERE id = $1
    `, p.PayrollID, p.PaymentDate, p.BankAccountID, txID)
		return err
	})
	return txID, err
}

func (s *Store) PayslipData(ctx context.Context, id string) (PayslipData, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return PayslipData{}, err
	}
	data := PayslipData{Record: *r}
	err = s.DB.QueryRow(ctx, `
    SELECT email, designation, bank_name FROM profiles WHERE id = $1
  `, r.ProfileID).Scan(&data.Email, &data.Designation, &data.BankName)
	return data, err
}

func (s *Store) SetPayslipKey(ctx context.Context, id, key string) error {
	_, err := s.DB.Exec(ctx, "UPDATE payroll SET payslip_key = $2 WHERE id = $1", id, key)
	return err
}
