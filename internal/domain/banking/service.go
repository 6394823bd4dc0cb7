package banking

import (
	"context"
	"strings"

	"workforce/internal/domain/timecalc"
	cryptoutil "workforce/internal/platform/crypto"
	"workforce/internal/platform/idx"
)

type Service struct {
	store    StoreAPI
	currency string
}

func NewService(store StoreAPI, currency string) *Service {
	if currency == "" {
		currency = "AUD"
	}
	return &Service{store: store, currency: currency}
}

func mask(a *Account) {
	a.AccountNumber = cryptoutil.MaskAccount(a.AccountNumber)
}

func (s *Service) balance(ctx context.Context, a *Account) error {
	movements, err := s.store.Movements(ctx, a.ID)
	if err != nil {
		return err
	}
	b := timecalc.Balance(a.OpeningBalance, movements)
	a.Balance = &b
	return nil
}

// ListAccounts returns accounts with masked numbers and current balances.
func (s *Service) ListAccounts(ctx context.Context, status string) ([]Account, error) {
	accounts, err := s.store.ListAccounts(ctx, status)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		mask(&accounts[i])
		if err := s.balance(ctx, &accounts[i]); err != nil {
			return nil, err
		}
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

// GetAccount masks the account number unless reveal is set.
func (s *Service) GetAccount(ctx context.Context, id string, reveal bool) (*Account, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reveal {
		mask(a)
	}
	if err := s.balance(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) CreateAccount(ctx context.Context, a Account) (*Account, error) {
	if strings.TrimSpace(a.Currency) == "" {
		a.Currency = s.currency
	}
	if err := NormalizeAccount(&a); err != nil {
		return nil, err
	}
	id, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.GetAccount(ctx, id, false)
}

// UpdateAccount keeps the stored account number when none is supplied.
func (s *Service) UpdateAccount(ctx context.Context, id string, a Account) (*Account, *Account, error) {
	before, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	a.ID = id
	if strings.TrimSpace(a.AccountNumber) == "" {
		a.AccountNumber = before.AccountNumber
	}
	if strings.TrimSpace(a.Currency) == "" {
		a.Currency = before.Currency
	}
	if err := NormalizeAccount(&a); err != nil {
		return nil, nil, err
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return nil, nil, err
	}
	mask(before)
	after, err := s.GetAccount(ctx, id, false)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter TxFilter, limit, offset int) ([]Transaction, int, error) {
	total, err := s.store.CountTransactions(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.store.ListTransactions(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// CreateTransaction books a movement on an active account. A ULID reference
// is assigned when none is supplied.
func (s *Service) CreateTransaction(ctx context.Context, actorID string, t Transaction) (*Transaction, error) {
	if err := NormalizeTransaction(&t); err != nil {
		return nil, err
	}
	account, err := s.store.GetAccount(ctx, t.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Status != StatusActive {
		return nil, ErrAccountInactive
	}
	if t.Reference == "" {
		t.Reference = idx.New()
	}
	t.CreatedBy = actorID
	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return nil, err
	}
	return s.store.GetTransaction(ctx, id)
}

// DeleteTransaction refuses transactions that settled a payroll record.
func (s *Service) DeleteTransaction(ctx context.Context, id string) (*Transaction, error) {
	before, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.PayrollID != "" {
		return nil, ErrPayrollLinked
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return nil, err
	}
	return before, nil
}

func (s *Service) Balance(ctx context.Context, accountID string) (AccountBalance, error) {
	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return AccountBalance{}, err
	}
	movements, err := s.store.Movements(ctx, accountID)
	if err != nil {
		return AccountBalance{}, err
	}
	return Settle(balanceOf(*a), movements), nil
}

// Summary settles every account, active or not, totalled per currency.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	accounts, err := s.store.ListAccounts(ctx, "")
	if err != nil {
		return Summary{}, err
	}
	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		movements, err := s.store.Movements(ctx, a.ID)
		if err != nil {
			return Summary{}, err
		}
		out = append(out, Settle(balanceOf(a), movements))
	}
	return Summarize(out, s.currency), nil
}

func balanceOf(a Account) AccountBalance {
	return AccountBalance{
		AccountID:   a.ID,
		AccountName: a.AccountName,
		BankName:    a.BankName,
		Currency:    a.Currency,
		Opening:     a.OpeningBalance,
	}
}
