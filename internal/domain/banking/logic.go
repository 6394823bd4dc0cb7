package banking

import (
	"slices"
	"strings"

	"workforce/internal/domain/timecalc"
)

func NormalizeAccount(a *Account) error {
	a.BankName = strings.TrimSpace(a.BankName)
	a.AccountName = strings.TrimSpace(a.AccountName)
	a.AccountNumber = strings.ReplaceAll(strings.TrimSpace(a.AccountNumber), " ", "")
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if a.Status == "" {
		a.Status = StatusActive
	}
	switch {
	case a.BankName == "":
		return ErrBankNameRequired
	case a.AccountName == "":
		return ErrAccountNameRequired
	case len(a.Currency) != 3:
		return ErrInvalidCurrency
	case !slices.Contains(AccountStatuses, a.Status):
		return ErrInvalidStatus
	}
	a.OpeningBalance = timecalc.Round2(a.OpeningBalance)
	return nil
}

func NormalizeTransaction(t *Transaction) error {
	t.Description = strings.TrimSpace(t.Description)
	t.Reference = strings.TrimSpace(t.Reference)
	if t.Category == "" {
		t.Category = CategoryOther
	}
	switch {
	case !slices.Contains(TransactionTypes, t.Type):
		return ErrInvalidType
	case !slices.Contains(Categories, t.Category):
		return ErrInvalidCategory
	case t.Amount <= 0:
		return ErrNonPositiveAmount
	case t.Date.IsZero():
		return ErrDateRequired
	case strings.ContainsAny(t.Reference, " \t\n"):
		return ErrInvalidReference
	}
	t.Amount = timecalc.Round2(t.Amount)
	return nil
}

// Movements converts transactions for balance arithmetic.
func Movements(txs []Transaction) []timecalc.Movement {
	out := make([]timecalc.Movement, 0, len(txs))
	for _, t := range txs {
		out = append(out, timecalc.Movement{Kind: t.Type, Amount: t.Amount})
	}
	return out
}

// Settle fills deposits, withdrawals and the closing balance of an account.
func Settle(a AccountBalance, movements []timecalc.Movement) AccountBalance {
	a.Deposits, a.Withdrawals = timecalc.Flows(movements)
	a.Balance = timecalc.Balance(a.Opening, movements)
	return a
}

// Summarize totals the per-account balances by currency. Amounts in
// different currencies are never added together; the flat totals report the
// base currency. Accounts without a currency count as base.
func Summarize(accounts []AccountBalance, base string) Summary {
	s := Summary{Accounts: accounts, Currency: base, ByCurrency: []CurrencyTotal{}}
	index := map[string]int{}
	for _, a := range accounts {
		cur := a.Currency
		if cur == "" {
			cur = base
		}
		i, ok := index[cur]
		if !ok {
			i = len(s.ByCurrency)
			index[cur] = i
			s.ByCurrency = append(s.ByCurrency, CurrencyTotal{Currency: cur})
		}
		t := &s.ByCurrency[i]
		t.Accounts++
		t.Deposits += a.Deposits
		t.Withdrawals += a.Withdrawals
		t.Balance += a.Balance
	}
	for i := range s.ByCurrency {
		t := &s.ByCurrency[i]
		t.Deposits = timecalc.Round2(t.Deposits)
		t.Withdrawals = timecalc.Round2(t.Withdrawals)
		t.Balance = timecalc.Round2(t.Balance)
		if t.Currency == base {
			s.Deposits, s.Withdrawals, s.Balance = t.Deposits, t.Withdrawals, t.Balance
		}
	}
	slices.SortFunc(s.ByCurrency, func(a, b CurrencyTotal) int { return strings.Compare(a.Currency, b.Currency) })
	if s.Accounts == nil {
		s.Accounts = []AccountBalance{}
	}
	return s
}
