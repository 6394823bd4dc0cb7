package banking

import "time"

type Account struct {
	ID             string    `json:"id"`
	BankName       string    `json:"bankName"`
	AccountName    string    `json:"accountName"`
	AccountNumber  string    `json:"accountNumber,omitempty"`
	OpeningBalance float64   `json:"openingBalance"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	Balance        *float64  `json:"balance,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Transaction struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	ClientID    string    `json:"clientId,omitempty"`
	ProfileID   string    `json:"profileId,omitempty"`
	PayrollID   string    `json:"payrollId,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TxFilter struct {
	AccountID string
	Type      string
	Category  string
	From      time.Time
	To        time.Time
}

type AccountBalance struct {
	AccountID   string  `json:"accountId"`
	AccountName string  `json:"accountName"`
	BankName    string  `json:"bankName"`
	Currency    string  `json:"currency"`
	Opening     float64 `json:"openingBalance"`
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
	Balance     float64 `json:"balance"`
}

// CurrencyTotal sums the accounts held in one currency.
type CurrencyTotal struct {
	Currency    string  `json:"currency"`
	Accounts    int     `json:"accounts"`
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
	Balance     float64 `json:"balance"`
}

// Summary carries per-account balances and per-currency totals. The flat
// totals cover only accounts in Currency.
type Summary struct {
	Accounts    []AccountBalance `json:"accounts"`
	ByCurrency  []CurrencyTotal  `json:"byCurrency"`
	Currency    string           `json:"currency"`
	Deposits    float64          `json:"deposits"`
	Withdrawals float64          `json:"withdrawals"`
	Balance     float64          `json:"balance"`
}
