package banking

import (
	"context"

	"workforce/internal/domain/timecalc"
)

type StoreAPI interface {
	ListAccounts(ctx context.Context, status string) ([]Account, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	CreateAccount(ctx context.Context, a Account) (string, error)
	UpdateAccount(ctx context.Context, a Account) error
	// Movements aggregates an account's transactions per type.
	Movements(ctx context.Context, accountID string) ([]timecalc.Movement, error)
	ListTransactions(ctx context.Context, filter TxFilter, limit, offset int) ([]Transaction, error)
	CountTransactions(ctx context.Context, filter TxFilter) (int, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	CreateTransaction(ctx context.Context, t Transaction) (string, error)
	DeleteTransaction(ctx context.Context, id string) error
}
