package ports

import (
	"context"

	"github.com/odex-network/odex-daemon/internal/core/domain"
)

// RepoManager interface defines the methods for trades, transactions and coins.
type RepoManager interface {
	TradeRepository() domain.TradeRepository
	TransactionRepository() domain.TransactionRepository
	CoinRepository() domain.CoinRepository

	Close()

	NewTransaction() Transaction
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)
}

// Transaction interface defines the method to commit or discard a database transaction.
type Transaction interface {
	Commit() error
	Discard()
}
