package domain

import "context"

// TransactionRepository is the abstraction for any kind of database intended
// to persist TransactionRecords.
type TransactionRepository interface {
	// AddTransaction stores a new record, replacing any previous one with
	// the same name.
	AddTransaction(ctx context.Context, tx *TransactionRecord) error
	// GetTransaction returns the record with the given name, or
	// ErrTransactionNotFound.
	GetTransaction(ctx context.Context, name string) (*TransactionRecord, error)
	// GetTransactionsForTrade returns all the records attached to a trade.
	GetTransactionsForTrade(ctx context.Context, tradeID string) ([]*TransactionRecord, error)
	// GetPendingTransactions returns the records carrying a bundle that has
	// not confirmed yet, the rebroadcast set.
	GetPendingTransactions(ctx context.Context) ([]*TransactionRecord, error)
	// ConfirmTransactionsForTrade marks all of a trade's records as included
	// at the given height.
	ConfirmTransactionsForTrade(ctx context.Context, tradeID string, height uint32) error
	// DeleteTransactionsForTrade drops all of a trade's unconfirmed records.
	DeleteTransactionsForTrade(ctx context.Context, tradeID string) error
}
