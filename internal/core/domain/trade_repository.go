package domain

import (
	"context"
)

// TradeRepository is the abstraction for any kind of database intended to
// persist TradeRecords.
type TradeRepository interface {
	// AddTrade stores a new trade, failing if its id is already known.
	AddTrade(ctx context.Context, trade *TradeRecord) error
	// GetTrade returns the trade with the given id, or ErrTradeNotFound.
	GetTrade(ctx context.Context, tradeID string) (*TradeRecord, error)
	// GetAllTrades returns all the trades stored in the repository.
	GetAllTrades(ctx context.Context) ([]*TradeRecord, error)
	// GetTradesByStatus returns all the trades in the given status.
	GetTradesByStatus(ctx context.Context, status TradeStatus) ([]*TradeRecord, error)
	// UpdateTrade allows to commit multiple changes to the same trade in a
	// transactional way. The update function receives the current record and
	// returns the one to persist.
	UpdateTrade(
		ctx context.Context,
		tradeID string,
		updateFn func(t *TradeRecord) (*TradeRecord, error),
	) error
}
