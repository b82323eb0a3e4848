package ports

import (
	"context"

	"github.com/odex-network/odex-daemon/internal/core/domain"
)

// PendingTxSink collects the transaction records produced while building and
// settling offers, and owns their broadcast to the network.
type PendingTxSink interface {
	// AddPendingTransaction persists the record and pushes its bundle to the
	// network.
	AddPendingTransaction(ctx context.Context, tx *domain.TransactionRecord) error
	// AddTransaction persists the record without broadcasting.
	AddTransaction(ctx context.Context, tx *domain.TransactionRecord) error
	// DeleteTradeTransactions drops every record attached to the trade.
	DeleteTradeTransactions(ctx context.Context, tradeID string) error
	// ConfirmTradeTransactions marks every record attached to the trade as
	// confirmed at the given height.
	ConfirmTradeTransactions(ctx context.Context, tradeID string, height uint32) error
	// RebroadcastPending pushes every broadcastable record to the network
	// again. Safe to call on a ticker.
	RebroadcastPending(ctx context.Context) error
}
