package domain

import (
	"time"

	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// TransactionRecord is a derived, wallet-facing view of value movement. It
// is bookkeeping only: trade statuses are never decided from transaction
// records.
type TransactionRecord struct {
	Name              string
	CreatedAt         int64
	ToPuzzleHash      coinset.Hash
	Amount            uint64
	FeeAmount         uint64
	Confirmed         bool
	ConfirmedAtHeight uint32
	Additions         []coinset.Coin
	Removals          []coinset.Coin
	WalletID          uint32
	TradeID           string
	Type              TransactionType
	Bundle            *coinset.SpendBundle
	Memos             [][]byte
}

// NewTransactionRecord fills the bookkeeping boilerplate shared by every
// derived record.
func NewTransactionRecord(
	name string, txType TransactionType, walletID uint32, tradeID string,
) *TransactionRecord {
	return &TransactionRecord{
		Name:      name,
		CreatedAt: time.Now().Unix(),
		WalletID:  walletID,
		TradeID:   tradeID,
		Type:      txType,
	}
}

// Confirm marks the record as included at the given height. Re-confirming
// is a no-op.
func (tx *TransactionRecord) Confirm(height uint32) bool {
	if tx.Confirmed {
		return false
	}
	tx.Confirmed = true
	tx.ConfirmedAtHeight = height
	return true
}

// IsBroadcastable returns whether the record carries a bundle that still
// needs to reach the ledger.
func (tx *TransactionRecord) IsBroadcastable() bool {
	return tx.Bundle != nil && !tx.Confirmed
}
