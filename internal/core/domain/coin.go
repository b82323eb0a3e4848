package domain

import (
	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// CoinRecord indexes a coin owned by one of the registered wallets. The
// index is how the engine tells its own side of an offer from the foreign
// one.
type CoinRecord struct {
	CoinID string
	// PuzzleHash duplicates Coin.PuzzleHash in hex so stores can query it
	// as a plain column.
	PuzzleHash      string
	Coin            coinset.Coin
	WalletID        uint32
	ConfirmedHeight uint32
	SpentHeight     uint32
	Spent           bool
}

// NewCoinRecord indexes a coin under the wallet owning it.
func NewCoinRecord(coin coinset.Coin, walletID, confirmedHeight uint32) *CoinRecord {
	return &CoinRecord{
		CoinID:          coin.ID().String(),
		PuzzleHash:      coin.PuzzleHash.String(),
		Coin:            coin,
		WalletID:        walletID,
		ConfirmedHeight: confirmedHeight,
	}
}

// MarkSpent records the spend height. Re-marking is a no-op.
func (r *CoinRecord) MarkSpent(height uint32) bool {
	if r.Spent {
		return false
	}
	r.Spent = true
	r.SpentHeight = height
	return true
}
