package explorer

import (
	"context"
	"errors"

	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// ErrCoinNotFound is returned when the node has never seen the requested
// coin.
var ErrCoinNotFound = errors.New("coin not found")

// CoinState is the lifecycle of a coin as reported by a full node: the coin
// itself, the height it was created at and, once consumed, the height it was
// spent at.
type CoinState struct {
	Coin          coinset.Coin `json:"coin"`
	CreatedHeight uint32       `json:"created_height"`
	SpentHeight   *uint32      `json:"spent_height,omitempty"`
}

// IsSpent returns whether the coin has been consumed.
func (s CoinState) IsSpent() bool {
	return s.SpentHeight != nil
}

// Service is representation of a full node that allows to fetch the
// lifecycle of coins, to broadcast spend bundles and to inspect the chain
// tip.
type Service interface {
	// GetCoinState fetches the state of the coin with the given id, or
	// ErrCoinNotFound if the node does not know it.
	GetCoinState(ctx context.Context, coinID coinset.Hash) (*CoinState, error)
	// GetCoinStates fetches the states of the given coins. Unknown coins are
	// skipped, not errors. A positive forkHeight tells the node to serve
	// state consistent with a recent reorg at that height.
	GetCoinStates(
		ctx context.Context, coinIDs []coinset.Hash, forkHeight uint32,
	) ([]CoinState, error)
	// GetCoinsByPuzzleHash fetches every coin locked by the given puzzle
	// hash, optionally including the already spent ones.
	GetCoinsByPuzzleHash(
		ctx context.Context, puzzleHash coinset.Hash, includeSpent bool,
	) ([]CoinState, error)
	// BroadcastBundle attempts to add the given bundle to the mempool and
	// returns its name.
	BroadcastBundle(
		ctx context.Context, bundle *coinset.SpendBundle,
	) (coinset.Hash, error)
	// GetBlockHeight returns the height of the chain tip.
	GetBlockHeight(ctx context.Context) (uint32, error)
}
