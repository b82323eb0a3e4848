// Package coinset models the primitives of a coin-set ledger: coins
// identified by the hash of their parentage, puzzle-locked spends declaring
// conditions, and bundles of spends that stand or fall together.
package coinset

import (
	"encoding/binary"
	"sort"
)

// Coin is an unspent output. Its identity is fully determined by the coin
// that created it, the puzzle hash locking it and its amount.
type Coin struct {
	ParentCoinID Hash   `json:"parentCoinId" codec:"parent_coin_id"`
	PuzzleHash   Hash   `json:"puzzleHash" codec:"puzzle_hash"`
	Amount       uint64 `json:"amount" codec:"amount"`
}

// ID returns the coin id: sha256(parent || puzzle hash || amount), with the
// amount encoded as 8 big-endian bytes.
func (c Coin) ID() Hash {
	var amt [8]byte
	binary.BigEndian.PutUint64(amt[:], c.Amount)
	return HashData(c.ParentCoinID[:], c.PuzzleHash[:], amt[:])
}

func (c Coin) Equal(other Coin) bool {
	return c.ParentCoinID == other.ParentCoinID &&
		c.PuzzleHash == other.PuzzleHash &&
		c.Amount == other.Amount
}

// SortCoins returns a copy of coins ordered by coin id. Canonical coin
// ordering keeps nonces and settlement layouts deterministic.
func SortCoins(coins []Coin) []Coin {
	sorted := make([]Coin, len(coins))
	copy(sorted, coins)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID().Less(sorted[j].ID())
	})
	return sorted
}

// SumCoins adds up the amounts of the given coins.
func SumCoins(coins []Coin) uint64 {
	var total uint64
	for _, c := range coins {
		total += c.Amount
	}
	return total
}

// CoinIDs maps coins to their ids, preserving order.
func CoinIDs(coins []Coin) []Hash {
	ids := make([]Hash, 0, len(coins))
	for _, c := range coins {
		ids = append(ids, c.ID())
	}
	return ids
}
