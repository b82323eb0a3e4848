package domain

import "context"

// CoinRepository is the engine-side coin index: the coins owned by
// registered wallets, keyed by coin id.
type CoinRepository interface {
	// AddCoins stores the given records, replacing existing ones with the
	// same coin id.
	AddCoins(ctx context.Context, coins []*CoinRecord) error
	// GetCoinsByIDs returns the records matching the given ids. Unknown ids
	// are skipped, not errors: foreign coins are simply not ours.
	GetCoinsByIDs(ctx context.Context, coinIDs []string) ([]*CoinRecord, error)
	// GetCoinsForWallet returns all the records indexed under a wallet.
	GetCoinsForWallet(ctx context.Context, walletID uint32) ([]*CoinRecord, error)
	// GetCoinsByPuzzleHash returns the records paying the given puzzle hash.
	GetCoinsByPuzzleHash(ctx context.Context, puzzleHash string) ([]*CoinRecord, error)
	// MarkCoinsSpent flags the given coin ids as spent at the given height.
	MarkCoinsSpent(ctx context.Context, coinIDs []string, height uint32) error
}
