package ports

import (
	"context"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// WalletType distinguishes the wallet holding the native currency from the
// ones driving tokenized assets.
type WalletType int

const (
	WalletTypeStandard WalletType = iota
	WalletTypeAsset
)

// Wallet is the minimal surface every registered wallet exposes. Richer
// behaviour is modeled as optional capabilities discovered by type
// assertion, so integrating a new asset only requires implementing the
// interfaces its puzzles can honor.
type Wallet interface {
	// ID returns the registry-unique wallet id.
	ID() uint32
	// Type returns the wallet kind.
	Type() WalletType
	// NewPuzzleHash derives a fresh puzzle hash owned by the wallet.
	NewPuzzleHash(ctx context.Context) (coinset.Hash, error)
}

// AssetIdentifiable is the capability of wallets bound to a single asset.
type AssetIdentifiable interface {
	// AssetID returns the asset the wallet drives.
	AssetID() coinset.Hash
}

// PuzzleInfoProvider is the capability of reporting the driver of an asset
// the wallet understands.
type PuzzleInfoProvider interface {
	// PuzzleInfo returns the driver of the given asset.
	PuzzleInfo(assetID coinset.Hash) (*coinset.PuzzleInfo, error)
}

// Offeror is the capability of contributing one side of an offer.
type Offeror interface {
	Wallet
	// CoinsToOffer selects the coins covering amount, plus fee when the
	// wallet holds the native currency. The selection is advisory until the
	// offer is persisted.
	CoinsToOffer(ctx context.Context, assetID coinset.Hash, amount, fee uint64) ([]coinset.Coin, error)
	// CreateOfferTransactions builds the signed-but-unsettleable spends of
	// the given coins: amount paid to the asset's settlement puzzle, change
	// back to the wallet, asserting the given announcements.
	CreateOfferTransactions(
		ctx context.Context,
		amount uint64,
		coins []coinset.Coin,
		assertions []coinset.Announcement,
		fee uint64,
	) ([]*domain.TransactionRecord, error)
}

// Spender is the capability of building plain signed spends, used by the
// safe cancellation path to re-spend offered coins to self.
type Spender interface {
	Wallet
	// SelectCoins picks spendable coins covering amount, never touching the
	// excluded ones.
	SelectCoins(ctx context.Context, amount uint64, exclude []coinset.Coin) ([]coinset.Coin, error)
	// GenerateSignedTransaction spends the given coins paying each amount to
	// the matching puzzle hash.
	GenerateSignedTransaction(
		ctx context.Context,
		amounts []uint64,
		puzzleHashes []coinset.Hash,
		fee uint64,
		coins []coinset.Coin,
	) ([]*domain.TransactionRecord, error)
}

// PuzzleHashConverter is the capability of resolving an outer puzzle hash to
// the inner one a human would recognize. Wallets without it leave puzzle
// hashes as they appear on chain.
type PuzzleHashConverter interface {
	// ConvertPuzzleHash maps an on-chain puzzle hash to its inner form.
	ConvertPuzzleHash(ctx context.Context, puzzleHash coinset.Hash) (coinset.Hash, error)
}

// PuzzleHashOwner is the capability of recognizing puzzle hashes the wallet
// has derived, including fresh ones no coin has landed on yet. Without it
// ownership is only known through the coin index.
type PuzzleHashOwner interface {
	// OwnsPuzzleHash returns whether the wallet derived the given puzzle hash.
	OwnsPuzzleHash(ctx context.Context, puzzleHash coinset.Hash) (bool, error)
}

// WalletRegistry resolves wallets by the many handles an offer can reference
// them with.
type WalletRegistry interface {
	// MainWallet returns the wallet holding the native currency.
	MainWallet() Wallet
	// Wallets returns every registered wallet.
	Wallets() []Wallet
	// WalletByID returns the wallet with the given id.
	WalletByID(id uint32) (Wallet, bool)
	// WalletForAssetID returns the wallet driving the given asset.
	WalletForAssetID(assetID coinset.Hash) (Wallet, bool)
	// WalletForPuzzleInfo returns the wallet able to drive puzzles described
	// by the given driver.
	WalletForPuzzleInfo(info *coinset.PuzzleInfo) (Wallet, bool)
	// CreateWalletForPuzzleInfo registers a wallet for an asset seen for the
	// first time in a foreign offer.
	CreateWalletForPuzzleInfo(ctx context.Context, info *coinset.PuzzleInfo) (Wallet, error)
	// WalletForCoin returns the wallet owning the given coin, if any.
	WalletForCoin(ctx context.Context, coinID coinset.Hash) (Wallet, bool, error)
	// WalletIDForPuzzleHash returns the wallet owning the given puzzle hash,
	// if any.
	WalletIDForPuzzleHash(ctx context.Context, puzzleHash coinset.Hash) (uint32, bool, error)
}
