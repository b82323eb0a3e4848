// Package offer implements the half-signed trade offers exchanged by the
// engine: notarized payment requests bound to a spend bundle that cannot be
// spent alone, plus the aggregation and settlement rules that turn two
// complementary halves into one valid spend.
package offer

import (
	"fmt"

	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// Offer pairs the payments a party requests with the spend bundle offering
// its own coins, and the drivers of every non-native asset involved. The
// value is immutable: operations derive new offers instead of mutating.
type Offer struct {
	requested map[coinset.Hash][]NotarizedPayment
	bundle    coinset.SpendBundle
	drivers   map[coinset.Hash]*coinset.PuzzleInfo
}

// New builds an offer and checks its driver dict: every requested non-native
// asset must come with a driver, and the native asset must not.
func New(
	requested map[coinset.Hash][]NotarizedPayment,
	bundle coinset.SpendBundle,
	drivers map[coinset.Hash]*coinset.PuzzleInfo,
) (*Offer, error) {
	for assetID, driver := range drivers {
		if assetID == NativeAsset {
			return nil, fmt.Errorf("%w: native asset cannot carry a driver", ErrDriverConflict)
		}
		if driver == nil {
			return nil, fmt.Errorf("%w: nil driver for asset %s", ErrMissingDriver, assetID)
		}
	}
	for assetID := range requested {
		if assetID == NativeAsset {
			continue
		}
		if _, ok := drivers[assetID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingDriver, assetID)
		}
	}

	return &Offer{
		requested: copyRequested(requested),
		bundle:    bundle,
		drivers:   copyDrivers(drivers),
	}, nil
}

func copyRequested(
	requested map[coinset.Hash][]NotarizedPayment,
) map[coinset.Hash][]NotarizedPayment {
	out := make(map[coinset.Hash][]NotarizedPayment, len(requested))
	for assetID, payments := range requested {
		group := make([]NotarizedPayment, len(payments))
		copy(group, payments)
		out[assetID] = group
	}
	return out
}

func copyDrivers(
	drivers map[coinset.Hash]*coinset.PuzzleInfo,
) map[coinset.Hash]*coinset.PuzzleInfo {
	out := make(map[coinset.Hash]*coinset.PuzzleInfo, len(drivers))
	for assetID, driver := range drivers {
		out[assetID] = driver
	}
	return out
}

// Requested returns a copy of the notarized payments, keyed by asset.
func (o *Offer) Requested() map[coinset.Hash][]NotarizedPayment {
	return copyRequested(o.requested)
}

// Drivers returns a copy of the driver dict.
func (o *Offer) Drivers() map[coinset.Hash]*coinset.PuzzleInfo {
	return copyDrivers(o.drivers)
}

// Bundle returns the offer's spend bundle.
func (o *Offer) Bundle() coinset.SpendBundle {
	return o.bundle
}

// Name returns the offer's content hash, used as the trade id.
func (o *Offer) Name() (coinset.Hash, error) {
	buf, err := o.Bytes()
	if err != nil {
		return coinset.Hash{}, err
	}
	return coinset.HashData(buf), nil
}

// OfferedCoins returns the settlement coins the bundle creates, grouped by
// asset and sorted by coin id. These are the coins the counterparty claims.
func (o *Offer) OfferedCoins() (map[coinset.Hash][]coinset.Coin, error) {
	settlementHashes := make(map[coinset.Hash]coinset.Hash)
	settlementHashes[SettlementPuzzleHash] = NativeAsset
	for assetID, driver := range o.drivers {
		ph, err := coinset.OuterPuzzleHash(driver, SettlementReveal)
		if err != nil {
			return nil, err
		}
		settlementHashes[ph] = assetID
	}

	offered := make(map[coinset.Hash][]coinset.Coin)
	for _, addition := range o.bundle.Additions() {
		assetID, ok := settlementHashes[addition.PuzzleHash]
		if !ok {
			continue
		}
		offered[assetID] = append(offered[assetID], addition)
	}
	for assetID, coins := range offered {
		offered[assetID] = coinset.SortCoins(coins)
	}
	return offered, nil
}

// OfferedAmounts sums the offered settlement coins per asset.
func (o *Offer) OfferedAmounts() (map[coinset.Hash]uint64, error) {
	offered, err := o.OfferedCoins()
	if err != nil {
		return nil, err
	}
	amounts := make(map[coinset.Hash]uint64, len(offered))
	for assetID, coins := range offered {
		amounts[assetID] = coinset.SumCoins(coins)
	}
	return amounts, nil
}

// RequestedAmounts sums the requested payments per asset.
func (o *Offer) RequestedAmounts() map[coinset.Hash]uint64 {
	amounts := make(map[coinset.Hash]uint64, len(o.requested))
	for assetID, payments := range o.requested {
		var total uint64
		for _, p := range payments {
			total += p.Amount
		}
		amounts[assetID] = total
	}
	return amounts
}

// Arbitrage returns, per asset, offered minus requested. From a taker's
// perspective a negative entry is what taking the offer costs and a
// positive one what it pays.
func (o *Offer) Arbitrage() (map[coinset.Hash]int64, error) {
	offered, err := o.OfferedAmounts()
	if err != nil {
		return nil, err
	}
	requested := o.RequestedAmounts()

	out := make(map[coinset.Hash]int64, len(offered)+len(requested))
	for assetID, amount := range offered {
		out[assetID] += int64(amount)
	}
	for assetID, amount := range requested {
		out[assetID] -= int64(amount)
	}
	return out, nil
}

// IsValid reports whether the offer balances: every asset's offered total
// matches its requested total, which only happens once complementary halves
// have been aggregated.
func (o *Offer) IsValid() (bool, error) {
	arbitrage, err := o.Arbitrage()
	if err != nil {
		return false, err
	}
	for _, delta := range arbitrage {
		if delta != 0 {
			return false, nil
		}
	}
	return true, nil
}

// RootRemoval walks a coin's parentage inside the bundle up to the removal
// that already lived on the ledger before this offer.
func (o *Offer) RootRemoval(coin coinset.Coin) (coinset.Coin, error) {
	removals := o.bundle.Removals()
	removalByID := make(map[coinset.Hash]coinset.Coin, len(removals))
	for _, c := range removals {
		removalByID[c.ID()] = c
	}
	nonEphemeral := make(map[coinset.Hash]struct{})
	for _, c := range o.bundle.NotEphemeralRemovals() {
		nonEphemeral[c.ID()] = struct{}{}
	}

	if _, isRemoval := removalByID[coin.ID()]; !isRemoval {
		if _, parentSpent := removalByID[coin.ParentCoinID]; !parentSpent {
			return coinset.Coin{}, fmt.Errorf("%w: %s", ErrCoinNotInBundle, coin.ID())
		}
	}

	for {
		if _, ok := nonEphemeral[coin.ID()]; ok {
			return coin, nil
		}
		parent, ok := removalByID[coin.ParentCoinID]
		if !ok {
			return coinset.Coin{}, fmt.Errorf("%w: broken parentage at %s", ErrCoinNotInBundle, coin.ID())
		}
		coin = parent
	}
}

// PrimaryCoins returns the pre-existing coins each offered settlement coin
// descends from, deduplicated and sorted by coin id. These are the coins a
// maker re-spends to cancel.
func (o *Offer) PrimaryCoins() ([]coinset.Coin, error) {
	offered, err := o.OfferedCoins()
	if err != nil {
		return nil, err
	}

	roots := make(map[coinset.Hash]coinset.Coin)
	for _, coins := range offered {
		for _, c := range coins {
			root, err := o.RootRemoval(c)
			if err != nil {
				return nil, err
			}
			roots[root.ID()] = root
		}
	}

	out := make([]coinset.Coin, 0, len(roots))
	for _, c := range roots {
		out = append(out, c)
	}
	return coinset.SortCoins(out), nil
}

// InvolvedCoins returns every coin the bundle removes or creates, the set a
// watcher must monitor to learn the offer's fate.
func (o *Offer) InvolvedCoins() []coinset.Coin {
	removals := o.bundle.Removals()
	seen := make(map[coinset.Hash]struct{}, len(removals))
	out := make([]coinset.Coin, 0, len(removals))
	for _, c := range removals {
		if _, ok := seen[c.ID()]; ok {
			continue
		}
		seen[c.ID()] = struct{}{}
		out = append(out, c)
	}
	for _, c := range o.bundle.Additions() {
		if _, ok := seen[c.ID()]; ok {
			continue
		}
		seen[c.ID()] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Aggregate merges offers into one: requested payment groups append per
// asset, bundles concatenate, drivers must agree asset by asset.
func Aggregate(offers ...*Offer) (*Offer, error) {
	requested := make(map[coinset.Hash][]NotarizedPayment)
	drivers := make(map[coinset.Hash]*coinset.PuzzleInfo)
	bundles := make([]coinset.SpendBundle, 0, len(offers))

	for _, o := range offers {
		for assetID, driver := range o.drivers {
			if existing, ok := drivers[assetID]; ok {
				if !existing.Equal(driver) {
					return nil, fmt.Errorf("%w: %s", ErrDriverConflict, assetID)
				}
				continue
			}
			drivers[assetID] = driver
		}
		for assetID, payments := range o.requested {
			requested[assetID] = append(requested[assetID], payments...)
		}
		bundles = append(bundles, o.bundle)
	}

	return New(requested, coinset.AggregateBundles(bundles...), drivers)
}
