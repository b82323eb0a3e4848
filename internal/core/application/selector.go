package application

import (
	"fmt"
	"sort"

	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// Selector identifies one side of an offer term: either a registered wallet
// or a bare asset id. Asset selectors let a party request assets it has no
// wallet for yet, as long as a driver is supplied.
type Selector struct {
	walletID uint32
	assetID  coinset.Hash
	byAsset  bool
}

// WalletSelector addresses an offer term to a registered wallet.
func WalletSelector(walletID uint32) Selector {
	return Selector{walletID: walletID}
}

// AssetSelector addresses an offer term to an asset id.
func AssetSelector(assetID coinset.Hash) Selector {
	return Selector{assetID: assetID, byAsset: true}
}

// IsAsset returns whether the selector addresses an asset id.
func (s Selector) IsAsset() bool {
	return s.byAsset
}

// WalletID returns the addressed wallet id. Only meaningful when IsAsset is
// false.
func (s Selector) WalletID() uint32 {
	return s.walletID
}

// AssetID returns the addressed asset id. Only meaningful when IsAsset is
// true.
func (s Selector) AssetID() coinset.Hash {
	return s.assetID
}

func (s Selector) String() string {
	if s.byAsset {
		return fmt.Sprintf("asset:%s", s.assetID)
	}
	return fmt.Sprintf("wallet:%d", s.walletID)
}

// less orders wallet selectors by ascending id before asset selectors by
// ascending asset id. Offer construction iterates terms in this order, which
// also fixes the fee owner: the first offered selector absorbs the fee.
func (s Selector) less(other Selector) bool {
	if s.byAsset != other.byAsset {
		return !s.byAsset
	}
	if s.byAsset {
		return s.assetID.Less(other.assetID)
	}
	return s.walletID < other.walletID
}

// sortedSelectors returns the term keys in canonical order.
func sortedSelectors(terms map[Selector]int64) []Selector {
	selectors := make([]Selector, 0, len(terms))
	for sel := range terms {
		selectors = append(selectors, sel)
	}
	sort.Slice(selectors, func(i, j int) bool {
		return selectors[i].less(selectors[j])
	})
	return selectors
}
