package coinset

// SpendBundle is a set of coin spends travelling with an aggregated
// signature blob. The signature is opaque to the engine: bundles carrying a
// partial signature are representable and only the ledger decides whether
// the aggregate verifies.
type SpendBundle struct {
	CoinSpends          []CoinSpend `json:"coinSpends" codec:"coin_spends"`
	AggregatedSignature []byte      `json:"aggregatedSignature" codec:"aggregated_signature"`
}

// AggregateBundles concatenates the spends and signature blobs of the given
// bundles, in order.
func AggregateBundles(bundles ...SpendBundle) SpendBundle {
	var out SpendBundle
	for _, b := range bundles {
		out.CoinSpends = append(out.CoinSpends, b.CoinSpends...)
		out.AggregatedSignature = append(out.AggregatedSignature, b.AggregatedSignature...)
	}
	return out
}

// Removals returns the coins consumed by the bundle.
func (sb SpendBundle) Removals() []Coin {
	removals := make([]Coin, 0, len(sb.CoinSpends))
	for _, cs := range sb.CoinSpends {
		removals = append(removals, cs.Coin)
	}
	return removals
}

// Additions returns the coins created by the bundle.
func (sb SpendBundle) Additions() []Coin {
	var additions []Coin
	for _, cs := range sb.CoinSpends {
		additions = append(additions, cs.Additions()...)
	}
	return additions
}

// NotEphemeralRemovals returns the removals that must already exist on the
// ledger: those whose parent is not itself spent by this bundle.
func (sb SpendBundle) NotEphemeralRemovals() []Coin {
	removalIDs := make(map[Hash]struct{})
	for _, c := range sb.Removals() {
		removalIDs[c.ID()] = struct{}{}
	}
	var out []Coin
	for _, c := range sb.Removals() {
		if _, ok := removalIDs[c.ParentCoinID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// NotEphemeralAdditions returns the additions that survive the bundle:
// those not consumed again by one of its own spends.
func (sb SpendBundle) NotEphemeralAdditions() []Coin {
	removalIDs := make(map[Hash]struct{})
	for _, c := range sb.Removals() {
		removalIDs[c.ID()] = struct{}{}
	}
	var out []Coin
	for _, c := range sb.Additions() {
		if _, ok := removalIDs[c.ID()]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Announcements returns every puzzle announcement emitted by the bundle.
func (sb SpendBundle) Announcements() []Announcement {
	var anns []Announcement
	for _, cs := range sb.CoinSpends {
		anns = append(anns, cs.Announcements()...)
	}
	return anns
}

// Fees returns the value consumed minus the value created. A partial bundle
// can come out negative.
func (sb SpendBundle) Fees() int64 {
	var fees int64
	for _, c := range sb.Removals() {
		fees += int64(c.Amount)
	}
	for _, c := range sb.Additions() {
		fees -= int64(c.Amount)
	}
	return fees
}

// Name returns the content hash of the bundle.
func (sb SpendBundle) Name() (Hash, error) {
	return HashOf(sb)
}
