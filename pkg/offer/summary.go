package offer

import (
	"sort"

	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// AssetSummary reports one asset's totals on both sides of an offer, in
// base units and in display units.
type AssetSummary struct {
	AssetID       coinset.Hash    `json:"assetId"`
	OfferedBase   uint64          `json:"offeredBase"`
	RequestedBase uint64          `json:"requestedBase"`
	Offered       decimal.Decimal `json:"offered"`
	Requested     decimal.Decimal `json:"requested"`
}

// Summary is the human-facing digest of an offer: per-asset totals sorted by
// asset id (native first) and the surplus the bundle leaves as fees.
type Summary struct {
	Assets []AssetSummary `json:"assets"`
	Fees   int64          `json:"fees"`
}

// Summary computes the offer digest shown by the CLI and logged on trade
// events.
func (o *Offer) Summary() (*Summary, error) {
	offered, err := o.OfferedAmounts()
	if err != nil {
		return nil, err
	}
	requested := o.RequestedAmounts()

	seen := make(map[coinset.Hash]struct{}, len(offered)+len(requested))
	assetIDs := make([]coinset.Hash, 0, len(offered)+len(requested))
	for assetID := range offered {
		seen[assetID] = struct{}{}
		assetIDs = append(assetIDs, assetID)
	}
	for assetID := range requested {
		if _, ok := seen[assetID]; !ok {
			assetIDs = append(assetIDs, assetID)
		}
	}
	sort.Slice(assetIDs, func(i, j int) bool { return assetIDs[i].Less(assetIDs[j]) })

	summary := &Summary{Fees: o.bundle.Fees()}
	for _, assetID := range assetIDs {
		display := mathutil.TokenAmount
		if assetID == NativeAsset {
			display = mathutil.NativeAmount
		}
		summary.Assets = append(summary.Assets, AssetSummary{
			AssetID:       assetID,
			OfferedBase:   offered[assetID],
			RequestedBase: requested[assetID],
			Offered:       display(offered[assetID]),
			Requested:     display(requested[assetID]),
		})
	}
	return summary, nil
}
