package offer

import (
	"sort"

	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// NativeAsset is the zero asset id. It selects the ledger's native currency
// and never appears in a driver dict.
var NativeAsset = coinset.Hash{}

// SettlementReveal is the reveal of the generic settlement puzzle. A
// settlement coin pays out exactly the notarized payments its solution
// carries and announces each payment group, which is what lets two half
// offers lock onto each other.
var SettlementReveal = []byte("settlement_payments v1")

// SettlementPuzzleHash is the puzzle hash of the bare settlement puzzle,
// used for native currency settlements.
var SettlementPuzzleHash = coinset.HashData(SettlementReveal)

// SettlementPuzzleHashForAsset derives the settlement puzzle hash of an
// asset: the bare settlement hash for the native asset, the driver-wrapped
// one otherwise.
func SettlementPuzzleHashForAsset(
	assetID coinset.Hash, drivers map[coinset.Hash]*coinset.PuzzleInfo,
) (coinset.Hash, error) {
	if assetID == NativeAsset {
		return SettlementPuzzleHash, nil
	}
	driver, ok := drivers[assetID]
	if !ok || driver == nil {
		return coinset.Hash{}, ErrMissingDriver
	}
	return coinset.OuterPuzzleHash(driver, SettlementReveal)
}

// SettlementPuzzleRevealForAsset derives the full settlement reveal of an
// asset, mirroring SettlementPuzzleHashForAsset.
func SettlementPuzzleRevealForAsset(
	assetID coinset.Hash, drivers map[coinset.Hash]*coinset.PuzzleInfo,
) ([]byte, error) {
	if assetID == NativeAsset {
		return SettlementReveal, nil
	}
	driver, ok := drivers[assetID]
	if !ok || driver == nil {
		return nil, ErrMissingDriver
	}
	return coinset.OuterPuzzleReveal(driver, SettlementReveal)
}

// Payment is a requested payout: a puzzle hash to pay, an amount, and
// optional memo hints for the receiving wallet.
type Payment struct {
	PuzzleHash coinset.Hash `json:"puzzleHash" codec:"puzzle_hash"`
	Amount     uint64       `json:"amount" codec:"amount"`
	Memos      [][]byte     `json:"memos,omitempty" codec:"memos"`
}

// NotarizedPayment is a payment bound to the coin set of the offer that
// requests it. The nonce commits to the exact coins being spent, so a
// payment group cannot be replayed against a different spend.
type NotarizedPayment struct {
	Payment
	Nonce coinset.Hash `json:"nonce" codec:"nonce"`
}

// NotarizePayments stamps every requested payment with a nonce derived from
// the canonical encoding of the selected coins, sorted by coin id.
func NotarizePayments(
	requested map[coinset.Hash][]Payment, coins []coinset.Coin,
) (map[coinset.Hash][]NotarizedPayment, error) {
	nonce, err := coinset.HashOf(coinset.SortCoins(coins))
	if err != nil {
		return nil, err
	}

	notarized := make(map[coinset.Hash][]NotarizedPayment, len(requested))
	for assetID, payments := range requested {
		group := make([]NotarizedPayment, 0, len(payments))
		for _, p := range payments {
			group = append(group, NotarizedPayment{Payment: p, Nonce: nonce})
		}
		notarized[assetID] = group
	}
	return notarized, nil
}

type announcementBody struct {
	Nonce    coinset.Hash `codec:"nonce"`
	Payments []Payment    `codec:"payments"`
}

// paymentGroupMessage hashes a nonce together with the payments it
// notarizes. The settlement spend announces exactly this message, and the
// offering side asserts it.
func paymentGroupMessage(nonce coinset.Hash, payments []NotarizedPayment) (coinset.Hash, error) {
	body := announcementBody{Nonce: nonce}
	for _, np := range payments {
		body.Payments = append(body.Payments, np.Payment)
	}
	return coinset.HashOf(body)
}

// CalculateAnnouncements returns, per requested asset, the announcement the
// asset's settlement spend will emit. The result is ordered by asset id so
// callers see a stable list.
func CalculateAnnouncements(
	notarized map[coinset.Hash][]NotarizedPayment,
	drivers map[coinset.Hash]*coinset.PuzzleInfo,
) ([]coinset.Announcement, error) {
	assetIDs := make([]coinset.Hash, 0, len(notarized))
	for assetID := range notarized {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Slice(assetIDs, func(i, j int) bool { return assetIDs[i].Less(assetIDs[j]) })

	announcements := make([]coinset.Announcement, 0, len(assetIDs))
	for _, assetID := range assetIDs {
		payments := notarized[assetID]
		if len(payments) == 0 {
			continue
		}
		settlementPh, err := SettlementPuzzleHashForAsset(assetID, drivers)
		if err != nil {
			return nil, err
		}
		msg, err := paymentGroupMessage(payments[0].Nonce, payments)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, coinset.Announcement{
			OriginPuzzleHash: settlementPh,
			Message:          msg.Bytes(),
		})
	}
	return announcements, nil
}
