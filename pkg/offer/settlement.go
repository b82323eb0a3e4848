package offer

import (
	"fmt"
	"sort"

	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// ToValidSpend completes a balanced offer into a spendable bundle by
// appending the settlement spends. Per asset, the first settlement coin in
// coin-id order carries every notarized payment group: one announcement per
// group followed by the group's payouts. Sibling settlement coins are spent
// with empty solutions.
func (o *Offer) ToValidSpend() (coinset.SpendBundle, error) {
	valid, err := o.IsValid()
	if err != nil {
		return coinset.SpendBundle{}, err
	}
	if !valid {
		return coinset.SpendBundle{}, ErrIncompleteOffer
	}

	offered, err := o.OfferedCoins()
	if err != nil {
		return coinset.SpendBundle{}, err
	}

	assetIDs := make([]coinset.Hash, 0, len(o.requested))
	for assetID := range o.requested {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Slice(assetIDs, func(i, j int) bool { return assetIDs[i].Less(assetIDs[j]) })

	var spends []coinset.CoinSpend
	for _, assetID := range assetIDs {
		payments := o.requested[assetID]
		coins := offered[assetID]
		if len(coins) == 0 {
			return coinset.SpendBundle{}, fmt.Errorf(
				"%w: no settlement coins for asset %s", ErrIncompleteOffer, assetID,
			)
		}
		reveal, err := SettlementPuzzleRevealForAsset(assetID, o.drivers)
		if err != nil {
			return coinset.SpendBundle{}, err
		}

		for i, coin := range coins {
			var solution []coinset.Condition
			if i == 0 {
				solution, err = settlementSolution(payments)
				if err != nil {
					return coinset.SpendBundle{}, err
				}
			}
			spends = append(spends, coinset.CoinSpend{
				Coin:         coin,
				PuzzleReveal: reveal,
				Solution:     solution,
			})
		}
	}

	settlement := coinset.SpendBundle{CoinSpends: spends}
	return coinset.AggregateBundles(o.bundle, settlement), nil
}

// settlementSolution lays out the payments of one asset, grouped by nonce in
// first-appearance order. Aggregated offers contribute one group per half.
func settlementSolution(payments []NotarizedPayment) ([]coinset.Condition, error) {
	var nonceOrder []coinset.Hash
	groups := make(map[coinset.Hash][]NotarizedPayment)
	for _, np := range payments {
		if _, ok := groups[np.Nonce]; !ok {
			nonceOrder = append(nonceOrder, np.Nonce)
		}
		groups[np.Nonce] = append(groups[np.Nonce], np)
	}

	var solution []coinset.Condition
	for _, nonce := range nonceOrder {
		group := groups[nonce]
		msg, err := paymentGroupMessage(nonce, group)
		if err != nil {
			return nil, err
		}
		solution = append(solution, coinset.NewCreatePuzzleAnnouncementCondition(msg.Bytes()))
		for _, np := range group {
			solution = append(solution, coinset.NewCreateCoinCondition(np.PuzzleHash, np.Amount, np.Memos))
		}
	}
	return solution, nil
}
