package application

import (
	"context"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"github.com/odex-network/odex-daemon/pkg/offer"
	log "github.com/sirupsen/logrus"
)

// CoinsOfInterestFarmed decides the fate of the trade monitoring the given
// coin. Success is detected only through the movement of our own settlement
// coins: their spend proves the counterparty satisfied the announcements our
// side asserts. Any other movement of the trade's coins means interference.
func (m *tradeManager) CoinsOfInterestFarmed(
	ctx context.Context, coinState explorer.CoinState, forkHeight uint32,
) error {
	trade, err := m.GetTradeByCoin(ctx, coinState.Coin)
	if err != nil {
		return err
	}
	if trade == nil {
		log.Debugf("coin %s does not belong to any trade", coinState.Coin.ID())
		return nil
	}

	lock := m.locker.lockOf(trade.TradeID)
	lock.Lock()
	defer lock.Unlock()

	// Reload under the lock, a racing event may have already settled it.
	trade, err = m.repoManager.TradeRepository().GetTrade(ctx, trade.TradeID)
	if err != nil {
		return err
	}
	if !trade.IsPending() {
		return nil
	}

	tradeOffer, err := trade.Offer()
	if err != nil {
		return err
	}

	ourSettlements, err := m.ourSettlementCoins(ctx, tradeOffer)
	if err != nil {
		return err
	}
	states, err := m.explorerSvc.GetCoinStates(
		ctx, coinset.CoinIDs(ourSettlements), forkHeight,
	)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state.IsSpent() {
			return m.confirmTrade(ctx, trade, tradeOffer, *state.SpentHeight)
		}
	}

	if !coinState.IsSpent() {
		log.Debugf(
			"coin %s of trade %s is unspent, the trade can remain valid",
			coinState.Coin.ID(), trade.TradeID,
		)
		return nil
	}
	return m.settleInterference(ctx, trade)
}

// ourSettlementCoins returns the offered settlement coins descending from
// primary coins the index attributes to our wallets.
func (m *tradeManager) ourSettlementCoins(
	ctx context.Context, o *offer.Offer,
) ([]coinset.Coin, error) {
	primaries, err := o.PrimaryCoins()
	if err != nil {
		return nil, err
	}
	primaryIDs := make([]string, 0, len(primaries))
	for _, c := range primaries {
		primaryIDs = append(primaryIDs, c.ID().String())
	}
	ourRecords, err := m.repoManager.CoinRepository().GetCoinsByIDs(ctx, primaryIDs)
	if err != nil {
		return nil, err
	}
	ourPrimaries := make(map[string]struct{}, len(ourRecords))
	for _, record := range ourRecords {
		ourPrimaries[record.CoinID] = struct{}{}
	}

	offeredCoins, err := o.OfferedCoins()
	if err != nil {
		return nil, err
	}
	var ours []coinset.Coin
	for _, coins := range offeredCoins {
		for _, c := range coins {
			root, err := o.RootRemoval(c)
			if err != nil {
				return nil, err
			}
			if _, ok := ourPrimaries[root.ID().String()]; ok {
				ours = append(ours, c)
			}
		}
	}
	return ours, nil
}

// confirmTrade settles the success path: conditional status write plus the
// materialization of the trade's transaction records, all in one store
// transaction. Redelivered events find the trade no longer pending and leave
// no duplicate records behind.
func (m *tradeManager) confirmTrade(
	ctx context.Context, trade *domain.TradeRecord, tradeOffer *offer.Offer, height uint32,
) error {
	wasMakerFlow := trade.Status == domain.TradeStatusPendingAccept

	if _, err := m.repoManager.RunTransaction(
		ctx, !readOnlyTx,
		func(ctx context.Context) (interface{}, error) {
			var changed bool
			if err := m.repoManager.TradeRepository().UpdateTrade(
				ctx, trade.TradeID,
				func(t *domain.TradeRecord) (*domain.TradeRecord, error) {
					ok, err := t.Confirm(height)
					if err != nil {
						return nil, err
					}
					changed = ok
					return t, nil
				},
			); err != nil {
				return nil, err
			}
			if !changed {
				return nil, nil
			}

			if wasMakerFlow {
				// The maker never persisted records for its half, derive them
				// now directly as confirmed.
				txRecords, err := m.CalculateTxRecords(ctx, tradeOffer, false)
				if err != nil {
					return nil, err
				}
				for _, tx := range txRecords {
					tx.Confirm(height)
					if err := m.txSink.AddTransaction(ctx, tx); err != nil {
						return nil, err
					}
				}
				return nil, nil
			}
			return nil, m.txSink.ConfirmTradeTransactions(ctx, trade.TradeID, height)
		},
	); err != nil {
		return err
	}

	log.Infof("trade with id %s confirmed at height %d", trade.TradeID, height)
	return nil
}

// settleInterference applies the failure half of the decision rule: the
// triggering coin moved but none of our settlement coins did, so the trade
// cannot complete as built.
func (m *tradeManager) settleInterference(
	ctx context.Context, trade *domain.TradeRecord,
) error {
	_, err := m.repoManager.RunTransaction(
		ctx, !readOnlyTx,
		func(ctx context.Context) (interface{}, error) {
			if err := m.txSink.DeleteTradeTransactions(ctx, trade.TradeID); err != nil {
				return nil, err
			}

			switch trade.Status {
			case domain.TradeStatusPendingCancel:
				if err := m.setTradeStatus(ctx, trade.TradeID, cancelTransition); err != nil {
					return nil, err
				}
				log.Infof("trade with id %s cancelled", trade.TradeID)
			case domain.TradeStatusPendingConfirm:
				if err := m.setTradeStatus(ctx, trade.TradeID, failTransition); err != nil {
					return nil, err
				}
				log.Warnf("trade with id %s failed", trade.TradeID)
			default:
				// A maker's coins can move for unrelated reasons, the offer
				// may still be taken.
				log.Debugf(
					"coins of pending trade %s moved without settling it", trade.TradeID,
				)
			}
			return nil, nil
		},
	)
	return err
}

type tradeTransition func(t *domain.TradeRecord) (bool, error)

func cancelTransition(t *domain.TradeRecord) (bool, error) { return t.Cancel() }
func failTransition(t *domain.TradeRecord) (bool, error)   { return t.Fail() }

func (m *tradeManager) setTradeStatus(
	ctx context.Context, tradeID string, transition tradeTransition,
) error {
	return m.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeID,
		func(t *domain.TradeRecord) (*domain.TradeRecord, error) {
			if _, err := transition(t); err != nil {
				return nil, err
			}
			return t, nil
		},
	)
}
