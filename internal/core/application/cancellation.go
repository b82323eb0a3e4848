package application

import (
	"context"
	"fmt"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	log "github.com/sirupsen/logrus"
)

func (m *tradeManager) CancelPendingOffer(ctx context.Context, tradeID string) error {
	lock := m.locker.lockOf(tradeID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := m.repoManager.RunTransaction(
		ctx, !readOnlyTx,
		func(ctx context.Context) (interface{}, error) {
			return nil, m.setTradeStatus(ctx, tradeID, cancelTransition)
		},
	); err != nil {
		return err
	}

	log.Infof("trade with id %s cancelled without a spend", tradeID)
	return nil
}

func (m *tradeManager) CancelPendingOfferSafely(
	ctx context.Context, tradeID string, fee uint64,
) ([]*domain.TransactionRecord, error) {
	lock := m.locker.lockOf(tradeID)
	lock.Lock()
	defer lock.Unlock()

	trade, err := m.repoManager.TradeRepository().GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.IsPending() {
		return nil, domain.ErrTradeNotPending
	}

	tradeOffer, err := trade.Offer()
	if err != nil {
		return nil, err
	}
	primaries, err := tradeOffer.PrimaryCoins()
	if err != nil {
		return nil, err
	}

	log.Infof("securely cancelling trade with id %s", tradeID)

	allTxs := make([]*domain.TransactionRecord, 0, len(primaries))
	feeToPay := fee
	for _, coin := range primaries {
		wallet, ok, err := m.registry.WalletForCoin(ctx, coin.ID())
		if err != nil {
			return nil, err
		}
		if !ok {
			// Foreign primary coin, only its owner can re-spend it.
			continue
		}
		spender, ok := wallet.(ports.Spender)
		if !ok {
			return nil, fmt.Errorf(
				"%w: wallet %d cannot re-spend coins", ErrUnintegratedWallet, wallet.ID(),
			)
		}

		newPuzzleHash, err := wallet.NewPuzzleHash(ctx)
		if err != nil {
			return nil, err
		}

		var txs []*domain.TransactionRecord
		if wallet.Type() == ports.WalletTypeStandard {
			selected := []coinset.Coin{coin}
			if feeToPay > coin.Amount {
				extra, err := spender.SelectCoins(ctx, feeToPay-coin.Amount, selected)
				if err != nil {
					return nil, err
				}
				selected = append(selected, extra...)
			}
			txs, err = spender.GenerateSignedTransaction(
				ctx,
				[]uint64{coinset.SumCoins(selected) - feeToPay},
				[]coinset.Hash{newPuzzleHash},
				feeToPay,
				selected,
			)
		} else {
			txs, err = spender.GenerateSignedTransaction(
				ctx,
				[]uint64{coin.Amount},
				[]coinset.Hash{newPuzzleHash},
				feeToPay,
				[]coinset.Coin{coin},
			)
		}
		if err != nil {
			return nil, err
		}
		allTxs = append(allTxs, txs...)
		feeToPay = 0

		// The record of the coin coming back to us. It carries no trade id:
		// the re-spend must survive the cleanup of the trade's own records.
		reassigned := coinset.Coin{
			ParentCoinID: coin.ID(),
			PuzzleHash:   newPuzzleHash,
			Amount:       coin.Amount,
		}
		record := domain.NewTransactionRecord(
			reassigned.ID().String(), domain.TransactionTypeIncoming, wallet.ID(), "",
		)
		record.ToPuzzleHash = newPuzzleHash
		record.Amount = coin.Amount
		record.Additions = []coinset.Coin{reassigned}
		record.Removals = []coinset.Coin{coin}
		allTxs = append(allTxs, record)
	}

	if _, err := m.repoManager.RunTransaction(
		ctx, !readOnlyTx,
		func(ctx context.Context) (interface{}, error) {
			for _, tx := range allTxs {
				tx.FeeAmount = fee
				if err := m.txSink.AddPendingTransaction(ctx, tx); err != nil {
					return nil, err
				}
			}
			return nil, m.repoManager.TradeRepository().UpdateTrade(
				ctx, tradeID,
				func(t *domain.TradeRecord) (*domain.TradeRecord, error) {
					if _, err := t.MarkPendingCancel(); err != nil {
						return nil, err
					}
					return t, nil
				},
			)
		},
	); err != nil {
		return nil, err
	}

	return allTxs, nil
}
