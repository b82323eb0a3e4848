package application_test

import (
	"context"
	"testing"

	"github.com/odex-network/odex-daemon/internal/core/application"
	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/stretchr/testify/require"
)

func TestCancelPendingOffer(t *testing.T) {
	ctx := context.Background()
	env, trade, _ := createNativeForCatOffer(t, newFakeChain(), 0)

	require.NoError(t, env.manager.CancelPendingOffer(ctx, trade.TradeID))

	stored, err := env.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusCancelled, stored.Status)

	// cancelling again is a no-op
	require.NoError(t, env.manager.CancelPendingOffer(ctx, trade.TradeID))
}

func TestCancelSettledOffer(t *testing.T) {
	ctx := context.Background()
	env, trade, _ := createNativeForCatOffer(t, newFakeChain(), 0)

	err := env.repoMgr.TradeRepository().UpdateTrade(
		ctx, trade.TradeID,
		func(tr *domain.TradeRecord) (*domain.TradeRecord, error) {
			if _, err := tr.Confirm(42); err != nil {
				return nil, err
			}
			return tr, nil
		},
	)
	require.NoError(t, err)

	err = env.manager.CancelPendingOffer(ctx, trade.TradeID)
	require.ErrorIs(t, err, domain.ErrTradeNotPending)

	_, err = env.manager.CancelPendingOfferSafely(ctx, trade.TradeID, 0)
	require.ErrorIs(t, err, domain.ErrTradeNotPending)
}

func TestCancelPendingOfferSafely(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	driver := newDriver()
	env := newTestEnv(t, chain, newSimWallet(1, 100, 500))

	trade, err := env.manager.CreateOffer(
		ctx,
		map[application.Selector]int64{
			application.WalletSelector(1):             -100,
			application.AssetSelector(driver.AssetID): 50,
		},
		map[coinset.Hash]*coinset.PuzzleInfo{driver.AssetID: driver},
		0,
		false,
	)
	require.NoError(t, err)

	o := decodeOffer(t, trade)
	primaries, err := o.PrimaryCoins()
	require.NoError(t, err)
	require.Len(t, primaries, 1)
	primary := primaries[0]
	require.Equal(t, uint64(100), primary.Amount)

	// the fee exceeds the primary coin, extra coins get pulled in
	records, err := env.manager.CancelPendingOfferSafely(ctx, trade.TradeID, 150)
	require.NoError(t, err)
	require.Len(t, records, 2)

	stored, err := env.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusPendingCancel, stored.Status)
	require.Equal(t, 1, chain.broadcastCount())

	var spendTx, incomingTx *domain.TransactionRecord
	for _, record := range records {
		if record.Bundle != nil {
			spendTx = record
		} else {
			incomingTx = record
		}
	}
	require.NotNil(t, spendTx)
	require.NotNil(t, incomingTx)

	require.Equal(t, uint64(600), coinset.SumCoins(spendTx.Removals))
	require.Equal(t, uint64(450), spendTx.Amount)
	require.Equal(t, uint64(150), spendTx.FeeAmount)
	// paid to a fresh puzzle hash, not back to the offered one
	require.NotEqual(t, primary.PuzzleHash, spendTx.ToPuzzleHash)

	require.Equal(t, domain.TransactionTypeIncoming, incomingTx.Type)
	require.Equal(t, uint32(1), incomingTx.WalletID)
	require.Equal(t, uint64(100), incomingTx.Amount)
	require.Equal(t, uint64(150), incomingTx.FeeAmount)
	require.Equal(t, spendTx.ToPuzzleHash, incomingTx.ToPuzzleHash)
	require.Empty(t, incomingTx.TradeID)

	// reconciliation turns the pending cancel definitive once the re-spend
	// consumes the primary coin
	chain.spendCoin(primary.ID(), 600)
	err = env.manager.CoinsOfInterestFarmed(ctx, spentState(primary, 600), 0)
	require.NoError(t, err)

	stored, err = env.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusCancelled, stored.Status)

	// the cancellation records carry no trade id and survive the cleanup
	kept, err := env.repoMgr.TransactionRepository().GetTransaction(ctx, incomingTx.Name)
	require.NoError(t, err)
	require.Equal(t, uint64(100), kept.Amount)
}
