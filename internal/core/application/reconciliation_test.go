package application_test

import (
	"context"
	"testing"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/offer"
	"github.com/stretchr/testify/require"
)

func TestTakerTradeConfirms(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	_, makerTrade, driver := createNativeForCatOffer(t, chain, 0)
	takerEnv, trade := acceptNativeForCatOffer(
		t, chain, decodeOffer(t, makerTrade), driver,
	)

	complete := decodeOffer(t, trade)
	settlement := offeredSettlementCoin(t, complete, driver.AssetID)

	// our settlement coin landed and was claimed in block 321
	chain.addCoin(settlement, 321)
	chain.spendCoin(settlement.ID(), 321)

	primary := ownedPrimaryCoin(t, takerEnv, complete)
	chain.spendCoin(primary.ID(), 321)

	err := takerEnv.manager.CoinsOfInterestFarmed(ctx, spentState(primary, 321), 0)
	require.NoError(t, err)

	stored, err := takerEnv.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusConfirmed, stored.Status)
	require.Equal(t, uint32(321), stored.ConfirmedAtIndex)

	txs, err := takerEnv.repoMgr.TransactionRepository().GetTransactionsForTrade(
		ctx, trade.TradeID,
	)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for _, tx := range txs {
		require.True(t, tx.Confirmed)
		require.Equal(t, uint32(321), tx.ConfirmedAtHeight)
	}

	// a redelivered event leaves everything untouched
	err = takerEnv.manager.CoinsOfInterestFarmed(ctx, spentState(primary, 321), 0)
	require.NoError(t, err)
	txs, err = takerEnv.repoMgr.TransactionRepository().GetTransactionsForTrade(
		ctx, trade.TradeID,
	)
	require.NoError(t, err)
	require.Len(t, txs, 3)
}

func TestTakerTradeFails(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	_, makerTrade, driver := createNativeForCatOffer(t, chain, 0)
	takerEnv, trade := acceptNativeForCatOffer(
		t, chain, decodeOffer(t, makerTrade), driver,
	)

	// the maker's funding coin moved but no settlement coin of ours did
	complete := decodeOffer(t, trade)
	makerPrimary := foreignPrimaryCoin(t, takerEnv, complete)
	chain.spendCoin(makerPrimary.ID(), 250)

	err := takerEnv.manager.CoinsOfInterestFarmed(ctx, spentState(makerPrimary, 250), 0)
	require.NoError(t, err)

	stored, err := takerEnv.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusFailed, stored.Status)

	// the never confirmed records of the trade are gone
	txs, err := takerEnv.repoMgr.TransactionRepository().GetTransactionsForTrade(
		ctx, trade.TradeID,
	)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestMakerTradeConfirms(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	env, trade, _ := createNativeForCatOffer(t, chain, 25)
	o := decodeOffer(t, trade)

	settlement := offeredSettlementCoin(t, o, offer.NativeAsset)
	chain.addCoin(settlement, 500)
	chain.spendCoin(settlement.ID(), 500)

	err := env.manager.CoinsOfInterestFarmed(ctx, spentState(settlement, 500), 0)
	require.NoError(t, err)

	stored, err := env.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusConfirmed, stored.Status)
	require.Equal(t, uint32(500), stored.ConfirmedAtIndex)

	// the maker's records are derived only now, from its half of the deal
	txs, err := env.repoMgr.TransactionRepository().GetTransactionsForTrade(
		ctx, trade.TradeID,
	)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	record := txs[0]
	require.Equal(t, domain.TransactionTypeOutgoingTrade, record.Type)
	require.Equal(t, uint32(1), record.WalletID)
	require.Equal(t, uint64(1025), record.Amount)
	require.Equal(t, uint64(25), record.FeeAmount)
	require.True(t, record.Confirmed)
	require.Equal(t, uint32(500), record.ConfirmedAtHeight)

	err = env.manager.CoinsOfInterestFarmed(ctx, spentState(settlement, 500), 0)
	require.NoError(t, err)
	txs, err = env.repoMgr.TransactionRepository().GetTransactionsForTrade(
		ctx, trade.TradeID,
	)
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestMakerTradeSurvivesUnrelatedSpend(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	env, trade, _ := createNativeForCatOffer(t, chain, 0)
	o := decodeOffer(t, trade)

	// the sibling funding coin moved, the settlement root did not
	var sibling coinset.Coin
	for _, c := range o.Bundle().NotEphemeralRemovals() {
		if c.Amount == 400 {
			sibling = c
		}
	}
	require.NotZero(t, sibling.Amount)
	chain.spendCoin(sibling.ID(), 200)

	err := env.manager.CoinsOfInterestFarmed(ctx, spentState(sibling, 200), 0)
	require.NoError(t, err)

	stored, err := env.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusPendingAccept, stored.Status)
}

func TestUnspentCoinKeepsTradePending(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	env, trade, _ := createNativeForCatOffer(t, chain, 0)
	o := decodeOffer(t, trade)

	settlement := offeredSettlementCoin(t, o, offer.NativeAsset)
	err := env.manager.CoinsOfInterestFarmed(ctx, unspentState(settlement), 0)
	require.NoError(t, err)

	stored, err := env.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusPendingAccept, stored.Status)
}

func TestForeignCoinEventIgnored(t *testing.T) {
	ctx := context.Background()
	chain := newFakeChain()
	env, trade, _ := createNativeForCatOffer(t, chain, 0)

	unrelated := coinset.Coin{
		ParentCoinID: randomHash(),
		PuzzleHash:   randomHash(),
		Amount:       42,
	}
	err := env.manager.CoinsOfInterestFarmed(ctx, spentState(unrelated, 200), 0)
	require.NoError(t, err)

	stored, err := env.manager.GetTradeByID(ctx, trade.TradeID)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStatusPendingAccept, stored.Status)
}
