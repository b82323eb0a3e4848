package domain_test

import (
	"testing"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/offer"
	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"
)

func randomHash() coinset.Hash {
	h, _ := coinset.NewHashFromHex(randstr.Hex(32))
	return h
}

func newTestOffer(t *testing.T) *offer.Offer {
	t.Helper()

	coin := coinset.Coin{
		ParentCoinID: randomHash(),
		PuzzleHash:   randomHash(),
		Amount:       1000,
	}
	requested := map[coinset.Hash][]offer.Payment{
		offer.NativeAsset: {{PuzzleHash: randomHash(), Amount: 900}},
	}
	notarized, err := offer.NotarizePayments(requested, []coinset.Coin{coin})
	require.NoError(t, err)

	bundle := coinset.SpendBundle{
		CoinSpends: []coinset.CoinSpend{{
			Coin:         coin,
			PuzzleReveal: randstr.Bytes(16),
			Solution: []coinset.Condition{
				coinset.NewCreateCoinCondition(offer.SettlementPuzzleHash, 900, nil),
				coinset.NewCreateCoinCondition(randomHash(), 100, nil),
			},
		}},
		AggregatedSignature: randstr.Bytes(48),
	}

	o, err := offer.New(notarized, bundle, nil)
	require.NoError(t, err)
	return o
}

func newTradeWithStatus(t *testing.T, status domain.TradeStatus) *domain.TradeRecord {
	t.Helper()
	trade, err := domain.NewTradeRecord(newTestOffer(t), status, true)
	require.NoError(t, err)
	return trade
}

func TestNewTradeRecord(t *testing.T) {
	o := newTestOffer(t)
	trade, err := domain.NewTradeRecord(o, domain.TradeStatusPendingAccept, true)
	require.NoError(t, err)

	name, err := o.Name()
	require.NoError(t, err)
	require.Equal(t, name.String(), trade.TradeID)
	require.Equal(t, domain.TradeStatusPendingAccept, trade.Status)
	require.True(t, trade.IsMyOffer)
	require.True(t, trade.IsPending())
	require.Zero(t, trade.AcceptedAt)
	require.Equal(t, o.InvolvedCoins(), trade.CoinsOfInterest)
	require.Len(t, trade.StatusHistory, 1)
	require.Equal(t, domain.TradeStatusPendingAccept, trade.StatusHistory[0].Status)

	decoded, err := trade.Offer()
	require.NoError(t, err)
	decodedName, err := decoded.Name()
	require.NoError(t, err)
	require.Equal(t, name, decodedName)

	taken, err := trade.TakenOffer()
	require.NoError(t, err)
	require.Nil(t, taken)
}

func TestNewTradeRecordAccepted(t *testing.T) {
	trade, err := domain.NewTradeRecord(newTestOffer(t), domain.TradeStatusPendingConfirm, false)
	require.NoError(t, err)
	require.False(t, trade.IsMyOffer)
	require.NotZero(t, trade.AcceptedAt)
}

func TestTradeConfirm(t *testing.T) {
	tests := []struct {
		name  string
		trade *domain.TradeRecord
	}{
		{
			name:  "with_trade_pending_accept",
			trade: newTradeWithStatus(t, domain.TradeStatusPendingAccept),
		},
		{
			name:  "with_trade_pending_confirm",
			trade: newTradeWithStatus(t, domain.TradeStatusPendingConfirm),
		},
		{
			name:  "with_trade_pending_cancel",
			trade: newTradeWithStatus(t, domain.TradeStatusPendingCancel),
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			changed, err := tt.trade.Confirm(1024)
			require.NoError(t, err)
			require.True(t, changed)
			require.Equal(t, domain.TradeStatusConfirmed, tt.trade.Status)
			require.Equal(t, uint32(1024), tt.trade.ConfirmedAtIndex)

			changed, err = tt.trade.Confirm(2048)
			require.NoError(t, err)
			require.False(t, changed)
			require.Equal(t, uint32(1024), tt.trade.ConfirmedAtIndex)
		})
	}
}

func TestFailingTradeConfirm(t *testing.T) {
	tests := []struct {
		name  string
		trade *domain.TradeRecord
	}{
		{
			name:  "with_trade_cancelled",
			trade: newTradeWithStatus(t, domain.TradeStatusCancelled),
		},
		{
			name:  "with_trade_failed",
			trade: newTradeWithStatus(t, domain.TradeStatusFailed),
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			changed, err := tt.trade.Confirm(1024)
			require.ErrorIs(t, err, domain.ErrTradeNotPending)
			require.False(t, changed)
		})
	}
}

func TestTradeCancel(t *testing.T) {
	trade := newTradeWithStatus(t, domain.TradeStatusPendingCancel)

	changed, err := trade.Cancel()
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, domain.TradeStatusCancelled, trade.Status)

	changed, err = trade.Cancel()
	require.NoError(t, err)
	require.False(t, changed)

	confirmed := newTradeWithStatus(t, domain.TradeStatusConfirmed)
	_, err = confirmed.Cancel()
	require.ErrorIs(t, err, domain.ErrTradeNotPending)
}

func TestTradeFail(t *testing.T) {
	trade := newTradeWithStatus(t, domain.TradeStatusPendingConfirm)

	changed, err := trade.Fail()
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, domain.TradeStatusFailed, trade.Status)

	changed, err = trade.Fail()
	require.NoError(t, err)
	require.False(t, changed)
}

func TestTradeMarkPendingCancel(t *testing.T) {
	trade := newTradeWithStatus(t, domain.TradeStatusPendingAccept)

	changed, err := trade.MarkPendingCancel()
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, domain.TradeStatusPendingCancel, trade.Status)

	changed, err = trade.MarkPendingCancel()
	require.NoError(t, err)
	require.False(t, changed)

	cancelled := newTradeWithStatus(t, domain.TradeStatusCancelled)
	_, err = cancelled.MarkPendingCancel()
	require.ErrorIs(t, err, domain.ErrTradeNotPending)
}

func TestTradeStatusHistoryAppendOnly(t *testing.T) {
	trade := newTradeWithStatus(t, domain.TradeStatusPendingAccept)
	require.Len(t, trade.StatusHistory, 1)

	_, err := trade.MarkPendingCancel()
	require.NoError(t, err)
	require.Len(t, trade.StatusHistory, 2)

	_, err = trade.Cancel()
	require.NoError(t, err)
	require.Len(t, trade.StatusHistory, 3)

	require.Equal(t, domain.TradeStatusPendingAccept, trade.StatusHistory[0].Status)
	require.Equal(t, domain.TradeStatusPendingCancel, trade.StatusHistory[1].Status)
	require.Equal(t, domain.TradeStatusCancelled, trade.StatusHistory[2].Status)
}

func TestTradeContainsCoin(t *testing.T) {
	trade := newTradeWithStatus(t, domain.TradeStatusPendingAccept)
	require.NotEmpty(t, trade.CoinsOfInterest)

	require.True(t, trade.ContainsCoin(trade.CoinsOfInterest[0].ID()))
	require.False(t, trade.ContainsCoin(randomHash()))
}

func TestTransactionRecordConfirm(t *testing.T) {
	tx := domain.NewTransactionRecord(
		randstr.Hex(32), domain.TransactionTypeIncomingTrade, 1, randstr.Hex(32),
	)
	tx.Bundle = &coinset.SpendBundle{}

	require.True(t, tx.IsBroadcastable())
	require.True(t, tx.Confirm(77))
	require.False(t, tx.Confirm(78))
	require.Equal(t, uint32(77), tx.ConfirmedAtHeight)
	require.False(t, tx.IsBroadcastable())
}

func TestCoinRecordMarkSpent(t *testing.T) {
	record := domain.NewCoinRecord(coinset.Coin{
		ParentCoinID: randomHash(),
		PuzzleHash:   randomHash(),
		Amount:       42,
	}, 1, 100)

	require.Equal(t, record.Coin.ID().String(), record.CoinID)
	require.True(t, record.MarkSpent(200))
	require.False(t, record.MarkSpent(300))
	require.Equal(t, uint32(200), record.SpentHeight)
}
