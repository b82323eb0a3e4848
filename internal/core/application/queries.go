package application

import (
	"context"
	"sort"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/offer"
)

func (m *tradeManager) GetTradeByID(
	ctx context.Context, tradeID string,
) (*domain.TradeRecord, error) {
	return m.repoManager.TradeRepository().GetTrade(ctx, tradeID)
}

func (m *tradeManager) GetAllTrades(ctx context.Context) ([]*domain.TradeRecord, error) {
	return m.repoManager.TradeRepository().GetAllTrades(ctx)
}

func (m *tradeManager) GetTradesByStatus(
	ctx context.Context, status domain.TradeStatus,
) ([]*domain.TradeRecord, error) {
	return m.repoManager.TradeRepository().GetTradesByStatus(ctx, status)
}

func (m *tradeManager) GetTradeByCoin(
	ctx context.Context, coin coinset.Coin,
) (*domain.TradeRecord, error) {
	trades, err := m.repoManager.TradeRepository().GetAllTrades(ctx)
	if err != nil {
		return nil, err
	}

	coinID := coin.ID()
	for _, trade := range trades {
		if trade.Status == domain.TradeStatusCancelled {
			continue
		}
		if trade.ContainsCoin(coinID) {
			return trade, nil
		}
	}
	return nil, nil
}

func (m *tradeManager) pendingTrades(ctx context.Context) ([]*domain.TradeRecord, error) {
	statuses := []domain.TradeStatus{
		domain.TradeStatusPendingAccept,
		domain.TradeStatusPendingConfirm,
		domain.TradeStatusPendingCancel,
	}

	tradeRepository := m.repoManager.TradeRepository()
	var pending []*domain.TradeRecord
	for _, status := range statuses {
		trades, err := tradeRepository.GetTradesByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		pending = append(pending, trades...)
	}
	return pending, nil
}

func (m *tradeManager) GetCoinsOfInterest(ctx context.Context) ([]coinset.Coin, error) {
	trades, err := m.pendingTrades(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[coinset.Hash]struct{})
	var coins []coinset.Coin
	for _, trade := range trades {
		for _, coin := range trade.CoinsOfInterest {
			id := coin.ID()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			coins = append(coins, coin)
		}
	}
	return coins, nil
}

func (m *tradeManager) GetLockedCoins(
	ctx context.Context, walletID *uint32,
) ([]*domain.CoinRecord, error) {
	trades, err := m.pendingTrades(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var coinIDs []string
	for _, trade := range trades {
		tradeOffer, err := trade.Offer()
		if err != nil {
			return nil, err
		}
		for _, coin := range tradeOffer.InvolvedCoins() {
			id := coin.ID().String()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			coinIDs = append(coinIDs, id)
		}
	}

	records, err := m.repoManager.CoinRepository().GetCoinsByIDs(ctx, coinIDs)
	if err != nil {
		return nil, err
	}
	if walletID == nil {
		return records, nil
	}

	filtered := make([]*domain.CoinRecord, 0, len(records))
	for _, record := range records {
		if record.WalletID == *walletID {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

// CalculateTxRecords derives the wallet-facing view of an offer: one
// incoming record per payout claimed from a settlement coin, one outgoing
// record per wallet grouping everything it spent, change subtracted. The
// records are bookkeeping only and never decide a trade's status.
func (m *tradeManager) CalculateTxRecords(
	ctx context.Context, o *offer.Offer, settled bool,
) ([]*domain.TransactionRecord, error) {
	bundle := o.Bundle()
	if settled {
		var err error
		bundle, err = o.ToValidSpend()
		if err != nil {
			return nil, err
		}
	}

	offeredCoins, err := o.OfferedCoins()
	if err != nil {
		return nil, err
	}
	settlementIDs := make(map[coinset.Hash]struct{})
	for _, coins := range offeredCoins {
		for _, c := range coins {
			settlementIDs[c.ID()] = struct{}{}
		}
	}

	offerName, err := o.Name()
	if err != nil {
		return nil, err
	}
	bundleName, err := bundle.Name()
	if err != nil {
		return nil, err
	}
	var fees uint64
	if f := bundle.Fees(); f > 0 {
		fees = uint64(f)
	}

	var records []*domain.TransactionRecord
	changeByWallet := make(map[uint32][]coinset.Coin)

	for _, addition := range bundle.NotEphemeralAdditions() {
		walletID, ok, err := m.registry.WalletIDForPuzzleHash(ctx, addition.PuzzleHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, fromSettlement := settlementIDs[addition.ParentCoinID]; !fromSettlement {
			changeByWallet[walletID] = append(changeByWallet[walletID], addition)
			continue
		}

		toPuzzleHash := addition.PuzzleHash
		if wallet, found := m.registry.WalletByID(walletID); found {
			if converter, isConverter := wallet.(ports.PuzzleHashConverter); isConverter {
				inner, err := converter.ConvertPuzzleHash(ctx, addition.PuzzleHash)
				if err != nil {
					return nil, err
				}
				toPuzzleHash = inner
			}
		}

		name := coinset.HashData(bundleName.Bytes(), addition.ID().Bytes())
		record := domain.NewTransactionRecord(
			name.String(), domain.TransactionTypeIncomingTrade, walletID, offerName.String(),
		)
		record.ToPuzzleHash = toPuzzleHash
		record.Amount = addition.Amount
		record.Additions = []coinset.Coin{addition}
		records = append(records, record)
	}

	removalsByWallet := make(map[uint32][]coinset.Coin)
	for _, removal := range bundle.Removals() {
		walletID, ok, err := m.registry.WalletIDForPuzzleHash(ctx, removal.PuzzleHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		removalsByWallet[walletID] = append(removalsByWallet[walletID], removal)
	}

	walletIDs := make([]uint32, 0, len(removalsByWallet))
	for walletID := range removalsByWallet {
		walletIDs = append(walletIDs, walletID)
	}
	sort.Slice(walletIDs, func(i, j int) bool { return walletIDs[i] < walletIDs[j] })

	for _, walletID := range walletIDs {
		removals := removalsByWallet[walletID]
		change := changeByWallet[walletID]

		removalsHash, err := coinset.HashOf(removals)
		if err != nil {
			return nil, err
		}
		name := coinset.HashData(bundleName.Bytes(), removalsHash.Bytes())

		record := domain.NewTransactionRecord(
			name.String(), domain.TransactionTypeOutgoingTrade, walletID, offerName.String(),
		)
		record.Amount = coinset.SumCoins(removals) - coinset.SumCoins(change)
		record.FeeAmount = fees
		record.Additions = change
		record.Removals = removals
		records = append(records, record)
	}

	return records, nil
}
