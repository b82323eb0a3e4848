package inmemory

import (
	"context"
	"sync"

	"github.com/odex-network/odex-daemon/internal/core/domain"
)

type coinInmemoryStore struct {
	coins  map[string]domain.CoinRecord
	locker *sync.Mutex
}

type coinRepositoryImpl struct {
	store *coinInmemoryStore
}

// NewCoinRepositoryImpl returns a new inmemory CoinRepository implementation.
func NewCoinRepositoryImpl(store *coinInmemoryStore) domain.CoinRepository {
	return coinRepositoryImpl{store}
}

func (r coinRepositoryImpl) AddCoins(
	_ context.Context, coins []*domain.CoinRecord,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for _, coin := range coins {
		r.store.coins[coin.CoinID] = *coin
	}
	return nil
}

func (r coinRepositoryImpl) GetCoinsByIDs(
	_ context.Context, coinIDs []string,
) ([]*domain.CoinRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	coins := make([]*domain.CoinRecord, 0, len(coinIDs))
	for _, coinID := range coinIDs {
		coin, ok := r.store.coins[coinID]
		if !ok {
			continue
		}
		coins = append(coins, &coin)
	}
	return coins, nil
}

func (r coinRepositoryImpl) GetCoinsForWallet(
	_ context.Context, walletID uint32,
) ([]*domain.CoinRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	coins := make([]*domain.CoinRecord, 0)
	for _, coin := range r.store.coins {
		if coin.WalletID != walletID {
			continue
		}
		coin := coin
		coins = append(coins, &coin)
	}
	return coins, nil
}

func (r coinRepositoryImpl) GetCoinsByPuzzleHash(
	_ context.Context, puzzleHash string,
) ([]*domain.CoinRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	coins := make([]*domain.CoinRecord, 0)
	for _, coin := range r.store.coins {
		if coin.PuzzleHash != puzzleHash {
			continue
		}
		coin := coin
		coins = append(coins, &coin)
	}
	return coins, nil
}

func (r coinRepositoryImpl) MarkCoinsSpent(
	_ context.Context, coinIDs []string, height uint32,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for _, coinID := range coinIDs {
		coin, ok := r.store.coins[coinID]
		if !ok {
			continue
		}
		if !coin.MarkSpent(height) {
			continue
		}
		r.store.coins[coinID] = coin
	}
	return nil
}
