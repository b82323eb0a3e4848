package inmemory

import (
	"context"
	"sync"

	"github.com/odex-network/odex-daemon/internal/core/domain"
)

type tradeInmemoryStore struct {
	trades map[string]domain.TradeRecord
	locker *sync.Mutex
}

type tradeRepositoryImpl struct {
	store *tradeInmemoryStore
}

// NewTradeRepositoryImpl returns a new inmemory TradeRepository implementation.
func NewTradeRepositoryImpl(store *tradeInmemoryStore) domain.TradeRepository {
	return tradeRepositoryImpl{store}
}

func (r tradeRepositoryImpl) AddTrade(
	_ context.Context, trade *domain.TradeRecord,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.trades[trade.TradeID]; ok {
		return domain.ErrTradeAlreadyExists
	}
	r.store.trades[trade.TradeID] = *trade
	return nil
}

func (r tradeRepositoryImpl) GetTrade(
	_ context.Context, tradeID string,
) (*domain.TradeRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getTrade(tradeID)
}

func (r tradeRepositoryImpl) GetAllTrades(
	_ context.Context,
) ([]*domain.TradeRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	trades := make([]*domain.TradeRecord, 0, len(r.store.trades))
	for _, trade := range r.store.trades {
		trade := trade
		trades = append(trades, &trade)
	}
	return trades, nil
}

func (r tradeRepositoryImpl) GetTradesByStatus(
	_ context.Context, status domain.TradeStatus,
) ([]*domain.TradeRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	trades := make([]*domain.TradeRecord, 0)
	for _, trade := range r.store.trades {
		if trade.Status != status {
			continue
		}
		trade := trade
		trades = append(trades, &trade)
	}
	return trades, nil
}

func (r tradeRepositoryImpl) UpdateTrade(
	_ context.Context,
	tradeID string,
	updateFn func(t *domain.TradeRecord) (*domain.TradeRecord, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentTrade, err := r.getTrade(tradeID)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	r.store.trades[updatedTrade.TradeID] = *updatedTrade
	return nil
}

func (r tradeRepositoryImpl) getTrade(tradeID string) (*domain.TradeRecord, error) {
	trade, ok := r.store.trades[tradeID]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	return &trade, nil
}
