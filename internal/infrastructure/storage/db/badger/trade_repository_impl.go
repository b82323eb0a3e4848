package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type tradeRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTradeRepositoryImpl returns a badger implementation of the domain
// TradeRepository.
func NewTradeRepositoryImpl(store *badgerhold.Store) domain.TradeRepository {
	return tradeRepositoryImpl{store}
}

func (t tradeRepositoryImpl) AddTrade(
	ctx context.Context, trade *domain.TradeRecord,
) error {
	return t.insertTrade(ctx, *trade)
}

func (t tradeRepositoryImpl) GetTrade(
	ctx context.Context, tradeID string,
) (*domain.TradeRecord, error) {
	return t.getTrade(ctx, tradeID)
}

func (t tradeRepositoryImpl) GetAllTrades(
	ctx context.Context,
) ([]*domain.TradeRecord, error) {
	return t.findTrades(ctx, nil)
}

func (t tradeRepositoryImpl) GetTradesByStatus(
	ctx context.Context, status domain.TradeStatus,
) ([]*domain.TradeRecord, error) {
	query := badgerhold.Where("Status").Eq(status)
	return t.findTrades(ctx, query)
}

func (t tradeRepositoryImpl) UpdateTrade(
	ctx context.Context,
	tradeID string,
	updateFn func(t *domain.TradeRecord) (*domain.TradeRecord, error),
) error {
	currentTrade, err := t.getTrade(ctx, tradeID)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	return t.updateTrade(ctx, updatedTrade.TradeID, *updatedTrade)
}

func (t tradeRepositoryImpl) findTrades(
	ctx context.Context, query *badgerhold.Query,
) ([]*domain.TradeRecord, error) {
	var trades []domain.TradeRecord
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = t.store.TxFind(tx, &trades, query)
	} else {
		err = t.store.Find(&trades, query)
	}
	if err != nil {
		return nil, err
	}

	list := make([]*domain.TradeRecord, 0, len(trades))
	for i := range trades {
		list = append(list, &trades[i])
	}
	return list, nil
}

func (t tradeRepositoryImpl) getTrade(
	ctx context.Context, tradeID string,
) (*domain.TradeRecord, error) {
	var trade domain.TradeRecord
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = t.store.TxGet(tx, tradeID, &trade)
	} else {
		err = t.store.Get(tradeID, &trade)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}

	return &trade, nil
}

func (t tradeRepositoryImpl) updateTrade(
	ctx context.Context, tradeID string, trade domain.TradeRecord,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return t.store.TxUpdate(tx, tradeID, trade)
	}
	return t.store.Update(tradeID, trade)
}

func (t tradeRepositoryImpl) insertTrade(
	ctx context.Context, trade domain.TradeRecord,
) error {
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = t.store.TxInsert(tx, trade.TradeID, trade)
	} else {
		err = t.store.Insert(trade.TradeID, trade)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrTradeAlreadyExists
		}
		return err
	}
	return nil
}
