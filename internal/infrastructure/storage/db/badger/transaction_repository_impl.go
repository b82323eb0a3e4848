package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type transactionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTransactionRepositoryImpl returns a badger implementation of the domain
// TransactionRepository.
func NewTransactionRepositoryImpl(store *badgerhold.Store) domain.TransactionRepository {
	return transactionRepositoryImpl{store}
}

func (t transactionRepositoryImpl) AddTransaction(
	ctx context.Context, record *domain.TransactionRecord,
) error {
	return t.upsertTransaction(ctx, *record)
}

func (t transactionRepositoryImpl) GetTransaction(
	ctx context.Context, name string,
) (*domain.TransactionRecord, error) {
	var record domain.TransactionRecord
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = t.store.TxGet(tx, name, &record)
	} else {
		err = t.store.Get(name, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	return &record, nil
}

func (t transactionRepositoryImpl) GetTransactionsForTrade(
	ctx context.Context, tradeID string,
) ([]*domain.TransactionRecord, error) {
	query := badgerhold.Where("TradeID").Eq(tradeID)
	return t.findTransactions(ctx, query)
}

func (t transactionRepositoryImpl) GetPendingTransactions(
	ctx context.Context,
) ([]*domain.TransactionRecord, error) {
	query := badgerhold.Where("Confirmed").Eq(false)
	return t.findTransactions(ctx, query)
}

func (t transactionRepositoryImpl) ConfirmTransactionsForTrade(
	ctx context.Context, tradeID string, height uint32,
) error {
	records, err := t.GetTransactionsForTrade(ctx, tradeID)
	if err != nil {
		return err
	}

	for _, record := range records {
		if !record.Confirm(height) {
			continue
		}
		if err := t.updateTransaction(ctx, *record); err != nil {
			return err
		}
	}
	return nil
}

func (t transactionRepositoryImpl) DeleteTransactionsForTrade(
	ctx context.Context, tradeID string,
) error {
	query := badgerhold.Where("TradeID").Eq(tradeID).And("Confirmed").Eq(false)
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return t.store.TxDeleteMatching(tx, &domain.TransactionRecord{}, query)
	}
	return t.store.DeleteMatching(&domain.TransactionRecord{}, query)
}

func (t transactionRepositoryImpl) findTransactions(
	ctx context.Context, query *badgerhold.Query,
) ([]*domain.TransactionRecord, error) {
	var records []domain.TransactionRecord
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = t.store.TxFind(tx, &records, query)
	} else {
		err = t.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	list := make([]*domain.TransactionRecord, 0, len(records))
	for i := range records {
		list = append(list, &records[i])
	}
	return list, nil
}

func (t transactionRepositoryImpl) upsertTransaction(
	ctx context.Context, record domain.TransactionRecord,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return t.store.TxUpsert(tx, record.Name, record)
	}
	return t.store.Upsert(record.Name, record)
}

func (t transactionRepositoryImpl) updateTransaction(
	ctx context.Context, record domain.TransactionRecord,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return t.store.TxUpdate(tx, record.Name, record)
	}
	return t.store.Update(record.Name, record)
}
