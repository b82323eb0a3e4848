package inmemory

import (
	"context"
	"sync"

	"github.com/odex-network/odex-daemon/internal/core/domain"
)

type transactionInmemoryStore struct {
	transactions map[string]domain.TransactionRecord
	locker       *sync.Mutex
}

type transactionRepositoryImpl struct {
	store *transactionInmemoryStore
}

// NewTransactionRepositoryImpl returns a new inmemory TransactionRepository
// implementation.
func NewTransactionRepositoryImpl(
	store *transactionInmemoryStore,
) domain.TransactionRepository {
	return transactionRepositoryImpl{store}
}

func (r transactionRepositoryImpl) AddTransaction(
	_ context.Context, tx *domain.TransactionRecord,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.transactions[tx.Name] = *tx
	return nil
}

func (r transactionRepositoryImpl) GetTransaction(
	_ context.Context, name string,
) (*domain.TransactionRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	tx, ok := r.store.transactions[name]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &tx, nil
}

func (r transactionRepositoryImpl) GetTransactionsForTrade(
	_ context.Context, tradeID string,
) ([]*domain.TransactionRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	txs := make([]*domain.TransactionRecord, 0)
	for _, tx := range r.store.transactions {
		if tx.TradeID != tradeID {
			continue
		}
		tx := tx
		txs = append(txs, &tx)
	}
	return txs, nil
}

func (r transactionRepositoryImpl) GetPendingTransactions(
	_ context.Context,
) ([]*domain.TransactionRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	txs := make([]*domain.TransactionRecord, 0)
	for _, tx := range r.store.transactions {
		if tx.Confirmed {
			continue
		}
		tx := tx
		txs = append(txs, &tx)
	}
	return txs, nil
}

func (r transactionRepositoryImpl) ConfirmTransactionsForTrade(
	_ context.Context, tradeID string, height uint32,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for name, tx := range r.store.transactions {
		if tx.TradeID != tradeID {
			continue
		}
		if !tx.Confirm(height) {
			continue
		}
		r.store.transactions[name] = tx
	}
	return nil
}

func (r transactionRepositoryImpl) DeleteTransactionsForTrade(
	_ context.Context, tradeID string,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for name, tx := range r.store.transactions {
		if tx.TradeID != tradeID || tx.Confirmed {
			continue
		}
		delete(r.store.transactions, name)
	}
	return nil
}
