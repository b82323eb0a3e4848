package inmemory

import (
	"context"
	"sync"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
)

// RepoManager is an in memory implementation of the ports.RepoManager
// interface. Writes are guarded by per-repository locks, but there is no
// transactional isolation: a failing handler does not roll back the changes
// applied before the failure.
type RepoManager struct {
	tradeRepository       domain.TradeRepository
	transactionRepository domain.TransactionRepository
	coinRepository        domain.CoinRepository
}

func NewRepoManager() ports.RepoManager {
	tradeStore := &tradeInmemoryStore{
		trades: map[string]domain.TradeRecord{},
		locker: &sync.Mutex{},
	}
	txStore := &transactionInmemoryStore{
		transactions: map[string]domain.TransactionRecord{},
		locker:       &sync.Mutex{},
	}
	coinStore := &coinInmemoryStore{
		coins:  map[string]domain.CoinRecord{},
		locker: &sync.Mutex{},
	}

	return &RepoManager{
		tradeRepository:       NewTradeRepositoryImpl(tradeStore),
		transactionRepository: NewTransactionRepositoryImpl(txStore),
		coinRepository:        NewCoinRepositoryImpl(coinStore),
	}
}

func (d *RepoManager) TradeRepository() domain.TradeRepository {
	return d.tradeRepository
}

func (d *RepoManager) TransactionRepository() domain.TransactionRepository {
	return d.transactionRepository
}

func (d *RepoManager) CoinRepository() domain.CoinRepository {
	return d.coinRepository
}

func (d *RepoManager) Close() {}

func (d *RepoManager) NewTransaction() ports.Transaction {
	return inmemoryTx{}
}

func (d *RepoManager) RunTransaction(
	ctx context.Context,
	_ bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	return handler(ctx)
}

type inmemoryTx struct{}

func (tx inmemoryTx) Commit() error { return nil }
func (tx inmemoryTx) Discard()      {}
