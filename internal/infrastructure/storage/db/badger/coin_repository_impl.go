package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type coinRepositoryImpl struct {
	store *badgerhold.Store
}

// NewCoinRepositoryImpl returns a badger implementation of the domain
// CoinRepository.
func NewCoinRepositoryImpl(store *badgerhold.Store) domain.CoinRepository {
	return coinRepositoryImpl{store}
}

func (c coinRepositoryImpl) AddCoins(
	ctx context.Context, coins []*domain.CoinRecord,
) error {
	for _, coin := range coins {
		if err := c.upsertCoin(ctx, *coin); err != nil {
			return err
		}
	}
	return nil
}

func (c coinRepositoryImpl) GetCoinsByIDs(
	ctx context.Context, coinIDs []string,
) ([]*domain.CoinRecord, error) {
	coins := make([]*domain.CoinRecord, 0, len(coinIDs))
	for _, coinID := range coinIDs {
		coin, err := c.getCoin(ctx, coinID)
		if err != nil {
			if err == domain.ErrCoinNotFound {
				continue
			}
			return nil, err
		}
		coins = append(coins, coin)
	}
	return coins, nil
}

func (c coinRepositoryImpl) GetCoinsForWallet(
	ctx context.Context, walletID uint32,
) ([]*domain.CoinRecord, error) {
	query := badgerhold.Where("WalletID").Eq(walletID)

	var records []domain.CoinRecord
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = c.store.TxFind(tx, &records, query)
	} else {
		err = c.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	coins := make([]*domain.CoinRecord, 0, len(records))
	for i := range records {
		coins = append(coins, &records[i])
	}
	return coins, nil
}

func (c coinRepositoryImpl) GetCoinsByPuzzleHash(
	ctx context.Context, puzzleHash string,
) ([]*domain.CoinRecord, error) {
	query := badgerhold.Where("PuzzleHash").Eq(puzzleHash)

	var records []domain.CoinRecord
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = c.store.TxFind(tx, &records, query)
	} else {
		err = c.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	coins := make([]*domain.CoinRecord, 0, len(records))
	for i := range records {
		coins = append(coins, &records[i])
	}
	return coins, nil
}

func (c coinRepositoryImpl) MarkCoinsSpent(
	ctx context.Context, coinIDs []string, height uint32,
) error {
	for _, coinID := range coinIDs {
		coin, err := c.getCoin(ctx, coinID)
		if err != nil {
			if err == domain.ErrCoinNotFound {
				continue
			}
			return err
		}
		if !coin.MarkSpent(height) {
			continue
		}
		if err := c.updateCoin(ctx, *coin); err != nil {
			return err
		}
	}
	return nil
}

func (c coinRepositoryImpl) getCoin(
	ctx context.Context, coinID string,
) (*domain.CoinRecord, error) {
	var coin domain.CoinRecord
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = c.store.TxGet(tx, coinID, &coin)
	} else {
		err = c.store.Get(coinID, &coin)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrCoinNotFound
		}
		return nil, err
	}

	return &coin, nil
}

func (c coinRepositoryImpl) upsertCoin(
	ctx context.Context, coin domain.CoinRecord,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return c.store.TxUpsert(tx, coin.CoinID, coin)
	}
	return c.store.Upsert(coin.CoinID, coin)
}

func (c coinRepositoryImpl) updateCoin(
	ctx context.Context, coin domain.CoinRecord,
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return c.store.TxUpdate(tx, coin.CoinID, coin)
	}
	return c.store.Update(coin.CoinID, coin)
}
