package dbbadger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

// RepoManager holds the badgerhold store and the repositories backed by it.
// Trades, transactions and coins share the same store so that a single
// badger transaction can span all of them.
type RepoManager struct {
	store *badgerhold.Store

	tradeRepository       domain.TradeRepository
	transactionRepository domain.TransactionRepository
	coinRepository        domain.CoinRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. An empty data dir gives
// a volatile in-memory store.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if baseDbDir != "" {
		dbDir = filepath.Join(baseDbDir, "trades")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening trades db: %w", err)
	}

	return &RepoManager{
		store:                 store,
		tradeRepository:       NewTradeRepositoryImpl(store),
		transactionRepository: NewTransactionRepositoryImpl(store),
		coinRepository:        NewCoinRepositoryImpl(store),
	}, nil
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

// NewTransaction implements the RepoManager interface
func (d *RepoManager) NewTransaction() ports.Transaction {
	return d.store.Badger().NewTransaction(true)
}

// RunTransaction runs the handler inside a single badger transaction,
// committed if the handler succeeds and discarded otherwise.
func (d *RepoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	tx := d.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, "tx", tx))
	if err != nil {
		return nil, err
	}

	if !readOnly {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (d *RepoManager) Close() {
	d.store.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	_, err := buff.Write(data)
	if err != nil {
		return err
	}

	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := dbDir == ""

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	opts.InMemory = isInMemory

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
