package db_test

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/pkg/coinset"
)

func makeRandomTrade() *domain.TradeRecord {
	now := time.Now().Unix()
	return &domain.TradeRecord{
		TradeID:    randomHex(32),
		Status:     domain.TradeStatusPendingAccept,
		IsMyOffer:  true,
		OfferBytes: randomBytes(64),
		CreatedAt:  now,
		CoinsOfInterest: []coinset.Coin{
			makeRandomCoin(), makeRandomCoin(),
		},
		StatusHistory: []domain.StatusChange{
			{Status: domain.TradeStatusPendingAccept, Timestamp: now},
		},
	}
}

func makeRandomTransaction(tradeID string) *domain.TransactionRecord {
	tx := domain.NewTransactionRecord(
		randomHex(32),
		domain.TransactionTypeOutgoingTrade,
		uint32(randomIntInRange(1, 10)),
		tradeID,
	)
	tx.ToPuzzleHash = randomHash()
	tx.Amount = uint64(randomIntInRange(1000, 1000000))
	tx.FeeAmount = uint64(randomIntInRange(0, 100))
	tx.Removals = []coinset.Coin{makeRandomCoin()}
	return tx
}

func makeRandomCoinRecord(walletID uint32) *domain.CoinRecord {
	return domain.NewCoinRecord(
		makeRandomCoin(), walletID, uint32(randomIntInRange(1, 100000)),
	)
}

func makeRandomCoin() coinset.Coin {
	return coinset.Coin{
		ParentCoinID: randomHash(),
		PuzzleHash:   randomHash(),
		Amount:       uint64(randomIntInRange(1, 1000000)),
	}
}

func randomHash() coinset.Hash {
	h, _ := coinset.NewHash(randomBytes(32))
	return h
}

func randomWalletID() uint32 {
	return uint32(randomIntInRange(1, 1<<30))
}

func randomHex(len int) string {
	return hex.EncodeToString(randomBytes(len))
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}

func randomIntInRange(min, max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64()) + min
}
