package application

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/crawler"
)

// BlockchainListener keeps the crawler's watch set aligned with the coins of
// the pending trades and routes every observed spend into the trade manager.
type BlockchainListener interface {
	ObserveBlockchain()
	StopObserveBlockchain()
}

type blockchainListener struct {
	tradeManager        TradeManager
	crawlerSvc          crawler.Service
	txSink              ports.PendingTxSink
	rebroadcastInterval time.Duration

	stopChan chan struct{}
	stopOnce *sync.Once
	// watched mirrors the crawler's observable set. It is written by the
	// event goroutine only, after the initial seeding.
	watched map[string]coinset.Hash
}

// NewBlockchainListener returns a BlockchainListener with all the needed
// services.
func NewBlockchainListener(
	tradeManager TradeManager,
	crawlerSvc crawler.Service,
	txSink ports.PendingTxSink,
	rebroadcastInterval time.Duration,
) BlockchainListener {
	return newBlockchainListener(
		tradeManager,
		crawlerSvc,
		txSink,
		rebroadcastInterval,
	)
}

func newBlockchainListener(
	tradeManager TradeManager,
	crawlerSvc crawler.Service,
	txSink ports.PendingTxSink,
	rebroadcastInterval time.Duration,
) *blockchainListener {
	return &blockchainListener{
		tradeManager:        tradeManager,
		crawlerSvc:          crawlerSvc,
		txSink:              txSink,
		rebroadcastInterval: rebroadcastInterval,
		stopChan:            make(chan struct{}),
		stopOnce:            &sync.Once{},
		watched:             map[string]coinset.Hash{},
	}
}

func (b *blockchainListener) ObserveBlockchain() {
	b.refreshObservables()
	go b.crawlerSvc.Start()
	go b.handleBlockChainEvents()
	// A zero interval disables rebroadcasting.
	if b.rebroadcastInterval > 0 {
		go b.rebroadcastPendingTxs()
	}
}

func (b *blockchainListener) StopObserveBlockchain() {
	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.crawlerSvc.Stop()
	})
}

func (b *blockchainListener) handleBlockChainEvents() {
	for event := range b.crawlerSvc.GetEventChannel() {
		switch e := event.(type) {
		case crawler.CloseEvent:
			return
		case crawler.CoinEvent:
			b.handleCoinEvent(e)
		}
	}
}

func (b *blockchainListener) handleCoinEvent(event crawler.CoinEvent) {
	ctx := context.Background()

	switch event.EventType {
	case crawler.CoinCreated:
		log.Debugf("coin %s appeared on chain", event.CoinID)
	case crawler.CoinSpent:
		if err := b.tradeManager.CoinsOfInterestFarmed(
			ctx, event.State, event.ForkHeight,
		); err != nil {
			log.WithError(err).Warnf(
				"trying to reconcile trades for spent coin %s", event.CoinID,
			)
		}
	}

	// A handled spend can settle or fail a trade, realign the watch set.
	b.refreshObservables()
}

func (b *blockchainListener) refreshObservables() {
	coins, err := b.tradeManager.GetCoinsOfInterest(context.Background())
	if err != nil {
		log.WithError(err).Warn("trying to list the coins to observe")
		return
	}

	target := make(map[string]coinset.Hash, len(coins))
	for _, coin := range coins {
		id := coin.ID()
		target[id.String()] = id
	}

	for key, coinID := range target {
		if _, ok := b.watched[key]; !ok {
			b.crawlerSvc.AddObservable(crawler.NewCoinObservable(coinID, 0))
		}
	}
	for key, coinID := range b.watched {
		if _, ok := target[key]; !ok {
			b.crawlerSvc.RemoveObservable(crawler.NewCoinObservable(coinID, 0))
		}
	}
	b.watched = target
}

func (b *blockchainListener) rebroadcastPendingTxs() {
	ticker := time.NewTicker(b.rebroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := b.txSink.RebroadcastPending(context.Background()); err != nil {
				log.WithError(err).Warn("trying to rebroadcast pending transactions")
			}
		case <-b.stopChan:
			return
		}
	}
}
