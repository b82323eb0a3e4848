package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/odex-network/odex-daemon/config"
	"github.com/odex-network/odex-daemon/internal/core/application"
	dbbadger "github.com/odex-network/odex-daemon/internal/infrastructure/storage/db/badger"
	txsink "github.com/odex-network/odex-daemon/internal/infrastructure/tx-sink"
	walletregistry "github.com/odex-network/odex-daemon/internal/infrastructure/wallet-registry"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/crawler"
	"github.com/odex-network/odex-daemon/pkg/explorer/nodews"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	log.Infof("datadir: %s", config.GetDatadir())
	log.Infof("network: %s", config.GetString(config.NetworkKey))

	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	repoManager, err := dbbadger.NewRepoManager(dbDir, nil)
	if err != nil {
		log.WithError(err).Panic("error while opening the trades store")
	}
	defer repoManager.Close()

	explorerSvc, err := config.GetExplorer()
	if err != nil {
		log.WithError(err).Panic("error while connecting to the node")
	}

	// The daemon runs in monitor mode. Offers are built, accepted and
	// cancelled by the embedding wallet software; here the registry only
	// resolves ownership through the shared coin index.
	registry, err := walletregistry.NewService(walletregistry.Opts{
		MainWallet:     watchOnlyWallet{},
		CoinRepository: repoManager.CoinRepository(),
	})
	if err != nil {
		log.WithError(err).Panic("error while setting up the wallet registry")
	}

	pendingTxSink, err := txsink.NewService(
		repoManager.TransactionRepository(), explorerSvc,
	)
	if err != nil {
		log.WithError(err).Panic("error while setting up the transaction sink")
	}

	tradeManager := application.NewTradeManager(
		repoManager, registry, pendingTxSink, explorerSvc,
	)

	errorHandler := func(err error) { log.Warn(err) }
	crawlerSvc := crawler.NewService(crawler.Opts{
		ExplorerSvc:        explorerSvc,
		CrawlerInterval:    config.GetInt(config.CrawlIntervalKey),
		ExplorerLimit:      config.GetFloat(config.CrawlLimitKey),
		ExplorerTokenBurst: config.GetInt(config.CrawlTokenBurstKey),
		ErrorHandler:       errorHandler,
	})

	rebroadcastInterval :=
		time.Duration(config.GetInt(config.RebroadcastIntervalKey)) * time.Second
	blockchainListener := application.NewBlockchainListener(
		tradeManager, crawlerSvc, pendingTxSink, rebroadcastInterval,
	)
	blockchainListener.ObserveBlockchain()
	defer blockchainListener.StopObserveBlockchain()

	// The crawler polls every watched coin regardless, the push channel only
	// shortens the wait for a settlement.
	if wsEndpoint := config.GetString(config.NodeWSEndpointKey); wsEndpoint != "" {
		stopPump, err := startCoinStatePump(wsEndpoint, tradeManager)
		if err != nil {
			log.WithError(err).Warn("could not subscribe to node push notifications")
		} else {
			defer stopPump()
		}
	}

	log.Info("trade daemon is up watching the pending trades")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down the daemon")
}

func startCoinStatePump(
	endpoint string, tradeManager application.TradeManager,
) (func(), error) {
	client, err := nodews.Connect(context.Background(), endpoint)
	if err != nil {
		return nil, err
	}

	coins, err := tradeManager.GetCoinsOfInterest(context.Background())
	if err != nil {
		log.WithError(err).Warn("could not load the coins of interest")
	} else if len(coins) > 0 {
		if err := client.Subscribe(coinset.CoinIDs(coins)); err != nil {
			log.WithError(err).Warn("could not subscribe to the coins of interest")
		}
	}

	go func() {
		for notification := range client.Notifications() {
			if err := tradeManager.CoinsOfInterestFarmed(
				context.Background(), notification.CoinState, notification.ForkHeight,
			); err != nil {
				log.WithError(err).Warnf(
					"trying to reconcile trades for pushed coin %s",
					notification.CoinState.Coin.ID(),
				)
			}
		}
	}()

	return client.Close, nil
}
