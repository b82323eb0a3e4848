package crawler

import (
	"sync"

	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"golang.org/x/time/rate"
)

const (
	eventQueueMaxSize = 100
	errorQueueMaxSize = 10
)

type blockchainCrawler struct {
	interval     int
	explorerSvc  explorer.Service
	errChan      chan error
	eventChan    chan Event
	observables  map[string]*observableHandler
	errorHandler func(err error)
	mutex        *sync.RWMutex
	wg           *sync.WaitGroup
	rateLimiter  *rate.Limiter
}

// Opts defines the parameters needed for creating a crawler service with NewService method
type Opts struct {
	ExplorerSvc explorer.Service
	// CrawlerInterval is the polling interval in milliseconds.
	CrawlerInterval int
	// ExplorerLimit is the max number of node requests per second shared by
	// all observables.
	ExplorerLimit float64
	// ExplorerTokenBurst is the burst size of the shared limiter.
	ExplorerTokenBurst int
	ErrorHandler       func(err error)
}

// NewService returns a coinCrawler that is ready to watch for blockchain
// activities. Use Start and Stop methods to manage it.
func NewService(opts Opts) Service {
	rateLimiter := rate.NewLimiter(
		rate.Limit(opts.ExplorerLimit), opts.ExplorerTokenBurst,
	)

	return &blockchainCrawler{
		interval:     opts.CrawlerInterval,
		explorerSvc:  opts.ExplorerSvc,
		errChan:      make(chan error, errorQueueMaxSize),
		eventChan:    make(chan Event, eventQueueMaxSize),
		observables:  map[string]*observableHandler{},
		errorHandler: opts.ErrorHandler,
		mutex:        &sync.RWMutex{},
		wg:           &sync.WaitGroup{},
		rateLimiter:  rateLimiter,
	}
}

// Start starts crawler which periodically "scans" blockchain for specific
// events/Observable object
func (bc *blockchainCrawler) Start() {
	for err := range bc.errChan {
		go bc.errorHandler(err)
	}
}

// Stop stops crawler and emits a final CloseEvent on the event channel.
func (bc *blockchainCrawler) Stop() {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	for _, obsHandler := range bc.observables {
		obsHandler.stop()
	}
	bc.wg.Wait()
	bc.eventChan <- CloseEvent{}
	close(bc.errChan)
}

// GetEventChannel returns Event channel which can be used to "listen" to
// blockchain events
func (bc *blockchainCrawler) GetEventChannel() chan Event {
	bc.mutex.RLock()
	defer bc.mutex.RUnlock()
	return bc.eventChan
}

// AddObservable adds new Observable to the list of Observables to be "watched
// over" only if the same Observable is not already in the list
func (bc *blockchainCrawler) AddObservable(observable Observable) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if _, ok := bc.observables[observable.key()]; !ok {
		obsHandler := newObservableHandler(
			observable,
			bc.explorerSvc,
			bc.wg,
			bc.interval,
			bc.eventChan,
			bc.errChan,
			bc.rateLimiter,
		)

		bc.observables[observable.key()] = obsHandler
		bc.wg.Add(1)
		go obsHandler.start()
	}
}

// RemoveObservable stops "watching" given Observable
func (bc *blockchainCrawler) RemoveObservable(observable Observable) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if obsHandler, ok := bc.observables[observable.key()]; ok {
		obsHandler.stop()
		delete(bc.observables, observable.key())
	}
}

// IsObservingCoins returns whether the crawler is watching every coin given
// as parameter, false in the other case.
func (bc *blockchainCrawler) IsObservingCoins(coinIDs []coinset.Hash) bool {
	if len(coinIDs) == 0 {
		return false
	}

	bc.mutex.RLock()
	defer bc.mutex.RUnlock()

	for _, coinID := range coinIDs {
		if _, ok := bc.observables[coinID.String()]; !ok {
			return false
		}
	}
	return true
}
