package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/google/uuid"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	log "github.com/sirupsen/logrus"
)

const (
	New       Status = "NEW"
	Waiting   Status = "WAITING"
	Processed Status = "PROCESSED"
)

type Status string

type observableStatus struct {
	sync.RWMutex
	status Status
}

func NewObservableStatus() *observableStatus {
	return &observableStatus{
		status: New,
	}
}

func (o *observableStatus) Get() Status {
	o.RLock()
	defer o.RUnlock()
	return o.status
}

func (o *observableStatus) Set(status Status) {
	o.Lock()
	defer o.Unlock()
	o.status = status
}

// CoinObservable polls the lifecycle of a single coin and emits an event the
// first time the coin is seen on chain and the first time it is seen spent.
type CoinObservable struct {
	CoinID     coinset.Hash
	ForkHeight uint32

	// seen/spent track what has already been reported. They are touched by
	// the handler goroutine only.
	seen  bool
	spent bool
}

// NewCoinObservable returns an observable watching the coin with the given
// id. A positive forkHeight is forwarded to the node on every poll.
func NewCoinObservable(coinID coinset.Hash, forkHeight uint32) *CoinObservable {
	return &CoinObservable{
		CoinID:     coinID,
		ForkHeight: forkHeight,
	}
}

func (c *CoinObservable) observe(
	explorerSvc explorer.Service,
	errChan chan error,
	eventChan chan Event,
	observableStatus *observableStatus,
	rateLimiter *rate.Limiter,
) {
	if c == nil {
		return
	}

	observableStatus.Set(Waiting)
	if err := rateLimiter.Wait(context.Background()); err != nil {
		errChan <- err
		return
	}

	states, err := explorerSvc.GetCoinStates(
		context.Background(), []coinset.Hash{c.CoinID}, c.ForkHeight,
	)
	if err != nil {
		errChan <- err
		return
	}

	observableStatus.Set(Processed)

	// the node does not know the coin yet
	if len(states) == 0 {
		return
	}
	state := states[0]

	if !c.seen {
		c.seen = true
		eventChan <- CoinEvent{
			ID:         uuid.NewString(),
			EventType:  CoinCreated,
			CoinID:     c.CoinID,
			State:      state,
			ForkHeight: c.ForkHeight,
		}
	}

	if state.IsSpent() && !c.spent {
		c.spent = true
		eventChan <- CoinEvent{
			ID:         uuid.NewString(),
			EventType:  CoinSpent,
			CoinID:     c.CoinID,
			State:      state,
			ForkHeight: c.ForkHeight,
		}
	}
}

func (c *CoinObservable) key() string {
	return c.CoinID.String()
}

type observableHandler struct {
	observable       Observable
	explorerSvc      explorer.Service
	wg               *sync.WaitGroup
	ticker           *time.Ticker
	eventChan        chan Event
	errChan          chan error
	stopChan         chan struct{}
	stopOnce         *sync.Once
	observableStatus *observableStatus
	rateLimiter      *rate.Limiter
}

func newObservableHandler(
	observable Observable,
	explorerSvc explorer.Service,
	wg *sync.WaitGroup,
	interval int,
	eventChan chan Event,
	errChan chan error,
	rateLimiter *rate.Limiter,
) *observableHandler {
	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	stopChan := make(chan struct{})

	return &observableHandler{
		observable,
		explorerSvc,
		wg,
		ticker,
		eventChan,
		errChan,
		stopChan,
		&sync.Once{},
		NewObservableStatus(),
		rateLimiter,
	}
}

// start runs the polling loop. The caller must have reserved a slot on the
// shared wait group, released here on return.
func (oh *observableHandler) start() {
	oh.logAction("start")
	defer oh.wg.Done()

	for {
		select {
		case <-oh.ticker.C:
			if oh.observableStatus.Get() != Waiting {
				oh.observable.observe(
					oh.explorerSvc,
					oh.errChan,
					oh.eventChan,
					oh.observableStatus,
					oh.rateLimiter,
				)
			}
		case <-oh.stopChan:
			oh.ticker.Stop()
			return
		}
	}
}

func (oh *observableHandler) stop() {
	oh.stopOnce.Do(func() {
		oh.logAction("stop")
		close(oh.stopChan)
	})
}

func (oh *observableHandler) logAction(action string) {
	if _, ok := oh.observable.(*CoinObservable); ok {
		log.Debugf("%s observing coin: %v", action, oh.observable.key())
	}
}
