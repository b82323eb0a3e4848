package crawler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"
)

func TestCrawlerEmitsCoinLifecycleEvents(t *testing.T) {
	coin := randomCoin(1000)
	fake := newFakeExplorer()
	fake.setUnspent(coin, 100)

	crawlSvc := NewService(Opts{
		ExplorerSvc:        fake,
		CrawlerInterval:    20,
		ExplorerLimit:      100,
		ExplorerTokenBurst: 1,
		ErrorHandler: func(err error) {
			t.Log(err)
		},
	})
	go crawlSvc.Start()

	crawlSvc.AddObservable(NewCoinObservable(coin.ID(), 0))
	require.True(t, crawlSvc.IsObservingCoins([]coinset.Hash{coin.ID()}))

	created := waitForEvent(t, crawlSvc, CoinCreated)
	require.Equal(t, coin.ID(), created.CoinID)
	require.NotEmpty(t, created.ID)
	require.False(t, created.State.IsSpent())

	fake.setSpent(coin.ID(), 105)

	spent := waitForEvent(t, crawlSvc, CoinSpent)
	require.Equal(t, coin.ID(), spent.CoinID)
	require.True(t, spent.State.IsSpent())
	require.Equal(t, uint32(105), *spent.State.SpentHeight)

	crawlSvc.RemoveObservable(NewCoinObservable(coin.ID(), 0))
	require.False(t, crawlSvc.IsObservingCoins([]coinset.Hash{coin.ID()}))

	crawlSvc.Stop()

	ev := nextEvent(t, crawlSvc)
	require.Equal(t, CloseSignal, ev.Type())
}

func TestCrawlerReportsUnknownCoinOnceSeen(t *testing.T) {
	coin := randomCoin(500)
	fake := newFakeExplorer()

	crawlSvc := NewService(Opts{
		ExplorerSvc:        fake,
		CrawlerInterval:    20,
		ExplorerLimit:      100,
		ExplorerTokenBurst: 1,
		ErrorHandler: func(err error) {
			t.Log(err)
		},
	})
	go crawlSvc.Start()

	crawlSvc.AddObservable(NewCoinObservable(coin.ID(), 0))

	// the coin is unknown to the node, nothing must be emitted
	select {
	case ev := <-crawlSvc.GetEventChannel():
		t.Fatalf("unexpected event %v", ev.Type())
	case <-time.After(200 * time.Millisecond):
	}

	fake.setUnspent(coin, 400)

	created := waitForEvent(t, crawlSvc, CoinCreated)
	require.Equal(t, coin.ID(), created.CoinID)

	crawlSvc.Stop()
}

func waitForEvent(t *testing.T, svc Service, eventType EventType) CoinEvent {
	t.Helper()

	for {
		select {
		case event := <-svc.GetEventChannel():
			if event.Type() != eventType {
				continue
			}
			return event.(CoinEvent)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}

func nextEvent(t *testing.T, svc Service) Event {
	t.Helper()

	select {
	case event := <-svc.GetEventChannel():
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func randomHash() coinset.Hash {
	hash, _ := coinset.NewHashFromHex(randstr.Hex(32))
	return hash
}

func randomCoin(amount uint64) coinset.Coin {
	return coinset.Coin{
		ParentCoinID: randomHash(),
		PuzzleHash:   randomHash(),
		Amount:       amount,
	}
}

// MOCK //

type fakeExplorer struct {
	mtx    sync.Mutex
	states map[coinset.Hash]explorer.CoinState
}

func newFakeExplorer() *fakeExplorer {
	return &fakeExplorer{
		states: make(map[coinset.Hash]explorer.CoinState),
	}
}

func (f *fakeExplorer) setUnspent(coin coinset.Coin, height uint32) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.states[coin.ID()] = explorer.CoinState{
		Coin:          coin,
		CreatedHeight: height,
	}
}

func (f *fakeExplorer) setSpent(coinID coinset.Hash, height uint32) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	state := f.states[coinID]
	state.SpentHeight = &height
	f.states[coinID] = state
}

func (f *fakeExplorer) GetCoinState(
	ctx context.Context, coinID coinset.Hash,
) (*explorer.CoinState, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if state, ok := f.states[coinID]; ok {
		return &state, nil
	}
	return nil, explorer.ErrCoinNotFound
}

func (f *fakeExplorer) GetCoinStates(
	ctx context.Context, coinIDs []coinset.Hash, forkHeight uint32,
) ([]explorer.CoinState, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	states := make([]explorer.CoinState, 0, len(coinIDs))
	for _, coinID := range coinIDs {
		if state, ok := f.states[coinID]; ok {
			states = append(states, state)
		}
	}
	return states, nil
}

func (f *fakeExplorer) GetCoinsByPuzzleHash(
	ctx context.Context, puzzleHash coinset.Hash, includeSpent bool,
) ([]explorer.CoinState, error) {
	return nil, nil
}

func (f *fakeExplorer) BroadcastBundle(
	ctx context.Context, bundle *coinset.SpendBundle,
) (coinset.Hash, error) {
	return bundle.Name()
}

func (f *fakeExplorer) GetBlockHeight(ctx context.Context) (uint32, error) {
	return 0, nil
}
