package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/odex-network/odex-daemon/internal/core/application"
	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/internal/infrastructure/storage/db/inmemory"
	txsink "github.com/odex-network/odex-daemon/internal/infrastructure/tx-sink"
	walletregistry "github.com/odex-network/odex-daemon/internal/infrastructure/wallet-registry"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/crawler"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"github.com/odex-network/odex-daemon/pkg/offer"
	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"
)

// simWallet simulates a wallet over a fixed pool of coins: puzzle hashes are
// random but remembered, spends declare their conditions, nothing is signed.
// With a driver set it behaves as the wallet of that asset.
type simWallet struct {
	id     uint32
	driver *coinset.PuzzleInfo

	mtx        sync.Mutex
	coins      []coinset.Coin
	derived    map[coinset.Hash]struct{}
	offerFees  []uint64
	offerCalls int
}

func newSimWallet(id uint32, amounts ...uint64) *simWallet {
	w := &simWallet{id: id, derived: map[coinset.Hash]struct{}{}}
	for _, amount := range amounts {
		w.coins = append(w.coins, coinset.Coin{
			ParentCoinID: randomHash(),
			PuzzleHash:   w.mustNewPuzzleHash(),
			Amount:       amount,
		})
	}
	return w
}

// simAssetWallet adds the asset-bound capabilities on top of simWallet.
type simAssetWallet struct {
	*simWallet
}

func newSimAssetWallet(
	id uint32, driver *coinset.PuzzleInfo, amounts ...uint64,
) simAssetWallet {
	w := newSimWallet(id, amounts...)
	w.driver = driver
	return simAssetWallet{w}
}

func (w simAssetWallet) AssetID() coinset.Hash { return w.driver.AssetID }

func (w simAssetWallet) PuzzleInfo(coinset.Hash) (*coinset.PuzzleInfo, error) {
	return w.driver, nil
}

func (w *simWallet) ID() uint32 { return w.id }

func (w *simWallet) Type() ports.WalletType {
	if w.driver == nil {
		return ports.WalletTypeStandard
	}
	return ports.WalletTypeAsset
}

func (w *simWallet) NewPuzzleHash(context.Context) (coinset.Hash, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.mustNewPuzzleHash(), nil
}

func (w *simWallet) OwnsPuzzleHash(
	_ context.Context, ph coinset.Hash,
) (bool, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	_, ok := w.derived[ph]
	return ok, nil
}

func (w *simWallet) CoinsToOffer(
	_ context.Context, _ coinset.Hash, amount, fee uint64,
) ([]coinset.Coin, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.offerCalls++
	w.offerFees = append(w.offerFees, fee)

	target := amount
	if w.driver == nil {
		target += fee
	}
	return w.selectLocked(target, nil)
}

func (w *simWallet) CreateOfferTransactions(
	_ context.Context,
	amount uint64,
	coins []coinset.Coin,
	assertions []coinset.Announcement,
	fee uint64,
) ([]*domain.TransactionRecord, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	settlementPh, err := w.settlementPuzzleHash()
	if err != nil {
		return nil, err
	}
	// An asset wallet cannot burn native value for fees.
	burned := fee
	if w.driver != nil {
		burned = 0
	}
	total := coinset.SumCoins(coins)
	if total < amount+burned {
		return nil, fmt.Errorf("offer underfunded: have %d, want %d", total, amount+burned)
	}

	conditions := []coinset.Condition{
		coinset.NewCreateCoinCondition(settlementPh, amount, nil),
	}
	if change := total - amount - burned; change > 0 {
		conditions = append(
			conditions, coinset.NewCreateCoinCondition(w.mustNewPuzzleHash(), change, nil),
		)
	}
	for _, a := range assertions {
		conditions = append(conditions, coinset.NewAssertPuzzleAnnouncementCondition(a.ID()))
	}
	if burned > 0 {
		conditions = append(conditions, coinset.NewReserveFeeCondition(burned))
	}

	bundle := spendBundle(coins, conditions)
	name, err := bundle.Name()
	if err != nil {
		return nil, err
	}
	tx := domain.NewTransactionRecord(
		name.String(), domain.TransactionTypeOutgoingTrade, w.id, "",
	)
	tx.Bundle = &bundle
	tx.Amount = amount
	tx.FeeAmount = burned
	tx.Additions = bundle.Additions()
	tx.Removals = coins
	return []*domain.TransactionRecord{tx}, nil
}

func (w *simWallet) SelectCoins(
	_ context.Context, amount uint64, exclude []coinset.Coin,
) ([]coinset.Coin, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	excluded := make(map[coinset.Hash]struct{}, len(exclude))
	for _, c := range exclude {
		excluded[c.ID()] = struct{}{}
	}
	return w.selectLocked(amount, excluded)
}

func (w *simWallet) GenerateSignedTransaction(
	_ context.Context,
	amounts []uint64,
	puzzleHashes []coinset.Hash,
	fee uint64,
	coins []coinset.Coin,
) ([]*domain.TransactionRecord, error) {
	if len(amounts) != len(puzzleHashes) {
		return nil, fmt.Errorf("amounts and puzzle hashes do not match")
	}

	conditions := make([]coinset.Condition, 0, len(amounts)+1)
	var paid uint64
	for i, amount := range amounts {
		conditions = append(
			conditions, coinset.NewCreateCoinCondition(puzzleHashes[i], amount, nil),
		)
		paid += amount
	}
	if fee > 0 {
		conditions = append(conditions, coinset.NewReserveFeeCondition(fee))
	}
	if total := coinset.SumCoins(coins); total < paid+fee {
		return nil, fmt.Errorf("spend underfunded: have %d, want %d", total, paid+fee)
	}

	bundle := spendBundle(coins, conditions)
	name, err := bundle.Name()
	if err != nil {
		return nil, err
	}
	tx := domain.NewTransactionRecord(
		name.String(), domain.TransactionTypeOutgoing, w.id, "",
	)
	tx.Bundle = &bundle
	tx.Amount = paid
	tx.FeeAmount = fee
	tx.ToPuzzleHash = puzzleHashes[0]
	tx.Additions = bundle.Additions()
	tx.Removals = coins
	return []*domain.TransactionRecord{tx}, nil
}

func (w *simWallet) settlementPuzzleHash() (coinset.Hash, error) {
	if w.driver == nil {
		return offer.SettlementPuzzleHash, nil
	}
	return coinset.OuterPuzzleHash(w.driver, offer.SettlementReveal)
}

func (w *simWallet) mustNewPuzzleHash() coinset.Hash {
	h := randomHash()
	w.derived[h] = struct{}{}
	return h
}

func (w *simWallet) selectLocked(
	amount uint64, exclude map[coinset.Hash]struct{},
) ([]coinset.Coin, error) {
	var selected []coinset.Coin
	var total uint64
	for _, c := range w.coins {
		if _, skip := exclude[c.ID()]; skip {
			continue
		}
		selected = append(selected, c)
		total += c.Amount
		if total >= amount {
			return selected, nil
		}
	}
	return nil, fmt.Errorf("insufficient funds: have %d, want %d", total, amount)
}

func (w *simWallet) spendable() []coinset.Coin {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	out := make([]coinset.Coin, len(w.coins))
	copy(out, w.coins)
	return out
}

func (w *simWallet) offerCallCount() int {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.offerCalls
}

func (w *simWallet) offerFeesSeen() []uint64 {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	out := make([]uint64, len(w.offerFees))
	copy(out, w.offerFees)
	return out
}

// spendBundle spends the given coins, the first one carrying the conditions.
func spendBundle(
	coins []coinset.Coin, conditions []coinset.Condition,
) coinset.SpendBundle {
	spends := make([]coinset.CoinSpend, 0, len(coins))
	for i, c := range coins {
		spend := coinset.CoinSpend{Coin: c, PuzzleReveal: []byte("sim")}
		if i == 0 {
			spend.Solution = conditions
		}
		spends = append(spends, spend)
	}
	return coinset.SpendBundle{
		CoinSpends:          spends,
		AggregatedSignature: randstr.Bytes(8),
	}
}

// fakeChain is a shared in-memory ledger view: tests add and spend coins on
// it, and the maker's and taker's environments read the same state.
type fakeChain struct {
	mtx        sync.Mutex
	states     map[coinset.Hash]explorer.CoinState
	broadcasts []coinset.SpendBundle
	height     uint32
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		states: map[coinset.Hash]explorer.CoinState{},
		height: 100,
	}
}

func (f *fakeChain) addCoin(c coinset.Coin, height uint32) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.states[c.ID()] = explorer.CoinState{Coin: c, CreatedHeight: height}
}

func (f *fakeChain) spendCoin(id coinset.Hash, height uint32) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	state, ok := f.states[id]
	if !ok {
		return
	}
	h := height
	state.SpentHeight = &h
	f.states[id] = state
}

func (f *fakeChain) broadcastCount() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return len(f.broadcasts)
}

func (f *fakeChain) GetCoinState(
	_ context.Context, id coinset.Hash,
) (*explorer.CoinState, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	state, ok := f.states[id]
	if !ok {
		return nil, explorer.ErrCoinNotFound
	}
	return &state, nil
}

func (f *fakeChain) GetCoinStates(
	_ context.Context, ids []coinset.Hash, _ uint32,
) ([]explorer.CoinState, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	var states []explorer.CoinState
	for _, id := range ids {
		if state, ok := f.states[id]; ok {
			states = append(states, state)
		}
	}
	return states, nil
}

func (f *fakeChain) GetCoinsByPuzzleHash(
	_ context.Context, ph coinset.Hash, includeSpent bool,
) ([]explorer.CoinState, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	var states []explorer.CoinState
	for _, state := range f.states {
		if state.Coin.PuzzleHash != ph {
			continue
		}
		if state.IsSpent() && !includeSpent {
			continue
		}
		states = append(states, state)
	}
	return states, nil
}

func (f *fakeChain) BroadcastBundle(
	_ context.Context, bundle *coinset.SpendBundle,
) (coinset.Hash, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.broadcasts = append(f.broadcasts, *bundle)
	return bundle.Name()
}

func (f *fakeChain) GetBlockHeight(context.Context) (uint32, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.height, nil
}

// fakeCrawler lets listener tests feed events by hand and inspect the watch
// set.
type fakeCrawler struct {
	mtx      sync.Mutex
	events   chan crawler.Event
	observed map[string]struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

func newFakeCrawler() *fakeCrawler {
	return &fakeCrawler{
		events:   make(chan crawler.Event, 10),
		observed: map[string]struct{}{},
		stopChan: make(chan struct{}),
	}
}

func (f *fakeCrawler) Start() { <-f.stopChan }

func (f *fakeCrawler) Stop() {
	f.stopOnce.Do(func() {
		close(f.stopChan)
		f.events <- crawler.CloseEvent{}
	})
}

func (f *fakeCrawler) AddObservable(o crawler.Observable) {
	co, ok := o.(*crawler.CoinObservable)
	if !ok {
		return
	}
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.observed[co.CoinID.String()] = struct{}{}
}

func (f *fakeCrawler) RemoveObservable(o crawler.Observable) {
	co, ok := o.(*crawler.CoinObservable)
	if !ok {
		return
	}
	f.mtx.Lock()
	defer f.mtx.Unlock()
	delete(f.observed, co.CoinID.String())
}

func (f *fakeCrawler) IsObservingCoins(ids []coinset.Hash) bool {
	if len(ids) == 0 {
		return false
	}
	f.mtx.Lock()
	defer f.mtx.Unlock()
	for _, id := range ids {
		if _, ok := f.observed[id.String()]; !ok {
			return false
		}
	}
	return true
}

func (f *fakeCrawler) GetEventChannel() chan crawler.Event { return f.events }

func (f *fakeCrawler) emit(event crawler.Event) { f.events <- event }

type testEnv struct {
	manager  application.TradeManager
	repoMgr  ports.RepoManager
	chain    *fakeChain
	registry ports.WalletRegistry
	sink     ports.PendingTxSink
}

type fundable interface {
	ID() uint32
	spendable() []coinset.Coin
}

// newTestEnv wires a trade manager over in-memory stores, registers the
// given wallets and indexes their coins both locally and on the shared
// chain.
func newTestEnv(
	t *testing.T, chain *fakeChain, main *simWallet, extra ...ports.Wallet,
) *testEnv {
	t.Helper()

	repoMgr := inmemory.NewRepoManager()
	registry, err := walletregistry.NewService(walletregistry.Opts{
		MainWallet:     main,
		Wallets:        extra,
		CoinRepository: repoMgr.CoinRepository(),
	})
	require.NoError(t, err)

	sink, err := txsink.NewService(repoMgr.TransactionRepository(), chain)
	require.NoError(t, err)

	env := &testEnv{
		manager:  application.NewTradeManager(repoMgr, registry, sink, chain),
		repoMgr:  repoMgr,
		chain:    chain,
		registry: registry,
		sink:     sink,
	}
	env.fundWallet(t, main)
	for _, w := range extra {
		if sim, ok := w.(fundable); ok {
			env.fundWallet(t, sim)
		}
	}
	return env
}

func (e *testEnv) fundWallet(t *testing.T, w fundable) {
	t.Helper()
	for _, coin := range w.spendable() {
		err := e.repoMgr.CoinRepository().AddCoins(
			context.Background(),
			[]*domain.CoinRecord{domain.NewCoinRecord(coin, w.ID(), 100)},
		)
		require.NoError(t, err)
		e.chain.addCoin(coin, 100)
	}
}

// createNativeForCatOffer creates the canonical maker side used across the
// tests: 1000 native offered out of coins {700, 400}, 600 of an asset
// requested.
func createNativeForCatOffer(
	t *testing.T, chain *fakeChain, fee uint64,
) (*testEnv, *domain.TradeRecord, *coinset.PuzzleInfo) {
	t.Helper()

	driver := newDriver()
	env := newTestEnv(t, chain, newSimWallet(1, 700, 400))
	trade, err := env.manager.CreateOffer(
		context.Background(),
		map[application.Selector]int64{
			application.WalletSelector(1):             -1000,
			application.AssetSelector(driver.AssetID): 600,
		},
		map[coinset.Hash]*coinset.PuzzleInfo{driver.AssetID: driver},
		fee,
		false,
	)
	require.NoError(t, err)
	return env, trade, driver
}

// acceptNativeForCatOffer spins up the matching taker and accepts the
// foreign offer with it.
func acceptNativeForCatOffer(
	t *testing.T, chain *fakeChain, foreign *offer.Offer, driver *coinset.PuzzleInfo,
) (*testEnv, *domain.TradeRecord) {
	t.Helper()

	env := newTestEnv(
		t, chain, newSimWallet(1), newSimAssetWallet(2, driver, 600),
	)
	trade, err := env.manager.AcceptOffer(context.Background(), foreign, 0)
	require.NoError(t, err)
	return env, trade
}

func decodeOffer(t *testing.T, trade *domain.TradeRecord) *offer.Offer {
	t.Helper()
	o, err := trade.Offer()
	require.NoError(t, err)
	return o
}

func offeredSettlementCoin(
	t *testing.T, o *offer.Offer, assetID coinset.Hash,
) coinset.Coin {
	t.Helper()
	offered, err := o.OfferedCoins()
	require.NoError(t, err)
	require.NotEmpty(t, offered[assetID])
	return offered[assetID][0]
}

// ownedPrimaryCoin returns the offer's primary coin the environment's coin
// index attributes to one of its wallets.
func ownedPrimaryCoin(t *testing.T, env *testEnv, o *offer.Offer) coinset.Coin {
	t.Helper()
	primaries, err := o.PrimaryCoins()
	require.NoError(t, err)
	for _, c := range primaries {
		records, err := env.repoMgr.CoinRepository().GetCoinsByIDs(
			context.Background(), []string{c.ID().String()},
		)
		require.NoError(t, err)
		if len(records) > 0 {
			return c
		}
	}
	t.Fatal("no primary coin owned by the environment")
	return coinset.Coin{}
}

// foreignPrimaryCoin returns the offer's primary coin belonging to the
// counterparty of the environment.
func foreignPrimaryCoin(t *testing.T, env *testEnv, o *offer.Offer) coinset.Coin {
	t.Helper()
	primaries, err := o.PrimaryCoins()
	require.NoError(t, err)
	for _, c := range primaries {
		records, err := env.repoMgr.CoinRepository().GetCoinsByIDs(
			context.Background(), []string{c.ID().String()},
		)
		require.NoError(t, err)
		if len(records) == 0 {
			return c
		}
	}
	t.Fatal("every primary coin is owned by the environment")
	return coinset.Coin{}
}

func spentState(c coinset.Coin, height uint32) explorer.CoinState {
	h := height
	return explorer.CoinState{Coin: c, CreatedHeight: 100, SpentHeight: &h}
}

func unspentState(c coinset.Coin) explorer.CoinState {
	return explorer.CoinState{Coin: c, CreatedHeight: 100}
}

func newDriver() *coinset.PuzzleInfo {
	return &coinset.PuzzleInfo{Type: "CAT", AssetID: randomHash()}
}

func randomHash() coinset.Hash {
	h, _ := coinset.NewHash(randstr.Bytes(32))
	return h
}
