package application

import (
	"context"
	"fmt"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"github.com/odex-network/odex-daemon/pkg/offer"
	log "github.com/sirupsen/logrus"
)

const readOnlyTx = true

// TradeManager orchestrates the whole life of an offer: building it from a
// map of terms, accepting a foreign one, cancelling, and moving trades
// through their statuses as the chain settles or interferes with them.
type TradeManager interface {
	// CreateOffer builds an offer from the given terms and persists it as a
	// pending trade. With validateOnly the offer is built and returned
	// without persisting anything, for fee and amount dry-runs.
	CreateOffer(
		ctx context.Context,
		terms map[Selector]int64,
		drivers map[coinset.Hash]*coinset.PuzzleInfo,
		fee uint64,
		validateOnly bool,
	) (*domain.TradeRecord, error)
	// CheckOfferValidity returns whether every coin the offer spends is
	// still unspent on the live ledger.
	CheckOfferValidity(ctx context.Context, o *offer.Offer) (bool, error)
	// AcceptOffer builds the complement of a foreign offer, aggregates the
	// two halves, persists the trade and submits the settlement bundle.
	AcceptOffer(ctx context.Context, foreign *offer.Offer, fee uint64) (*domain.TradeRecord, error)
	// CancelPendingOffer marks a trade cancelled without spending anything.
	// Nothing stops the counterparty from still completing the trade.
	CancelPendingOffer(ctx context.Context, tradeID string) error
	// CancelPendingOfferSafely re-spends the trade's primary coins to fresh
	// puzzle hashes of their own wallets, invalidating the offer on chain.
	// The trade stays pending cancel until reconciliation sees the spends.
	CancelPendingOfferSafely(
		ctx context.Context, tradeID string, fee uint64,
	) ([]*domain.TransactionRecord, error)
	// CoinsOfInterestFarmed reconciles a trade against the movement of one
	// of its monitored coins.
	CoinsOfInterestFarmed(
		ctx context.Context, coinState explorer.CoinState, forkHeight uint32,
	) error
	// GetTradeByID returns the trade with the given id.
	GetTradeByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)
	// GetAllTrades returns every stored trade.
	GetAllTrades(ctx context.Context) ([]*domain.TradeRecord, error)
	// GetTradesByStatus returns the trades in the given status.
	GetTradesByStatus(
		ctx context.Context, status domain.TradeStatus,
	) ([]*domain.TradeRecord, error)
	// GetTradeByCoin returns the non-cancelled trade monitoring the given
	// coin, or nil if no trade cares about it.
	GetTradeByCoin(ctx context.Context, coin coinset.Coin) (*domain.TradeRecord, error)
	// GetCoinsOfInterest returns the union of all pending trades' monitored
	// coins, the set a chain watcher must subscribe to.
	GetCoinsOfInterest(ctx context.Context) ([]coinset.Coin, error)
	// GetLockedCoins returns the indexed coins currently committed to
	// pending trades, optionally filtered by owning wallet.
	GetLockedCoins(ctx context.Context, walletID *uint32) ([]*domain.CoinRecord, error)
	// CalculateTxRecords derives the per-wallet transaction records of an
	// offer. With settled the records are derived from the settlement
	// bundle, including the payouts claimed from settlement coins.
	CalculateTxRecords(
		ctx context.Context, o *offer.Offer, settled bool,
	) ([]*domain.TransactionRecord, error)
}

type tradeManager struct {
	repoManager ports.RepoManager
	registry    ports.WalletRegistry
	txSink      ports.PendingTxSink
	explorerSvc explorer.Service
	locker      *tradeLocker
}

// NewTradeManager returns a TradeManager with all the needed services.
func NewTradeManager(
	repoManager ports.RepoManager,
	registry ports.WalletRegistry,
	txSink ports.PendingTxSink,
	explorerSvc explorer.Service,
) TradeManager {
	return newTradeManager(repoManager, registry, txSink, explorerSvc)
}

func newTradeManager(
	repoManager ports.RepoManager,
	registry ports.WalletRegistry,
	txSink ports.PendingTxSink,
	explorerSvc explorer.Service,
) *tradeManager {
	return &tradeManager{
		repoManager: repoManager,
		registry:    registry,
		txSink:      txSink,
		explorerSvc: explorerSvc,
		locker:      newTradeLocker(),
	}
}

func (m *tradeManager) CreateOffer(
	ctx context.Context,
	terms map[Selector]int64,
	drivers map[coinset.Hash]*coinset.PuzzleInfo,
	fee uint64,
	validateOnly bool,
) (*domain.TradeRecord, error) {
	builtOffer, err := m.buildOffer(ctx, terms, drivers, fee)
	if err != nil {
		return nil, err
	}

	trade, err := domain.NewTradeRecord(builtOffer, domain.TradeStatusPendingAccept, true)
	if err != nil {
		return nil, err
	}
	if validateOnly {
		return trade, nil
	}

	if _, err := m.repoManager.RunTransaction(
		ctx, !readOnlyTx,
		func(ctx context.Context) (interface{}, error) {
			return nil, m.repoManager.TradeRepository().AddTrade(ctx, trade)
		},
	); err != nil {
		return nil, err
	}

	log.Infof("trade with id %s created, offer pending accept", trade.TradeID)
	return trade, nil
}

// buildOffer assembles one half of a trade. Terms are walked in canonical
// selector order, so the fee owner and the notarization nonce do not depend
// on map iteration. Everything is accumulated locally and discarded wholesale
// on any failure: coin selection stays advisory until the offer exists.
func (m *tradeManager) buildOffer(
	ctx context.Context,
	terms map[Selector]int64,
	drivers map[coinset.Hash]*coinset.PuzzleInfo,
	fee uint64,
) (*offer.Offer, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("cannot build an offer without terms")
	}

	offerDrivers := make(map[coinset.Hash]*coinset.PuzzleInfo, len(drivers))
	for assetID, driver := range drivers {
		offerDrivers[assetID] = driver
	}

	type offeredEntry struct {
		wallet ports.Offeror
		amount uint64
		coins  []coinset.Coin
		fee    uint64
	}

	requestedPayments := make(map[coinset.Hash][]offer.Payment)
	offered := make([]offeredEntry, 0, len(terms))

	for _, sel := range sortedSelectors(terms) {
		amount := terms[sel]
		if amount == 0 {
			return nil, fmt.Errorf("%w: %s", ErrZeroAmount, sel)
		}

		var wallet ports.Wallet
		var assetID coinset.Hash

		if amount > 0 {
			var receivePh coinset.Hash
			if sel.IsAsset() {
				// Requesting an asset we may have no wallet for: payment goes
				// to a puzzle hash of the main wallet, the driver wraps it.
				assetID = sel.AssetID()
				wallet, _ = m.registry.WalletForAssetID(assetID)
				ph, err := m.registry.MainWallet().NewPuzzleHash(ctx)
				if err != nil {
					return nil, err
				}
				receivePh = ph
			} else {
				w, ok := m.registry.WalletByID(sel.WalletID())
				if !ok {
					return nil, fmt.Errorf("%w: id %d", ErrWalletNotFound, sel.WalletID())
				}
				wallet = w
				ph, err := wallet.NewPuzzleHash(ctx)
				if err != nil {
					return nil, err
				}
				receivePh = ph
				assetID, err = assetIDOfWallet(wallet)
				if err != nil {
					return nil, err
				}
			}

			// Non-native payouts memo the receiving puzzle hash so the
			// wallet can recognize the wrapped coin.
			var memos [][]byte
			if assetID != offer.NativeAsset {
				memos = [][]byte{receivePh.Bytes()}
			}
			requestedPayments[assetID] = append(requestedPayments[assetID], offer.Payment{
				PuzzleHash: receivePh,
				Amount:     uint64(amount),
				Memos:      memos,
			})
		} else {
			if sel.IsAsset() {
				assetID = sel.AssetID()
				w, ok := m.registry.WalletForAssetID(assetID)
				if !ok {
					return nil, fmt.Errorf("%w: no wallet for asset %s", ErrWalletNotFound, assetID)
				}
				wallet = w
			} else {
				w, ok := m.registry.WalletByID(sel.WalletID())
				if !ok {
					return nil, fmt.Errorf("%w: id %d", ErrWalletNotFound, sel.WalletID())
				}
				wallet = w
				var err error
				assetID, err = assetIDOfWallet(wallet)
				if err != nil {
					return nil, err
				}
			}

			offeror, ok := wallet.(ports.Offeror)
			if !ok {
				return nil, fmt.Errorf(
					"%w: wallet %d cannot offer coins", ErrUnintegratedWallet, wallet.ID(),
				)
			}

			// The first offered entry absorbs the whole fee.
			var entryFee uint64
			if len(offered) == 0 {
				entryFee = fee
			}
			coins, err := offeror.CoinsToOffer(ctx, assetID, uint64(-amount), entryFee)
			if err != nil {
				return nil, err
			}
			offered = append(offered, offeredEntry{
				wallet: offeror,
				amount: uint64(-amount),
				coins:  coins,
				fee:    entryFee,
			})
		}

		if assetID != offer.NativeAsset && wallet != nil {
			provider, ok := wallet.(ports.PuzzleInfoProvider)
			if !ok {
				return nil, fmt.Errorf(
					"%w: wallet %d reports no driver for asset %s",
					ErrUnintegratedWallet, wallet.ID(), assetID,
				)
			}
			reported, err := provider.PuzzleInfo(assetID)
			if err != nil {
				return nil, err
			}
			if supplied, ok := offerDrivers[assetID]; ok && !supplied.Equal(reported) {
				return nil, fmt.Errorf("%w: %s", ErrDriverConflict, assetID)
			}
			offerDrivers[assetID] = reported
		}
	}

	allCoins := make([]coinset.Coin, 0)
	for _, entry := range offered {
		allCoins = append(allCoins, entry.coins...)
	}

	notarized, err := offer.NotarizePayments(requestedPayments, allCoins)
	if err != nil {
		return nil, err
	}
	assertions, err := offer.CalculateAnnouncements(notarized, offerDrivers)
	if err != nil {
		return nil, err
	}

	bundles := make([]coinset.SpendBundle, 0, len(offered))
	for _, entry := range offered {
		txs, err := entry.wallet.CreateOfferTransactions(
			ctx, entry.amount, entry.coins, assertions, entry.fee,
		)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			if tx.Bundle == nil {
				continue
			}
			bundles = append(bundles, *tx.Bundle)
		}
	}

	return offer.New(notarized, coinset.AggregateBundles(bundles...), offerDrivers)
}

// assetIDOfWallet resolves the asset a wallet trades: the native one for
// standard wallets, the declared one for asset wallets.
func assetIDOfWallet(wallet ports.Wallet) (coinset.Hash, error) {
	if wallet.Type() == ports.WalletTypeStandard {
		return offer.NativeAsset, nil
	}
	if identifiable, ok := wallet.(ports.AssetIdentifiable); ok {
		return identifiable.AssetID(), nil
	}
	return coinset.Hash{}, fmt.Errorf(
		"%w: wallet %d declares no asset id", ErrUnintegratedWallet, wallet.ID(),
	)
}

func (m *tradeManager) CheckOfferValidity(ctx context.Context, o *offer.Offer) (bool, error) {
	bundle := o.Bundle()
	removals := bundle.NotEphemeralRemovals()

	states, err := m.explorerSvc.GetCoinStates(ctx, coinset.CoinIDs(removals), 0)
	if err != nil {
		return false, err
	}
	if len(states) != len(removals) {
		return false, nil
	}
	for _, state := range states {
		if state.IsSpent() {
			return false, nil
		}
	}
	return true, nil
}

func (m *tradeManager) AcceptOffer(
	ctx context.Context, foreign *offer.Offer, fee uint64,
) (*domain.TradeRecord, error) {
	arbitrage, err := foreign.Arbitrage()
	if err != nil {
		return nil, err
	}

	terms := make(map[Selector]int64, len(arbitrage))
	for assetID, amount := range arbitrage {
		if amount == 0 {
			continue
		}
		if assetID == offer.NativeAsset {
			terms[WalletSelector(m.registry.MainWallet().ID())] = amount
			continue
		}
		if _, ok := m.registry.WalletForAssetID(assetID); !ok && amount < 0 {
			return nil, fmt.Errorf(
				"%w: missing wallet for asset %s", ErrUnfulfillableOffer, assetID,
			)
		}
		terms[AssetSelector(assetID)] = amount
	}

	valid, err := m.CheckOfferValidity(ctx, foreign)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrStaleOffer
	}

	counter, err := m.buildOffer(ctx, terms, foreign.Drivers(), fee)
	if err != nil {
		return nil, err
	}

	complete, err := offer.Aggregate(foreign, counter)
	if err != nil {
		return nil, err
	}
	balanced, err := complete.IsValid()
	if err != nil {
		return nil, err
	}
	if !balanced {
		log.Error("aggregate of a foreign offer and its complement does not balance")
		return nil, ErrIncompleteOffer
	}

	settlement, err := complete.ToValidSpend()
	if err != nil {
		return nil, err
	}

	m.createWalletsForOffer(ctx, complete)

	txRecords, err := m.CalculateTxRecords(ctx, complete, true)
	if err != nil {
		return nil, err
	}

	trade, err := domain.NewTradeRecord(complete, domain.TradeStatusPendingConfirm, false)
	if err != nil {
		return nil, err
	}
	trade.TakenOfferBytes, err = foreign.Bytes()
	if err != nil {
		return nil, err
	}

	settlementName, err := settlement.Name()
	if err != nil {
		return nil, err
	}
	pushTx := domain.NewTransactionRecord(
		settlementName.String(), domain.TransactionTypeOutgoingTrade, 0, trade.TradeID,
	)
	pushTx.Bundle = &settlement

	if _, err := m.repoManager.RunTransaction(
		ctx, !readOnlyTx,
		func(ctx context.Context) (interface{}, error) {
			if err := m.repoManager.TradeRepository().AddTrade(ctx, trade); err != nil {
				return nil, err
			}
			if err := m.txSink.AddPendingTransaction(ctx, pushTx); err != nil {
				return nil, err
			}
			for _, tx := range txRecords {
				if err := m.txSink.AddTransaction(ctx, tx); err != nil {
					return nil, err
				}
			}
			return nil, nil
		},
	); err != nil {
		return nil, err
	}

	log.Infof(
		"trade with id %s accepted, settlement bundle %s submitted",
		trade.TradeID, pushTx.Name,
	)
	return trade, nil
}

// createWalletsForOffer registers wallets for the assets of a settling offer
// known only through their drivers, so their payouts get indexed. Creation
// is opportunistic: a registry without a wallet factory keeps working, the
// payouts of the new asset just stay untracked.
func (m *tradeManager) createWalletsForOffer(ctx context.Context, o *offer.Offer) {
	drivers := o.Drivers()
	for assetID, driver := range drivers {
		if _, ok := m.registry.WalletForPuzzleInfo(driver); ok {
			continue
		}
		if _, err := m.registry.CreateWalletForPuzzleInfo(ctx, driver); err != nil {
			log.WithError(err).Warnf("could not create wallet for asset %s", assetID)
		}
	}
}
