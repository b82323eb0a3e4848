package walletregistry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/pkg/coinset"
)

var (
	// ErrNoWalletFactory is returned when a foreign offer references an
	// asset nobody drives and no factory was configured to create wallets
	// on the fly.
	ErrNoWalletFactory = errors.New("no wallet factory configured")
)

// WalletFactory builds a wallet able to drive the asset described by a
// puzzle info.
type WalletFactory func(
	ctx context.Context, info *coinset.PuzzleInfo,
) (ports.Wallet, error)

// Opts groups the registry dependencies. MainWallet and CoinRepository are
// mandatory, the factory is optional.
type Opts struct {
	MainWallet     ports.Wallet
	Wallets        []ports.Wallet
	WalletFactory  WalletFactory
	CoinRepository domain.CoinRepository
}

func (o Opts) validate() error {
	if o.MainWallet == nil {
		return fmt.Errorf("missing main wallet")
	}
	if o.MainWallet.Type() != ports.WalletTypeStandard {
		return fmt.Errorf("main wallet must hold the native currency")
	}
	if o.CoinRepository == nil {
		return fmt.Errorf("missing coin repository")
	}
	return nil
}

type registryService struct {
	coinRepository domain.CoinRepository
	factory        WalletFactory

	lock           *sync.RWMutex
	mainWalletID   uint32
	wallets        map[uint32]ports.Wallet
	walletsByAsset map[coinset.Hash]uint32
}

// NewService returns the registry resolving wallets by id, asset or driver
// for the trade manager. Coin and puzzle hash ownership is answered from
// the coin index.
func NewService(opts Opts) (ports.WalletRegistry, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	svc := &registryService{
		coinRepository: opts.CoinRepository,
		factory:        opts.WalletFactory,
		lock:           &sync.RWMutex{},
		mainWalletID:   opts.MainWallet.ID(),
		wallets:        map[uint32]ports.Wallet{},
		walletsByAsset: map[coinset.Hash]uint32{},
	}
	if err := svc.register(opts.MainWallet); err != nil {
		return nil, err
	}
	for _, wallet := range opts.Wallets {
		if err := svc.register(wallet); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func (s *registryService) MainWallet() ports.Wallet {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.wallets[s.mainWalletID]
}

func (s *registryService) Wallets() []ports.Wallet {
	s.lock.RLock()
	defer s.lock.RUnlock()

	wallets := make([]ports.Wallet, 0, len(s.wallets))
	for _, wallet := range s.wallets {
		wallets = append(wallets, wallet)
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].ID() < wallets[j].ID()
	})
	return wallets
}

func (s *registryService) WalletByID(id uint32) (ports.Wallet, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	wallet, ok := s.wallets[id]
	return wallet, ok
}

func (s *registryService) WalletForAssetID(
	assetID coinset.Hash,
) (ports.Wallet, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	id, ok := s.walletsByAsset[assetID]
	if !ok {
		return nil, false
	}
	wallet, ok := s.wallets[id]
	return wallet, ok
}

// WalletForPuzzleInfo resolves a driver to the wallet able to honor it: a
// nil driver selects the main wallet, otherwise the wallet bound to the
// driver's asset, provided the driver it reports agrees.
func (s *registryService) WalletForPuzzleInfo(
	info *coinset.PuzzleInfo,
) (ports.Wallet, bool) {
	if info == nil {
		return s.MainWallet(), true
	}

	wallet, ok := s.WalletForAssetID(info.AssetID)
	if !ok {
		return nil, false
	}
	if provider, ok := wallet.(ports.PuzzleInfoProvider); ok {
		reported, err := provider.PuzzleInfo(info.AssetID)
		if err != nil || !reported.Equal(info) {
			return nil, false
		}
	}
	return wallet, true
}

func (s *registryService) CreateWalletForPuzzleInfo(
	ctx context.Context, info *coinset.PuzzleInfo,
) (ports.Wallet, error) {
	if info == nil {
		return nil, fmt.Errorf("missing puzzle info")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if id, ok := s.walletsByAsset[info.AssetID]; ok {
		return s.wallets[id], nil
	}
	if s.factory == nil {
		return nil, ErrNoWalletFactory
	}

	wallet, err := s.factory(ctx, info)
	if err != nil {
		return nil, err
	}
	if err := s.register(wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *registryService) WalletForCoin(
	ctx context.Context, coinID coinset.Hash,
) (ports.Wallet, bool, error) {
	records, err := s.coinRepository.GetCoinsByIDs(
		ctx, []string{coinID.String()},
	)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}

	wallet, ok := s.WalletByID(records[0].WalletID)
	if !ok {
		return nil, false, nil
	}
	return wallet, true, nil
}

// WalletIDForPuzzleHash answers from the coin index first, then asks the
// wallets able to recognize their own derivations. The second pass is what
// attributes payouts to fresh puzzle hashes no coin has landed on yet.
func (s *registryService) WalletIDForPuzzleHash(
	ctx context.Context, puzzleHash coinset.Hash,
) (uint32, bool, error) {
	records, err := s.coinRepository.GetCoinsByPuzzleHash(
		ctx, puzzleHash.String(),
	)
	if err != nil {
		return 0, false, err
	}
	if len(records) > 0 {
		return records[0].WalletID, true, nil
	}

	for _, wallet := range s.Wallets() {
		owner, ok := wallet.(ports.PuzzleHashOwner)
		if !ok {
			continue
		}
		owns, err := owner.OwnsPuzzleHash(ctx, puzzleHash)
		if err != nil {
			return 0, false, err
		}
		if owns {
			return wallet.ID(), true, nil
		}
	}
	return 0, false, nil
}

func (s *registryService) register(wallet ports.Wallet) error {
	if _, ok := s.wallets[wallet.ID()]; ok {
		return fmt.Errorf("wallet id %d already registered", wallet.ID())
	}
	s.wallets[wallet.ID()] = wallet

	identifiable, ok := wallet.(ports.AssetIdentifiable)
	if !ok {
		return nil
	}
	assetID := identifiable.AssetID()
	if owner, ok := s.walletsByAsset[assetID]; ok {
		return fmt.Errorf(
			"asset %s already driven by wallet %d", assetID, owner,
		)
	}
	s.walletsByAsset[assetID] = wallet.ID()
	return nil
}
