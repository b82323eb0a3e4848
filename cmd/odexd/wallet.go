package main

import (
	"context"
	"fmt"

	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/pkg/coinset"
)

// watchOnlyWallet satisfies the registry's need for a main wallet while the
// daemon holds no keys. It cannot derive puzzle hashes nor spend, so every
// operation requiring a capable wallet fails cleanly instead of forging
// state the embedder owns.
type watchOnlyWallet struct{}

func (watchOnlyWallet) ID() uint32 { return 0 }

func (watchOnlyWallet) Type() ports.WalletType { return ports.WalletTypeStandard }

func (watchOnlyWallet) NewPuzzleHash(context.Context) (coinset.Hash, error) {
	return coinset.Hash{}, fmt.Errorf("watch-only wallet cannot derive puzzle hashes")
}
