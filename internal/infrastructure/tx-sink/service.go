package txsink

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/odex-network/odex-daemon/internal/core/domain"
	"github.com/odex-network/odex-daemon/internal/core/ports"
	"github.com/odex-network/odex-daemon/pkg/explorer"
)

type service struct {
	txRepository domain.TransactionRepository
	explorerSvc  explorer.Service
}

// NewService returns the sink persisting transaction records and pushing
// their bundles to the network. Repositories are context aware, so calls
// made inside a storage transaction join it.
func NewService(
	txRepository domain.TransactionRepository, explorerSvc explorer.Service,
) (ports.PendingTxSink, error) {
	if txRepository == nil {
		return nil, fmt.Errorf("missing transaction repository")
	}
	if explorerSvc == nil {
		return nil, fmt.Errorf("missing explorer")
	}
	return &service{
		txRepository: txRepository,
		explorerSvc:  explorerSvc,
	}, nil
}

func (s *service) AddPendingTransaction(
	ctx context.Context, tx *domain.TransactionRecord,
) error {
	if err := s.txRepository.AddTransaction(ctx, tx); err != nil {
		return err
	}
	if !tx.IsBroadcastable() {
		return nil
	}

	// A failed push is not fatal, the record stays pending and the
	// rebroadcast loop retries it.
	if _, err := s.explorerSvc.BroadcastBundle(ctx, tx.Bundle); err != nil {
		log.WithError(err).Warnf(
			"failed to broadcast bundle of transaction %s", tx.Name,
		)
	}
	return nil
}

func (s *service) AddTransaction(
	ctx context.Context, tx *domain.TransactionRecord,
) error {
	return s.txRepository.AddTransaction(ctx, tx)
}

func (s *service) DeleteTradeTransactions(
	ctx context.Context, tradeID string,
) error {
	return s.txRepository.DeleteTransactionsForTrade(ctx, tradeID)
}

func (s *service) ConfirmTradeTransactions(
	ctx context.Context, tradeID string, height uint32,
) error {
	return s.txRepository.ConfirmTransactionsForTrade(ctx, tradeID, height)
}

func (s *service) RebroadcastPending(ctx context.Context) error {
	pendingTxs, err := s.txRepository.GetPendingTransactions(ctx)
	if err != nil {
		return err
	}

	// Bundles are independent, push them in parallel. A failed push is
	// logged and retried on the next run instead of aborting the batch.
	eg := &errgroup.Group{}
	for _, tx := range pendingTxs {
		if !tx.IsBroadcastable() {
			continue
		}
		tx := tx
		eg.Go(func() error {
			if _, err := s.explorerSvc.BroadcastBundle(ctx, tx.Bundle); err != nil {
				log.WithError(err).Warnf(
					"failed to rebroadcast bundle of transaction %s", tx.Name,
				)
			}
			return nil
		})
	}
	return eg.Wait()
}
