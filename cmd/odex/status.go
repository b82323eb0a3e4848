package main

import (
	"context"
	"path/filepath"

	"github.com/urfave/cli/v2"

	dbbadger "github.com/odex-network/odex-daemon/internal/infrastructure/storage/db/badger"
	"github.com/odex-network/odex-daemon/pkg/offer"
)

var status = cli.Command{
	Name:      "status",
	Usage:     "print the lifecycle of a trade tracked by the daemon",
	ArgsUsage: "<trade id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory of the odexd daemon",
			Value: odexDataDir,
		},
	},
	Action: statusAction,
}

type statusChangeView struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

type sendAttemptView struct {
	Endpoint  string `json:"endpoint"`
	Timestamp int64  `json:"timestamp"`
	Accepted  bool   `json:"accepted"`
	Error     string `json:"error,omitempty"`
}

type tradeView struct {
	TradeID          string             `json:"tradeId"`
	Status           string             `json:"status"`
	IsMyOffer        bool               `json:"isMyOffer"`
	CreatedAt        int64              `json:"createdAt"`
	AcceptedAt       int64              `json:"acceptedAt,omitempty"`
	ConfirmedAtIndex uint32             `json:"confirmedAtIndex,omitempty"`
	Summary          *offer.Summary     `json:"summary"`
	StatusHistory    []statusChangeView `json:"statusHistory"`
	SendAttempts     []sendAttemptView  `json:"sendAttempts,omitempty"`
}

func statusAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "status"}
	}

	// Badger allows a single process at a time, so this fails while the
	// daemon is running.
	repoManager, err := dbbadger.NewRepoManager(
		filepath.Join(ctx.String("datadir"), "db"), nil,
	)
	if err != nil {
		return err
	}
	defer repoManager.Close()

	trade, err := repoManager.TradeRepository().GetTrade(
		context.Background(), ctx.Args().First(),
	)
	if err != nil {
		return err
	}

	o, err := trade.Offer()
	if err != nil {
		return err
	}
	summary, err := o.Summary()
	if err != nil {
		return err
	}

	view := tradeView{
		TradeID:          trade.TradeID,
		Status:           trade.Status.String(),
		IsMyOffer:        trade.IsMyOffer,
		CreatedAt:        trade.CreatedAt,
		AcceptedAt:       trade.AcceptedAt,
		ConfirmedAtIndex: trade.ConfirmedAtIndex,
		Summary:          summary,
	}
	for _, change := range trade.StatusHistory {
		view.StatusHistory = append(view.StatusHistory, statusChangeView{
			Status:    change.Status.String(),
			Timestamp: change.Timestamp,
		})
	}
	for _, attempt := range trade.SentTo {
		view.SendAttempts = append(view.SendAttempts, sendAttemptView{
			Endpoint:  attempt.Endpoint,
			Timestamp: attempt.Timestamp,
			Accepted:  attempt.Accepted,
			Error:     attempt.Error,
		})
	}

	printJSON(view)

	return nil
}
