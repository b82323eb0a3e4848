package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer/nodehttp"
)

var validate = cli.Command{
	Name:      "validate",
	Usage:     "check that an offer is still redeemable against a full node",
	ArgsUsage: "<path to offer file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "node_endpoint",
			Usage: "HTTP API address of a full node",
			Value: "http://localhost:8555",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "node request timeout in milliseconds",
			Value: 15000,
		},
	},
	Action: validateAction,
}

func validateAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "validate"}
	}

	o, err := readOffer(ctx.Args().First())
	if err != nil {
		return err
	}
	name, err := o.Name()
	if err != nil {
		return err
	}

	explorerSvc, err := nodehttp.NewService(
		ctx.String("node_endpoint"),
		time.Duration(ctx.Int("timeout"))*time.Millisecond,
	)
	if err != nil {
		return err
	}

	// The offer stays redeemable as long as every coin it spends is known
	// to the node and unspent.
	coins := o.Bundle().NotEphemeralRemovals()
	states, err := explorerSvc.GetCoinStates(
		context.Background(), coinset.CoinIDs(coins), 0,
	)
	if err != nil {
		return err
	}

	valid := len(states) == len(coins)
	for _, state := range states {
		if state.IsSpent() {
			valid = false
			break
		}
	}

	printJSON(map[string]interface{}{
		"name":  name.String(),
		"valid": valid,
	})

	return nil
}
