package main

import (
	"github.com/urfave/cli/v2"

	"github.com/odex-network/odex-daemon/pkg/offer"
)

var inspect = cli.Command{
	Name:      "inspect",
	Usage:     "decode an offer file and print its terms",
	ArgsUsage: "<path to offer file>",
	Action:    inspectAction,
}

type coinView struct {
	ID         string `json:"id"`
	PuzzleHash string `json:"puzzleHash"`
	Amount     uint64 `json:"amount"`
}

type offerView struct {
	Name         string            `json:"name"`
	Complete     bool              `json:"complete"`
	Summary      *offer.Summary    `json:"summary"`
	PrimaryCoins []coinView        `json:"primaryCoins"`
	Drivers      map[string]string `json:"drivers,omitempty"`
}

func inspectAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "inspect"}
	}

	o, err := readOffer(ctx.Args().First())
	if err != nil {
		return err
	}

	name, err := o.Name()
	if err != nil {
		return err
	}
	summary, err := o.Summary()
	if err != nil {
		return err
	}
	complete, err := o.IsValid()
	if err != nil {
		return err
	}
	primaries, err := o.PrimaryCoins()
	if err != nil {
		return err
	}

	view := offerView{
		Name:     name.String(),
		Complete: complete,
		Summary:  summary,
		Drivers:  map[string]string{},
	}
	for _, coin := range primaries {
		view.PrimaryCoins = append(view.PrimaryCoins, coinView{
			ID:         coin.ID().String(),
			PuzzleHash: coin.PuzzleHash.String(),
			Amount:     coin.Amount,
		})
	}
	for assetID, info := range o.Drivers() {
		view.Drivers[assetID.String()] = info.Type
	}

	printJSON(view)

	return nil
}
