package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"

	"github.com/odex-network/odex-daemon/pkg/offer"
)

var odexDataDir = btcutil.AppDataDir("odex-daemon", false)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1" //TODO use goreleaser for setting version
	app.Name = "odex operator CLI"
	app.Usage = "Command line interface for odexd daemon operators"
	app.Commands = append(
		app.Commands,
		&inspect,
		&validate,
		&status,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

// readOffer loads an offer file. Offer files are bech32m text, but the raw
// canonical bytes are accepted too so dumps made by other tools can be fed
// in directly.
func readOffer(path string) (*offer.Offer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if o, err := offer.Decode(strings.TrimSpace(string(raw))); err == nil {
		return o, nil
	}
	return offer.FromBytes(raw)
}

func printJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to render response: ", err)
		return
	}

	fmt.Println(string(jsonStr))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[odex] %v\n", err)
	}
	os.Exit(1)
}
