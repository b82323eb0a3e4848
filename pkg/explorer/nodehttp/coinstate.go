package nodehttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"golang.org/x/sync/errgroup"
)

// maxBatchRequests caps the number of in-flight coin state requests of a
// batch fetch.
const maxBatchRequests = 8

func (n *node) GetCoinState(
	ctx context.Context, coinID coinset.Hash,
) (*explorer.CoinState, error) {
	return n.getCoinState(ctx, coinID, 0)
}

func (n *node) GetCoinStates(
	ctx context.Context, coinIDs []coinset.Hash, forkHeight uint32,
) ([]explorer.CoinState, error) {
	states := make([]*explorer.CoinState, len(coinIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchRequests)

	for i := range coinIDs {
		i := i
		g.Go(func() error {
			state, err := n.getCoinState(gctx, coinIDs[i], forkHeight)
			if err != nil {
				if err == explorer.ErrCoinNotFound {
					return nil
				}
				return err
			}
			states[i] = state
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := make([]explorer.CoinState, 0, len(coinIDs))
	for _, state := range states {
		if state != nil {
			found = append(found, *state)
		}
	}
	return found, nil
}

func (n *node) GetCoinsByPuzzleHash(
	ctx context.Context, puzzleHash coinset.Hash, includeSpent bool,
) ([]explorer.CoinState, error) {
	url := fmt.Sprintf(
		"%s/puzzle-hash/%s/coins?include_spent=%t",
		n.apiURL, puzzleHash, includeSpent,
	)

	istates, err := n.cb.Execute(func() (interface{}, error) {
		status, resp, err := n.client.NewHTTPRequest(ctx, "GET", url, "", nil)
		if err != nil {
			return nil, fmt.Errorf("error on retrieving coins: %s", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(resp)
		}

		var states []explorer.CoinState
		if err := json.Unmarshal([]byte(resp), &states); err != nil {
			return nil, fmt.Errorf("error on parsing coins: %s", err)
		}
		return states, nil
	})
	if err != nil {
		return nil, err
	}

	return istates.([]explorer.CoinState), nil
}

func (n *node) getCoinState(
	ctx context.Context, coinID coinset.Hash, forkHeight uint32,
) (*explorer.CoinState, error) {
	url := fmt.Sprintf("%s/coin/%s", n.apiURL, coinID)
	if forkHeight > 0 {
		url = fmt.Sprintf("%s?fork_height=%d", url, forkHeight)
	}

	istate, err := n.cb.Execute(func() (interface{}, error) {
		status, resp, err := n.client.NewHTTPRequest(ctx, "GET", url, "", nil)
		if err != nil {
			return nil, fmt.Errorf("error on retrieving coin state: %s", err)
		}
		// an unknown coin is a valid answer, not a node failure
		if status == http.StatusNotFound {
			return nil, nil
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(resp)
		}

		var state explorer.CoinState
		if err := json.Unmarshal([]byte(resp), &state); err != nil {
			return nil, fmt.Errorf("error on parsing coin state: %s", err)
		}
		return &state, nil
	})
	if err != nil {
		return nil, err
	}
	if istate == nil {
		return nil, explorer.ErrCoinNotFound
	}

	return istate.(*explorer.CoinState), nil
}
