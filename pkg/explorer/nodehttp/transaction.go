package nodehttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/odex-network/odex-daemon/pkg/coinset"
)

func (n *node) BroadcastBundle(
	ctx context.Context, bundle *coinset.SpendBundle,
) (coinset.Hash, error) {
	body, err := json.Marshal(bundle)
	if err != nil {
		return coinset.Hash{}, fmt.Errorf("error on serializing bundle: %s", err)
	}

	url := fmt.Sprintf("%s/bundle", n.apiURL)
	iname, err := n.cb.Execute(func() (interface{}, error) {
		status, resp, err := n.client.NewHTTPRequest(
			ctx, "POST", url, string(body),
			map[string]string{"Content-Type": "application/json"},
		)
		if err != nil {
			return nil, fmt.Errorf("error on broadcasting bundle: %s", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(resp)
		}
		return strings.TrimSpace(resp), nil
	})
	if err != nil {
		return coinset.Hash{}, err
	}

	name, err := coinset.NewHashFromHex(iname.(string))
	if err != nil {
		return coinset.Hash{}, fmt.Errorf("error on parsing bundle name: %s", err)
	}
	return name, nil
}

func (n *node) GetBlockHeight(ctx context.Context) (uint32, error) {
	url := fmt.Sprintf("%s/chain/tip/height", n.apiURL)

	iheight, err := n.cb.Execute(func() (interface{}, error) {
		status, resp, err := n.client.NewHTTPRequest(ctx, "GET", url, "", nil)
		if err != nil {
			return nil, fmt.Errorf("error on retrieving chain tip: %s", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf(resp)
		}

		height, err := strconv.ParseUint(strings.TrimSpace(resp), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("error on parsing chain tip: %s", err)
		}
		return uint32(height), nil
	})
	if err != nil {
		return 0, err
	}

	return iheight.(uint32), nil
}
