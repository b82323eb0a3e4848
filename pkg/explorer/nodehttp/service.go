package nodehttp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/odex-network/odex-daemon/pkg/circuitbreaker"
	"github.com/odex-network/odex-daemon/pkg/explorer"
	"github.com/odex-network/odex-daemon/pkg/util"
	"github.com/sony/gobreaker"
)

type node struct {
	apiURL string
	client *util.HTTPClient
	cb     *gobreaker.CircuitBreaker
}

// NewService returns a new full node client as an explorer.Service interface.
func NewService(apiURL string, requestTimeout time.Duration) (explorer.Service, error) {
	service := &node{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		client: util.NewHTTPClient(requestTimeout),
		cb:     circuitbreaker.NewCircuitBreaker("node"),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (n *node) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/chain/tip/height", n.apiURL)
	status, resp, err := n.client.NewHTTPRequest(ctx, "GET", url, "", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf(resp)
	}
	return nil
}
