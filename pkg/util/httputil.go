package util

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

// HTTPClient wraps the stdlib client with a configurable timeout and a
// context-aware request helper returning the response status and body.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient returns a client whose requests give up after the given
// timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// NewHTTPRequest performs the http call and returns the response status code
// along with the raw body.
func (c *HTTPClient) NewHTTPRequest(
	ctx context.Context,
	method, url, bodyString string,
	header map[string]string,
) (int, string, error) {
	switch method {
	case "GET", "POST", "DELETE":
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}

	var body io.Reader
	if bodyString != "" {
		body = strings.NewReader(bodyString)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := c.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := ioutil.ReadAll(rs.Body)
	if err != nil {
		return 0, "", err
	}

	return rs.StatusCode, string(bodyBytes), nil
}
