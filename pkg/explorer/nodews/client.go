// Package nodews keeps a websocket subscription to a full node and forwards
// the coin state updates it pushes. Reconnection is up to the caller.
package nodews

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/odex-network/odex-daemon/pkg/coinset"
	"github.com/odex-network/odex-daemon/pkg/explorer"
)

const (
	// readBuffSize is the buffer size of the notification channel.
	readBuffSize = 128

	writeWait  = 3 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type subscribeRequest struct {
	Op      string   `json:"op"`
	CoinIDs []string `json:"coin_ids"`
}

type pushMessage struct {
	Op         string              `json:"op"`
	CoinState  *explorer.CoinState `json:"coin_state,omitempty"`
	ForkHeight uint32              `json:"fork_height,omitempty"`
}

// Notification pairs a pushed coin state with the fork height hint attached
// by the node.
type Notification struct {
	CoinState  explorer.CoinState
	ForkHeight uint32
}

// Client is a websocket connection to a full node.
type Client struct {
	conn     *websocket.Conn
	writeMtx sync.Mutex
	notifyCh chan Notification
	quit     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// Connect dials the node websocket endpoint and starts the read and
// keepalive loops.
func Connect(ctx context.Context, endpoint string) (*Client, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c := &Client{
		conn:     conn,
		notifyCh: make(chan Notification, readBuffSize),
		quit:     make(chan struct{}),
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.keepAlive()

	return c, nil
}

// Subscribe registers interest in state changes of the given coins. It can
// be called any number of times on a live connection.
func (c *Client) Subscribe(coinIDs []coinset.Hash) error {
	return c.writeJSON(subscribeRequest{
		Op:      "subscribe",
		CoinIDs: hexCoinIDs(coinIDs),
	})
}

// Unsubscribe drops the subscription of the given coins.
func (c *Client) Unsubscribe(coinIDs []coinset.Hash) error {
	return c.writeJSON(subscribeRequest{
		Op:      "unsubscribe",
		CoinIDs: hexCoinIDs(coinIDs),
	})
}

// Notifications returns the channel of pushed coin states. The channel is
// closed when the connection dies.
func (c *Client) Notifications() <-chan Notification {
	return c.notifyCh
}

// Close tears down the connection and waits for the loops to stop.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.quit)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.conn.Close()
		c.wg.Wait()
	})
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	defer close(c.notifyCh)

	for {
		var msg pushMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Op != "coin_state" || msg.CoinState == nil {
			continue
		}

		select {
		case c.notifyCh <- Notification{
			CoinState:  *msg.CoinState,
			ForkHeight: msg.ForkHeight,
		}:
		case <-c.quit:
			return
		}
	}
}

func (c *Client) keepAlive() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.WriteControl(
				websocket.PingMessage, nil, deadline,
			); err != nil {
				return
			}
		case <-c.quit:
			return
		}
	}
}

func (c *Client) writeJSON(v interface{}) error {
	c.writeMtx.Lock()
	defer c.writeMtx.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func hexCoinIDs(coinIDs []coinset.Hash) []string {
	ids := make([]string, len(coinIDs))
	for i, id := range coinIDs {
		ids[i] = id.String()
	}
	return ids
}
