// Package ws streams order status events from the backend over a WebSocket.
// The storefront uses it to refresh order views without polling.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one message from the order feed.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OrderStatusPayload is the payload of "order_status" events.
type OrderStatusPayload struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// Feed is a live connection to the order event stream. Events arrive on
// Events() until the connection drops or Close is called, after which the
// channel is closed.
type Feed struct {
	conn   *websocket.Conn
	events chan Event

	closeOnce sync.Once
}

// Dial connects to the order feed of the backend at baseURL, authenticating
// with token. baseURL is the same http(s) URL given to the API client.
func Dial(ctx context.Context, baseURL, token string) (*Feed, error) {
	wsURL, err := feedURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial order feed: %w", err)
	}

	f := &Feed{
		conn:   conn,
		events: make(chan Event, 16),
	}
	go f.readLoop()
	return f, nil
}

// Events delivers feed events in arrival order.
func (f *Feed) Events() <-chan Event { return f.events }

// Close tears down the connection. Safe to call more than once.
func (f *Feed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		err = f.conn.Close()
	})
	return err
}

func (f *Feed) readLoop() {
	defer close(f.events)
	defer f.Close()

	for {
		_, msg, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ERROR: order feed read: %v", err)
			}
			return
		}

		var e Event
		if err := json.Unmarshal(msg, &e); err != nil {
			log.Printf("ERROR: order feed decode: %v", err)
			continue
		}
		f.events <- e
	}
}

func feedURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch {
	case u.Scheme == "https":
		u.Scheme = "wss"
	case u.Scheme == "http" || u.Scheme == "":
		u.Scheme = "ws"
	case strings.HasPrefix(u.Scheme, "ws"):
		// already a websocket url
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/orders"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
