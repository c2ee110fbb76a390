package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	drepo "FxPulse/internal/domain/repository"
	"FxPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream backed by a WebSocket FX feed.
// The feed pushes trade frames and two-sided quote frames for the
// subscribed currency pairs.
type Client struct {
	apiKey         string
	websocketURL   string
	pairs          []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a WebSocket MarketStream for the given pairs.
func New(apiKey, websocketURL string, pairs []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.MarketStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		pairs:          pairs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	u := c.websocketURL
	if c.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("feed connected", logger.String("url", c.websocketURL))
	return nil
}

func (c *Client) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	conn, ok := c.conn, c.connected
	c.mu.Unlock()
	if conn == nil || !ok {
		return fmt.Errorf("feed not connected")
	}
	for _, p := range c.pairs {
		msg := map[string]string{"type": "subscribe", "symbol": p}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", p, err)
		}
	}
	c.log.Info("feed subscribed", logger.Int("pairs", len(c.pairs)))
	return nil
}

// Wire frames. A trade frame carries last-traded prices, a quote frame
// carries bid/ask pairs.
type feedTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // unix ms
}

type feedQuote struct {
	S string  `json:"s"`
	B float64 `json:"b"`
	A float64 `json:"a"`
	T int64   `json:"t"` // unix ms
}

type feedMessage struct {
	Type   string      `json:"type"`
	Data   []feedTrade `json:"data,omitempty"`
	Quotes []feedQuote `json:"quotes,omitempty"`
}

// Read streams trade and quote updates plus a terminal error channel.
// All three channels close when the read loop exits.
func (c *Client) Read(ctx context.Context) (<-chan *models.TradeUpdate, <-chan *models.QuoteUpdate, <-chan error) {
	trades := make(chan *models.TradeUpdate, 1024)
	quotes := make(chan *models.QuoteUpdate, 1024)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				conn := c.conn
				c.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(trades)
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("feed conn nil")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("feed read: %w", err)
				return
			}
			var m feedMessage
			if err := json.Unmarshal(b, &m); err != nil {
				// ignore non-data frames
				continue
			}
			switch m.Type {
			case "trade":
				for _, d := range m.Data {
					tr := &models.TradeUpdate{Pair: d.S, Price: d.P, Volume: d.V, Timestamp: d.T}
					select {
					case trades <- tr:
					default:
						// drop on backpressure
					}
				}
			case "quote":
				for _, q := range m.Quotes {
					qu := &models.QuoteUpdate{Pair: q.S, Bid: q.B, Ask: q.A, Timestamp: q.T}
					select {
					case quotes <- qu:
					default:
					}
				}
			}
		}
	}()

	return trades, quotes, errs
}

// Reconnect closes the connection, waits the configured delay, then
// dials and resubscribes.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
