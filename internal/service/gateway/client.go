// Package gateway connects to a device gateway over WebSocket and exposes it
// as a sensor stream. The gateway pushes batched reading frames for the
// devices this service subscribes to.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pral10/SmartIoT/internal/domain/models"
	drepo "github.com/pral10/SmartIoT/internal/domain/repository"
	"github.com/pral10/SmartIoT/pkg/logger"
)

// Client implements a SensorStream backed by the gateway WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	deviceIDs      []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a gateway-backed SensorStream.
func New(apiKey, websocketURL string, deviceIDs []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.SensorStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		deviceIDs:      deviceIDs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection and subscribes to the
// configured devices.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("gateway connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("gateway: connected")

	for _, id := range c.deviceIDs {
		msg := map[string]string{"type": "subscribe", "device_id": id}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", id, err)
		}
		c.log.Info("gateway: subscribed", logger.String("device_id", id))
	}
	return nil
}

type gwReading struct {
	DeviceID    string  `json:"device_id"`
	DeviceName  string  `json:"device_name"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Motion      int     `json:"motion"`
	Timestamp   string  `json:"timestamp"`
}

type gwMessage struct {
	Type string      `json:"type"`
	Data []gwReading `json:"data"`
}

// Read streams readings and errors until the context ends or the connection
// drops.
func (c *Client) Read(ctx context.Context) (<-chan *models.Reading, <-chan error) {
	readings := make(chan *models.Reading, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(readings)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("gateway conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("gateway read: %w", err)
					return
				}
				var m gwMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-reading frames
					continue
				}
				if m.Type != "reading" {
					continue
				}
				for _, d := range m.Data {
					r, err := toReading(d)
					if err != nil {
						c.log.Warn("gateway: dropping malformed frame", logger.Error(err))
						continue
					}
					select {
					case readings <- r:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return readings, errs
}

func toReading(d gwReading) (*models.Reading, error) {
	ts, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp %q: %w", d.Timestamp, err)
	}
	return &models.Reading{
		DeviceID:    d.DeviceID,
		DeviceName:  d.DeviceName,
		Temperature: d.Temperature,
		Humidity:    d.Humidity,
		Motion:      d.Motion,
		Timestamp:   ts.UTC(),
	}, nil
}

// Reconnect closes and redials.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	return c.Connect(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
