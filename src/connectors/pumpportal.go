package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

// LaunchEvent is a single new-token notification from the PumpPortal feed.
// Fields not present in a frame stay zero valued.
type LaunchEvent struct {
	Mint         string  `json:"mint"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Pool         string  `json:"pool"`
	InitialBuy   float64 `json:"initialBuy"`
	SolAmount    float64 `json:"solAmount"`
	MarketCapSol float64 `json:"marketCapSol"`
}

// LaunchHandler receives each decoded launch event. Errors are logged and do
// not stop the stream.
type LaunchHandler func(ctx context.Context, event LaunchEvent) error

// PumpPortalListener maintains a websocket subscription to the new-token
// stream. The connection is re-dialed with exponential backoff whenever it
// drops, until the context is cancelled.
type PumpPortalListener struct {
	url     string
	handler LaunchHandler
}

func NewPumpPortalListener(cfg Config, handler LaunchHandler) *PumpPortalListener {
	return &PumpPortalListener{
		url:     cfg.PumpPortalWSURL,
		handler: handler,
	}
}

// Run blocks until ctx is cancelled.
func (l *PumpPortalListener) Run(ctx context.Context) error {
	for {
		err := l.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.WithField("connector", "pumpportal").
			WithError(err).Warn("Stream dropped, reconnecting")
	}
}

func (l *PumpPortalListener) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  15 * time.Second,
		EnableCompression: true,
		Proxy:             http.ProxyFromEnvironment,
	}

	var conn *websocket.Conn
	operation := func() error {
		var err error
		conn, _, err = dialer.DialContext(ctx, l.url, nil)
		if err != nil {
			logger.WithField("connector", "pumpportal").
				WithError(err).Warn("Dial failed, retrying")
			return err
		}
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
	if err != nil {
		return nil, fmt.Errorf("ws dial failed: %w", err)
	}
	return conn, nil
}

func (l *PumpPortalListener) consume(ctx context.Context) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	subscribe := map[string]string{"method": "subscribeNewToken"}
	if err := conn.WriteJSON(subscribe); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	logger.WithField("connector", "pumpportal").Info("Subscribed to new-token stream")

	// Unblock ReadMessage when the context is cancelled.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ws read failed: %w", err)
		}

		var event LaunchEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			logger.WithField("connector", "pumpportal").
				WithError(err).Debug("Skipping undecodable frame")
			continue
		}

		// Subscription acks and heartbeats come through without a mint.
		if event.Mint == "" {
			continue
		}

		if err := l.handler(ctx, event); err != nil {
			logger.WithFields(map[string]interface{}{
				"connector": "pumpportal",
				"mint":      event.Mint,
			}).WithError(err).Error("Launch handler failed")
		}
	}
}
