package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// TokenOverview is the subset of the Birdeye token_overview payload the
// safety analyzer consumes.
type TokenOverview struct {
	LiquidityUSD  float64 `json:"liquidity"`
	HolderCount   int     `json:"holder"`
	TopHolderPct  float64 `json:"top10HolderPercent"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
}

// TokenSecurity is the subset of the Birdeye token_security payload the
// safety analyzer consumes.
type TokenSecurity struct {
	IsVerified      bool `json:"isVerified"`
	IsHoneypot      bool `json:"isHoneypot"`
	LiquidityLocked bool `json:"liquidityLocked"`
}

type birdeyeEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// BirdeyeClient talks to the Birdeye public API, the upstream oracle behind
// the token safety gate.
type BirdeyeClient struct {
	apiKey string
	http   *resty.Client
}

func NewBirdeyeClient(cfg Config) *BirdeyeClient {
	baseURL := cfg.BirdeyeBaseURL
	if baseURL == "" {
		baseURL = "https://public-api.birdeye.so"
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &BirdeyeClient{
		apiKey: cfg.BirdeyeAPIKey,
		http:   httpClient,
	}
}

func (c *BirdeyeClient) get(ctx context.Context, path, address string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", c.apiKey).
		SetQueryParam("address", address).
		Get(path)

	if err != nil {
		return fmt.Errorf("birdeye %s: %w", path, err)
	}

	if resp.IsError() {
		logger.WithFields(map[string]interface{}{
			"connector": "birdeye",
			"path":      path,
			"address":   address,
			"status":    resp.StatusCode(),
		}).Warn("Birdeye request rejected")

		return fmt.Errorf("birdeye %s rejected (%d)", path, resp.StatusCode())
	}

	var envelope birdeyeEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("decode birdeye envelope: %w", err)
	}
	if !envelope.Success || len(envelope.Data) == 0 {
		return fmt.Errorf("birdeye %s returned no data for %s", path, address)
	}

	return json.Unmarshal(envelope.Data, out)
}

// GetTokenOverview fetches liquidity/holder metrics for a token.
func (c *BirdeyeClient) GetTokenOverview(ctx context.Context, address string) (*TokenOverview, error) {
	var overview TokenOverview
	if err := c.get(ctx, "/defi/token_overview", address, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// GetTokenSecurity fetches contract verification and honeypot flags.
// A missing security record is not fatal to the analyzer, so callers may
// treat an error here as "no security data".
func (c *BirdeyeClient) GetTokenSecurity(ctx context.Context, address string) (*TokenSecurity, error) {
	var security TokenSecurity
	if err := c.get(ctx, "/defi/token_security", address, &security); err != nil {
		return nil, err
	}
	return &security, nil
}
