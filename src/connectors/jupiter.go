// REST CLIENT FOR THE JUPITER V6 SWAP ROUTING API
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	// Default retry configuration
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 4 * time.Second
)

// JupiterErrorCodes maps routing-engine error codes returned by the quote
// endpoint to human-readable messages.
var JupiterErrorCodes = map[string]string{
	"COULD_NOT_FIND_ANY_ROUTE":        "no swap route exists for this pair",
	"TOKEN_NOT_TRADABLE":              "token is not tradable on any indexed market",
	"NOT_SUPPORTED":                   "mint is not supported by the routing engine",
	"CIRCULAR_ARBITRAGE_IS_DISABLED":  "input and output mint are identical",
	"ROUTE_PLAN_DOES_NOT_CONSUME_ALL": "route plan could not consume the full input amount",
}

// Quote is the routing engine's answer for one input/output pair. The raw
// payload is preserved because the swap endpoint expects it back verbatim.
type Quote struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`

	raw json.RawMessage
}

// Raw returns the untouched quote payload for the swap request.
func (q *Quote) Raw() json.RawMessage { return q.raw }

type quoteError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// JupiterClient talks to the Jupiter quote/swap REST API.
type JupiterClient struct {
	baseURL     string
	slippageBps int
	http        *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewJupiterClient(cfg Config) *JupiterClient {
	baseURL := cfg.JupiterBaseURL
	if baseURL == "" {
		baseURL = "https://quote-api.jup.ag/v6"
		logger.Warnf("No Jupiter base URL provided, using default: %s", baseURL)
	}

	slippage := cfg.SlippageBps
	if slippage <= 0 {
		slippage = 50
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

	return &JupiterClient{
		baseURL:     baseURL,
		slippageBps: slippage,
		http:        httpClient,
	}
}

// GetQuote asks the routing engine for a route from inputMint to outputMint
// for the given amount in base units. A 4xx answer or an error body means no
// route exists for the pair.
func (c *JupiterClient) GetQuote(
	ctx context.Context,
	inputMint, outputMint string,
	amountBaseUnits uint64,
) (*Quote, error) {

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   inputMint,
			"outputMint":  outputMint,
			"amount":      fmt.Sprintf("%d", amountBaseUnits),
			"slippageBps": fmt.Sprintf("%d", c.slippageBps),
		}).
		Get("/quote")

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"connector":   "jupiter",
			"input_mint":  inputMint,
			"output_mint": outputMint,
		}).WithError(err).Error("Quote request failed")

		return nil, fmt.Errorf("jupiter quote request: %w", err)
	}

	if resp.IsError() {
		var qe quoteError
		_ = json.Unmarshal(resp.Body(), &qe)

		msg := qe.Error
		if friendly, ok := JupiterErrorCodes[qe.ErrorCode]; ok {
			msg = friendly
		}

		logger.WithFields(map[string]interface{}{
			"connector":   "jupiter",
			"input_mint":  inputMint,
			"output_mint": outputMint,
			"status":      resp.StatusCode(),
			"error_code":  qe.ErrorCode,
		}).Warn("Quote rejected by routing engine")

		return nil, fmt.Errorf("jupiter quote rejected (%d): %s", resp.StatusCode(), msg)
	}

	var quote Quote
	if err := json.Unmarshal(resp.Body(), &quote); err != nil {
		return nil, fmt.Errorf("decode jupiter quote: %w", err)
	}
	quote.raw = json.RawMessage(resp.Body())

	logger.WithFields(map[string]interface{}{
		"connector":   "jupiter",
		"input_mint":  inputMint,
		"output_mint": outputMint,
		"in_amount":   quote.InAmount,
		"out_amount":  quote.OutAmount,
	}).Debug("Quote fetched")

	return &quote, nil
}

type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// BuildSwapTransaction asks the routing service to build the serialized
// transaction for a previously fetched quote. The result is the base64
// payload that must be signed locally before submission.
func (c *JupiterClient) BuildSwapTransaction(
	ctx context.Context,
	quote *Quote,
	userPublicKey string,
) (string, error) {

	body := swapRequest{
		QuoteResponse:    quote.Raw(),
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/swap")

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"connector":  "jupiter",
			"public_key": userPublicKey,
		}).WithError(err).Error("Swap build request failed")

		return "", fmt.Errorf("jupiter swap request: %w", err)
	}

	if resp.IsError() {
		logger.WithFields(map[string]interface{}{
			"connector": "jupiter",
			"status":    resp.StatusCode(),
			"body":      string(resp.Body()),
		}).Error("Swap build rejected")

		return "", fmt.Errorf("jupiter swap rejected (%d)", resp.StatusCode())
	}

	var sr swapResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return "", fmt.Errorf("decode jupiter swap response: %w", err)
	}

	if sr.SwapTransaction == "" {
		return "", fmt.Errorf("jupiter swap response missing transaction payload")
	}

	return sr.SwapTransaction, nil
}
