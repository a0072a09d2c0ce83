// Package swap executes token swaps end to end: quote, transaction build,
// local signing, submission and confirmation. Every failure is classified so
// callers can tell a missing route from an on-chain rejection.
package swap

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
)

type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

var (
	// ErrQuoteUnavailable means no route exists for the pair right now.
	ErrQuoteUnavailable = errors.New("no swap route available")
	// ErrExecutionRejected means the transaction was built or submitted but
	// did not succeed on chain.
	ErrExecutionRejected = errors.New("swap execution rejected")
	// ErrConfirmationTimeout means the transaction was submitted but never
	// reached confirmed status within the wait window.
	ErrConfirmationTimeout = errors.New("swap confirmation timed out")
)

// RouteProvider is the quote and transaction-build side of the swap flow.
type RouteProvider interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amountBaseUnits uint64) (*connectors.Quote, error)
	BuildSwapTransaction(ctx context.Context, quote *connectors.Quote, userPublicKey string) (string, error)
}

// ChainSubmitter is the submit and confirm side of the swap flow.
type ChainSubmitter interface {
	Send(ctx context.Context, tx *solana.Transaction) (string, error)
	AwaitConfirmation(ctx context.Context, signature string) (*connectors.TxStatus, error)
}

// Result describes a confirmed swap. Amounts are in UI units of the
// respective mints, and ExecutionPrice is trading-asset units per token in
// the same UI scale the monitor's price probe produces.
type Result struct {
	Signature      string
	InputAmount    float64
	OutputAmount   float64
	ExecutionPrice float64
	PriceImpactPct float64
}

// Client drives the full swap pipeline with one wallet.
type Client struct {
	routes RouteProvider
	chain  ChainSubmitter
	signer solana.PrivateKey
}

func NewClient(routes RouteProvider, chain ChainSubmitter, walletSecret string) (*Client, error) {
	signer, err := solana.PrivateKeyFromBase58(walletSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet secret: %w", err)
	}
	return &Client{
		routes: routes,
		chain:  chain,
		signer: signer,
	}, nil
}

// decimalsForMint returns the base-unit scale of a mint. SOL uses 9, USDC
// and pump.fun tokens use 6.
func decimalsForMint(mint string) int32 {
	if mint == model.SOLMint {
		return 9
	}
	return 6
}

func toBaseUnits(amount float64, decimals int32) uint64 {
	scaled := decimal.NewFromFloat(amount).Shift(decimals).Truncate(0)
	return uint64(scaled.IntPart())
}

func fromBaseUnits(raw string, decimals int32) (float64, error) {
	units, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid base-unit amount %q: %w", raw, err)
	}
	value, _ := decimal.NewFromUint64(units).Shift(-decimals).Float64()
	return value, nil
}

// Execute swaps amount (UI units of the input mint) between the trading
// asset and the token. Buy spends the trading asset, sell spends the token.
func (c *Client) Execute(
	ctx context.Context,
	tokenAddress string,
	direction Direction,
	amount float64,
	tradingAssetMint string,
) (*Result, error) {

	var inputMint, outputMint string
	switch direction {
	case DirectionBuy:
		inputMint, outputMint = tradingAssetMint, tokenAddress
	case DirectionSell:
		inputMint, outputMint = tokenAddress, tradingAssetMint
	default:
		return nil, fmt.Errorf("unknown swap direction %q", direction)
	}

	log := logger.WithFields(map[string]interface{}{
		"component": "swap_client",
		"token":     tokenAddress,
		"direction": direction,
	})

	inDecimals := decimalsForMint(inputMint)
	amountBaseUnits := toBaseUnits(amount, inDecimals)
	if amountBaseUnits == 0 {
		return nil, fmt.Errorf("%w: amount %f rounds to zero base units", ErrExecutionRejected, amount)
	}

	quote, err := c.routes.GetQuote(ctx, inputMint, outputMint, amountBaseUnits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}

	payload, err := c.routes.BuildSwapTransaction(ctx, quote, c.signer.PublicKey().String())
	if err != nil {
		return nil, fmt.Errorf("%w: build: %v", ErrExecutionRejected, err)
	}

	tx, err := solana.TransactionFromBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrExecutionRejected, err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if c.signer.PublicKey().Equals(key) {
			return &c.signer
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sign: %v", ErrExecutionRejected, err)
	}

	signature, err := c.chain.Send(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: send: %v", ErrExecutionRejected, err)
	}

	status, err := c.chain.AwaitConfirmation(ctx, signature)
	if err != nil {
		if errors.Is(err, connectors.ErrConfirmationTimeout) {
			return nil, fmt.Errorf("%w: signature %s", ErrConfirmationTimeout, signature)
		}
		return nil, fmt.Errorf("%w: confirm: %v", ErrExecutionRejected, err)
	}
	if !status.Confirmed {
		return nil, fmt.Errorf("%w: on-chain error: %s", ErrExecutionRejected, status.Err)
	}

	inputAmount, err := fromBaseUnits(quote.InAmount, inDecimals)
	if err != nil {
		return nil, err
	}
	outputAmount, err := fromBaseUnits(quote.OutAmount, decimalsForMint(outputMint))
	if err != nil {
		return nil, err
	}

	// Asset per token regardless of direction, so entry and exit prices
	// share one scale.
	tokenAmount, assetAmount := outputAmount, inputAmount
	if direction == DirectionSell {
		tokenAmount, assetAmount = inputAmount, outputAmount
	}
	if tokenAmount == 0 {
		return nil, fmt.Errorf("quote has zero token amount")
	}
	price := assetAmount / tokenAmount

	priceImpact, _ := strconv.ParseFloat(quote.PriceImpactPct, 64)

	log.WithFields(map[string]interface{}{
		"signature":     signature,
		"input_amount":  inputAmount,
		"output_amount": outputAmount,
	}).Info("Swap confirmed")

	return &Result{
		Signature:      signature,
		InputAmount:    inputAmount,
		OutputAmount:   outputAmount,
		ExecutionPrice: price,
		PriceImpactPct: priceImpact,
	}, nil
}
