// Package monitor walks the user's open positions, refreshes their
// valuation from a probe quote and closes the ones that hit the profit or
// stop-loss threshold. Positions are processed independently: one failing
// position never aborts the batch.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
	"tokensniper/src/swap"
)

// priceProbeBaseUnits is the probe size used to derive a current price.
// Small enough not to distort the route, large enough to avoid rounding to
// zero output.
const priceProbeBaseUnits = 1_000_000

// PriceOracle yields a route quote used only for price discovery.
type PriceOracle interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amountBaseUnits uint64) (*connectors.Quote, error)
}

// SwapExecutor closes positions.
type SwapExecutor interface {
	Execute(ctx context.Context, tokenAddress string, direction swap.Direction, amount float64, tradingAssetMint string) (*swap.Result, error)
}

// PositionStore is the slice of the position repository the monitor needs.
type PositionStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Position, error)
	UpdateValuation(ctx context.Context, position *model.Position) error
	Delete(ctx context.Context, positionID string) error
}

// TradeLog appends audit records.
type TradeLog interface {
	Append(ctx context.Context, record *model.TradeRecord) error
	AttachExit(ctx context.Context, recordID string, entryPrice, exitPrice, profitLossPct float64) error
}

// Result summarizes one monitor pass.
type Result struct {
	Checked int
	Closed  int
	Errors  int
}

type Monitor struct {
	oracle    PriceOracle
	executor  SwapExecutor
	positions PositionStore
	trades    TradeLog
}

func NewMonitor(oracle PriceOracle, executor SwapExecutor, positions PositionStore, trades TradeLog) *Monitor {
	return &Monitor{
		oracle:    oracle,
		executor:  executor,
		positions: positions,
		trades:    trades,
	}
}

// Run evaluates every open position once. Per-position failures are
// recorded as POSITION_ERROR rows and the pass continues.
func (m *Monitor) Run(ctx context.Context, userID string, settings model.Snapshot) (*Result, error) {
	positions, err := m.positions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	result := &Result{Checked: len(positions)}

	for i := range positions {
		position := &positions[i]

		if err := m.evaluate(ctx, position, settings); err != nil {
			result.Errors++

			logger.WithFields(map[string]interface{}{
				"component":   "position_monitor",
				"position_id": position.ID,
				"token":       position.TokenAddress,
			}).WithError(err).Error("Position check failed")

			m.recordPositionError(ctx, position, err)
		} else if position.AmountHeld == 0 {
			// evaluate zeroes AmountHeld after a confirmed close
			result.Closed++
		}
	}

	return result, nil
}

// evaluate refreshes one position and closes it when a threshold is hit.
// Threshold comparison is inclusive on both sides.
func (m *Monitor) evaluate(ctx context.Context, position *model.Position, settings model.Snapshot) error {
	price, err := m.probePrice(ctx, position.TokenAddress, settings.TradingAssetMint)
	if err != nil {
		return fmt.Errorf("price probe: %w", err)
	}

	position.Refresh(price, time.Now().UTC())

	if err := m.positions.UpdateValuation(ctx, position); err != nil {
		return fmt.Errorf("persist valuation: %w", err)
	}

	takeProfit := position.ProfitLossPct >= settings.ProfitThresholdPct
	stopLoss := position.ProfitLossPct <= settings.StopLossPct

	if !takeProfit && !stopLoss {
		return nil
	}

	reason := "take_profit"
	if stopLoss {
		reason = "stop_loss"
	}

	logger.WithFields(map[string]interface{}{
		"component":   "position_monitor",
		"position_id": position.ID,
		"token":       position.TokenAddress,
		"pl_pct":      position.ProfitLossPct,
		"reason":      reason,
	}).Info("Closing position")

	return m.close(ctx, position, settings)
}

// close sells the full held amount. A failed or unconfirmed sell leaves the
// position untouched so the next pass retries the same decision.
func (m *Monitor) close(ctx context.Context, position *model.Position, settings model.Snapshot) error {
	result, err := m.executor.Execute(
		ctx, position.TokenAddress, swap.DirectionSell, position.AmountHeld, settings.TradingAssetMint)
	if err != nil {
		return fmt.Errorf("sell execution: %w", err)
	}

	record := &model.TradeRecord{
		UserID:       position.UserID,
		PositionID:   &position.ID,
		TokenAddress: position.TokenAddress,
		Action:       model.TradeActionSell,
		Amount:       position.AmountHeld,
		Price:        result.ExecutionPrice,
		Status:       model.TradeStatusSuccess,
		Signature:    result.Signature,
	}
	if err := m.trades.Append(ctx, record); err != nil {
		return fmt.Errorf("append sell record: %w", err)
	}

	finalPL := 0.0
	if position.CapitalInvested != 0 {
		finalPL = (result.OutputAmount - position.CapitalInvested) / position.CapitalInvested * 100
	}
	if err := m.trades.AttachExit(ctx, record.ID, position.EntryPrice, result.ExecutionPrice, finalPL); err != nil {
		return fmt.Errorf("attach exit details: %w", err)
	}

	if err := m.positions.Delete(ctx, position.ID); err != nil {
		return fmt.Errorf("delete closed position: %w", err)
	}

	position.AmountHeld = 0
	return nil
}

// probePrice derives the token's price in trading-asset units from a small
// sell-side quote.
func (m *Monitor) probePrice(ctx context.Context, tokenAddress, tradingAssetMint string) (float64, error) {
	quote, err := m.oracle.GetQuote(ctx, tokenAddress, tradingAssetMint, priceProbeBaseUnits)
	if err != nil {
		return 0, err
	}

	in, err := decimal.NewFromString(quote.InAmount)
	if err != nil {
		return 0, fmt.Errorf("invalid inAmount %q: %w", quote.InAmount, err)
	}
	out, err := decimal.NewFromString(quote.OutAmount)
	if err != nil {
		return 0, fmt.Errorf("invalid outAmount %q: %w", quote.OutAmount, err)
	}
	if in.IsZero() {
		return 0, fmt.Errorf("probe quote has zero input amount")
	}

	// Both legs are scaled to UI units before dividing so mints with
	// different decimals still produce a per-token price.
	inUI := in.Shift(-tokenDecimals(tokenAddress))
	outUI := out.Shift(-tokenDecimals(tradingAssetMint))

	price, _ := outUI.Div(inUI).Float64()
	return price, nil
}

func tokenDecimals(mint string) int32 {
	if mint == model.SOLMint {
		return 9
	}
	return 6
}

func (m *Monitor) recordPositionError(ctx context.Context, position *model.Position, cause error) {
	record := &model.TradeRecord{
		UserID:       position.UserID,
		PositionID:   &position.ID,
		TokenAddress: position.TokenAddress,
		Action:       model.TradeActionPosError,
		Amount:       position.AmountHeld,
		Status:       model.TradeStatusFailed,
		ErrorMessage: cause.Error(),
	}

	if err := m.trades.Append(ctx, record); err != nil {
		logger.WithFields(map[string]interface{}{
			"component":   "position_monitor",
			"position_id": position.ID,
		}).WithError(err).Error("Failed to append POSITION_ERROR record")
	}
}
