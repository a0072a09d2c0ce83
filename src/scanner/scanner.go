// Package scanner turns detected token launches into at most one new
// position per pass. Candidates that fail a check are skipped or rejected;
// a failed buy is recorded and the scan moves on.
package scanner

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"tokensniper/src/model"
	"tokensniper/src/safety"
	"tokensniper/src/swap"
)

// DefaultCandidateLimit bounds how many detected launches one scan
// considers.
const DefaultCandidateLimit = 5

// CandidateStore reads and transitions launch candidates.
type CandidateStore interface {
	ListByStatus(ctx context.Context, status model.TokenStatus, limit int) ([]model.TokenLaunch, error)
	UpdateStatus(ctx context.Context, tokenAddress string, status model.TokenStatus) error
}

// PositionStore is the slice of the position repository the scanner needs.
type PositionStore interface {
	FindByToken(ctx context.Context, userID, tokenAddress string) (*model.Position, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, position *model.Position) error
}

// SafetyStore reads the latest analysis for a candidate.
type SafetyStore interface {
	FindLatestByToken(ctx context.Context, tokenAddress string) (*model.TokenSafety, error)
}

// TokenAnalyzer produces a fresh analysis for candidates that have none.
type TokenAnalyzer interface {
	Analyze(ctx context.Context, tokenAddress string) (*model.TokenSafety, error)
}

// SwapExecutor opens positions.
type SwapExecutor interface {
	Execute(ctx context.Context, tokenAddress string, direction swap.Direction, amount float64, tradingAssetMint string) (*swap.Result, error)
}

// TradeLog appends audit records.
type TradeLog interface {
	Append(ctx context.Context, record *model.TradeRecord) error
}

// Result summarizes one scan pass.
type Result struct {
	Idle      bool
	Evaluated int
	Skipped   int
	Rejected  int
	Bought    int
	Errors    int
}

type Scanner struct {
	candidates CandidateStore
	positions  PositionStore
	safeties   SafetyStore
	analyzer   TokenAnalyzer
	gate       *safety.Gate
	executor   SwapExecutor
	trades     TradeLog
	limit      int
}

func NewScanner(
	candidates CandidateStore,
	positions PositionStore,
	safeties SafetyStore,
	analyzer TokenAnalyzer,
	gate *safety.Gate,
	executor SwapExecutor,
	trades TradeLog,
) *Scanner {
	return &Scanner{
		candidates: candidates,
		positions:  positions,
		safeties:   safeties,
		analyzer:   analyzer,
		gate:       gate,
		executor:   executor,
		trades:     trades,
		limit:      DefaultCandidateLimit,
	}
}

// WithCandidateLimit overrides the per-scan candidate bound.
func (s *Scanner) WithCandidateLimit(limit int) *Scanner {
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// Run performs one scan pass. Idle when auto-detect is off or position
// capacity is full. At most one successful buy per pass.
func (s *Scanner) Run(ctx context.Context, userID string, settings model.Snapshot) (*Result, error) {
	if !settings.AutoDetectEnabled {
		return &Result{Idle: true}, nil
	}

	open, err := s.positions.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count positions: %w", err)
	}
	if open >= int64(settings.MaxConcurrentPos) {
		logger.WithFields(map[string]interface{}{
			"component": "opportunity_scanner",
			"open":      open,
			"max":       settings.MaxConcurrentPos,
		}).Debug("Position capacity full, scan idle")

		return &Result{Idle: true}, nil
	}

	candidates, err := s.candidates.ListByStatus(ctx, model.TokenStatusDetected, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	result := &Result{}

	for i := range candidates {
		candidate := &candidates[i]
		result.Evaluated++

		buy, err := s.evaluate(ctx, userID, candidate, settings, result)
		if err != nil {
			result.Errors++

			logger.WithFields(map[string]interface{}{
				"component": "opportunity_scanner",
				"token":     candidate.TokenAddress,
			}).WithError(err).Error("Buy attempt failed")

			s.recordBuyError(ctx, userID, candidate, settings, err)
			continue
		}

		if buy {
			result.Bought++
			break
		}
	}

	return result, nil
}

// evaluate checks one candidate. Returns true when a buy confirmed. An
// error means the buy was attempted and failed.
func (s *Scanner) evaluate(
	ctx context.Context,
	userID string,
	candidate *model.TokenLaunch,
	settings model.Snapshot,
	result *Result,
) (bool, error) {

	existing, err := s.positions.FindByToken(ctx, userID, candidate.TokenAddress)
	if err != nil {
		return false, fmt.Errorf("position lookup: %w", err)
	}
	if existing != nil {
		result.Skipped++
		return false, nil
	}

	if candidate.InitialLiquidity < settings.MinLiquidityUSD {
		logger.WithFields(map[string]interface{}{
			"component": "opportunity_scanner",
			"token":     candidate.TokenAddress,
			"liquidity": candidate.InitialLiquidity,
			"min":       settings.MinLiquidityUSD,
		}).Debug("Candidate below liquidity floor")

		result.Skipped++
		return false, nil
	}

	record, err := s.safetyRecord(ctx, candidate.TokenAddress, settings)
	if err != nil {
		return false, err
	}

	verdict := s.gate.Evaluate(record, settings)
	if !verdict.Passed {
		result.Rejected++

		if verdict.Reason != safety.RejectNoData {
			if err := s.candidates.UpdateStatus(ctx, candidate.TokenAddress, model.TokenStatusRejected); err != nil {
				return false, fmt.Errorf("mark rejected: %w", err)
			}
		}
		return false, nil
	}

	return true, s.buy(ctx, userID, candidate, settings)
}

// safetyRecord returns the latest analysis, running the analyzer once for
// candidates that have never been analyzed. An analyzer failure falls back
// to no data, which the gate rejects.
func (s *Scanner) safetyRecord(
	ctx context.Context,
	tokenAddress string,
	settings model.Snapshot,
) (*model.TokenSafety, error) {

	record, err := s.safeties.FindLatestByToken(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("safety lookup: %w", err)
	}

	if record == nil && settings.SafetyCheckEnabled && s.analyzer != nil {
		record, err = s.analyzer.Analyze(ctx, tokenAddress)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"component": "opportunity_scanner",
				"token":     tokenAddress,
			}).WithError(err).Warn("Analysis failed, candidate stays unanalyzed")

			return nil, nil
		}
	}

	return record, nil
}

func (s *Scanner) buy(ctx context.Context, userID string, candidate *model.TokenLaunch, settings model.Snapshot) error {
	spend := settings.MaxInvestmentUSD

	execution, err := s.executor.Execute(
		ctx, candidate.TokenAddress, swap.DirectionBuy, spend, settings.TradingAssetMint)
	if err != nil {
		return fmt.Errorf("buy execution: %w", err)
	}

	position := &model.Position{
		UserID:          userID,
		TokenAddress:    candidate.TokenAddress,
		TokenSymbol:     candidate.TokenSymbol,
		EntryPrice:      execution.ExecutionPrice,
		CurrentPrice:    execution.ExecutionPrice,
		AmountHeld:      execution.OutputAmount,
		CapitalInvested: spend,
		CurrentValue:    spend,
		ProfitLossPct:   0,
		EntryTxSig:      execution.Signature,
	}
	if err := s.positions.Create(ctx, position); err != nil {
		return fmt.Errorf("create position: %w", err)
	}

	record := &model.TradeRecord{
		UserID:       userID,
		PositionID:   &position.ID,
		TokenAddress: candidate.TokenAddress,
		Action:       model.TradeActionBuy,
		Amount:       execution.OutputAmount,
		Price:        execution.ExecutionPrice,
		Status:       model.TradeStatusSuccess,
		Signature:    execution.Signature,
	}
	if err := s.trades.Append(ctx, record); err != nil {
		return fmt.Errorf("append buy record: %w", err)
	}

	if err := s.candidates.UpdateStatus(ctx, candidate.TokenAddress, model.TokenStatusTrading); err != nil {
		return fmt.Errorf("mark trading: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"component": "opportunity_scanner",
		"token":     candidate.TokenAddress,
		"spend":     spend,
		"amount":    execution.OutputAmount,
		"signature": execution.Signature,
	}).Info("Position opened")

	return nil
}

func (s *Scanner) recordBuyError(
	ctx context.Context,
	userID string,
	candidate *model.TokenLaunch,
	settings model.Snapshot,
	cause error,
) {
	record := &model.TradeRecord{
		UserID:       userID,
		TokenAddress: candidate.TokenAddress,
		Action:       model.TradeActionBuyError,
		Amount:       settings.MaxInvestmentUSD,
		Status:       model.TradeStatusFailed,
		ErrorMessage: cause.Error(),
	}

	if err := s.trades.Append(ctx, record); err != nil {
		logger.WithFields(map[string]interface{}{
			"component": "opportunity_scanner",
			"token":     candidate.TokenAddress,
		}).WithError(err).Error("Failed to append BUY_ERROR record")
	}
}
