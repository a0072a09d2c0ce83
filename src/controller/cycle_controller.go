package controller

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	logger "github.com/sirupsen/logrus"

	"tokensniper/src/model"
	"tokensniper/src/monitor"
	"tokensniper/src/repository"
	"tokensniper/src/scanner"
)

type settingsRepository interface {
	GetBotConfig(ctx context.Context, userID string) (*model.BotConfig, error)
	GetBotSettings(ctx context.Context, userID string) (*model.BotSettings, error)
	SetActive(ctx context.Context, userID string, active bool) error
}

type tradeLog interface {
	Append(ctx context.Context, record *model.TradeRecord) error
}

type secretCipher interface {
	Decrypt(encoded string) (string, error)
}

type monitorRunner interface {
	Run(ctx context.Context, userID string, settings model.Snapshot) (*monitor.Result, error)
}

type scanRunner interface {
	Run(ctx context.Context, userID string, settings model.Snapshot) (*scanner.Result, error)
}

// RunnerSet is one cycle's monitor and scanner, bound to the user's wallet
// and RPC endpoint.
type RunnerSet struct {
	Monitor monitorRunner
	Scanner scanRunner
}

// RunnerBuilder constructs the phase runners for one cycle. The wallet
// secret arrives already decrypted and must not be retained.
type RunnerBuilder func(ctx context.Context, config *model.BotConfig, walletSecret string) (*RunnerSet, error)

// CycleResult reports both phases of one cycle.
type CycleResult struct {
	Monitor *monitor.Result `json:"monitor"`
	Scan    *scanner.Result `json:"scan"`
	Errors  []string        `json:"errors,omitempty"`
}

// CycleController runs the monitor-then-scan cycle for one user and owns
// the bot start/stop lifecycle.
type CycleController struct {
	settings   settingsRepository
	trades     tradeLog
	exceptions *repository.ExceptionRepository
	cipher     secretCipher
	build      RunnerBuilder
}

func NewCycleController(
	settings settingsRepository,
	trades tradeLog,
	exceptions *repository.ExceptionRepository,
	cipher secretCipher,
	build RunnerBuilder,
) *CycleController {
	return &CycleController{
		settings:   settings,
		trades:     trades,
		exceptions: exceptions,
		cipher:     cipher,
		build:      build,
	}
}

// RunCycle executes one full cycle: MONITOR then SCAN, strictly ordered.
// Missing config or settings is a fatal precondition failure. A monitor
// failure never prevents the scan from running.
func (c *CycleController) RunCycle(ctx context.Context, userID string) (result *CycleResult, err error) {
	logger.WithFields(map[string]interface{}{
		"component": "cycle_controller",
		"user_id":   userID,
	}).Info("Starting trading cycle")

	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("cycle panic: %v", r)
			c.recordCycleError(ctx, userID, panicErr)
			result, err = nil, panicErr
		}
	}()

	// ------------------------------------------------------------------
	// 1) Preconditions: wallet config and settings must both exist
	// ------------------------------------------------------------------
	config, settingsRow, precondErr := c.preconditions(ctx, userID)
	if precondErr != nil {
		c.recordCycleError(ctx, userID, precondErr)
		return nil, precondErr
	}

	snapshot := settingsRow.Snapshot()

	walletSecret, err := c.cipher.Decrypt(config.WalletSecretEnc)
	if err != nil {
		decErr := fmt.Errorf("decrypt wallet secret: %w", err)
		c.recordCycleError(ctx, userID, decErr)
		return nil, decErr
	}

	runners, err := c.build(ctx, config, walletSecret)
	if err != nil {
		buildErr := fmt.Errorf("build cycle runners: %w", err)
		c.recordCycleError(ctx, userID, buildErr)
		return nil, buildErr
	}

	result = &CycleResult{}

	// ------------------------------------------------------------------
	// 2) MONITOR phase, completes fully before SCAN begins
	// ------------------------------------------------------------------
	monitorResult, err := runners.Monitor.Run(ctx, userID, snapshot)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("monitor: %v", err))
		c.recordCycleError(ctx, userID, fmt.Errorf("monitor phase: %w", err))
	} else {
		result.Monitor = monitorResult
	}

	// ------------------------------------------------------------------
	// 3) SCAN phase, runs regardless of the monitor outcome
	// ------------------------------------------------------------------
	scanResult, err := runners.Scanner.Run(ctx, userID, snapshot)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("scan: %v", err))
		c.recordCycleError(ctx, userID, fmt.Errorf("scan phase: %w", err))
	} else {
		result.Scan = scanResult
	}

	logger.WithFields(map[string]interface{}{
		"component": "cycle_controller",
		"user_id":   userID,
		"errors":    len(result.Errors),
	}).Info("Trading cycle finished")

	return result, nil
}

// Start validates that the stored wallet secret matches the configured
// public key, marks the bot active and appends a BOT_STARTED record.
func (c *CycleController) Start(ctx context.Context, userID string) error {
	config, err := c.settings.GetBotConfig(ctx, userID)
	if err != nil {
		return fmt.Errorf("load bot config: %w", err)
	}
	if config == nil {
		return fmt.Errorf("no bot config for user %s", userID)
	}

	walletSecret, err := c.cipher.Decrypt(config.WalletSecretEnc)
	if err != nil {
		return fmt.Errorf("decrypt wallet secret: %w", err)
	}

	key, err := solana.PrivateKeyFromBase58(walletSecret)
	if err != nil {
		return fmt.Errorf("invalid wallet secret: %w", err)
	}
	if key.PublicKey().String() != config.WalletPublicKey {
		return fmt.Errorf("wallet secret does not match configured public key")
	}

	if err := c.settings.SetActive(ctx, userID, true); err != nil {
		return fmt.Errorf("activate bot: %w", err)
	}

	return c.trades.Append(ctx, &model.TradeRecord{
		UserID:       userID,
		TokenAddress: model.SystemTokenAddress,
		Action:       model.TradeActionBotStarted,
		Status:       model.TradeStatusSuccess,
	})
}

// Stop marks the bot inactive. An in-flight cycle is not interrupted, only
// future triggers are prevented.
func (c *CycleController) Stop(ctx context.Context, userID string) error {
	if err := c.settings.SetActive(ctx, userID, false); err != nil {
		return fmt.Errorf("deactivate bot: %w", err)
	}

	return c.trades.Append(ctx, &model.TradeRecord{
		UserID:       userID,
		TokenAddress: model.SystemTokenAddress,
		Action:       model.TradeActionBotStopped,
		Status:       model.TradeStatusSuccess,
	})
}

func (c *CycleController) preconditions(ctx context.Context, userID string) (*model.BotConfig, *model.BotSettings, error) {
	config, err := c.settings.GetBotConfig(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load bot config: %w", err)
	}
	if config == nil {
		return nil, nil, fmt.Errorf("no bot config for user %s", userID)
	}

	settingsRow, err := c.settings.GetBotSettings(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load bot settings: %w", err)
	}
	if settingsRow == nil {
		return nil, nil, fmt.Errorf("no bot settings for user %s", userID)
	}

	return config, settingsRow, nil
}

func (c *CycleController) recordCycleError(ctx context.Context, userID string, cause error) {
	Capture(
		ctx,
		c.exceptions,
		"CycleController",
		"controller",
		"RunCycle",
		"error",
		cause,
		map[string]interface{}{"user_id": userID},
	)

	record := &model.TradeRecord{
		UserID:       userID,
		TokenAddress: model.SystemTokenAddress,
		Action:       model.TradeActionCycleError,
		Status:       model.TradeStatusFailed,
		ErrorMessage: cause.Error(),
	}
	if err := c.trades.Append(ctx, record); err != nil {
		logger.WithFields(map[string]interface{}{
			"component": "cycle_controller",
			"user_id":   userID,
		}).WithError(err).Error("Failed to append CYCLE_ERROR record")
	}
}
