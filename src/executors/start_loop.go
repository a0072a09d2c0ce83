package executors

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/controller"
	"tokensniper/src/model"
	"tokensniper/src/repository"
	"tokensniper/src/security"
)

type botConfigSource interface {
	GetBotConfig(ctx context.Context, userID string) (*model.BotConfig, error)
}

type cycleLease interface {
	Acquire(ctx context.Context, userID, holderID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID, holderID string) error
}

type cycleRunner interface {
	RunCycle(ctx context.Context, userID string) (*controller.CycleResult, error)
}

// loop holds one process's cycle-trigger state. holderID identifies this
// process instance for lease ownership.
type loop struct {
	userID   string
	holderID string
	leaseTTL time.Duration
	configs  botConfigSource
	leases   cycleLease
	cycles   cycleRunner
}

// tick runs at most one cycle. Transient failures are logged and skipped so
// the next scheduled trigger can retry; only a missing bot config stops the
// loop.
func (l *loop) tick(ctx context.Context) error {
	botConfig, err := l.configs.GetBotConfig(ctx, l.userID)
	if err != nil {
		logger.WithError(err).Error("Failed to load bot config, skipping tick")
		return nil
	}
	if botConfig == nil {
		logger.WithField("user_id", l.userID).Error("No bot config for user")
		return errors.New("no bot config for user")
	}
	if !botConfig.IsActive {
		logger.Warn("bot inactive, skipping tick")
		return nil
	}

	acquired, err := l.leases.Acquire(ctx, l.userID, l.holderID, l.leaseTTL)
	if err != nil {
		logger.WithError(err).Error("Failed to acquire cycle lease")
		return nil
	}
	if !acquired {
		logger.Warn("cycle lease held elsewhere, skipping tick")
		return nil
	}

	result, err := l.cycles.RunCycle(ctx, l.userID)

	if releaseErr := l.leases.Release(ctx, l.userID, l.holderID); releaseErr != nil {
		logger.WithError(releaseErr).Error("Failed to release cycle lease")
	}

	if err != nil {
		logger.WithError(err).Error("Cycle failed, waiting for next tick")
		return nil
	}

	logger.WithFields(map[string]interface{}{
		"user_id": l.userID,
		"errors":  len(result.Errors),
	}).Info("Cycle complete")

	return nil
}

// StartLoop runs the trading cycle on a fixed cadence for the configured
// user. Each tick re-reads the bot config, skips when the bot is inactive,
// and takes the per-user cycle lease so two processes can never run
// overlapping cycles for the same user.
func StartLoop(ctx context.Context) error {
	config := GetConfig()

	userID := config.UserID
	if userID == "" {
		return errors.New("user_id not set")
	}

	settingsRepo := repository.NewSettingsRepository()
	tradeRepo := repository.NewTradeHistoryRepository()
	exceptionRepo := repository.NewExceptionRepository()
	leaseRepo := repository.NewCycleLeaseRepository()

	cipher, err := security.NewCipher(security.GetConfig())
	if err != nil {
		logger.WithError(err).Error("Failed to initialize wallet cipher")
		return err
	}

	connCfg := connectors.GetConfig()
	ctrlCfg := controller.GetConfig()

	l := &loop{
		userID:   userID,
		holderID: uuid.NewString(),
		leaseTTL: config.LeaseTTL,
		configs:  settingsRepo,
		leases:   leaseRepo,
		cycles: controller.NewCycleController(
			settingsRepo,
			tradeRepo,
			exceptionRepo,
			cipher,
			controller.DefaultRunnerBuilder(connCfg, ctrlCfg.ScanCandidateLimit),
		),
	}

	ticker := time.NewTicker(config.LoopPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("loop stopped")
			return nil

		case <-ticker.C:
			logger.Info("loop tick")

			if err := l.tick(ctx); err != nil {
				return err
			}
		}
	}
}
