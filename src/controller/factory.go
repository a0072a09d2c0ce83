package controller

import (
	"context"
	"fmt"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
	"tokensniper/src/monitor"
	"tokensniper/src/repository"
	"tokensniper/src/safety"
	"tokensniper/src/scanner"
	"tokensniper/src/swap"
)

// DefaultRunnerBuilder wires the production monitor and scanner against the
// live connectors and repositories. The user's RPC endpoint takes
// precedence over the configured default.
func DefaultRunnerBuilder(connCfg connectors.Config, scanLimit int) RunnerBuilder {
	return func(ctx context.Context, config *model.BotConfig, walletSecret string) (*RunnerSet, error) {
		endpoint := config.RPCEndpoint
		if endpoint == "" {
			endpoint = connCfg.SolanaRPCURL
		}

		jupiter := connectors.NewJupiterClient(connCfg)
		birdeye := connectors.NewBirdeyeClient(connCfg)
		chain := connectors.NewSolanaClient(endpoint, connCfg)

		executor, err := swap.NewClient(jupiter, chain, walletSecret)
		if err != nil {
			return nil, fmt.Errorf("swap client: %w", err)
		}

		positionRepo := repository.NewPositionRepository()
		tradeRepo := repository.NewTradeHistoryRepository()
		launchRepo := repository.NewTokenLaunchRepository()
		safetyRepo := repository.NewTokenSafetyRepository()

		analyzer := safety.NewAnalyzer(birdeye, safetyRepo)

		return &RunnerSet{
			Monitor: monitor.NewMonitor(jupiter, executor, positionRepo, tradeRepo),
			Scanner: scanner.NewScanner(
				launchRepo,
				positionRepo,
				safetyRepo,
				analyzer,
				safety.NewGate(),
				executor,
				tradeRepo,
			).WithCandidateLimit(scanLimit),
		}, nil
	}
}
