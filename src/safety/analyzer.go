package safety

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/mapper"
	"tokensniper/src/model"
)

// Oracle is the external token-intelligence source.
type Oracle interface {
	GetTokenOverview(ctx context.Context, address string) (*connectors.TokenOverview, error)
	GetTokenSecurity(ctx context.Context, address string) (*connectors.TokenSecurity, error)
}

// SafetyStore persists analysis results.
type SafetyStore interface {
	Create(ctx context.Context, record *model.TokenSafety) error
}

// Analyzer fetches a token's profile from the oracle, scores it and stores
// the result. One call produces exactly one TokenSafety row.
type Analyzer struct {
	oracle Oracle
	store  SafetyStore
}

func NewAnalyzer(oracle Oracle, store SafetyStore) *Analyzer {
	return &Analyzer{oracle: oracle, store: store}
}

func (a *Analyzer) Analyze(ctx context.Context, tokenAddress string) (*model.TokenSafety, error) {
	overview, err := a.oracle.GetTokenOverview(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("token overview: %w", err)
	}

	security, err := a.oracle.GetTokenSecurity(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("token security: %w", err)
	}

	score := Score(overview, security)
	status := StatusForScore(score)

	record, err := mapper.MapBirdeyeToSafety(
		tokenAddress, overview, security, score, status, time.Now().UTC())
	if err != nil || record == nil {
		return nil, fmt.Errorf("map safety record: %w", err)
	}

	if err := a.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist safety record: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"component": "safety_analyzer",
		"token":     tokenAddress,
		"score":     score,
		"status":    status,
	}).Info("Token analyzed")

	return record, nil
}
