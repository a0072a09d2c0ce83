package safety

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
)

type stubOracle struct {
	overview    *connectors.TokenOverview
	overviewErr error
	security    *connectors.TokenSecurity
	securityErr error
}

func (s *stubOracle) GetTokenOverview(_ context.Context, _ string) (*connectors.TokenOverview, error) {
	return s.overview, s.overviewErr
}

func (s *stubOracle) GetTokenSecurity(_ context.Context, _ string) (*connectors.TokenSecurity, error) {
	return s.security, s.securityErr
}

type stubSafetyStore struct {
	created []model.TokenSafety
	err     error
}

func (s *stubSafetyStore) Create(_ context.Context, record *model.TokenSafety) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *record)
	return nil
}

func TestAnalyzerScoresAndPersists(t *testing.T) {
	oracle := &stubOracle{
		overview: &connectors.TokenOverview{
			LiquidityUSD: 2000, // +30
			HolderCount:  50,   // +20
			TopHolderPct: 60,   // +25
		},
		security: &connectors.TokenSecurity{IsVerified: true, IsHoneypot: false},
	}
	store := &stubSafetyStore{}

	record, err := NewAnalyzer(oracle, store).Analyze(context.Background(), "MintA")
	require.NoError(t, err)
	require.Equal(t, 75, record.RugpullRiskScore)
	require.Equal(t, model.SafetyStatusDanger, record.SafetyStatus)
	require.Equal(t, "MintA", record.TokenAddress)
	require.Equal(t, "birdeye", record.AnalysisSource)
	require.False(t, record.AnalyzedAt.IsZero())

	require.Len(t, store.created, 1)
	require.Equal(t, *record, store.created[0])
}

func TestAnalyzerCleanToken(t *testing.T) {
	oracle := &stubOracle{
		overview: &connectors.TokenOverview{LiquidityUSD: 50000, HolderCount: 1200, TopHolderPct: 8},
		security: &connectors.TokenSecurity{IsVerified: true, LiquidityLocked: true},
	}
	store := &stubSafetyStore{}

	record, err := NewAnalyzer(oracle, store).Analyze(context.Background(), "MintB")
	require.NoError(t, err)
	require.Zero(t, record.RugpullRiskScore)
	require.Equal(t, model.SafetyStatusSafe, record.SafetyStatus)
}

func TestAnalyzerOracleFailure(t *testing.T) {
	store := &stubSafetyStore{}

	t.Run("overview fails", func(t *testing.T) {
		oracle := &stubOracle{overviewErr: errors.New("birdeye 503")}
		_, err := NewAnalyzer(oracle, store).Analyze(context.Background(), "MintC")
		require.Error(t, err)
		require.Empty(t, store.created, "nothing persisted on a failed analysis")
	})

	t.Run("security fails", func(t *testing.T) {
		oracle := &stubOracle{
			overview:    &connectors.TokenOverview{LiquidityUSD: 50000},
			securityErr: errors.New("birdeye 429"),
		}
		_, err := NewAnalyzer(oracle, store).Analyze(context.Background(), "MintC")
		require.Error(t, err)
		require.Empty(t, store.created)
	})
}

func TestAnalyzerStoreFailure(t *testing.T) {
	oracle := &stubOracle{
		overview: &connectors.TokenOverview{LiquidityUSD: 50000, HolderCount: 1200, TopHolderPct: 8},
		security: &connectors.TokenSecurity{IsVerified: true},
	}
	store := &stubSafetyStore{err: errors.New("db write failed")}

	_, err := NewAnalyzer(oracle, store).Analyze(context.Background(), "MintD")
	require.Error(t, err)
}
