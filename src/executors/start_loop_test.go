package executors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tokensniper/src/controller"
	"tokensniper/src/model"
)

const testUserID = "6f1c8a6e-4a3b-4f0e-9c64-2a9a84f6d001"

type stubConfigSource struct {
	config *model.BotConfig
	err    error
}

func (s *stubConfigSource) GetBotConfig(_ context.Context, _ string) (*model.BotConfig, error) {
	return s.config, s.err
}

type stubLease struct {
	acquired   bool
	acquireErr error
	acquires   int
	releases   int
}

func (s *stubLease) Acquire(_ context.Context, _, _ string, _ time.Duration) (bool, error) {
	s.acquires++
	return s.acquired, s.acquireErr
}

func (s *stubLease) Release(_ context.Context, _, _ string) error {
	s.releases++
	return nil
}

type stubCycles struct {
	err  error
	runs int
}

func (s *stubCycles) RunCycle(_ context.Context, _ string) (*controller.CycleResult, error) {
	s.runs++
	if s.err != nil {
		return nil, s.err
	}
	return &controller.CycleResult{}, nil
}

func newTestLoop(configs *stubConfigSource, leases *stubLease, cycles *stubCycles) *loop {
	return &loop{
		userID:   testUserID,
		holderID: "holder-1",
		leaseTTL: 2 * time.Minute,
		configs:  configs,
		leases:   leases,
		cycles:   cycles,
	}
}

func activeConfig() *model.BotConfig {
	return &model.BotConfig{UserID: testUserID, IsActive: true}
}

func TestTickRunsCycleUnderLease(t *testing.T) {
	leases := &stubLease{acquired: true}
	cycles := &stubCycles{}

	err := newTestLoop(&stubConfigSource{config: activeConfig()}, leases, cycles).
		tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, cycles.runs)
	require.Equal(t, 1, leases.acquires)
	require.Equal(t, 1, leases.releases)
}

func TestTickSkipsOnTransientConfigError(t *testing.T) {
	leases := &stubLease{acquired: true}
	cycles := &stubCycles{}

	err := newTestLoop(&stubConfigSource{err: errors.New("connection refused")}, leases, cycles).
		tick(context.Background())
	require.NoError(t, err, "a failed config read waits for the next tick")
	require.Zero(t, cycles.runs)
	require.Zero(t, leases.acquires)
}

func TestTickStopsWithoutBotConfig(t *testing.T) {
	err := newTestLoop(&stubConfigSource{}, &stubLease{acquired: true}, &stubCycles{}).
		tick(context.Background())
	require.Error(t, err)
}

func TestTickSkipsInactiveBot(t *testing.T) {
	leases := &stubLease{acquired: true}
	cycles := &stubCycles{}
	config := activeConfig()
	config.IsActive = false

	err := newTestLoop(&stubConfigSource{config: config}, leases, cycles).
		tick(context.Background())
	require.NoError(t, err)
	require.Zero(t, cycles.runs)
	require.Zero(t, leases.acquires)
}

func TestTickSkipsWhenLeaseHeldElsewhere(t *testing.T) {
	leases := &stubLease{acquired: false}
	cycles := &stubCycles{}

	err := newTestLoop(&stubConfigSource{config: activeConfig()}, leases, cycles).
		tick(context.Background())
	require.NoError(t, err)
	require.Zero(t, cycles.runs)
	require.Zero(t, leases.releases, "no release without acquisition")
}

func TestTickReleasesLeaseAfterFailedCycle(t *testing.T) {
	leases := &stubLease{acquired: true}
	cycles := &stubCycles{err: errors.New("monitor phase: price feed down")}

	err := newTestLoop(&stubConfigSource{config: activeConfig()}, leases, cycles).
		tick(context.Background())
	require.NoError(t, err, "a failed cycle waits for the next tick")
	require.Equal(t, 1, leases.releases)
}
