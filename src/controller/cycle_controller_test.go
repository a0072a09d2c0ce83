package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"tokensniper/src/connectors"
	"tokensniper/src/model"
	"tokensniper/src/monitor"
	"tokensniper/src/safety"
	"tokensniper/src/scanner"
	"tokensniper/src/swap"
)

const testUserID = "6f1c8a6e-4a3b-4f0e-9c64-2a9a84f6d001"

type stubSettingsRepo struct {
	config   *model.BotConfig
	settings *model.BotSettings
	active   []bool
}

func (s *stubSettingsRepo) GetBotConfig(_ context.Context, _ string) (*model.BotConfig, error) {
	return s.config, nil
}

func (s *stubSettingsRepo) GetBotSettings(_ context.Context, _ string) (*model.BotSettings, error) {
	return s.settings, nil
}

func (s *stubSettingsRepo) SetActive(_ context.Context, _ string, active bool) error {
	s.active = append(s.active, active)
	return nil
}

type stubTradeLog struct {
	appended      []model.TradeRecord
	attachedExits int
}

func (s *stubTradeLog) Append(_ context.Context, record *model.TradeRecord) error {
	s.appended = append(s.appended, *record)
	return nil
}

func (s *stubTradeLog) AttachExit(_ context.Context, _ string, _, _, _ float64) error {
	s.attachedExits++
	return nil
}

func (s *stubTradeLog) actions() []model.TradeAction {
	var actions []model.TradeAction
	for _, record := range s.appended {
		actions = append(actions, record.Action)
	}
	return actions
}

// plainCipher stores secrets unencrypted, standing in for the real cipher.
type plainCipher struct{}

func (plainCipher) Decrypt(encoded string) (string, error) { return encoded, nil }

type stubMonitor struct {
	result *monitor.Result
	err    error
	runs   int
}

func (s *stubMonitor) Run(_ context.Context, _ string, _ model.Snapshot) (*monitor.Result, error) {
	s.runs++
	return s.result, s.err
}

type stubScanner struct {
	result *scanner.Result
	err    error
	runs   int
}

func (s *stubScanner) Run(_ context.Context, _ string, _ model.Snapshot) (*scanner.Result, error) {
	s.runs++
	return s.result, s.err
}

func staticBuilder(mon *stubMonitor, scan *stubScanner) RunnerBuilder {
	return func(_ context.Context, _ *model.BotConfig, _ string) (*RunnerSet, error) {
		return &RunnerSet{Monitor: mon, Scanner: scan}, nil
	}
}

func testBotConfig(wallet *solana.Wallet) *model.BotConfig {
	return &model.BotConfig{
		UserID:          testUserID,
		WalletPublicKey: wallet.PublicKey().String(),
		WalletSecretEnc: wallet.PrivateKey.String(),
		IsActive:        true,
	}
}

func TestRunCycleMissingConfigIsFatal(t *testing.T) {
	trades := &stubTradeLog{}
	controller := NewCycleController(
		&stubSettingsRepo{settings: &model.BotSettings{}},
		trades, nil, plainCipher{}, staticBuilder(&stubMonitor{}, &stubScanner{}))

	result, err := controller.RunCycle(context.Background(), testUserID)
	require.Error(t, err)
	require.Nil(t, result)

	require.Equal(t, []model.TradeAction{model.TradeActionCycleError}, trades.actions())
	require.Equal(t, model.SystemTokenAddress, trades.appended[0].TokenAddress)
}

func TestRunCycleMissingSettingsIsFatal(t *testing.T) {
	wallet := solana.NewWallet()
	trades := &stubTradeLog{}
	controller := NewCycleController(
		&stubSettingsRepo{config: testBotConfig(wallet)},
		trades, nil, plainCipher{}, staticBuilder(&stubMonitor{}, &stubScanner{}))

	_, err := controller.RunCycle(context.Background(), testUserID)
	require.Error(t, err)
	require.Equal(t, []model.TradeAction{model.TradeActionCycleError}, trades.actions())
}

func TestRunCycleMonitorBeforeScan(t *testing.T) {
	wallet := solana.NewWallet()
	mon := &stubMonitor{result: &monitor.Result{Checked: 2, Closed: 1}}
	scan := &stubScanner{result: &scanner.Result{Evaluated: 3, Bought: 1}}

	controller := NewCycleController(
		&stubSettingsRepo{config: testBotConfig(wallet), settings: &model.BotSettings{}},
		&stubTradeLog{}, nil, plainCipher{}, staticBuilder(mon, scan))

	result, err := controller.RunCycle(context.Background(), testUserID)
	require.NoError(t, err)
	require.Equal(t, 1, mon.runs)
	require.Equal(t, 1, scan.runs)
	require.Equal(t, 1, result.Monitor.Closed)
	require.Equal(t, 1, result.Scan.Bought)
	require.Empty(t, result.Errors)
}

func TestRunCycleMonitorFailureDoesNotBlockScan(t *testing.T) {
	wallet := solana.NewWallet()
	mon := &stubMonitor{err: errors.New("price feed down")}
	scan := &stubScanner{result: &scanner.Result{Idle: true}}
	trades := &stubTradeLog{}

	controller := NewCycleController(
		&stubSettingsRepo{config: testBotConfig(wallet), settings: &model.BotSettings{}},
		trades, nil, plainCipher{}, staticBuilder(mon, scan))

	result, err := controller.RunCycle(context.Background(), testUserID)
	require.NoError(t, err)
	require.Equal(t, 1, scan.runs, "scan runs despite the monitor failure")
	require.Nil(t, result.Monitor)
	require.True(t, result.Scan.Idle)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "monitor")
	require.Contains(t, trades.actions(), model.TradeActionCycleError)
}

func TestRunCycleRecoversFromPanic(t *testing.T) {
	wallet := solana.NewWallet()
	trades := &stubTradeLog{}
	builder := func(_ context.Context, _ *model.BotConfig, _ string) (*RunnerSet, error) {
		panic("runner wiring broke")
	}

	controller := NewCycleController(
		&stubSettingsRepo{config: testBotConfig(wallet), settings: &model.BotSettings{}},
		trades, nil, plainCipher{}, builder)

	result, err := controller.RunCycle(context.Background(), testUserID)
	require.Error(t, err)
	require.Nil(t, result)
	require.Contains(t, err.Error(), "cycle panic")
	require.Contains(t, trades.actions(), model.TradeActionCycleError)
}

func TestStartValidatesWalletKeyPair(t *testing.T) {
	wallet := solana.NewWallet()

	t.Run("matching key activates", func(t *testing.T) {
		repo := &stubSettingsRepo{config: testBotConfig(wallet)}
		trades := &stubTradeLog{}
		controller := NewCycleController(repo, trades, nil, plainCipher{}, nil)

		require.NoError(t, controller.Start(context.Background(), testUserID))
		require.Equal(t, []bool{true}, repo.active)
		require.Equal(t, []model.TradeAction{model.TradeActionBotStarted}, trades.actions())
	})

	t.Run("mismatched public key refuses", func(t *testing.T) {
		config := testBotConfig(wallet)
		config.WalletPublicKey = solana.NewWallet().PublicKey().String()

		repo := &stubSettingsRepo{config: config}
		trades := &stubTradeLog{}
		controller := NewCycleController(repo, trades, nil, plainCipher{}, nil)

		require.Error(t, controller.Start(context.Background(), testUserID))
		require.Empty(t, repo.active)
		require.Empty(t, trades.appended)
	})

	t.Run("missing config refuses", func(t *testing.T) {
		controller := NewCycleController(&stubSettingsRepo{}, &stubTradeLog{}, nil, plainCipher{}, nil)
		require.Error(t, controller.Start(context.Background(), testUserID))
	})
}

// flatOracle quotes every token at a constant asset-per-token price, so no
// position ever leaves the hold band.
type flatOracle struct {
	price float64
}

func (o *flatOracle) GetQuote(_ context.Context, _, _ string, amountBaseUnits uint64) (*connectors.Quote, error) {
	out := float64(amountBaseUnits) * o.price
	return &connectors.Quote{
		InAmount:  fmt.Sprintf("%d", amountBaseUnits),
		OutAmount: fmt.Sprintf("%.0f", out),
	}, nil
}

// steadyPositionStore serves one open position and counts every kind of
// write separately so a test can tell valuation refreshes from real
// mutations.
type steadyPositionStore struct {
	positions  []model.Position
	valuations int
	creates    int
	deletes    int
}

func (s *steadyPositionStore) ListByUser(_ context.Context, _ string) ([]model.Position, error) {
	out := make([]model.Position, len(s.positions))
	copy(out, s.positions)
	return out, nil
}

func (s *steadyPositionStore) UpdateValuation(_ context.Context, _ *model.Position) error {
	s.valuations++
	return nil
}

func (s *steadyPositionStore) Delete(_ context.Context, _ string) error {
	s.deletes++
	return nil
}

func (s *steadyPositionStore) FindByToken(_ context.Context, _, _ string) (*model.Position, error) {
	return nil, nil
}

func (s *steadyPositionStore) CountByUser(_ context.Context, _ string) (int64, error) {
	return int64(len(s.positions)), nil
}

func (s *steadyPositionStore) Create(_ context.Context, _ *model.Position) error {
	s.creates++
	return nil
}

type emptyCandidateStore struct {
	transitions int
}

func (s *emptyCandidateStore) ListByStatus(_ context.Context, _ model.TokenStatus, _ int) ([]model.TokenLaunch, error) {
	return nil, nil
}

func (s *emptyCandidateStore) UpdateStatus(_ context.Context, _ string, _ model.TokenStatus) error {
	s.transitions++
	return nil
}

type noSafetyStore struct{}

func (noSafetyStore) FindLatestByToken(_ context.Context, _ string) (*model.TokenSafety, error) {
	return nil, nil
}

// refusingExecutor fails the test if any swap is attempted.
type refusingExecutor struct {
	t *testing.T
}

func (e *refusingExecutor) Execute(_ context.Context, tokenAddress string, direction swap.Direction, _ float64, _ string) (*swap.Result, error) {
	e.t.Fatalf("unexpected %s of %s", direction, tokenAddress)
	return nil, nil
}

func TestRunCycleRepeatedPassOnlyRefreshesValuations(t *testing.T) {
	wallet := solana.NewWallet()

	store := &steadyPositionStore{positions: []model.Position{{
		ID:              "pos-1",
		UserID:          testUserID,
		TokenAddress:    "MintA",
		EntryPrice:      0.5,
		AmountHeld:      100,
		CapitalInvested: 50,
	}}}
	candidates := &emptyCandidateStore{}
	trades := &stubTradeLog{}
	executor := &refusingExecutor{t: t}

	builder := func(_ context.Context, _ *model.BotConfig, _ string) (*RunnerSet, error) {
		return &RunnerSet{
			Monitor: monitor.NewMonitor(&flatOracle{price: 0.5}, executor, store, trades),
			Scanner: scanner.NewScanner(candidates, store, noSafetyStore{}, nil, safety.NewGate(), executor, trades),
		}, nil
	}

	settings := &model.BotSettings{
		ProfitThresholdPct: 50,
		StopLossPct:        -20,
		MaxInvestmentUSD:   10,
		MaxConcurrentPos:   3,
		AutoDetectEnabled:  true,
		SafetyCheckEnabled: true,
		MinLiquidityUSD:    5000,
		MaxRugpullRisk:     30,
	}

	controller := NewCycleController(
		&stubSettingsRepo{config: testBotConfig(wallet), settings: settings},
		trades, nil, plainCipher{}, builder)

	for pass := 1; pass <= 2; pass++ {
		result, err := controller.RunCycle(context.Background(), testUserID)
		require.NoError(t, err)
		require.Empty(t, result.Errors)
		require.Equal(t, 1, result.Monitor.Checked)
		require.Zero(t, result.Monitor.Closed)
		require.Zero(t, result.Scan.Bought)
	}

	// two passes with nothing eligible: valuations refresh, nothing else
	require.Equal(t, 2, store.valuations)
	require.Zero(t, store.creates)
	require.Zero(t, store.deletes)
	require.Zero(t, candidates.transitions)
	require.Empty(t, trades.appended)
	require.Zero(t, trades.attachedExits)
}

func TestStopDeactivatesAndRecords(t *testing.T) {
	repo := &stubSettingsRepo{}
	trades := &stubTradeLog{}
	controller := NewCycleController(repo, trades, nil, plainCipher{}, nil)

	require.NoError(t, controller.Stop(context.Background(), testUserID))
	require.Equal(t, []bool{false}, repo.active)
	require.Equal(t, []model.TradeAction{model.TradeActionBotStopped}, trades.actions())
}
