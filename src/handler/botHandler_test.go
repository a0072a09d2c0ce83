package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"tokensniper/src/auth"
	"tokensniper/src/controller"
	"tokensniper/src/model"
	"tokensniper/src/swap"
)

const testUserID = "6f1c8a6e-4a3b-4f0e-9c64-2a9a84f6d001"

type stubCycles struct {
	result   *controller.CycleResult
	cycleErr error
	startErr error
	stopErr  error
	calls    []string
}

func (s *stubCycles) RunCycle(_ context.Context, userID string) (*controller.CycleResult, error) {
	s.calls = append(s.calls, "cycle:"+userID)
	return s.result, s.cycleErr
}

func (s *stubCycles) Start(_ context.Context, userID string) error {
	s.calls = append(s.calls, "start:"+userID)
	return s.startErr
}

func (s *stubCycles) Stop(_ context.Context, userID string) error {
	s.calls = append(s.calls, "stop:"+userID)
	return s.stopErr
}

type stubTrades struct {
	records  []model.TradeRecord
	gotLimit int
}

func (s *stubTrades) ListByUser(_ context.Context, _ string, limit int) ([]model.TradeRecord, error) {
	s.gotLimit = limit
	return s.records, nil
}

// do routes the request through the auth middleware the server mounts.
func do(handler http.HandlerFunc, method, target, userHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if userHeader != "" {
		req.Header.Set("X-User-ID", userHeader)
	}
	recorder := httptest.NewRecorder()
	auth.RequireUserID(handler).ServeHTTP(recorder, req)
	return recorder
}

func TestHandlersRejectMissingOrInvalidUser(t *testing.T) {
	cycles := &stubCycles{}

	for _, header := range []string{"", "not-a-uuid"} {
		response := do(RunCycleHandler(cycles), http.MethodPost, "/bot/cycle", header)
		require.Equal(t, http.StatusUnauthorized, response.Code)
	}
	require.Empty(t, cycles.calls)
}

func TestRunCycleHandlerReturnsResult(t *testing.T) {
	cycles := &stubCycles{result: &controller.CycleResult{}}

	response := do(RunCycleHandler(cycles), http.MethodPost, "/bot/cycle", testUserID)
	require.Equal(t, http.StatusOK, response.Code)
	require.Equal(t, []string{"cycle:" + testUserID}, cycles.calls)
}

func TestRunCycleHandlerHidesInternalDetail(t *testing.T) {
	cause := fmt.Errorf("%w: COULD_NOT_FIND_ANY_ROUTE mint DezXAZ", swap.ErrQuoteUnavailable)
	cycles := &stubCycles{cycleErr: cause}

	response := do(RunCycleHandler(cycles), http.MethodPost, "/bot/cycle", testUserID)
	require.Equal(t, http.StatusUnprocessableEntity, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	require.Equal(t, "No trading route available right now", body["error"])
	require.NotContains(t, response.Body.String(), "COULD_NOT_FIND_ANY_ROUTE")
}

func TestSafeErrorMessageClassification(t *testing.T) {
	require.Equal(t, "No trading route available right now",
		safeErrorMessage(swap.ErrQuoteUnavailable))
	require.Equal(t, "Transaction is taking longer than expected",
		safeErrorMessage(fmt.Errorf("wrapped: %w", swap.ErrConfirmationTimeout)))
	require.Equal(t, "Trading cycle could not be completed",
		safeErrorMessage(errors.New("database gone")))
}

func TestStartBotHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		cycles := &stubCycles{}
		response := do(StartBotHandler(cycles), http.MethodPost, "/bot/start", testUserID)
		require.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("wallet validation failure", func(t *testing.T) {
		cycles := &stubCycles{startErr: errors.New("wallet secret does not match configured public key")}
		response := do(StartBotHandler(cycles), http.MethodPost, "/bot/start", testUserID)
		require.Equal(t, http.StatusUnprocessableEntity, response.Code)
		require.Contains(t, response.Body.String(), "check wallet configuration")
		require.NotContains(t, response.Body.String(), "secret")
	})
}

func TestStopBotHandler(t *testing.T) {
	cycles := &stubCycles{}
	response := do(StopBotHandler(cycles), http.MethodPost, "/bot/stop", testUserID)
	require.Equal(t, http.StatusOK, response.Code)
	require.Equal(t, []string{"stop:" + testUserID}, cycles.calls)
}

func TestTradeHistoryHandler(t *testing.T) {
	t.Run("limit forwarded", func(t *testing.T) {
		trades := &stubTrades{records: []model.TradeRecord{{Action: model.TradeActionBuy}}}
		response := do(TradeHistoryHandler(trades), http.MethodGet, "/trades?limit=10", testUserID)
		require.Equal(t, http.StatusOK, response.Code)
		require.Equal(t, 10, trades.gotLimit)
	})

	t.Run("invalid limit rejected", func(t *testing.T) {
		for _, target := range []string{"/trades?limit=0", "/trades?limit=abc", "/trades?limit=-5"} {
			response := do(TradeHistoryHandler(&stubTrades{}), http.MethodGet, target, testUserID)
			require.Equal(t, http.StatusBadRequest, response.Code)
		}
	})
}
