package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"tokensniper/src/auth"
	"tokensniper/src/controller"
	"tokensniper/src/model"
	"tokensniper/src/swap"
)

type cycleRunner interface {
	RunCycle(ctx context.Context, userID string) (*controller.CycleResult, error)
	Start(ctx context.Context, userID string) error
	Stop(ctx context.Context, userID string) error
}

type tradeHistoryLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.TradeRecord, error)
}

// safeErrorMessage maps internal failures to the generic messages the
// dashboard is allowed to see. Raw error detail stays in logs and the
// trade history, never in responses.
func safeErrorMessage(err error) string {
	switch {
	case errors.Is(err, swap.ErrQuoteUnavailable):
		return "No trading route available right now"
	case errors.Is(err, swap.ErrConfirmationTimeout):
		return "Transaction is taking longer than expected"
	default:
		return "Trading cycle could not be completed"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// StartBotHandler activates the bot after validating the stored wallet.
func StartBotHandler(cycles cycleRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := cycles.Start(r.Context(), userID); err != nil {
			logger.WithError(err).Error("failed to start bot")
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "Bot could not be started, check wallet configuration",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
	}
}

// StopBotHandler marks the bot inactive. An in-flight cycle finishes on
// its own.
func StopBotHandler(cycles cycleRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := cycles.Stop(r.Context(), userID); err != nil {
			logger.WithError(err).Error("failed to stop bot")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Bot could not be stopped",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
	}
}

// RunCycleHandler triggers one on-demand cycle (manual refresh).
func RunCycleHandler(cycles cycleRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := cycles.RunCycle(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("manual cycle failed")
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": safeErrorMessage(err),
			})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// TradeHistoryHandler lists the user's trade history, newest first.
func TradeHistoryHandler(trades tradeHistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 0
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		records, err := trades.ListByUser(r.Context(), userID, limit)
		if err != nil {
			logger.WithError(err).Error("failed to list trade history")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, records)
	}
}
