package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tokensniper/src/auth"
	"tokensniper/src/connectors"
	"tokensniper/src/controller"
	"tokensniper/src/handler"
	"tokensniper/src/repository"
	"tokensniper/src/security"
)

// listenAddr resolves the bind address, falling back to the configured
// default port when none is passed in.
func listenAddr(port string) string {
	if port == "" {
		port = GetConfig().Port
	}
	return ":" + port
}

func StartServer(port string) {
	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	cipher, err := security.NewCipher(security.GetConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize wallet cipher")
	}

	connCfg := connectors.GetConfig()
	ctrlCfg := controller.GetConfig()
	tradeRepo := repository.NewTradeHistoryRepository()

	cycles := controller.NewCycleController(
		repository.NewSettingsRepository(),
		tradeRepo,
		repository.NewExceptionRepository(),
		cipher,
		controller.DefaultRunnerBuilder(connCfg, ctrlCfg.ScanCandidateLimit),
	)

	// Bot routes, dashboard facing
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUserID)

		r.Post("/bot/start", handler.StartBotHandler(cycles))
		r.Post("/bot/stop", handler.StopBotHandler(cycles))
		r.Post("/bot/cycle", handler.RunCycleHandler(cycles))
		r.Get("/trades", handler.TradeHistoryHandler(tradeRepo))
	})

	// Graceful server
	// Server setup
	addr := listenAddr(port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
