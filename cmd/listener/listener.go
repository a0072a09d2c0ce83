package listener

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/database"
	"tokensniper/src/mapper"
	"tokensniper/src/repository"
)

type Listener struct{}

// Start consumes the launch feed and stores each new token as a detected
// candidate until interrupted.
func (l *Listener) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	launchRepo := repository.NewTokenLaunchRepository()

	handle := func(ctx context.Context, event connectors.LaunchEvent) error {
		launch, err := mapper.MapLaunchEventToModel(&event, time.Now().UTC())
		if err != nil || launch == nil {
			return err
		}
		return launchRepo.Create(ctx, launch)
	}

	logrus.Info("Starting launch feed listener")

	feed := connectors.NewPumpPortalListener(connectors.GetConfig(), handle)
	if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Error("Launch feed stopped")
		return err
	}

	return nil
}
