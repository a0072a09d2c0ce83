package bot

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"tokensniper/src/database"
	"tokensniper/src/executors"
)

type Bot struct{}

// Start runs the periodic trading loop until interrupted.
func (b *Bot) Start() error {
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

	logrus.Info("Starting trading bot loop")

	if err := executors.StartLoop(ctx); err != nil {
		logrus.WithError(err).Error("Failed to start trading loop")
		return err
	}

	return nil
}
