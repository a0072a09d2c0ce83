package safetycheck

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tokensniper/src/connectors"
	"tokensniper/src/database"
	"tokensniper/src/repository"
	"tokensniper/src/safety"
)

type SafetyCheck struct{}

// Start analyzes one token and stores the resulting safety record.
func (s *SafetyCheck) Start(tokenAddress string) error {
	if tokenAddress == "" {
		return errors.New("token address argument required")
	}

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	analyzer := safety.NewAnalyzer(
		connectors.NewBirdeyeClient(connectors.GetConfig()),
		repository.NewTokenSafetyRepository(),
	)

	record, err := analyzer.Analyze(context.Background(), tokenAddress)
	if err != nil {
		logrus.WithError(err).Error("Token analysis failed")
		return err
	}

	logrus.WithFields(map[string]interface{}{
		"token":  record.TokenAddress,
		"score":  record.RugpullRiskScore,
		"status": record.SafetyStatus,
	}).Info("Token analysis stored")

	return nil
}
