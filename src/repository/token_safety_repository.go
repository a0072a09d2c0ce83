package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tokensniper/src/database"
	"tokensniper/src/model"
)

// TokenSafetyRepository handles persistence of token safety analyses.
type TokenSafetyRepository struct {
	db *gorm.DB
}

// NewTokenSafetyRepository creates a new repository instance using the main read/write database.
func NewTokenSafetyRepository() *TokenSafetyRepository {
	return &TokenSafetyRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TokenSafetyRepository) WithDB(db *gorm.DB) *TokenSafetyRepository {
	return &TokenSafetyRepository{db: db}
}

// FindLatestByToken returns the most recent safety record for a token.
// Returns (nil, nil) when the token has never been analyzed.
func (r *TokenSafetyRepository) FindLatestByToken(
	ctx context.Context,
	tokenAddress string,
) (*model.TokenSafety, error) {

	var record model.TokenSafety

	err := r.db.WithContext(ctx).
		Where("token_address = ?", tokenAddress).
		Order("analyzed_at DESC").
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":          "TokenSafetyRepository",
			"op":            "FindLatestByToken",
			"token_address": tokenAddress,
		}).WithError(err).Error("Failed to fetch safety record")

		return nil, err
	}

	return &record, nil
}

// Create stores a new safety analysis.
func (r *TokenSafetyRepository) Create(
	ctx context.Context,
	record *model.TokenSafety,
) error {

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.AnalyzedAt.IsZero() {
		record.AnalyzedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":          "TokenSafetyRepository",
			"op":            "Create",
			"token_address": record.TokenAddress,
		}).WithError(err).Error("Failed to create safety record")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":          "TokenSafetyRepository",
		"op":            "Create",
		"token_address": record.TokenAddress,
		"risk_score":    record.RugpullRiskScore,
		"safety_status": record.SafetyStatus,
	}).Info("Safety record created")

	return nil
}
