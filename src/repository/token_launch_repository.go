package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tokensniper/src/database"
	"tokensniper/src/model"
)

// TokenLaunchRepository handles persistence of detected token launches.
type TokenLaunchRepository struct {
	db *gorm.DB
}

// NewTokenLaunchRepository creates a new repository instance using the main read/write database.
func NewTokenLaunchRepository() *TokenLaunchRepository {
	return &TokenLaunchRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TokenLaunchRepository) WithDB(db *gorm.DB) *TokenLaunchRepository {
	return &TokenLaunchRepository{db: db}
}

// ListByStatus returns launches in the given status, most recently detected
// first, capped at limit.
func (r *TokenLaunchRepository) ListByStatus(
	ctx context.Context,
	status model.TokenStatus,
	limit int,
) ([]model.TokenLaunch, error) {

	if limit <= 0 {
		limit = 5
	}

	var launches []model.TokenLaunch

	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("detected_at DESC").
		Limit(limit).
		Find(&launches).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TokenLaunchRepository",
			"op":     "ListByStatus",
			"status": status,
			"limit":  limit,
		}).WithError(err).Error("Failed to list token launches")

		return nil, err
	}

	return launches, nil
}

// Create inserts a newly detected launch. Duplicate token addresses are
// ignored so the feed listener can replay events safely.
func (r *TokenLaunchRepository) Create(
	ctx context.Context,
	launch *model.TokenLaunch,
) error {

	if launch.ID == "" {
		launch.ID = uuid.NewString()
	}
	if launch.DetectedAt.IsZero() {
		launch.DetectedAt = time.Now().UTC()
	}
	if launch.Status == "" {
		launch.Status = model.TokenStatusDetected
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_address"}},
			DoNothing: true,
		}).
		Create(launch).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":          "TokenLaunchRepository",
			"op":            "Create",
			"token_address": launch.TokenAddress,
		}).WithError(err).Error("Failed to create token launch")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":          "TokenLaunchRepository",
		"op":            "Create",
		"token_address": launch.TokenAddress,
		"source":        launch.Source,
	}).Debug("Token launch recorded")

	return nil
}

// UpdateStatus moves a launch candidate to a new lifecycle status.
func (r *TokenLaunchRepository) UpdateStatus(
	ctx context.Context,
	tokenAddress string,
	status model.TokenStatus,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.TokenLaunch{}).
		Where("token_address = ?", tokenAddress).
		Update("status", status).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":          "TokenLaunchRepository",
			"op":            "UpdateStatus",
			"token_address": tokenAddress,
			"status":        status,
		}).WithError(err).Error("Failed to update launch status")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":          "TokenLaunchRepository",
		"op":            "UpdateStatus",
		"token_address": tokenAddress,
		"status":        status,
	}).Info("Launch status updated")

	return nil
}
