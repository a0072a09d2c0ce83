package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tokensniper/src/database"
	"tokensniper/src/model"
)

// SettingsRepository reads the per-user bot configuration and trading
// settings, and flips the active flag on start/stop.
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new repository instance using the main read/write database.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *SettingsRepository) WithDB(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetBotConfig fetches the user's wallet configuration.
// Returns (nil, nil) when the user has not configured a wallet yet.
func (r *SettingsRepository) GetBotConfig(
	ctx context.Context,
	userID string,
) (*model.BotConfig, error) {

	var config model.BotConfig

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&config).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "SettingsRepository",
			"op":      "GetBotConfig",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch bot config")

		return nil, err
	}

	return &config, nil
}

// GetBotSettings fetches the user's trading thresholds.
// Returns (nil, nil) when no settings row exists.
func (r *SettingsRepository) GetBotSettings(
	ctx context.Context,
	userID string,
) (*model.BotSettings, error) {

	var settings model.BotSettings

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&settings).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "SettingsRepository",
			"op":      "GetBotSettings",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch bot settings")

		return nil, err
	}

	return &settings, nil
}

// SetActive flips the bot active flag for the user.
func (r *SettingsRepository) SetActive(
	ctx context.Context,
	userID string,
	active bool,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.BotConfig{}).
		Where("user_id = ?", userID).
		Update("is_active", active).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "SettingsRepository",
			"op":      "SetActive",
			"user_id": userID,
			"active":  active,
		}).WithError(err).Error("Failed to update bot active flag")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "SettingsRepository",
		"op":      "SetActive",
		"user_id": userID,
		"active":  active,
	}).Info("Bot active flag updated")

	return nil
}
