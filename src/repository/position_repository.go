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

// PositionRepository handles read/write operations for active positions.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new repository instance using the main read/write database.
func NewPositionRepository() *PositionRepository {
	return &PositionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// ListByUser returns every open position for the user, oldest first.
func (r *PositionRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]model.Position, error) {

	var positions []model.Position

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("opened_at ASC").
		Find(&positions).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "ListByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list positions")

		return nil, err
	}

	return positions, nil
}

// FindByToken fetches the user's position for a token address.
// Returns (nil, nil) if no position is open for that token.
func (r *PositionRepository) FindByToken(
	ctx context.Context,
	userID string,
	tokenAddress string,
) (*model.Position, error) {

	var position model.Position

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token_address = ?", userID, tokenAddress).
		First(&position).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":          "PositionRepository",
			"op":            "FindByToken",
			"token_address": tokenAddress,
		}).WithError(err).Error("Failed to fetch position by token")

		return nil, err
	}

	return &position, nil
}

// CountByUser returns the number of open positions for the user.
func (r *PositionRepository) CountByUser(
	ctx context.Context,
	userID string,
) (int64, error) {

	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "CountByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to count positions")

		return 0, err
	}

	return count, nil
}

// Create inserts a new position, assigning an ID and opened timestamp when unset.
func (r *PositionRepository) Create(
	ctx context.Context,
	position *model.Position,
) error {

	if position.ID == "" {
		position.ID = uuid.NewString()
	}
	if position.OpenedAt.IsZero() {
		position.OpenedAt = time.Now().UTC()
	}

	logger.WithFields(map[string]interface{}{
		"repo":          "PositionRepository",
		"op":            "Create",
		"token_address": position.TokenAddress,
		"amount":        position.AmountHeld,
		"entry_price":   position.EntryPrice,
	}).Debug("Creating new position")

	err := r.db.WithContext(ctx).Create(position).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create position")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Create",
		"position_id": position.ID,
	}).Info("Position created successfully")

	return nil
}

// UpdateValuation persists the fields recomputed by a monitor pass.
func (r *PositionRepository) UpdateValuation(
	ctx context.Context,
	position *model.Position,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ?", position.ID).
		Updates(map[string]interface{}{
			"current_price":   position.CurrentPrice,
			"current_value":   position.CurrentValue,
			"profit_loss_pct": position.ProfitLossPct,
			"last_updated_at": position.LastUpdatedAt,
		}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "PositionRepository",
			"op":          "UpdateValuation",
			"position_id": position.ID,
		}).WithError(err).Error("Failed to update position valuation")

		return err
	}

	return nil
}

// Delete removes a closed position by ID.
func (r *PositionRepository) Delete(
	ctx context.Context,
	positionID string,
) error {

	err := r.db.WithContext(ctx).
		Delete(&model.Position{}, "id = ?", positionID).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "PositionRepository",
			"op":          "Delete",
			"position_id": positionID,
		}).WithError(err).Error("Failed to delete position")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Delete",
		"position_id": positionID,
	}).Info("Position deleted")

	return nil
}
