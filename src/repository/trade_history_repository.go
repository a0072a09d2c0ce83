package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tokensniper/src/database"
	"tokensniper/src/model"
)

// TradeHistoryRepository handles the append-only trade audit log.
type TradeHistoryRepository struct {
	db *gorm.DB
}

// NewTradeHistoryRepository creates a new repository instance using the main read/write database.
func NewTradeHistoryRepository() *TradeHistoryRepository {
	return &TradeHistoryRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TradeHistoryRepository) WithDB(db *gorm.DB) *TradeHistoryRepository {
	return &TradeHistoryRepository{db: db}
}

// Append inserts a new trade record. Records are never updated after insert
// except through AttachExit when a sell completes.
func (r *TradeHistoryRepository) Append(
	ctx context.Context,
	record *model.TradeRecord,
) error {

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	logger.WithFields(map[string]interface{}{
		"repo":          "TradeHistoryRepository",
		"op":            "Append",
		"action":        record.Action,
		"token_address": record.TokenAddress,
		"status":        record.Status,
	}).Debug("Appending trade record")

	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "TradeHistoryRepository",
			"op":     "Append",
			"action": record.Action,
		}).WithError(err).Error("Failed to append trade record")

		return err
	}

	return nil
}

// AttachExit records the exit price and final P/L on a completed sell.
// This is the single permitted post-insert mutation of the audit log.
func (r *TradeHistoryRepository) AttachExit(
	ctx context.Context,
	recordID string,
	entryPrice, exitPrice, profitLossPct float64,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.TradeRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"entry_price":     entryPrice,
			"exit_price":      exitPrice,
			"profit_loss_pct": profitLossPct,
		}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":      "TradeHistoryRepository",
			"op":        "AttachExit",
			"record_id": recordID,
		}).WithError(err).Error("Failed to attach exit details")

		return err
	}

	return nil
}

// ListByUser returns the user's trade history, newest first.
func (r *TradeHistoryRepository) ListByUser(
	ctx context.Context,
	userID string,
	limit int,
) ([]model.TradeRecord, error) {

	if limit <= 0 {
		limit = 50
	}

	var records []model.TradeRecord

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeHistoryRepository",
			"op":      "ListByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list trade history")

		return nil, err
	}

	return records, nil
}
