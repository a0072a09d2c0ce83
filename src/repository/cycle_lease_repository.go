package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tokensniper/src/database"
	"tokensniper/src/model"
)

// CycleLeaseRepository implements the per-user advisory lock around a
// trading cycle. A lease is granted when no row exists for the user or the
// existing row has expired; it is released by delete.
type CycleLeaseRepository struct {
	db *gorm.DB
}

// NewCycleLeaseRepository creates a new repository instance using the main read/write database.
func NewCycleLeaseRepository() *CycleLeaseRepository {
	return &CycleLeaseRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *CycleLeaseRepository) WithDB(db *gorm.DB) *CycleLeaseRepository {
	return &CycleLeaseRepository{db: db}
}

// Acquire tries to take the cycle lease for the user. Returns false when a
// live lease is held by someone else. The upsert only overwrites expired
// rows, so two concurrent callers cannot both win.
func (r *CycleLeaseRepository) Acquire(
	ctx context.Context,
	userID, holderID string,
	ttl time.Duration,
) (bool, error) {

	now := time.Now().UTC()
	lease := model.CycleLease{
		UserID:     userID,
		HolderID:   holderID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"holder_id":   lease.HolderID,
				"acquired_at": lease.AcquiredAt,
				"expires_at":  lease.ExpiresAt,
			}),
			Where: clause.Where{
				Exprs: []clause.Expression{
					clause.Lt{Column: clause.Column{Table: "cycle_leases", Name: "expires_at"}, Value: now},
				},
			},
		}).
		Create(&lease)

	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "CycleLeaseRepository",
			"op":      "Acquire",
			"user_id": userID,
		}).WithError(res.Error).Error("Failed to acquire cycle lease")

		return false, res.Error
	}

	if res.RowsAffected == 0 {
		logger.WithFields(map[string]interface{}{
			"repo":    "CycleLeaseRepository",
			"op":      "Acquire",
			"user_id": userID,
		}).Warn("Cycle lease held elsewhere, skipping")

		return false, nil
	}

	return true, nil
}

// Release drops the lease if it is still held by holderID.
func (r *CycleLeaseRepository) Release(
	ctx context.Context,
	userID, holderID string,
) error {

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND holder_id = ?", userID, holderID).
		Delete(&model.CycleLease{}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "CycleLeaseRepository",
			"op":      "Release",
			"user_id": userID,
		}).WithError(err).Error("Failed to release cycle lease")

		return err
	}

	return nil
}
