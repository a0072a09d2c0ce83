package model

import "time"

// CycleLease is a per-user advisory lock row. A cycle may only run while
// holding an unexpired lease; this is what prevents two overlapping cycles
// for the same user from double-submitting swaps.
type CycleLease struct {
	UserID     string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	HolderID   string    `gorm:"size:64;not null" json:"holder_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `gorm:"index" json:"expires_at"`
}

func (CycleLease) TableName() string { return "cycle_leases" }
