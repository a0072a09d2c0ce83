package model

import "time"

// BotConfig holds the per-user wallet configuration. The wallet secret is
// stored encrypted (see src/security); the plaintext key only ever lives in
// process memory while a cycle is running.
type BotConfig struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	WalletPublicKey string    `gorm:"size:64;not null" json:"wallet_public_key"`
	WalletSecretEnc string    `gorm:"type:text" json:"-"`
	RPCEndpoint     string    `gorm:"size:255" json:"rpc_endpoint"`
	IsActive        bool      `gorm:"default:false" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (BotConfig) TableName() string { return "bot_configs" }
