package models

import (
	"time"
)

// ClaimCode is a redeemable code granting one monster template. Codes are
// stored uppercase and looked up case-insensitively. A code is single-use per
// player, not globally: each player may redeem it once before expiry.
type ClaimCode struct {
	Code       string    `gorm:"primaryKey" json:"code"`
	TemplateID string    `gorm:"not null" json:"template_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ClaimCodeRedemption marks one player's use of one code. The composite
// unique index is the whole single-use guarantee: marking a code claimed is
// an insert-or-ignore against it, so concurrent redemptions can never both
// record the same player.
type ClaimCodeRedemption struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Code      string    `gorm:"uniqueIndex:idx_code_player;not null" json:"code"`
	PlayerID  string    `gorm:"uniqueIndex:idx_code_player;not null" json:"player_id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
