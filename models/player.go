package models

import (
	"time"
)

// Player is the per-player record owning the permanent collection, the inbox
// and the crystal balance. Created on first login, never deleted.
//
// MonsterCount is a cached count of collection instances; every mutating
// ledger transaction recomputes it so it always equals the number of
// collection rows.
type Player struct {
	ID           string `gorm:"primaryKey" json:"id"` // e.g. "42-91048", stable across sessions
	Name         string `gorm:"index;not null" json:"name"`
	MonsterCount int    `gorm:"not null;default:0" json:"monster_count"`

	// Crystal accrual state. PresenceCheckpointHours is the last
	// externally-reported total presence value already converted to
	// crystals; it never decreases. LastAccrualAt gates the refresh
	// cooldown and advances on every non-throttled attempt.
	Crystals                int64      `gorm:"not null;default:0" json:"crystals"`
	PresenceCheckpointHours float64    `gorm:"not null;default:0" json:"presence_checkpoint_hours"`
	LastAccrualAt           *time.Time `json:"last_accrual_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// GrantedEvaluation records an external evaluation that has already been
// rewarded. The composite unique index makes the grant insert-or-ignore, so
// re-syncing the same evaluation can never reward it twice.
type GrantedEvaluation struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	PlayerID     string    `gorm:"uniqueIndex:idx_player_evaluation;not null" json:"player_id"`
	EvaluationID int64     `gorm:"uniqueIndex:idx_player_evaluation;not null" json:"evaluation_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}
