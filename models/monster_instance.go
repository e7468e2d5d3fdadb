package models

import (
	"time"
)

// Instance locations. An instance lives in exactly one of them at any time —
// enforced structurally by keeping one row per instance.
const (
	LocationCollection = "collection"
	LocationInbox      = "inbox"
)

// Grant reasons, present only while the instance sits in an inbox. Promotion
// to the permanent collection clears the tag.
const (
	ReasonWelcome = "welcome"
	ReasonEval    = "eval"
	ReasonGift    = "gift"
	ReasonCode    = "code"
)

// MonsterInstance is one minted collectible. Stats are a snapshot taken at
// mint time and intentionally survive later template rebalances. The instance
// ID is never reused or reassigned.
type MonsterInstance struct {
	InstanceID string `gorm:"primaryKey" json:"instance_id"`
	PlayerID   string `gorm:"index;not null" json:"-"`
	Location   string `gorm:"index;not null" json:"-"`

	TemplateID string `gorm:"not null" json:"id"` // catalog template, e.g. "ice-rare"
	Rarity     string `json:"rarity"`
	Attack     int    `json:"attack"`
	Defense    int    `json:"defense"`
	HP         int    `json:"hp"`

	Reason string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
