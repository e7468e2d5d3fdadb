package models

import (
	"time"

	"gorm.io/datatypes"
)

// Gift is the immutable audit record of one completed transfer. Monster holds
// a JSON snapshot of the instance exactly as it was handed over; the live
// instance row keeps moving, the snapshot never does.
type Gift struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	FromPlayerID string         `gorm:"index;not null" json:"from"`
	ToPlayerID   string         `gorm:"index;not null" json:"to"`
	InstanceID   string         `gorm:"not null" json:"instance_id"`
	Monster      datatypes.JSON `json:"monster"`
	CreatedAt    time.Time      `gorm:"index" json:"timestamp"`
}
