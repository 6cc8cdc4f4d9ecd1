// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every entity.
// UpdatedAt stays NULL until the row is first updated.
type Base struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// BeforeCreate marks every new row with a status column live. Rows leave the live
// state only through an update.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if tx.Statement.Schema != nil && tx.Statement.Schema.LookUpField("status") != nil {
		tx.Statement.SetColumn("status", StatusActive, true)
	}
	return nil
}

// BeforeUpdate stamps updated_at on every hooked update path.
func (b *Base) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now().UTC()
	tx.Statement.SetColumn("updated_at", &now, true)
	return nil
}

// StatusActive and StatusInactive are the only soft-delete states.
const (
	StatusActive   = true
	StatusInactive = false
)
