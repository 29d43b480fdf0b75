package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Terminal is a physical register. LastSequence backs the per-terminal
// transaction number and is only ever incremented inside a sale's DB
// transaction.
type Terminal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code         string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Location     *string
	LastSequence int64 `gorm:"not null;default:0"`
	IsActive     bool  `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Terminal) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
