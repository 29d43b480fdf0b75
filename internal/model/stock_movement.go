package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovement types.
const (
	MovementSale        = "sale"
	MovementVoidRestore = "void_restore"
	MovementAdjustment  = "adjustment"
)

// StockMovement records every change to a product's stock counter.
// Written by sales and voids inside the same DB transaction as the change.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	MovementType   string    `gorm:"type:varchar(20);not null"`
	QuantityChange int       `gorm:"not null"` // positive = in, negative = out
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	Reason         string
	ReferenceID    *uuid.UUID `gorm:"type:uuid;index"` // transaction id when applicable
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
