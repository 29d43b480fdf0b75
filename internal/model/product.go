package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is owned by the catalog; the sale pipeline only reads price and
// tax and moves QuantityInStock up or down.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKU         string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Barcode     *string   `gorm:"type:varchar(64);uniqueIndex"`
	Name        string    `gorm:"index;not null"`
	Description *string
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// TaxRate is a fraction: 0.0800 means 8%.
	TaxRate         decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	QuantityInStock int             `gorm:"not null;default:0;check:chk_products_stock_non_negative,quantity_in_stock >= 0"`
	IsActive        bool            `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
