package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionStatus string

// Allowed transitions: draft -> completed -> voided.
const (
	TransactionDraft     TransactionStatus = "draft"
	TransactionCompleted TransactionStatus = "completed"
	TransactionVoided    TransactionStatus = "voided"
)

// Transaction is a sale. Rows are never deleted; voiding is a status change.
// Invariant: TotalAmount == Subtotal + TaxAmount - DiscountAmount.
type Transaction struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TransactionNumber string            `gorm:"type:varchar(32);uniqueIndex;not null"`
	TerminalID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	CashierID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	CustomerID        *uuid.UUID        `gorm:"type:uuid;index"`
	Subtotal          decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	TaxAmount         decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	DiscountAmount    decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Status            TransactionStatus `gorm:"type:varchar(20);not null;index"`
	TransactionDate   time.Time         `gorm:"not null;index"`
	VoidedAt          *time.Time
	VoidedBy          *uuid.UUID `gorm:"type:uuid"`
	VoidReason        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Terminal *Terminal         `gorm:"foreignKey:TerminalID"`
	Cashier  *User             `gorm:"foreignKey:CashierID"`
	Customer *Customer         `gorm:"foreignKey:CustomerID"`
	Items    []TransactionItem `gorm:"foreignKey:TransactionID"`
	Payments []Payment         `gorm:"foreignKey:TransactionID"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TransactionItem is one sale line. ProductName, ProductSKU and UnitPrice are
// copied from the product at sale time and never re-read.
type TransactionItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber     int             `gorm:"not null"`
	ProductName    string          `gorm:"not null"`
	ProductSKU     string          `gorm:"column:product_sku;type:varchar(64);not null"`
	Quantity       int             `gorm:"not null;check:chk_transaction_items_quantity_positive,quantity > 0"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time
}

func (i *TransactionItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
