package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receipt status
const (
	ReceiptPending   = "pending"
	ReceiptGenerated = "generated"
	ReceiptFailed    = "failed"
)

// Receipt tracks the asynchronous PDF/email receipt for a completed sale.
type Receipt struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Status        string    `gorm:"type:varchar(20);not null"`
	// PDFPath is the full path of the generated file under RECEIPT_STORAGE_PATH
	PDFPath     *string `gorm:"column:pdf_path"`
	EmailedTo   *string
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *Receipt) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
