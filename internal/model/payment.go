package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCreditCard    PaymentMethod = "credit_card"
	PaymentDebitCard     PaymentMethod = "debit_card"
	PaymentCheck         PaymentMethod = "check"
	PaymentGiftCard      PaymentMethod = "gift_card"
	PaymentStoreCredit   PaymentMethod = "store_credit"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentCompleted         PaymentStatus = "completed"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// PaymentDetails is the method-specific payload stored as JSON alongside
// each payment. Only the fields relevant to the method are set.
type PaymentDetails struct {
	CashReceived         *decimal.Decimal `json:"cash_received,omitempty"`
	ChangeGiven          *decimal.Decimal `json:"change_given,omitempty"`
	CheckNumber          string           `json:"check_number,omitempty"`
	CardLast4            string           `json:"card_last4,omitempty"`
	CardBrand            string           `json:"card_brand,omitempty"`
	GiftCardID           *uuid.UUID       `json:"gift_card_id,omitempty"`
	GiftCardNumber       string           `json:"gift_card_number,omitempty"`
	StoreCreditAccountID *uuid.UUID       `json:"store_credit_account_id,omitempty"`
	BalanceBefore        *decimal.Decimal `json:"balance_before,omitempty"`
	BalanceAfter         *decimal.Decimal `json:"balance_after,omitempty"`
}

type Payment struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransactionID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position               int             `gorm:"not null"`
	PaymentMethod          PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount                 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status                 PaymentStatus   `gorm:"type:varchar(20);not null"`
	ProcessorTransactionID *string         `gorm:"type:varchar(64)"`
	AuthorizationCode      *string         `gorm:"type:varchar(32)"`
	Details                datatypes.JSONType[PaymentDetails]
	CreatedAt              time.Time
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
