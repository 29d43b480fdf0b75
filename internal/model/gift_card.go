package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GiftCard is a stored-value instrument. CurrentBalance never drops below
// zero but may exceed InitialBalance after a positive adjustment.
type GiftCard struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CardNumber     string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;check:chk_gift_cards_balance_non_negative,current_balance >= 0"`
	IsActive       bool            `gorm:"not null"`
	ExpiresAt      *time.Time
	RecipientName  *string
	RecipientEmail *string
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (g *GiftCard) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type GiftCardTxnType string

const (
	GiftCardPurchase   GiftCardTxnType = "purchase"
	GiftCardRedemption GiftCardTxnType = "redemption"
	GiftCardAdjustment GiftCardTxnType = "adjustment"
)

// GiftCardTransaction is an append-only audit row. Amount is signed:
// positive credits the card, negative debits it.
type GiftCardTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	GiftCardID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionType GiftCardTxnType `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionID   *uuid.UUID      `gorm:"type:uuid;index"`
	Reason          *string
	UserID          *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
}

func (g *GiftCardTransaction) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
