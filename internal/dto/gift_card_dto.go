package dto

import (
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateGiftCardRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
	RecipientName  *string         `json:"recipient_name"  validate:"omitempty,max=200"`
	RecipientEmail *string         `json:"recipient_email" validate:"omitempty,email"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	CreatedBy      *uuid.UUID      `json:"-"`
}

// AdjustGiftCardRequest is a signed adjustment: positive credits, negative debits.
type AdjustGiftCardRequest struct {
	GiftCardID uuid.UUID       `json:"gift_card_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"       validate:"required"`
	Reason     string          `json:"reason"       validate:"required,min=3,max=500"`
	UserID     *uuid.UUID      `json:"user_id"`
}

type ValidateRedemptionRequest struct {
	CardNumber string          `json:"card_number" validate:"required"`
	Amount     decimal.Decimal `json:"amount"      validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GiftCardResponse struct {
	ID             string          `json:"id"`
	CardNumber     string          `json:"card_number"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	RecipientName  *string         `json:"recipient_name,omitempty"`
	RecipientEmail *string         `json:"recipient_email,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type GiftCardBalanceResponse struct {
	Number         string          `json:"number"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	ExpiresAt      *time.Time      `json:"expires_at"`
}

type RedemptionResponse struct {
	PreviousBalance decimal.Decimal  `json:"previous_balance"`
	AmountRedeemed  decimal.Decimal  `json:"amount_redeemed"`
	NewBalance      decimal.Decimal  `json:"new_balance"`
	GiftCard        GiftCardResponse `json:"gift_card"`
}

type GiftCardHistoryEntry struct {
	ID              string                `json:"id"`
	TransactionType model.GiftCardTxnType `json:"transaction_type"`
	Amount          decimal.Decimal       `json:"amount"`
	BalanceBefore   decimal.Decimal       `json:"balance_before"`
	BalanceAfter    decimal.Decimal       `json:"balance_after"`
	TransactionID   *string               `json:"transaction_id,omitempty"`
	Reason          *string               `json:"reason,omitempty"`
	UserID          *string               `json:"user_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}
