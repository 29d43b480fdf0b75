package dto

import (
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// TransactionFilter is bound from the query string of GET /v1/transactions.
type TransactionFilter struct {
	Status    string `form:"status"`     // draft | completed | voided; empty = all
	StartDate string `form:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string `form:"end_date"`   // YYYY-MM-DD, inclusive
	Search    string `form:"search"`     // transaction number or customer name
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type TransactionItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,min=1"`
	// UnitPrice overrides the product's base price when positive.
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
	Discount  decimal.Decimal `json:"discount"   validate:"min=0"`
}

// PaymentDetailsRequest carries the method-specific input of a payment.
type PaymentDetailsRequest struct {
	CashReceived         decimal.Decimal `json:"cash_received"`
	CardToken            string          `json:"card_token"`
	IdempotencyKey       string          `json:"idempotency_key"`
	CheckNumber          string          `json:"check_number"`
	GiftCardNumber       string          `json:"gift_card_number"`
	StoreCreditAccountID *uuid.UUID      `json:"store_credit_account_id"`
}

type PaymentRequest struct {
	PaymentMethod  model.PaymentMethod   `json:"payment_method"  validate:"required,oneof=cash credit_card debit_card check gift_card store_credit digital_wallet"`
	Amount         decimal.Decimal       `json:"amount"          validate:"required"`
	PaymentDetails PaymentDetailsRequest `json:"payment_details"`
}

type CreateTransactionRequest struct {
	TerminalID uuid.UUID  `json:"terminal_id" validate:"required"`
	CustomerID *uuid.UUID `json:"customer_id"`
	// Emptiness of Items and Payments is reported by the engine with its own codes.
	Items    []TransactionItemRequest `json:"items"    validate:"dive"`
	Payments []PaymentRequest         `json:"payments" validate:"dive"`
}

type VoidTransactionRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransactionItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductSKU     string          `json:"product_sku"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

type PaymentResponse struct {
	ID                     string               `json:"id"`
	PaymentMethod          model.PaymentMethod  `json:"payment_method"`
	Amount                 decimal.Decimal      `json:"amount"`
	Status                 model.PaymentStatus  `json:"status"`
	ProcessorTransactionID *string              `json:"processor_transaction_id,omitempty"`
	AuthorizationCode      *string              `json:"authorization_code,omitempty"`
	Details                model.PaymentDetails `json:"payment_details"`
}

type TransactionResponse struct {
	ID                string                    `json:"id"`
	TransactionNumber string                    `json:"transaction_number"`
	TerminalID        string                    `json:"terminal_id"`
	TerminalCode      string                    `json:"terminal_code,omitempty"`
	CashierID         string                    `json:"cashier_id"`
	CashierName       string                    `json:"cashier_name,omitempty"`
	CustomerID        *string                   `json:"customer_id,omitempty"`
	CustomerName      *string                   `json:"customer_name,omitempty"`
	Subtotal          decimal.Decimal           `json:"subtotal"`
	TaxAmount         decimal.Decimal           `json:"tax_amount"`
	DiscountAmount    decimal.Decimal           `json:"discount_amount"`
	TotalAmount       decimal.Decimal           `json:"total_amount"`
	ChangeDue         decimal.Decimal           `json:"change_due"`
	Status            model.TransactionStatus   `json:"status"`
	TransactionDate   time.Time                 `json:"transaction_date"`
	VoidedAt          *time.Time                `json:"voided_at,omitempty"`
	VoidedBy          *string                   `json:"voided_by,omitempty"`
	VoidReason        *string                   `json:"void_reason,omitempty"`
	Items             []TransactionItemResponse `json:"items"`
	Payments          []PaymentResponse         `json:"payments"`
}
