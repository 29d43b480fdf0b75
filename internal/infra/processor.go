package infra

import (
	"context"

	"github.com/shopspring/decimal"
)

// Processor result statuses.
const (
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusVoided     = "voided"
	StatusRefunded   = "refunded"
	StatusDeclined   = "declined"
	StatusFailed     = "failed"
)

// AuthorizeRequest asks the processor to place a hold on a card.
// IdempotencyKey makes retries safe: the same key always yields the
// result of the first attempt.
type AuthorizeRequest struct {
	Amount         decimal.Decimal
	CardToken      string
	IdempotencyKey string
	Description    string
}

// ProcessorResult is the normalized outcome of every processor call.
// Business declines come back as Success=false with a Message; only
// transport-level failures are returned as errors.
type ProcessorResult struct {
	Success           bool
	Status            string
	TransactionID     string
	AuthorizationCode string
	CardLast4         string
	CardBrand         string
	Message           string
}

// PaymentProcessor is the uniform interface over card-authorization backends.
type PaymentProcessor interface {
	Name() string
	AuthorizePayment(ctx context.Context, req AuthorizeRequest) (*ProcessorResult, error)
	CapturePayment(ctx context.Context, authorizationID string, amount decimal.Decimal) (*ProcessorResult, error)
	VoidPayment(ctx context.Context, authorizationID string) (*ProcessorResult, error)
	RefundPayment(ctx context.Context, paymentID string, amount decimal.Decimal) (*ProcessorResult, error)
}

func declined(msg string) *ProcessorResult {
	return &ProcessorResult{Success: false, Status: StatusDeclined, Message: msg}
}

func failed(msg string) *ProcessorResult {
	return &ProcessorResult{Success: false, Status: StatusFailed, Message: msg}
}
