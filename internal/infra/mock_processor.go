package infra

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Well-known test tokens understood by MockProcessor. Any other token made
// only of digits is treated as a raw card number and checked with Luhn.
const (
	TokenVisa              = "tok_visa"
	TokenMastercard        = "tok_mastercard"
	TokenAmex              = "tok_amex"
	TokenDiscover          = "tok_discover"
	TokenDeclined          = "tok_declined"
	TokenInsufficientFunds = "tok_insufficient_funds"
)

var mockTokens = map[string]struct{ brand, last4 string }{
	TokenVisa:       {BrandVisa, "4242"},
	TokenMastercard: {BrandMastercard, "4444"},
	TokenAmex:       {BrandAmex, "0005"},
	TokenDiscover:   {BrandDiscover, "1117"},
}

type mockAuthorization struct {
	amount   decimal.Decimal
	captured decimal.Decimal
	refunded decimal.Decimal
	status   string
}

// MockProcessor is a deterministic in-memory processor for development and tests.
type MockProcessor struct {
	mu             sync.Mutex
	authorizations map[string]*mockAuthorization
	idempotency    map[string]ProcessorResult
}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{
		authorizations: make(map[string]*mockAuthorization),
		idempotency:    make(map[string]ProcessorResult),
	}
}

func (m *MockProcessor) Name() string { return "mock" }

// Status reports the current state of an authorization, or "" when the
// processor has never issued it.
func (m *MockProcessor) Status(authorizationID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if auth, ok := m.authorizations[authorizationID]; ok {
		return auth.status
	}
	return ""
}

func (m *MockProcessor) AuthorizePayment(_ context.Context, req AuthorizeRequest) (*ProcessorResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.IdempotencyKey != "" {
		if prev, ok := m.idempotency[req.IdempotencyKey]; ok {
			res := prev
			return &res, nil
		}
	}

	res := m.authorize(req)
	if req.IdempotencyKey != "" {
		m.idempotency[req.IdempotencyKey] = *res
	}
	return res, nil
}

// authorize must be called with m.mu held.
func (m *MockProcessor) authorize(req AuthorizeRequest) *ProcessorResult {
	if !req.Amount.IsPositive() {
		return failed("amount must be greater than zero")
	}

	var brand, last4 string
	switch token := strings.TrimSpace(req.CardToken); {
	case token == TokenDeclined:
		return declined("card declined")
	case token == TokenInsufficientFunds:
		return declined("insufficient funds")
	case strings.HasPrefix(token, "tok_"):
		known, ok := mockTokens[token]
		if !ok {
			return declined("unknown card token")
		}
		brand, last4 = known.brand, known.last4
	default:
		if !ValidateCard(token) {
			return declined("invalid card number")
		}
		brand, last4 = CardBrand(token), Last4(token)
	}

	id := "mock_auth_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	m.authorizations[id] = &mockAuthorization{amount: req.Amount, status: StatusAuthorized}
	return &ProcessorResult{
		Success:           true,
		Status:            StatusAuthorized,
		TransactionID:     id,
		AuthorizationCode: strings.ToUpper(id[len(id)-6:]),
		CardLast4:         last4,
		CardBrand:         brand,
		Message:           "approved",
	}
}

func (m *MockProcessor) CapturePayment(_ context.Context, authorizationID string, amount decimal.Decimal) (*ProcessorResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auth, ok := m.authorizations[authorizationID]
	if !ok {
		return failed("authorization not found"), nil
	}
	if auth.status != StatusAuthorized {
		return failed(fmt.Sprintf("cannot capture authorization in status %s", auth.status)), nil
	}
	if !amount.IsPositive() || amount.GreaterThan(auth.amount) {
		return failed("capture amount exceeds authorized amount"), nil
	}
	auth.captured = amount
	auth.status = StatusCaptured
	return &ProcessorResult{Success: true, Status: StatusCaptured, TransactionID: authorizationID, Message: "captured"}, nil
}

func (m *MockProcessor) VoidPayment(_ context.Context, authorizationID string) (*ProcessorResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auth, ok := m.authorizations[authorizationID]
	if !ok {
		return failed("authorization not found"), nil
	}
	if auth.status != StatusAuthorized {
		return failed(fmt.Sprintf("cannot void authorization in status %s", auth.status)), nil
	}
	auth.status = StatusVoided
	return &ProcessorResult{Success: true, Status: StatusVoided, TransactionID: authorizationID, Message: "voided"}, nil
}

func (m *MockProcessor) RefundPayment(_ context.Context, paymentID string, amount decimal.Decimal) (*ProcessorResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auth, ok := m.authorizations[paymentID]
	if !ok {
		return failed("payment not found"), nil
	}
	if auth.status != StatusCaptured && auth.status != StatusRefunded {
		return failed("only captured payments can be refunded"), nil
	}
	remaining := auth.captured.Sub(auth.refunded)
	if !amount.IsPositive() || amount.GreaterThan(remaining) {
		return failed("refund amount exceeds captured amount"), nil
	}
	auth.refunded = auth.refunded.Add(amount)
	if auth.refunded.Equal(auth.captured) {
		auth.status = StatusRefunded
	}
	return &ProcessorResult{
		Success:       true,
		Status:        StatusRefunded,
		TransactionID: "mock_refund_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Message:       "refunded",
	}, nil
}
