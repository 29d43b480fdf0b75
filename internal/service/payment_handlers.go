package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentContext identifies the payment being applied.
type PaymentContext struct {
	TransactionID uuid.UUID
	CashierID     uuid.UUID
	Index         int // zero-based position in the request
	Method        model.PaymentMethod
}

// PaymentOutcome is the normalized result every handler returns. It maps
// 1:1 onto a model.Payment row.
type PaymentOutcome struct {
	Status                 model.PaymentStatus
	ProcessorTransactionID *string
	AuthorizationCode      *string
	Details                model.PaymentDetails
	Change                 decimal.Decimal
}

// PaymentHandler validates method-specific input and applies the payment.
// Handlers run inside the engine's DB transaction and never commit it.
type PaymentHandler interface {
	Process(ctx context.Context, tx *gorm.DB, pc PaymentContext, amount decimal.Decimal, details dto.PaymentDetailsRequest) (*PaymentOutcome, error)
}

// PaymentHandlers dispatches on the payment method.
type PaymentHandlers map[model.PaymentMethod]PaymentHandler

func NewPaymentHandlers(
	processor infra.PaymentProcessor,
	giftCards GiftCardService,
	storeCredit repository.StoreCreditRepository,
) PaymentHandlers {
	card := &cardHandler{processor: processor}
	return PaymentHandlers{
		model.PaymentCash:          cashHandler{},
		model.PaymentCreditCard:    card,
		model.PaymentDebitCard:     card,
		model.PaymentDigitalWallet: card,
		model.PaymentCheck:         checkHandler{},
		model.PaymentGiftCard:      &giftCardHandler{ledger: giftCards},
		model.PaymentStoreCredit:   &storeCreditHandler{repo: storeCredit},
	}
}

// balanceLocker is implemented by handlers that debit a stored balance.
type balanceLocker interface {
	lockTx(tx *gorm.DB, details []dto.PaymentDetailsRequest) error
}

// LockBalancesTx locks every gift card and store-credit account the payments
// will debit, one method at a time in a fixed order, before any is applied.
func (h PaymentHandlers) LockBalancesTx(tx *gorm.DB, payments []dto.PaymentRequest) error {
	for _, method := range []model.PaymentMethod{model.PaymentGiftCard, model.PaymentStoreCredit} {
		locker, ok := h[method].(balanceLocker)
		if !ok {
			continue
		}
		var details []dto.PaymentDetailsRequest
		for _, p := range payments {
			if p.PaymentMethod == method {
				details = append(details, p.PaymentDetails)
			}
		}
		if len(details) == 0 {
			continue
		}
		if err := locker.lockTx(tx, details); err != nil {
			return err
		}
	}
	return nil
}

func (h PaymentHandlers) Process(ctx context.Context, tx *gorm.DB, pc PaymentContext, amount decimal.Decimal, details dto.PaymentDetailsRequest) (*PaymentOutcome, error) {
	handler, ok := h[pc.Method]
	if !ok {
		return nil, apierror.Wrap(apierror.ErrUnsupportedPaymentMethod, "unsupported payment method %q", pc.Method)
	}
	return handler.Process(ctx, tx, pc, amount, details)
}

// ── Cash ─────────────────────────────────────────────────────────────────────

type cashHandler struct{}

func (cashHandler) Process(_ context.Context, _ *gorm.DB, _ PaymentContext, amount decimal.Decimal, d dto.PaymentDetailsRequest) (*PaymentOutcome, error) {
	received := d.CashReceived
	if received.LessThan(amount) {
		return nil, apierror.Wrap(apierror.ErrInsufficientCash,
			"cash received %s is less than %s", received.StringFixed(2), amount.StringFixed(2))
	}
	change := received.Sub(amount)
	return &PaymentOutcome{
		Status:  model.PaymentCompleted,
		Details: model.PaymentDetails{CashReceived: &received, ChangeGiven: &change},
		Change:  change,
	}, nil
}

// ── Card (credit, debit, digital wallet) ─────────────────────────────────────
// The handler only authorizes. Money moves in CardSettlement once the sale's
// DB transaction has resolved: captured after commit, voided after rollback.

type cardHandler struct {
	processor infra.PaymentProcessor
}

func (h *cardHandler) Process(ctx context.Context, _ *gorm.DB, pc PaymentContext, amount decimal.Decimal, d dto.PaymentDetailsRequest) (*PaymentOutcome, error) {
	token := strings.TrimSpace(d.CardToken)
	if token == "" {
		return nil, apierror.ErrCardTokenRequired
	}
	key := d.IdempotencyKey
	if key == "" {
		key = fmt.Sprintf("%s-%d", pc.TransactionID, pc.Index)
	}

	auth, err := h.processor.AuthorizePayment(ctx, infra.AuthorizeRequest{
		Amount:         amount,
		CardToken:      token,
		IdempotencyKey: key,
		Description:    "sale " + pc.TransactionID.String(),
	})
	if err != nil {
		return nil, err
	}
	if !auth.Success {
		log.Warn().
			Str("transaction_id", pc.TransactionID.String()).
			Str("method", string(pc.Method)).
			Str("reason", auth.Message).
			Msg("card declined")
		return nil, apierror.Wrap(apierror.ErrCardDeclined, "card declined: %s", auth.Message)
	}

	authID, code := auth.TransactionID, auth.AuthorizationCode
	return &PaymentOutcome{
		Status:                 model.PaymentPending,
		ProcessorTransactionID: &authID,
		AuthorizationCode:      &code,
		Details:                model.PaymentDetails{CardLast4: auth.CardLast4, CardBrand: auth.CardBrand},
	}, nil
}

// CardHold is an authorization taken while a sale was being applied.
type CardHold struct {
	PaymentID       uuid.UUID
	AuthorizationID string
	Amount          decimal.Decimal
}

// CardSettlement finishes the card holds of a sale after its DB transaction
// has committed or rolled back. Request cancellation does not stop it.
type CardSettlement struct {
	processor   infra.PaymentProcessor
	autoCapture bool
}

func NewCardSettlement(processor infra.PaymentProcessor, autoCapture bool) *CardSettlement {
	return &CardSettlement{processor: processor, autoCapture: autoCapture}
}

// Capture settles the holds of a committed sale and returns the payments
// it captured. Without auto-capture nothing happens and the payments stay
// pending. A failed capture is logged and its payment stays pending.
func (c *CardSettlement) Capture(ctx context.Context, transactionID uuid.UUID, holds []CardHold) []uuid.UUID {
	if !c.autoCapture || len(holds) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)

	captured := make([]uuid.UUID, 0, len(holds))
	for _, hold := range holds {
		res, err := c.processor.CapturePayment(ctx, hold.AuthorizationID, hold.Amount)
		if err == nil && !res.Success {
			err = apierror.Wrap(apierror.ErrCardDeclined, "capture failed: %s", res.Message)
		}
		if err != nil {
			log.Error().Err(err).
				Str("transaction_id", transactionID.String()).
				Str("payment_id", hold.PaymentID.String()).
				Str("authorization_id", hold.AuthorizationID).
				Str("processor", c.processor.Name()).
				Msg("card capture failed, payment left pending")
			continue
		}
		captured = append(captured, hold.PaymentID)
	}
	return captured
}

// Release voids the holds of a sale that rolled back. A hold that cannot be
// voided is logged with its authorization id for manual reconciliation.
func (c *CardSettlement) Release(ctx context.Context, transactionID uuid.UUID, holds []CardHold) {
	if len(holds) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	for _, hold := range holds {
		res, err := c.processor.VoidPayment(ctx, hold.AuthorizationID)
		if err == nil && !res.Success {
			err = fmt.Errorf("void rejected: %s", res.Message)
		}
		if err != nil {
			log.Error().Err(err).
				Str("transaction_id", transactionID.String()).
				Str("authorization_id", hold.AuthorizationID).
				Str("amount", hold.Amount.StringFixed(2)).
				Str("processor", c.processor.Name()).
				Msg("card authorization not released after rollback")
			continue
		}
		log.Info().
			Str("transaction_id", transactionID.String()).
			Str("authorization_id", hold.AuthorizationID).
			Msg("card authorization voided after rollback")
	}
}

// ── Check ────────────────────────────────────────────────────────────────────

type checkHandler struct{}

func (checkHandler) Process(_ context.Context, _ *gorm.DB, _ PaymentContext, _ decimal.Decimal, d dto.PaymentDetailsRequest) (*PaymentOutcome, error) {
	number := strings.TrimSpace(d.CheckNumber)
	if number == "" {
		return nil, apierror.ErrCheckNumberRequired
	}
	return &PaymentOutcome{
		Status:  model.PaymentCompleted,
		Details: model.PaymentDetails{CheckNumber: number},
	}, nil
}

// ── Gift card ────────────────────────────────────────────────────────────────

type giftCardHandler struct {
	ledger GiftCardService
}

func (h *giftCardHandler) lockTx(tx *gorm.DB, details []dto.PaymentDetailsRequest) error {
	numbers := make([]string, 0, len(details))
	for _, d := range details {
		if n := strings.TrimSpace(d.GiftCardNumber); n != "" {
			numbers = append(numbers, n)
		}
	}
	return h.ledger.LockCardsTx(tx, numbers)
}

func (h *giftCardHandler) Process(_ context.Context, tx *gorm.DB, pc PaymentContext, amount decimal.Decimal, d dto.PaymentDetailsRequest) (*PaymentOutcome, error) {
	number := strings.TrimSpace(d.GiftCardNumber)
	if number == "" {
		return nil, apierror.ErrGiftCardNumberRequired
	}
	txnID, cashierID := pc.TransactionID, pc.CashierID
	r, err := h.ledger.RedeemTx(tx, number, amount, &txnID, &cashierID)
	if err != nil {
		return nil, err
	}
	cardID := r.GiftCard.ID
	before, after := r.PreviousBalance, r.NewBalance
	return &PaymentOutcome{
		Status: model.PaymentCompleted,
		Details: model.PaymentDetails{
			GiftCardID:     &cardID,
			GiftCardNumber: number,
			BalanceBefore:  &before,
			BalanceAfter:   &after,
		},
	}, nil
}

// ── Store credit ─────────────────────────────────────────────────────────────

type storeCreditHandler struct {
	repo repository.StoreCreditRepository
}

func (h *storeCreditHandler) lockTx(tx *gorm.DB, details []dto.PaymentDetailsRequest) error {
	ids := make([]uuid.UUID, 0, len(details))
	for _, d := range details {
		if d.StoreCreditAccountID != nil && *d.StoreCreditAccountID != uuid.Nil {
			ids = append(ids, *d.StoreCreditAccountID)
		}
	}
	return h.repo.LockByIDsTx(tx, ids)
}

func (h *storeCreditHandler) Process(_ context.Context, tx *gorm.DB, _ PaymentContext, amount decimal.Decimal, d dto.PaymentDetailsRequest) (*PaymentOutcome, error) {
	if d.StoreCreditAccountID == nil || *d.StoreCreditAccountID == uuid.Nil {
		return nil, apierror.ErrAccountRequired
	}
	account, err := h.repo.FindByIDForUpdateTx(tx, *d.StoreCreditAccountID)
	if err != nil {
		return nil, notFound(err, apierror.ErrAccountNotFound)
	}
	if !account.IsActive {
		return nil, apierror.ErrAccountNotFound
	}
	if account.Balance.LessThan(amount) {
		return nil, apierror.Wrap(apierror.ErrInsufficientStoreCredit,
			"store credit balance %s is less than %s", account.Balance.StringFixed(2), amount.StringFixed(2))
	}
	before := account.Balance
	after := before.Sub(amount)
	if err := h.repo.UpdateBalanceTx(tx, account.ID, after); err != nil {
		return nil, err
	}
	accountID := account.ID
	return &PaymentOutcome{
		Status: model.PaymentCompleted,
		Details: model.PaymentDetails{
			StoreCreditAccountID: &accountID,
			BalanceBefore:        &before,
			BalanceAfter:         &after,
		},
	}, nil
}
