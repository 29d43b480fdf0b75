package service

import (
	"context"
	"testing"

	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"
	"github.com/agastya71/mysl-pos-project-sub006/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordingEnqueuer struct {
	ids []uuid.UUID
}

func (r *recordingEnqueuer) EnqueueReceipt(_ context.Context, id uuid.UUID) error {
	r.ids = append(r.ids, id)
	return nil
}

// harness wires the sale pipeline against a fresh SQLite database.
type harness struct {
	db        *gorm.DB
	txns      TransactionService
	giftCards GiftCardService
	inventory InventoryService
	processor *infra.MockProcessor
	receipts  *recordingEnqueuer
	terminal  *model.Terminal
	cashier   *model.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)

	products := repository.NewProductRepository(db)
	inventory := NewInventoryService(products, repository.NewStockMovementRepository(db))
	giftCards := NewGiftCardService(repository.NewGiftCardRepository(db))
	processor := infra.NewMockProcessor()
	handlers := NewPaymentHandlers(processor, giftCards, repository.NewStoreCreditRepository(db))
	receipts := &recordingEnqueuer{}

	txns := NewTransactionService(
		repository.NewTransactionRepository(db),
		repository.NewTerminalRepository(db),
		products,
		repository.NewCustomerRepository(db),
		inventory,
		handlers,
		NewCardSettlement(processor, true),
		NewProductService(products, nil),
		receipts,
	)

	return &harness{
		db:        db,
		txns:      txns,
		giftCards: giftCards,
		inventory: inventory,
		processor: processor,
		receipts:  receipts,
		terminal:  testutil.Terminal(t, db, "T01"),
		cashier:   testutil.User(t, db, "cashier1", model.RoleCashier),
	}
}

func (h *harness) sale(items []dto.TransactionItemRequest, payments ...dto.PaymentRequest) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{TerminalID: h.terminal.ID, Items: items, Payments: payments}
}

func (h *harness) create(req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	return h.txns.CreateTransaction(context.Background(), h.cashier.ID, req)
}

func line(p *model.Product, qty int) dto.TransactionItemRequest {
	return dto.TransactionItemRequest{ProductID: p.ID, Quantity: qty}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func cash(amount, received string) dto.PaymentRequest {
	return dto.PaymentRequest{
		PaymentMethod:  model.PaymentCash,
		Amount:         dec(amount),
		PaymentDetails: dto.PaymentDetailsRequest{CashReceived: dec(received)},
	}
}

func card(amount, token string) dto.PaymentRequest {
	return dto.PaymentRequest{
		PaymentMethod:  model.PaymentCreditCard,
		Amount:         dec(amount),
		PaymentDetails: dto.PaymentDetailsRequest{CardToken: token},
	}
}

func check(amount, number string) dto.PaymentRequest {
	return dto.PaymentRequest{
		PaymentMethod:  model.PaymentCheck,
		Amount:         dec(amount),
		PaymentDetails: dto.PaymentDetailsRequest{CheckNumber: number},
	}
}

func giftCard(amount, number string) dto.PaymentRequest {
	return dto.PaymentRequest{
		PaymentMethod:  model.PaymentGiftCard,
		Amount:         dec(amount),
		PaymentDetails: dto.PaymentDetailsRequest{GiftCardNumber: number},
	}
}

func storeCredit(amount string, account *uuid.UUID) dto.PaymentRequest {
	return dto.PaymentRequest{
		PaymentMethod:  model.PaymentStoreCredit,
		Amount:         dec(amount),
		PaymentDetails: dto.PaymentDetailsRequest{StoreCreditAccountID: account},
	}
}

func (h *harness) issueGiftCard(t *testing.T, balance string) *dto.GiftCardResponse {
	t.Helper()
	card, err := h.giftCards.CreateGiftCard(context.Background(), dto.CreateGiftCardRequest{InitialBalance: dec(balance)})
	if err != nil {
		t.Fatalf("issue gift card: %v", err)
	}
	return card
}
