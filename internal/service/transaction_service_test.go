package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction_CashSale(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "MUG-1", "10.99", "0.08", 10)

	resp, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 2)}, cash("23.74", "30.00")))
	require.NoError(t, err)

	assert.Equal(t, "T01-000001", resp.TransactionNumber)
	assert.Equal(t, model.TransactionCompleted, resp.Status)
	assert.Equal(t, "21.98", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "1.76", resp.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.00", resp.DiscountAmount.StringFixed(2))
	assert.Equal(t, "23.74", resp.TotalAmount.StringFixed(2))
	assert.Equal(t, "6.26", resp.ChangeDue.StringFixed(2))

	require.Len(t, resp.Items, 1)
	assert.Equal(t, p.Name, resp.Items[0].ProductName)
	assert.Equal(t, "MUG-1", resp.Items[0].ProductSKU)
	assert.Equal(t, "10.99", resp.Items[0].UnitPrice.StringFixed(2))

	require.Len(t, resp.Payments, 1)
	assert.Equal(t, model.PaymentCompleted, resp.Payments[0].Status)

	assert.Equal(t, 8, testutil.Stock(t, h.db, p.ID))
	assert.EqualValues(t, 1, testutil.Count(t, h.db, &model.StockMovement{}, "product_id = ? AND movement_type = ? AND quantity_change = ?", p.ID, model.MovementSale, -2))
	assert.Len(t, h.receipts.ids, 1)
}

func TestCreateTransaction_SequencePerTerminal(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "BOOK-1", "5.00", "0", 10)

	first, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, cash("5.00", "5.00")))
	require.NoError(t, err)
	second, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, cash("5.00", "5.00")))
	require.NoError(t, err)

	assert.Equal(t, "T01-000001", first.TransactionNumber)
	assert.Equal(t, "T01-000002", second.TransactionNumber)
}

func TestCreateTransaction_UnitPriceOverrideAndDiscount(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "LAMP-1", "20.00", "0.10", 3)

	item := dto.TransactionItemRequest{ProductID: p.ID, Quantity: 1, UnitPrice: dec("15.00"), Discount: dec("5.00")}
	resp, err := h.create(h.sale([]dto.TransactionItemRequest{item}, cash("11.00", "11.00")))
	require.NoError(t, err)

	assert.Equal(t, "15.00", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "1.00", resp.TaxAmount.StringFixed(2))
	assert.Equal(t, "5.00", resp.DiscountAmount.StringFixed(2))
	assert.Equal(t, "11.00", resp.TotalAmount.StringFixed(2))
	assert.True(t, resp.ChangeDue.IsZero())
}

func TestCreateTransaction_OversellRollsBack(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "CHAIR-1", "12.00", "0", 5)

	_, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 6)}, cash("72.00", "80.00")))
	assert.ErrorIs(t, err, apierror.ErrInsufficientStock)

	assert.Equal(t, 5, testutil.Stock(t, h.db, p.ID))
	assert.Zero(t, testutil.Count(t, h.db, &model.Transaction{}, ""))
	assert.Zero(t, testutil.Count(t, h.db, &model.StockMovement{}, ""))
	assert.Empty(t, h.receipts.ids)

	// The sequence bump rolled back with the sale.
	ok, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 5)}, cash("60.00", "60.00")))
	require.NoError(t, err)
	assert.Equal(t, "T01-000001", ok.TransactionNumber)
	assert.Equal(t, 0, testutil.Stock(t, h.db, p.ID))
}

func TestCreateTransaction_RepeatedProductCountsCumulativeDemand(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "VASE-1", "4.00", "0", 5)

	_, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 3), line(p, 3)}, cash("24.00", "24.00")))
	assert.ErrorIs(t, err, apierror.ErrInsufficientStock)
	assert.Equal(t, 5, testutil.Stock(t, h.db, p.ID))
}

func TestCreateTransaction_InactiveProduct(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "OLD-1", "8.00", "0", 4)
	require.NoError(t, h.db.Model(p).Update("is_active", false).Error)

	_, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, cash("8.00", "8.00")))
	assert.ErrorIs(t, err, apierror.ErrProductNotFound)
	assert.Equal(t, http.StatusNotFound, apierror.Status(err))

	assert.Equal(t, 4, testutil.Stock(t, h.db, p.ID))
	assert.Zero(t, testutil.Count(t, h.db, &model.Transaction{}, ""))
}

func TestCreateTransaction_ProductErrorsNameTheLine(t *testing.T) {
	h := newHarness(t)
	a := testutil.Product(t, h.db, "SHELF-A", "5.00", "0", 4)
	b := testutil.Product(t, h.db, "SHELF-B", "5.00", "0", 4)
	gone := dto.TransactionItemRequest{ProductID: uuid.New(), Quantity: 1}

	// Products are locked in id order; errors still follow request order.
	_, err := h.create(h.sale([]dto.TransactionItemRequest{line(b, 1), line(a, 1), gone}, cash("15.00", "15.00")))
	require.ErrorIs(t, err, apierror.ErrProductNotFound)
	assert.Contains(t, err.Error(), "item 3")

	_, err = h.create(h.sale([]dto.TransactionItemRequest{line(a, 1), line(b, 5)}, cash("30.00", "30.00")))
	require.ErrorIs(t, err, apierror.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "item 2")

	resp, err := h.create(h.sale([]dto.TransactionItemRequest{line(b, 2), line(a, 1)}, cash("15.00", "15.00")))
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "SHELF-B", resp.Items[0].ProductSKU)
	assert.Equal(t, "SHELF-A", resp.Items[1].ProductSKU)
	assert.Equal(t, 3, testutil.Stock(t, h.db, a.ID))
	assert.Equal(t, 2, testutil.Stock(t, h.db, b.ID))
}

func TestCreateTransaction_InputErrors(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "COAT-1", "30.00", "0", 2)
	missing := uuid.New()

	tests := []struct {
		name string
		req  dto.CreateTransactionRequest
		want *apierror.Error
	}{
		{"no items", h.sale(nil, cash("1.00", "1.00")), apierror.ErrEmptyTransaction},
		{"no payments", h.sale([]dto.TransactionItemRequest{line(p, 1)}), apierror.ErrPaymentsRequired},
		{"zero quantity", h.sale([]dto.TransactionItemRequest{line(p, 0)}, cash("30.00", "30.00")), apierror.ErrInvalidQuantity},
		{"unknown product", h.sale([]dto.TransactionItemRequest{{ProductID: uuid.New(), Quantity: 1}}, cash("30.00", "30.00")), apierror.ErrProductNotFound},
		{"unknown terminal", dto.CreateTransactionRequest{
			TerminalID: uuid.New(),
			Items:      []dto.TransactionItemRequest{line(p, 1)},
			Payments:   []dto.PaymentRequest{cash("30.00", "30.00")},
		}, apierror.ErrTerminalNotFound},
		{"unknown customer", dto.CreateTransactionRequest{
			TerminalID: h.terminal.ID,
			CustomerID: &missing,
			Items:      []dto.TransactionItemRequest{line(p, 1)},
			Payments:   []dto.PaymentRequest{cash("30.00", "30.00")},
		}, apierror.ErrCustomerNotFound},
		{"payment mismatch", h.sale([]dto.TransactionItemRequest{line(p, 1)}, cash("20.00", "20.00")), apierror.ErrPaymentMismatch},
		{"cash short", h.sale([]dto.TransactionItemRequest{line(p, 1)}, cash("30.00", "25.00")), apierror.ErrInsufficientCash},
		{"check without number", h.sale([]dto.TransactionItemRequest{line(p, 1)}, dto.PaymentRequest{
			PaymentMethod: model.PaymentCheck, Amount: dec("30.00"),
		}), apierror.ErrCheckNumberRequired},
		{"unsupported method", h.sale([]dto.TransactionItemRequest{line(p, 1)}, dto.PaymentRequest{
			PaymentMethod: "barter", Amount: dec("30.00"),
		}), apierror.ErrUnsupportedPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.create(tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 2, testutil.Stock(t, h.db, p.ID))
	assert.Zero(t, testutil.Count(t, h.db, &model.Transaction{}, ""))
}

func TestCreateTransaction_CheckPayment(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "DESK-1", "45.00", "0", 1)

	resp, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, dto.PaymentRequest{
		PaymentMethod:  model.PaymentCheck,
		Amount:         dec("45.00"),
		PaymentDetails: dto.PaymentDetailsRequest{CheckNumber: " 1042 "},
	}))
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "1042", resp.Payments[0].Details.CheckNumber)
}

func TestCreateTransaction_CardApproved(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "BIKE-1", "80.00", "0", 1)

	resp, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, card("80.00", infra.TokenVisa)))
	require.NoError(t, err)

	require.Len(t, resp.Payments, 1)
	pay := resp.Payments[0]
	assert.Equal(t, model.PaymentCompleted, pay.Status)
	require.NotNil(t, pay.ProcessorTransactionID)
	require.NotNil(t, pay.AuthorizationCode)
	assert.Equal(t, "4242", pay.Details.CardLast4)
	assert.Equal(t, infra.BrandVisa, pay.Details.CardBrand)
	assert.Equal(t, infra.StatusCaptured, h.processor.Status(*pay.ProcessorTransactionID))
}

func TestCreateTransaction_CardHoldVoidedWhenLaterPaymentFails(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "AMP-1", "40.00", "0", 3)

	charge := card("20.00", infra.TokenVisa)
	charge.PaymentDetails.IdempotencyKey = "register-1-hold"

	_, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, charge, check("20.00", "")))
	assert.ErrorIs(t, err, apierror.ErrCheckNumberRequired)

	// Replaying the key returns the authorization the failed sale took.
	replay, err := h.processor.AuthorizePayment(context.Background(), infra.AuthorizeRequest{
		Amount:         dec("20.00"),
		CardToken:      infra.TokenVisa,
		IdempotencyKey: "register-1-hold",
	})
	require.NoError(t, err)
	require.True(t, replay.Success)
	assert.Equal(t, infra.StatusVoided, h.processor.Status(replay.TransactionID))

	assert.Equal(t, 3, testutil.Stock(t, h.db, p.ID))
	assert.Zero(t, testutil.Count(t, h.db, &model.Payment{}, ""))
}

func TestCardSettlement(t *testing.T) {
	ctx := context.Background()
	processor := infra.NewMockProcessor()
	authorize := func(t *testing.T, amount string) CardHold {
		t.Helper()
		res, err := processor.AuthorizePayment(ctx, infra.AuthorizeRequest{Amount: dec(amount), CardToken: infra.TokenVisa})
		require.NoError(t, err)
		require.True(t, res.Success)
		return CardHold{PaymentID: uuid.New(), AuthorizationID: res.TransactionID, Amount: dec(amount)}
	}
	txnID := uuid.New()

	t.Run("manual capture leaves holds open", func(t *testing.T) {
		hold := authorize(t, "12.00")
		assert.Empty(t, NewCardSettlement(processor, false).Capture(ctx, txnID, []CardHold{hold}))
		assert.Equal(t, infra.StatusAuthorized, processor.Status(hold.AuthorizationID))
	})

	t.Run("auto capture settles every hold", func(t *testing.T) {
		first, second := authorize(t, "5.00"), authorize(t, "7.50")
		captured := NewCardSettlement(processor, true).Capture(ctx, txnID, []CardHold{first, second})
		assert.Equal(t, []uuid.UUID{first.PaymentID, second.PaymentID}, captured)
		assert.Equal(t, infra.StatusCaptured, processor.Status(first.AuthorizationID))
		assert.Equal(t, infra.StatusCaptured, processor.Status(second.AuthorizationID))
	})

	t.Run("failed capture is skipped", func(t *testing.T) {
		good := authorize(t, "3.00")
		bad := CardHold{PaymentID: uuid.New(), AuthorizationID: "unknown", Amount: dec("3.00")}
		captured := NewCardSettlement(processor, true).Capture(ctx, txnID, []CardHold{bad, good})
		assert.Equal(t, []uuid.UUID{good.PaymentID}, captured)
	})

	t.Run("release voids holds", func(t *testing.T) {
		hold := authorize(t, "9.00")
		NewCardSettlement(processor, true).Release(ctx, txnID, []CardHold{hold, {AuthorizationID: "unknown"}})
		assert.Equal(t, infra.StatusVoided, processor.Status(hold.AuthorizationID))
	})
}

func TestCreateTransaction_CardDeclinedRollsBack(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "TV-1", "50.00", "0", 4)

	_, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, card("50.00", infra.TokenDeclined)))
	assert.ErrorIs(t, err, apierror.ErrCardDeclined)
	assert.Equal(t, http.StatusPaymentRequired, apierror.Status(err))

	assert.Equal(t, 4, testutil.Stock(t, h.db, p.ID))
	assert.Zero(t, testutil.Count(t, h.db, &model.Transaction{}, ""))
	assert.Zero(t, testutil.Count(t, h.db, &model.Payment{}, ""))
}

func TestCreateTransaction_GiftCardRedemption(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "RUG-1", "25.00", "0", 5)
	gc := h.issueGiftCard(t, "50.00")

	resp, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, giftCard("25.00", gc.CardNumber)))
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "25.00", resp.Payments[0].Details.BalanceAfter.StringFixed(2))

	bal, err := h.giftCards.CheckBalance(context.Background(), gc.CardNumber)
	require.NoError(t, err)
	assert.Equal(t, "25.00", bal.CurrentBalance.StringFixed(2))

	// Over-redemption fails and leaves both balance and stock untouched.
	big := testutil.Product(t, h.db, "SOFA-1", "100.00", "0", 1)
	_, err = h.create(h.sale([]dto.TransactionItemRequest{line(big, 1)}, giftCard("100.00", gc.CardNumber)))
	assert.ErrorIs(t, err, apierror.ErrInsufficientBalance)

	bal, err = h.giftCards.CheckBalance(context.Background(), gc.CardNumber)
	require.NoError(t, err)
	assert.Equal(t, "25.00", bal.CurrentBalance.StringFixed(2))
	assert.Equal(t, 1, testutil.Stock(t, h.db, big.ID))

	id, _ := uuid.Parse(gc.ID)
	history, err := h.giftCards.GetGiftCardHistory(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	redemption := history[1]
	if history[0].TransactionType == model.GiftCardRedemption {
		redemption = history[0]
	}
	assert.Equal(t, model.GiftCardRedemption, redemption.TransactionType)
	require.NotNil(t, redemption.TransactionID)
	assert.Equal(t, resp.ID, *redemption.TransactionID)
}

func TestCreateTransaction_SplitPayment(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "BAG-1", "40.00", "0", 2)
	gc := h.issueGiftCard(t, "25.00")

	resp, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)},
		cash("15.00", "20.00"),
		giftCard("25.00", gc.CardNumber),
	))
	require.NoError(t, err)

	require.Len(t, resp.Payments, 2)
	assert.Equal(t, model.PaymentCash, resp.Payments[0].PaymentMethod)
	assert.Equal(t, model.PaymentGiftCard, resp.Payments[1].PaymentMethod)
	assert.Equal(t, "5.00", resp.ChangeDue.StringFixed(2))

	bal, err := h.giftCards.CheckBalance(context.Background(), gc.CardNumber)
	require.NoError(t, err)
	assert.True(t, bal.CurrentBalance.IsZero())
}

func TestCreateTransaction_LaterPaymentFailureUndoesEarlierOnes(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "HAT-1", "40.00", "0", 2)
	gc := h.issueGiftCard(t, "30.00")

	_, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)},
		giftCard("20.00", gc.CardNumber),
		card("20.00", infra.TokenDeclined),
	))
	assert.ErrorIs(t, err, apierror.ErrCardDeclined)

	bal, err := h.giftCards.CheckBalance(context.Background(), gc.CardNumber)
	require.NoError(t, err)
	assert.Equal(t, "30.00", bal.CurrentBalance.StringFixed(2))
	assert.EqualValues(t, 1, testutil.Count(t, h.db, &model.GiftCardTransaction{}, ""))
}

func TestCreateTransaction_StoreCredit(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "PAN-1", "25.00", "0", 5)
	cust := testutil.Customer(t, h.db, "Ada Donor", nil)
	account := testutil.StoreCredit(t, h.db, cust.ID, "30.00", true)
	closed := testutil.StoreCredit(t, h.db, cust.ID, "100.00", false)
	items := []dto.TransactionItemRequest{line(p, 1)}

	_, err := h.create(h.sale(items, storeCredit("25.00", nil)))
	assert.ErrorIs(t, err, apierror.ErrAccountRequired)

	_, err = h.create(h.sale(items, storeCredit("25.00", &closed.ID)))
	assert.ErrorIs(t, err, apierror.ErrAccountNotFound)

	resp, err := h.create(h.sale(items, storeCredit("25.00", &account.ID)))
	require.NoError(t, err)
	assert.Equal(t, "5.00", resp.Payments[0].Details.BalanceAfter.StringFixed(2))

	_, err = h.create(h.sale(items, storeCredit("25.00", &account.ID)))
	assert.ErrorIs(t, err, apierror.ErrInsufficientStoreCredit)

	var got model.StoreCreditAccount
	require.NoError(t, h.db.First(&got, "id = ?", account.ID).Error)
	assert.Equal(t, "5.00", got.Balance.StringFixed(2))
}

func TestCreateTransaction_SeveralBalanceAccounts(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "TENT-1", "60.00", "0", 3)
	cust := testutil.Customer(t, h.db, "Lin Regular", nil)
	account := testutil.StoreCredit(t, h.db, cust.ID, "20.00", true)
	first, second := h.issueGiftCard(t, "20.00"), h.issueGiftCard(t, "20.00")
	if first.CardNumber < second.CardNumber {
		first, second = second, first
	}
	items := []dto.TransactionItemRequest{line(p, 1)}

	_, err := h.create(h.sale(items,
		giftCard("20.00", first.CardNumber),
		storeCredit("20.00", &account.ID),
		giftCard("20.00", "0000000000000000"),
	))
	assert.ErrorIs(t, err, apierror.ErrGiftCardNotFound)

	resp, err := h.create(h.sale(items,
		giftCard("20.00", first.CardNumber),
		storeCredit("20.00", &account.ID),
		giftCard("20.00", second.CardNumber),
	))
	require.NoError(t, err)
	require.Len(t, resp.Payments, 3)
	assert.Equal(t, model.PaymentStoreCredit, resp.Payments[1].PaymentMethod)
	for _, gc := range []*dto.GiftCardResponse{first, second} {
		bal, err := h.giftCards.CheckBalance(context.Background(), gc.CardNumber)
		require.NoError(t, err)
		assert.True(t, bal.CurrentBalance.IsZero())
	}
}

func TestCreateTransaction_WithCustomer(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "CUP-1", "2.00", "0", 5)
	cust := testutil.Customer(t, h.db, "Grace Buyer", nil)

	resp, err := h.create(dto.CreateTransactionRequest{
		TerminalID: h.terminal.ID,
		CustomerID: &cust.ID,
		Items:      []dto.TransactionItemRequest{line(p, 1)},
		Payments:   []dto.PaymentRequest{cash("2.00", "2.00")},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.CustomerName)
	assert.Equal(t, "Grace Buyer", *resp.CustomerName)
}

func TestVoidTransaction_RestoresStock(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "GLOBE-1", "15.00", "0", 10)
	manager := testutil.User(t, h.db, "manager1", model.RoleManager)
	ctx := context.Background()

	sale, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 2)}, cash("30.00", "30.00")))
	require.NoError(t, err)
	assert.Equal(t, 8, testutil.Stock(t, h.db, p.ID))

	id := uuid.MustParse(sale.ID)
	voided, err := h.txns.VoidTransaction(ctx, id, manager.ID, dto.VoidTransactionRequest{Reason: "customer changed mind"})
	require.NoError(t, err)

	assert.Equal(t, model.TransactionVoided, voided.Status)
	require.NotNil(t, voided.VoidedBy)
	assert.Equal(t, manager.ID.String(), *voided.VoidedBy)
	require.NotNil(t, voided.VoidReason)
	assert.Equal(t, "customer changed mind", *voided.VoidReason)
	assert.NotNil(t, voided.VoidedAt)
	assert.Len(t, voided.Items, 1)
	assert.Len(t, voided.Payments, 1)

	assert.Equal(t, 10, testutil.Stock(t, h.db, p.ID))
	assert.EqualValues(t, 1, testutil.Count(t, h.db, &model.StockMovement{}, "movement_type = ? AND quantity_change = ?", model.MovementVoidRestore, 2))
	assert.Len(t, h.receipts.ids, 2)

	_, err = h.txns.VoidTransaction(ctx, id, manager.ID, dto.VoidTransactionRequest{Reason: "again"})
	assert.ErrorIs(t, err, apierror.ErrInvalidVoidState)
	assert.Equal(t, 10, testutil.Stock(t, h.db, p.ID))
}

func TestVoidTransaction_DeletedProductRollsBack(t *testing.T) {
	h := newHarness(t)
	kept := testutil.Product(t, h.db, "CLOCK-1", "6.00", "0", 5)
	removed := testutil.Product(t, h.db, "RADIO-1", "4.00", "0", 5)
	manager := testutil.User(t, h.db, "manager1", model.RoleManager)

	sale, err := h.create(h.sale([]dto.TransactionItemRequest{line(kept, 2), line(removed, 1)}, cash("16.00", "16.00")))
	require.NoError(t, err)
	require.NoError(t, h.db.Delete(&model.Product{}, "id = ?", removed.ID).Error)

	id := uuid.MustParse(sale.ID)
	_, err = h.txns.VoidTransaction(context.Background(), id, manager.ID, dto.VoidTransactionRequest{Reason: "returned"})
	assert.ErrorIs(t, err, apierror.ErrProductNotFound)

	assert.Equal(t, 3, testutil.Stock(t, h.db, kept.ID))
	assert.Zero(t, testutil.Count(t, h.db, &model.StockMovement{}, "movement_type = ?", model.MovementVoidRestore))
	got, err := h.txns.GetTransactionByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionCompleted, got.Status)
	assert.Nil(t, got.VoidedBy)
}

func TestVoidTransaction_NotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.txns.VoidTransaction(context.Background(), uuid.New(), h.cashier.ID, dto.VoidTransactionRequest{Reason: "typo"})
	assert.ErrorIs(t, err, apierror.ErrTransactionNotFound)
}

func TestGetTransactionByID_NotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.txns.GetTransactionByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apierror.ErrTransactionNotFound)
}

func TestListTransactions(t *testing.T) {
	h := newHarness(t)
	p := testutil.Product(t, h.db, "PEN-1", "1.00", "0", 10)
	ctx := context.Background()

	var last *dto.TransactionResponse
	for i := 0; i < 3; i++ {
		resp, err := h.create(h.sale([]dto.TransactionItemRequest{line(p, 1)}, cash("1.00", "1.00")))
		require.NoError(t, err)
		last = resp
	}
	_, err := h.txns.VoidTransaction(ctx, uuid.MustParse(last.ID), h.cashier.ID, dto.VoidTransactionRequest{Reason: "test void"})
	require.NoError(t, err)

	page, err := h.txns.ListTransactions(ctx, dto.TransactionFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 2)
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	voided, err := h.txns.ListTransactions(ctx, dto.TransactionFilter{Status: "voided"})
	require.NoError(t, err)
	require.Len(t, voided.Transactions, 1)
	assert.Equal(t, last.TransactionNumber, voided.Transactions[0].TransactionNumber)
	assert.Equal(t, defaultPageLimit, voided.Pagination.Limit)

	search, err := h.txns.ListTransactions(ctx, dto.TransactionFilter{Search: "000002"})
	require.NoError(t, err)
	require.Len(t, search.Transactions, 1)
	assert.Equal(t, "T01-000002", search.Transactions[0].TransactionNumber)

	capped, err := h.txns.ListTransactions(ctx, dto.TransactionFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, maxPageLimit, capped.Pagination.Limit)
}

func TestListTransactions_InvalidFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for name, f := range map[string]dto.TransactionFilter{
		"status":         {Status: "refunded"},
		"start format":   {StartDate: "03/01/2026"},
		"end format":     {EndDate: "2026-13-01"},
		"start past end": {StartDate: "2026-03-02", EndDate: "2026-03-01"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.txns.ListTransactions(ctx, f)
			assert.ErrorIs(t, err, apierror.ErrInvalidFilter)
		})
	}

	sameDay, err := h.txns.ListTransactions(ctx, dto.TransactionFilter{StartDate: "2026-03-01", EndDate: "2026-03-01"})
	require.NoError(t, err)
	assert.Empty(t, sameDay.Transactions)
}
