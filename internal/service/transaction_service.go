package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ReceiptEnqueuer schedules asynchronous receipt generation.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, transactionID uuid.UUID) error
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, cashierID uuid.UUID, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error)
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
	VoidTransaction(ctx context.Context, id, actorID uuid.UUID, req dto.VoidTransactionRequest) (*dto.TransactionResponse, error)
}

type transactionService struct {
	repo      repository.TransactionRepository
	terminals repository.TerminalRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	inventory InventoryService
	payments  PaymentHandlers
	cards     *CardSettlement
	lookup    ProductService  // optional
	receipts  ReceiptEnqueuer // optional
	now       func() time.Time
}

func NewTransactionService(
	repo repository.TransactionRepository,
	terminals repository.TerminalRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	inventory InventoryService,
	payments PaymentHandlers,
	cards *CardSettlement,
	lookup ProductService,
	receipts ReceiptEnqueuer,
) TransactionService {
	return &transactionService{
		repo:      repo,
		terminals: terminals,
		products:  products,
		customers: customers,
		inventory: inventory,
		payments:  payments,
		cards:     cards,
		lookup:    lookup,
		receipts:  receipts,
		now:       time.Now,
	}
}

// runTx executes fn inside one GORM transaction. Returning an error from fn
// rolls everything back before the error reaches the caller.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// ── CreateTransaction ─────────────────────────────────────────────────────────
// One DB transaction:
//   1. bump the terminal sequence (proves the terminal exists, numbers the sale)
//   2. insert the draft header
//   3. lock every product in id order, snapshot each line in input order
//   4. compute totals and reconcile payments
//   5. lock gift cards and store-credit accounts in key order, then apply
//      each payment through its handler (cards are only authorized)
//   6. decrement stock, write stock movements
//   7. mark completed
// Card holds are captured after commit and voided after rollback. Receipt
// and cache work happen only after commit.

type resolvedLine struct {
	product     *model.Product
	quantity    int
	stockBefore int
}

func (s *transactionService) CreateTransaction(ctx context.Context, cashierID uuid.UUID, req dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	if len(req.Items) == 0 {
		return nil, apierror.ErrEmptyTransaction
	}
	if len(req.Payments) == 0 {
		return nil, apierror.ErrPaymentsRequired
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apierror.Wrap(apierror.ErrInvalidQuantity, "item %d: quantity must be a positive integer", i+1)
		}
		if item.UnitPrice.IsNegative() || item.Discount.IsNegative() {
			return nil, apierror.Wrap(apierror.ErrInvalidAmount, "item %d: price and discount must not be negative", i+1)
		}
	}

	var txn model.Transaction
	var barcodes []string
	var holds []CardHold

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		seq, code, err := s.terminals.NextSequenceTx(tx, req.TerminalID)
		if err != nil {
			return err
		}
		if seq == 0 {
			return apierror.Wrap(apierror.ErrTerminalNotFound, "terminal %s not found", req.TerminalID)
		}

		if req.CustomerID != nil {
			if _, err := s.customers.FindByIDTx(tx, *req.CustomerID); err != nil {
				return notFound(err, apierror.ErrCustomerNotFound)
			}
		}

		txn = model.Transaction{
			TransactionNumber: fmt.Sprintf("%s-%06d", code, seq),
			TerminalID:        req.TerminalID,
			CashierID:         cashierID,
			CustomerID:        req.CustomerID,
			Subtotal:          decimal.Zero,
			TaxAmount:         decimal.Zero,
			DiscountAmount:    decimal.Zero,
			TotalAmount:       decimal.Zero,
			Status:            model.TransactionDraft,
			TransactionDate:   s.now().UTC(),
		}
		if err := s.repo.CreateTx(tx, &txn); err != nil {
			return err
		}

		lines, err := s.addItems(tx, &txn, req.Items)
		if err != nil {
			return err
		}
		txn.TotalAmount = txn.Subtotal.Add(txn.TaxAmount).Sub(txn.DiscountAmount)
		if err := s.repo.UpdateTotalsTx(tx, &txn); err != nil {
			return err
		}

		if err := ValidatePayments(req.Payments, txn.TotalAmount); err != nil {
			return err
		}
		if err := s.payments.LockBalancesTx(tx, req.Payments); err != nil {
			return err
		}
		holds, err = s.applyPayments(ctx, tx, &txn, cashierID, req.Payments)
		if err != nil {
			return err
		}

		reason := "sale " + txn.TransactionNumber
		for _, l := range lines {
			if err := s.inventory.DecrementStockTx(tx, l.product, l.quantity, l.stockBefore, txn.ID, reason); err != nil {
				return err
			}
			if l.product.Barcode != nil {
				barcodes = append(barcodes, *l.product.Barcode)
			}
		}

		txn.Status = model.TransactionCompleted
		return s.repo.UpdateStatusTx(tx, txn.ID, model.TransactionCompleted)
	})
	if err != nil {
		s.cards.Release(ctx, txn.ID, holds)
		return nil, err
	}

	if captured := s.cards.Capture(ctx, txn.ID, holds); len(captured) > 0 {
		if err := s.repo.UpdatePaymentStatus(context.WithoutCancel(ctx), captured, model.PaymentCompleted); err != nil {
			log.Error().Err(err).Str("transaction_id", txn.ID.String()).Msg("captured card payments not marked completed")
		}
	}

	log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("number", txn.TransactionNumber).
		Str("total", txn.TotalAmount.StringFixed(2)).
		Int("items", len(req.Items)).
		Int("payments", len(req.Payments)).
		Msg("transaction completed")

	s.afterCommit(ctx, txn.ID, barcodes)
	return s.GetTransactionByID(ctx, txn.ID)
}

// lockProducts takes the row lock of every distinct product in the request
// with one ordered query, so two sales holding the same products in
// different line order cannot deadlock.
func (s *transactionService) lockProducts(tx *gorm.DB, items []dto.TransactionItemRequest) (map[uuid.UUID]*model.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	products, err := s.products.FindByIDsForUpdateTx(tx, ids)
	if err != nil {
		return nil, err
	}
	locked := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		locked[products[i].ID] = &products[i]
	}
	return locked, nil
}

// addItems resolves and snapshots every line in input order, accumulating
// totals on txn. Stock is checked against cumulative demand so two lines of
// the same product cannot oversell it together.
func (s *transactionService) addItems(tx *gorm.DB, txn *model.Transaction, items []dto.TransactionItemRequest) ([]resolvedLine, error) {
	locked, err := s.lockProducts(tx, items)
	if err != nil {
		return nil, err
	}
	remaining := make(map[uuid.UUID]int, len(locked))
	for id, p := range locked {
		remaining[id] = p.QuantityInStock
	}
	lines := make([]resolvedLine, 0, len(items))

	for i, item := range items {
		product, ok := locked[item.ProductID]
		if !ok {
			return nil, apierror.Wrap(apierror.ErrProductNotFound, "item %d: product %s not found", i+1, item.ProductID)
		}
		if !product.IsActive {
			return nil, apierror.Wrap(apierror.ErrProductNotFound, "item %d: product %s is inactive", i+1, product.Name)
		}

		stock := remaining[product.ID]
		if item.Quantity > stock {
			return nil, apierror.Wrap(apierror.ErrInsufficientStock,
				"item %d: %s has %d in stock, %d requested", i+1, product.Name, stock, item.Quantity)
		}
		remaining[product.ID] = stock - item.Quantity

		price := product.BasePrice
		if item.UnitPrice.IsPositive() {
			price = item.UnitPrice
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		gross := price.Mul(qty).Round(2)
		discount := item.Discount.Round(2)
		if discount.GreaterThan(gross) {
			return nil, apierror.Wrap(apierror.ErrInvalidAmount, "item %d: discount exceeds line amount", i+1)
		}
		tax := gross.Sub(discount).Mul(product.TaxRate).Round(2)

		line := model.TransactionItem{
			TransactionID:  txn.ID,
			ProductID:      product.ID,
			LineNumber:     i + 1,
			ProductName:    product.Name,
			ProductSKU:     product.SKU,
			Quantity:       item.Quantity,
			UnitPrice:      price,
			DiscountAmount: discount,
			TaxAmount:      tax,
			LineTotal:      gross.Add(tax).Sub(discount),
		}
		if err := s.repo.CreateItemTx(tx, &line); err != nil {
			return nil, err
		}

		txn.Subtotal = txn.Subtotal.Add(gross)
		txn.TaxAmount = txn.TaxAmount.Add(tax)
		txn.DiscountAmount = txn.DiscountAmount.Add(discount)
		lines = append(lines, resolvedLine{product: product, quantity: item.Quantity, stockBefore: stock})
	}
	return lines, nil
}

// applyPayments returns the card holds it took, including those taken
// before a failing payment, so the caller can settle or release them.
func (s *transactionService) applyPayments(ctx context.Context, tx *gorm.DB, txn *model.Transaction, cashierID uuid.UUID, payments []dto.PaymentRequest) ([]CardHold, error) {
	var holds []CardHold
	for i, p := range payments {
		pc := PaymentContext{TransactionID: txn.ID, CashierID: cashierID, Index: i, Method: p.PaymentMethod}
		outcome, err := s.payments.Process(ctx, tx, pc, p.Amount, p.PaymentDetails)
		if err != nil {
			return holds, err
		}
		payment := model.Payment{
			ID:                     uuid.New(),
			TransactionID:          txn.ID,
			Position:               i + 1,
			PaymentMethod:          p.PaymentMethod,
			Amount:                 p.Amount,
			Status:                 outcome.Status,
			ProcessorTransactionID: outcome.ProcessorTransactionID,
			AuthorizationCode:      outcome.AuthorizationCode,
			Details:                datatypes.NewJSONType(outcome.Details),
		}
		if outcome.Status == model.PaymentPending && outcome.ProcessorTransactionID != nil {
			holds = append(holds, CardHold{
				PaymentID:       payment.ID,
				AuthorizationID: *outcome.ProcessorTransactionID,
				Amount:          p.Amount,
			})
		}
		if err := s.repo.CreatePaymentTx(tx, &payment); err != nil {
			return holds, err
		}
	}
	return holds, nil
}

// afterCommit runs best-effort side effects of a committed change.
func (s *transactionService) afterCommit(ctx context.Context, id uuid.UUID, barcodes []string) {
	if s.receipts != nil {
		if err := s.receipts.EnqueueReceipt(ctx, id); err != nil {
			log.Error().Err(err).Str("transaction_id", id.String()).Msg("receipt: enqueue failed")
		}
	}
	if s.lookup != nil {
		s.lookup.InvalidateBarcodes(ctx, barcodes...)
	}
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *transactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apierror.ErrTransactionNotFound)
	}
	return transactionToResponse(txn), nil
}

func (s *transactionService) ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	q := repository.TransactionQuery{
		Status: filter.Status,
		Search: strings.TrimSpace(filter.Search),
		Offset: (filter.Page - 1) * filter.Limit,
		Limit:  filter.Limit,
	}
	switch model.TransactionStatus(filter.Status) {
	case "", model.TransactionDraft, model.TransactionCompleted, model.TransactionVoided:
	default:
		return nil, apierror.Wrap(apierror.ErrInvalidFilter, "unknown status %q", filter.Status)
	}
	if filter.StartDate != "" {
		from, err := time.ParseInLocation(time.DateOnly, filter.StartDate, time.UTC)
		if err != nil {
			return nil, apierror.Wrap(apierror.ErrInvalidFilter, "start_date must be YYYY-MM-DD")
		}
		q.From = &from
	}
	if filter.EndDate != "" {
		end, err := time.ParseInLocation(time.DateOnly, filter.EndDate, time.UTC)
		if err != nil {
			return nil, apierror.Wrap(apierror.ErrInvalidFilter, "end_date must be YYYY-MM-DD")
		}
		to := end.AddDate(0, 0, 1)
		q.To = &to
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return nil, apierror.Wrap(apierror.ErrInvalidFilter, "start_date is after end_date")
	}

	txns, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, *transactionToResponse(&txns[i]))
	}
	return &dto.TransactionListResponse{
		Transactions: out,
		Pagination: dto.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}, nil
}

// ── VoidTransaction ───────────────────────────────────────────────────────────
// completed → voided only. Items and payments are kept; each line's quantity
// goes back to stock in the same DB transaction as the status change.

func (s *transactionService) VoidTransaction(ctx context.Context, id, actorID uuid.UUID, req dto.VoidTransactionRequest) (*dto.TransactionResponse, error) {
	var barcodes []string
	var number string

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		txn, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, apierror.ErrTransactionNotFound)
		}
		if txn.Status != model.TransactionCompleted {
			return apierror.Wrap(apierror.ErrInvalidVoidState, "transaction %s is %s", txn.TransactionNumber, txn.Status)
		}
		number = txn.TransactionNumber

		ids := make([]uuid.UUID, 0, len(txn.Items))
		for _, item := range txn.Items {
			ids = append(ids, item.ProductID)
		}
		if _, err := s.products.FindByIDsForUpdateTx(tx, ids); err != nil {
			return err
		}

		reason := "void " + txn.TransactionNumber + ": " + req.Reason
		for _, item := range txn.Items {
			p, err := s.inventory.RestoreStockTx(tx, item.ProductID, item.Quantity, txn.ID, reason)
			if err != nil {
				return err
			}
			if p.Barcode != nil {
				barcodes = append(barcodes, *p.Barcode)
			}
		}
		return s.repo.MarkVoidedTx(tx, txn.ID, actorID, req.Reason, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("transaction_id", id.String()).
		Str("number", number).
		Str("actor_id", actorID.String()).
		Msg("transaction voided")

	s.afterCommit(ctx, id, barcodes)
	return s.GetTransactionByID(ctx, id)
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func transactionToResponse(t *model.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:                t.ID.String(),
		TransactionNumber: t.TransactionNumber,
		TerminalID:        t.TerminalID.String(),
		CashierID:         t.CashierID.String(),
		CustomerID:        uuidString(t.CustomerID),
		Subtotal:          t.Subtotal,
		TaxAmount:         t.TaxAmount,
		DiscountAmount:    t.DiscountAmount,
		TotalAmount:       t.TotalAmount,
		ChangeDue:         decimal.Zero,
		Status:            t.Status,
		TransactionDate:   t.TransactionDate,
		VoidedAt:          t.VoidedAt,
		VoidedBy:          uuidString(t.VoidedBy),
		VoidReason:        t.VoidReason,
		Items:             make([]dto.TransactionItemResponse, 0, len(t.Items)),
		Payments:          make([]dto.PaymentResponse, 0, len(t.Payments)),
	}
	if t.Terminal != nil {
		resp.TerminalCode = t.Terminal.Code
	}
	if t.Cashier != nil {
		resp.CashierName = t.Cashier.FullName
	}
	if t.Customer != nil {
		name := t.Customer.Name
		resp.CustomerName = &name
	}
	for _, it := range t.Items {
		resp.Items = append(resp.Items, dto.TransactionItemResponse{
			ID:             it.ID.String(),
			ProductID:      it.ProductID.String(),
			ProductName:    it.ProductName,
			ProductSKU:     it.ProductSKU,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TaxAmount:      it.TaxAmount,
			LineTotal:      it.LineTotal,
		})
	}
	for _, p := range t.Payments {
		details := p.Details.Data()
		if details.ChangeGiven != nil {
			resp.ChangeDue = resp.ChangeDue.Add(*details.ChangeGiven)
		}
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:                     p.ID.String(),
			PaymentMethod:          p.PaymentMethod,
			Amount:                 p.Amount,
			Status:                 p.Status,
			ProcessorTransactionID: p.ProcessorTransactionID,
			AuthorizationCode:      p.AuthorizationCode,
			Details:                details,
		})
	}
	return resp
}
