package repository

import (
	"context"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionQuery is the resolved form of a list request.
type TransactionQuery struct {
	Status string
	From   *time.Time // inclusive
	To     *time.Time // exclusive
	Search string
	Offset int
	Limit  int
}

type TransactionRepository interface {
	CreateTx(tx *gorm.DB, t *model.Transaction) error
	CreateItemTx(tx *gorm.DB, item *model.TransactionItem) error
	CreatePaymentTx(tx *gorm.DB, p *model.Payment) error
	UpdateTotalsTx(tx *gorm.DB, t *model.Transaction) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.TransactionStatus) error
	MarkVoidedTx(tx *gorm.DB, id uuid.UUID, actorID uuid.UUID, reason string, at time.Time) error
	// UpdatePaymentStatus runs outside any sale transaction, after the
	// processor has settled the listed payments.
	UpdatePaymentStatus(ctx context.Context, ids []uuid.UUID, status model.PaymentStatus) error

	// FindForUpdateTx locks the header row and loads its items.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error)
	// FindByID returns the transaction joined with terminal, cashier,
	// customer, items and payments.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, q TransactionQuery) ([]model.Transaction, int64, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository { return &transactionRepo{db: db} }

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) CreateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Omit(clause.Associations).Create(t).Error
}

func (r *transactionRepo) CreateItemTx(tx *gorm.DB, item *model.TransactionItem) error {
	return tx.Create(item).Error
}

func (r *transactionRepo) CreatePaymentTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *transactionRepo) UpdateTotalsTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Model(&model.Transaction{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
		"subtotal":        t.Subtotal,
		"tax_amount":      t.TaxAmount,
		"discount_amount": t.DiscountAmount,
		"total_amount":    t.TotalAmount,
	}).Error
}

func (r *transactionRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.TransactionStatus) error {
	return tx.Model(&model.Transaction{}).Where("id = ?", id).Update("status", status).Error
}

func (r *transactionRepo) UpdatePaymentStatus(ctx context.Context, ids []uuid.UUID, status model.PaymentStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Payment{}).Where("id IN ?", ids).Update("status", status).Error
}

func (r *transactionRepo) MarkVoidedTx(tx *gorm.DB, id uuid.UUID, actorID uuid.UUID, reason string, at time.Time) error {
	return tx.Model(&model.Transaction{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      model.TransactionVoided,
		"voided_at":   at,
		"voided_by":   actorID,
		"void_reason": reason,
	}).Error
}

func (r *transactionRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("transaction_id = ?", id).Order("line_number ASC").Find(&t.Items).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.joined(r.db.WithContext(ctx)).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transactionRepo) List(ctx context.Context, q TransactionQuery) ([]model.Transaction, int64, error) {
	var txns []model.Transaction
	var total int64

	db := r.db.WithContext(ctx)
	stmt := db.Model(&model.Transaction{})

	if q.Status != "" {
		stmt = stmt.Where("status = ?", q.Status)
	}
	if q.From != nil {
		stmt = stmt.Where("transaction_date >= ?", *q.From)
	}
	if q.To != nil {
		stmt = stmt.Where("transaction_date < ?", *q.To)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		customers := db.Model(&model.Customer{}).Select("id").Where("LOWER(name) LIKE LOWER(?)", like)
		stmt = stmt.Where("transaction_number LIKE ? OR customer_id IN (?)", like, customers)
	}

	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.joined(stmt).
		Order("transaction_date DESC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&txns).Error

	return txns, total, err
}

// joined preloads everything a receipt or API response needs.
// Items and payments keep request order.
func (r *transactionRepo) joined(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Terminal").
		Preload("Cashier").
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("transaction_items.line_number ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.position ASC") })
}
