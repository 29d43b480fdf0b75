package repository

import (
	"context"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.First(&c, "id = ?", id).Error
	return &c, err
}

// StoreCreditRepository manages customer store-credit balances.
type StoreCreditRepository interface {
	Create(ctx context.Context, a *model.StoreCreditAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StoreCreditAccount, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StoreCreditAccount, error)
	// LockByIDsTx locks the listed accounts in id order.
	LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) error
	UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error
}

type storeCreditRepo struct{ db *gorm.DB }

func NewStoreCreditRepository(db *gorm.DB) StoreCreditRepository { return &storeCreditRepo{db: db} }

func (r *storeCreditRepo) Create(ctx context.Context, a *model.StoreCreditAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *storeCreditRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StoreCreditAccount, error) {
	var a model.StoreCreditAccount
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *storeCreditRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StoreCreditAccount, error) {
	var a model.StoreCreditAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *storeCreditRepo) LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var accounts []model.StoreCreditAccount
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&accounts).Error
}

func (r *storeCreditRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	return tx.Model(&model.StoreCreditAccount{}).Where("id = ?", id).Update("balance", balance).Error
}
