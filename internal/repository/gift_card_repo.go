package repository

import (
	"context"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GiftCardRepository interface {
	CreateTx(tx *gorm.DB, g *model.GiftCard) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.GiftCard, error)
	FindByNumber(ctx context.Context, number string) (*model.GiftCard, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)

	// Row-locking reads for balance mutations; callers must pass the tx instance.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.GiftCard, error)
	FindByNumberForUpdateTx(tx *gorm.DB, number string) (*model.GiftCard, error)
	// LockByNumbersTx locks the listed cards in card number order.
	LockByNumbersTx(tx *gorm.DB, numbers []string) error
	UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error

	// Audit trail (append-only)
	CreateTxnTx(tx *gorm.DB, t *model.GiftCardTransaction) error
	ListTxns(ctx context.Context, giftCardID uuid.UUID) ([]model.GiftCardTransaction, error)

	DB() *gorm.DB
}

type giftCardRepo struct{ db *gorm.DB }

func NewGiftCardRepository(db *gorm.DB) GiftCardRepository { return &giftCardRepo{db: db} }

func (r *giftCardRepo) DB() *gorm.DB { return r.db }

func (r *giftCardRepo) CreateTx(tx *gorm.DB, g *model.GiftCard) error {
	return tx.Create(g).Error
}

func (r *giftCardRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.GiftCard, error) {
	var g model.GiftCard
	err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error
	return &g, err
}

func (r *giftCardRepo) FindByNumber(ctx context.Context, number string) (*model.GiftCard, error) {
	var g model.GiftCard
	err := r.db.WithContext(ctx).Where("card_number = ?", number).First(&g).Error
	return &g, err
}

func (r *giftCardRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.GiftCard{}).Where("card_number = ?", number).Count(&n).Error
	return n > 0, err
}

func (r *giftCardRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.GiftCard{}).Where("id = ?", id).Update("is_active", active)
	return res.RowsAffected, res.Error
}

func (r *giftCardRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.GiftCard, error) {
	var g model.GiftCard
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&g, "id = ?", id).Error
	return &g, err
}

func (r *giftCardRepo) FindByNumberForUpdateTx(tx *gorm.DB, number string) (*model.GiftCard, error) {
	var g model.GiftCard
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("card_number = ?", number).First(&g).Error
	return &g, err
}

func (r *giftCardRepo) LockByNumbersTx(tx *gorm.DB, numbers []string) error {
	if len(numbers) == 0 {
		return nil
	}
	var cards []model.GiftCard
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("card_number IN ?", numbers).
		Order("card_number").
		Find(&cards).Error
}

func (r *giftCardRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	return tx.Model(&model.GiftCard{}).Where("id = ?", id).Update("current_balance", balance).Error
}

func (r *giftCardRepo) CreateTxnTx(tx *gorm.DB, t *model.GiftCardTransaction) error {
	return tx.Create(t).Error
}

func (r *giftCardRepo) ListTxns(ctx context.Context, giftCardID uuid.UUID) ([]model.GiftCardTransaction, error) {
	var txns []model.GiftCardTransaction
	err := r.db.WithContext(ctx).
		Where("gift_card_id = ?", giftCardID).
		Order("created_at ASC").
		Find(&txns).Error
	return txns, err
}
