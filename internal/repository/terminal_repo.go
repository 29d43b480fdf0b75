package repository

import (
	"context"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TerminalRepository interface {
	Create(ctx context.Context, t *model.Terminal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Terminal, error)
	FindByCode(ctx context.Context, code string) (*model.Terminal, error)

	// NextSequenceTx bumps the terminal's counter and returns the new value
	// together with the terminal code. The UPDATE takes a row lock, so
	// concurrent sales on the same terminal serialize here. A zero sequence
	// means the terminal does not exist or is inactive.
	NextSequenceTx(tx *gorm.DB, id uuid.UUID) (int64, string, error)
}

type terminalRepo struct{ db *gorm.DB }

func NewTerminalRepository(db *gorm.DB) TerminalRepository { return &terminalRepo{db: db} }

func (r *terminalRepo) Create(ctx context.Context, t *model.Terminal) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *terminalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Terminal, error) {
	var t model.Terminal
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *terminalRepo) FindByCode(ctx context.Context, code string) (*model.Terminal, error) {
	var t model.Terminal
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&t).Error
	return &t, err
}

func (r *terminalRepo) NextSequenceTx(tx *gorm.DB, id uuid.UUID) (int64, string, error) {
	var row struct {
		LastSequence int64
		Code         string
	}
	err := tx.Raw(
		"UPDATE terminals SET last_sequence = last_sequence + 1 WHERE id = ? AND is_active = ? RETURNING last_sequence, code",
		id, true,
	).Scan(&row).Error
	return row.LastSequence, row.Code, err
}
