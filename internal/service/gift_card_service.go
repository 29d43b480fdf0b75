package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	giftCardNumberLength   = 16
	giftCardNumberAttempts = 5
)

// GiftCardService owns the stored-value ledger. Every balance change writes
// a GiftCardTransaction row in the same DB transaction as the balance update.
type GiftCardService interface {
	CreateGiftCard(ctx context.Context, req dto.CreateGiftCardRequest) (*dto.GiftCardResponse, error)
	GetGiftCard(ctx context.Context, id uuid.UUID) (*dto.GiftCardResponse, error)
	CheckBalance(ctx context.Context, number string) (*dto.GiftCardBalanceResponse, error)
	// ValidateRedemption computes the outcome of a redemption without
	// persisting anything.
	ValidateRedemption(ctx context.Context, number string, amount decimal.Decimal) (*dto.RedemptionResponse, error)
	// RedeemTx locks the card, validates and debits it inside tx.
	RedeemTx(tx *gorm.DB, number string, amount decimal.Decimal, transactionID, userID *uuid.UUID) (*Redemption, error)
	// LockCardsTx locks several cards at once, ahead of RedeemTx calls.
	LockCardsTx(tx *gorm.DB, numbers []string) error
	AdjustBalance(ctx context.Context, req dto.AdjustGiftCardRequest) (*dto.GiftCardResponse, error)
	DeactivateGiftCard(ctx context.Context, id uuid.UUID) error
	GetGiftCardHistory(ctx context.Context, id uuid.UUID) ([]dto.GiftCardHistoryEntry, error)
}

// Redemption is the computed result of debiting a card.
type Redemption struct {
	GiftCard        *model.GiftCard
	PreviousBalance decimal.Decimal
	AmountRedeemed  decimal.Decimal
	NewBalance      decimal.Decimal
}

type giftCardService struct {
	repo repository.GiftCardRepository
	now  func() time.Time
}

func NewGiftCardService(repo repository.GiftCardRepository) GiftCardService {
	return &giftCardService{repo: repo, now: time.Now}
}

func (s *giftCardService) CreateGiftCard(ctx context.Context, req dto.CreateGiftCardRequest) (*dto.GiftCardResponse, error) {
	if !req.InitialBalance.IsPositive() {
		return nil, apierror.Wrap(apierror.ErrInvalidAmount, "initial balance must be greater than zero")
	}
	balance := req.InitialBalance.Round(2)

	number, err := s.newCardNumber(ctx)
	if err != nil {
		return nil, err
	}

	card := &model.GiftCard{
		CardNumber:     number,
		InitialBalance: balance,
		CurrentBalance: balance,
		IsActive:       true,
		ExpiresAt:      req.ExpiresAt,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		CreatedBy:      req.CreatedBy,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, card); err != nil {
			return err
		}
		return s.repo.CreateTxnTx(tx, &model.GiftCardTransaction{
			GiftCardID:      card.ID,
			TransactionType: model.GiftCardPurchase,
			Amount:          balance,
			BalanceBefore:   decimal.Zero,
			BalanceAfter:    balance,
			UserID:          req.CreatedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("gift_card_id", card.ID.String()).Str("balance", balance.StringFixed(2)).Msg("gift card issued")
	return giftCardToResponse(card), nil
}

// newCardNumber draws random 16-digit numbers until one is unused.
// The unique index remains the final guard against a concurrent insert.
func (s *giftCardService) newCardNumber(ctx context.Context) (string, error) {
	for i := 0; i < giftCardNumberAttempts; i++ {
		number, err := randomDigits(giftCardNumberLength)
		if err != nil {
			return "", err
		}
		exists, err := s.repo.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("gift card: no free card number after %d attempts", giftCardNumberAttempts)
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("gift card: random source: %w", err)
		}
		buf[i] = byte('0' + d.Int64())
	}
	// Never start with 0 so the number survives numeric keypads and spreadsheets.
	if buf[0] == '0' {
		buf[0] = '1'
	}
	return string(buf), nil
}

func (s *giftCardService) GetGiftCard(ctx context.Context, id uuid.UUID) (*dto.GiftCardResponse, error) {
	card, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apierror.ErrGiftCardNotFound)
	}
	return giftCardToResponse(card), nil
}

func (s *giftCardService) CheckBalance(ctx context.Context, number string) (*dto.GiftCardBalanceResponse, error) {
	card, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, notFound(err, apierror.ErrGiftCardNotFound)
	}
	if !card.IsActive {
		return nil, apierror.ErrGiftCardInactive
	}
	return &dto.GiftCardBalanceResponse{
		Number:         card.CardNumber,
		CurrentBalance: card.CurrentBalance,
		IsActive:       card.IsActive,
		ExpiresAt:      card.ExpiresAt,
	}, nil
}

func (s *giftCardService) ValidateRedemption(ctx context.Context, number string, amount decimal.Decimal) (*dto.RedemptionResponse, error) {
	if number == "" {
		return nil, apierror.ErrGiftCardNumberRequired
	}
	card, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, notFound(err, apierror.ErrGiftCardNotFound)
	}
	r, err := evaluateRedemption(card, amount, s.now())
	if err != nil {
		return nil, err
	}
	return &dto.RedemptionResponse{
		PreviousBalance: r.PreviousBalance,
		AmountRedeemed:  r.AmountRedeemed,
		NewBalance:      r.NewBalance,
		GiftCard:        *giftCardToResponse(card),
	}, nil
}

func (s *giftCardService) LockCardsTx(tx *gorm.DB, numbers []string) error {
	return s.repo.LockByNumbersTx(tx, numbers)
}

func (s *giftCardService) RedeemTx(tx *gorm.DB, number string, amount decimal.Decimal, transactionID, userID *uuid.UUID) (*Redemption, error) {
	if number == "" {
		return nil, apierror.ErrGiftCardNumberRequired
	}
	card, err := s.repo.FindByNumberForUpdateTx(tx, number)
	if err != nil {
		return nil, notFound(err, apierror.ErrGiftCardNotFound)
	}
	r, err := evaluateRedemption(card, amount, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBalanceTx(tx, card.ID, r.NewBalance); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTxnTx(tx, &model.GiftCardTransaction{
		GiftCardID:      card.ID,
		TransactionType: model.GiftCardRedemption,
		Amount:          r.AmountRedeemed.Neg(),
		BalanceBefore:   r.PreviousBalance,
		BalanceAfter:    r.NewBalance,
		TransactionID:   transactionID,
		UserID:          userID,
	}); err != nil {
		return nil, err
	}
	card.CurrentBalance = r.NewBalance
	return r, nil
}

// evaluateRedemption applies the redemption rules to a loaded card.
func evaluateRedemption(card *model.GiftCard, amount decimal.Decimal, now time.Time) (*Redemption, error) {
	if !card.IsActive {
		return nil, apierror.ErrGiftCardInactive
	}
	if card.ExpiresAt != nil && card.ExpiresAt.Before(now) {
		return nil, apierror.ErrGiftCardExpired
	}
	if !amount.IsPositive() {
		return nil, apierror.ErrInvalidAmount
	}
	if amount.GreaterThan(card.CurrentBalance) {
		return nil, apierror.Wrap(apierror.ErrInsufficientBalance,
			"gift card balance %s is less than %s", card.CurrentBalance.StringFixed(2), amount.StringFixed(2))
	}
	return &Redemption{
		GiftCard:        card,
		PreviousBalance: card.CurrentBalance,
		AmountRedeemed:  amount,
		NewBalance:      card.CurrentBalance.Sub(amount),
	}, nil
}

func (s *giftCardService) AdjustBalance(ctx context.Context, req dto.AdjustGiftCardRequest) (*dto.GiftCardResponse, error) {
	if req.Amount.IsZero() {
		return nil, apierror.Wrap(apierror.ErrInvalidAmount, "adjustment amount must not be zero")
	}
	amount := req.Amount.Round(2)
	reason := req.Reason

	var card *model.GiftCard
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		card, err = s.repo.FindByIDForUpdateTx(tx, req.GiftCardID)
		if err != nil {
			return notFound(err, apierror.ErrGiftCardNotFound)
		}
		before := card.CurrentBalance
		after := before.Add(amount)
		if after.IsNegative() {
			return apierror.Wrap(apierror.ErrNegativeBalance,
				"adjustment of %s would leave balance at %s", amount.StringFixed(2), after.StringFixed(2))
		}
		if err := s.repo.UpdateBalanceTx(tx, card.ID, after); err != nil {
			return err
		}
		if err := s.repo.CreateTxnTx(tx, &model.GiftCardTransaction{
			GiftCardID:      card.ID,
			TransactionType: model.GiftCardAdjustment,
			Amount:          amount,
			BalanceBefore:   before,
			BalanceAfter:    after,
			Reason:          &reason,
			UserID:          req.UserID,
		}); err != nil {
			return err
		}
		card.CurrentBalance = after
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("gift_card_id", card.ID.String()).
		Str("amount", amount.StringFixed(2)).
		Str("balance", card.CurrentBalance.StringFixed(2)).
		Msg("gift card adjusted")
	return giftCardToResponse(card), nil
}

func (s *giftCardService) DeactivateGiftCard(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return err
	}
	if n == 0 {
		return apierror.ErrGiftCardNotFound
	}
	return nil
}

func (s *giftCardService) GetGiftCardHistory(ctx context.Context, id uuid.UUID) ([]dto.GiftCardHistoryEntry, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, apierror.ErrGiftCardNotFound)
	}
	txns, err := s.repo.ListTxns(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GiftCardHistoryEntry, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.GiftCardHistoryEntry{
			ID:              t.ID.String(),
			TransactionType: t.TransactionType,
			Amount:          t.Amount,
			BalanceBefore:   t.BalanceBefore,
			BalanceAfter:    t.BalanceAfter,
			TransactionID:   uuidString(t.TransactionID),
			Reason:          t.Reason,
			UserID:          uuidString(t.UserID),
			CreatedAt:       t.CreatedAt,
		})
	}
	return out, nil
}

func giftCardToResponse(g *model.GiftCard) *dto.GiftCardResponse {
	return &dto.GiftCardResponse{
		ID:             g.ID.String(),
		CardNumber:     g.CardNumber,
		InitialBalance: g.InitialBalance,
		CurrentBalance: g.CurrentBalance,
		IsActive:       g.IsActive,
		ExpiresAt:      g.ExpiresAt,
		RecipientName:  g.RecipientName,
		RecipientEmail: g.RecipientEmail,
		CreatedAt:      g.CreatedAt,
	}
}

// notFound maps gorm's missing-row error onto the entity's domain error.
func notFound(err error, base *apierror.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return base
	}
	return err
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
