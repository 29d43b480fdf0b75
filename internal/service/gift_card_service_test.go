package service

import (
	"context"
	"testing"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"
	"github.com/agastya71/mysl-pos-project-sub006/internal/dto"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"
	"github.com/agastya71/mysl-pos-project-sub006/internal/repository"
	"github.com/agastya71/mysl-pos-project-sub006/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGiftCardService(t *testing.T) GiftCardService {
	t.Helper()
	return NewGiftCardService(repository.NewGiftCardRepository(testutil.NewTestDB(t)))
}

func TestCreateGiftCard(t *testing.T) {
	svc := newGiftCardService(t)
	ctx := context.Background()
	name := "Grace"

	card, err := svc.CreateGiftCard(ctx, dto.CreateGiftCardRequest{InitialBalance: dec("50"), RecipientName: &name})
	require.NoError(t, err)

	assert.Len(t, card.CardNumber, giftCardNumberLength)
	assert.NotEqual(t, byte('0'), card.CardNumber[0])
	assert.Equal(t, "50.00", card.InitialBalance.StringFixed(2))
	assert.Equal(t, "50.00", card.CurrentBalance.StringFixed(2))
	assert.True(t, card.IsActive)

	history, err := svc.GetGiftCardHistory(ctx, uuid.MustParse(card.ID))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.GiftCardPurchase, history[0].TransactionType)
	assert.True(t, history[0].BalanceBefore.IsZero())
	assert.Equal(t, "50.00", history[0].BalanceAfter.StringFixed(2))

	_, err = svc.CreateGiftCard(ctx, dto.CreateGiftCardRequest{InitialBalance: dec("0")})
	assert.ErrorIs(t, err, apierror.ErrInvalidAmount)
}

func TestValidateRedemption_DoesNotPersist(t *testing.T) {
	svc := newGiftCardService(t)
	ctx := context.Background()
	card, err := svc.CreateGiftCard(ctx, dto.CreateGiftCardRequest{InitialBalance: dec("40.00")})
	require.NoError(t, err)

	first, err := svc.ValidateRedemption(ctx, card.CardNumber, dec("15.00"))
	require.NoError(t, err)
	second, err := svc.ValidateRedemption(ctx, card.CardNumber, dec("15.00"))
	require.NoError(t, err)

	assert.Equal(t, "40.00", first.PreviousBalance.StringFixed(2))
	assert.Equal(t, "25.00", first.NewBalance.StringFixed(2))
	assert.True(t, first.NewBalance.Equal(second.NewBalance))

	bal, err := svc.CheckBalance(ctx, card.CardNumber)
	require.NoError(t, err)
	assert.Equal(t, "40.00", bal.CurrentBalance.StringFixed(2))
}

func TestValidateRedemption_Rejections(t *testing.T) {
	svc := newGiftCardService(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	active, err := svc.CreateGiftCard(ctx, dto.CreateGiftCardRequest{InitialBalance: dec("10.00")})
	require.NoError(t, err)
	expired, err := svc.CreateGiftCard(ctx, dto.CreateGiftCardRequest{InitialBalance: dec("10.00"), ExpiresAt: &past})
	require.NoError(t, err)
	inactive, err := svc.CreateGiftCard(ctx, dto.CreateGiftCardRequest{InitialBalance: dec("10.00")})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateGiftCard(ctx, uuid.MustParse(inactive.ID)))

	tests := []struct {
		name   string
		number string
		amount string
		want   *apierror.Error
	}{
		{"missing number", "", "5.00", apierror.ErrGiftCardNumberRequired},
		{"unknown card", "9999999999999999", "5.00", apierror.ErrGiftCardNotFound},
		{"zero amount", active.CardNumber, "0", apierror.ErrInvalidAmount},
		{"over balance", active.CardNumber, "10.01", apierror.ErrInsufficientBalance},
		{"expired", expired.CardNumber, "5.00", apierror.ErrGiftCardExpired},
		{"inactive", inactive.CardNumber, "5.00", apierror.ErrGiftCardInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateRedemption(ctx, tt.number, dec(tt.amount))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = svc.ValidateRedemption(ctx, active.CardNumber, dec("10.00"))
	assert.NoError(t, err, "redeeming the full balance is allowed")

	_, err = svc.CheckBalance(ctx, inactive.CardNumber)
	assert.ErrorIs(t, err, apierror.ErrGiftCardInactive)
}

func TestAdjustBalance(t *testing.T) {
	svc := newGiftCardService(t)
	ctx := context.Background()
	card, err := svc.CreateGiftCard(ctx, dto.CreateGiftCardRequest{InitialBalance: dec("20.00")})
	require.NoError(t, err)
	id := uuid.MustParse(card.ID)

	credited, err := svc.AdjustBalance(ctx, dto.AdjustGiftCardRequest{GiftCardID: id, Amount: dec("15.00"), Reason: "goodwill"})
	require.NoError(t, err)
	assert.Equal(t, "35.00", credited.CurrentBalance.StringFixed(2))
	assert.Equal(t, "20.00", credited.InitialBalance.StringFixed(2))

	_, err = svc.AdjustBalance(ctx, dto.AdjustGiftCardRequest{GiftCardID: id, Amount: dec("-35.01"), Reason: "correction"})
	assert.ErrorIs(t, err, apierror.ErrNegativeBalance)

	_, err = svc.AdjustBalance(ctx, dto.AdjustGiftCardRequest{GiftCardID: id, Amount: dec("0"), Reason: "noop"})
	assert.ErrorIs(t, err, apierror.ErrInvalidAmount)

	_, err = svc.AdjustBalance(ctx, dto.AdjustGiftCardRequest{GiftCardID: uuid.New(), Amount: dec("1"), Reason: "ghost"})
	assert.ErrorIs(t, err, apierror.ErrGiftCardNotFound)

	drained, err := svc.AdjustBalance(ctx, dto.AdjustGiftCardRequest{GiftCardID: id, Amount: dec("-35.00"), Reason: "refund to donor"})
	require.NoError(t, err)
	assert.True(t, drained.CurrentBalance.IsZero())

	history, err := svc.GetGiftCardHistory(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 3)
	var adjustments int
	for _, h := range history {
		if h.TransactionType == model.GiftCardAdjustment {
			adjustments++
			require.NotNil(t, h.Reason)
			assert.True(t, h.BalanceAfter.Equal(h.BalanceBefore.Add(h.Amount)))
		}
	}
	assert.Equal(t, 2, adjustments)
}

func TestDeactivateGiftCard_NotFound(t *testing.T) {
	svc := newGiftCardService(t)
	assert.ErrorIs(t, svc.DeactivateGiftCard(context.Background(), uuid.New()), apierror.ErrGiftCardNotFound)

	_, err := svc.GetGiftCardHistory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apierror.ErrGiftCardNotFound)
	_, err = svc.GetGiftCard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apierror.ErrGiftCardNotFound)
}

func TestEvaluateRedemption_ExpiryUsesClock(t *testing.T) {
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	card := &model.GiftCard{CurrentBalance: dec("10.00"), IsActive: true, ExpiresAt: &expires}

	_, err := evaluateRedemption(card, dec("1.00"), expires.Add(-time.Minute))
	assert.NoError(t, err)
	_, err = evaluateRedemption(card, dec("1.00"), expires.Add(time.Minute))
	assert.ErrorIs(t, err, apierror.ErrGiftCardExpired)
}

func TestEvaluateRedemption_CardStateBeforeAmount(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	tests := []struct {
		name   string
		card   model.GiftCard
		amount string
		want   error
	}{
		{"inactive with zero amount", model.GiftCard{CurrentBalance: dec("10.00")}, "0", apierror.ErrGiftCardInactive},
		{"expired with negative amount", model.GiftCard{CurrentBalance: dec("10.00"), IsActive: true, ExpiresAt: &past}, "-1.00", apierror.ErrGiftCardExpired},
		{"inactive and expired", model.GiftCard{CurrentBalance: dec("10.00"), ExpiresAt: &past}, "1.00", apierror.ErrGiftCardInactive},
		{"usable card with zero amount", model.GiftCard{CurrentBalance: dec("10.00"), IsActive: true}, "0", apierror.ErrInvalidAmount},
		{"expired and over balance", model.GiftCard{CurrentBalance: dec("1.00"), IsActive: true, ExpiresAt: &past}, "5.00", apierror.ErrGiftCardExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := tt.card
			_, err := evaluateRedemption(&card, dec(tt.amount), now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
