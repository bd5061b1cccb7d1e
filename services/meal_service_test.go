package services

import (
	"context"
	"testing"
	"time"

	"whitelotus/internal/gateway"
	"whitelotus/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The quantity bound and the PIN gate run before any store access, so a
// service with no app behind it exercises them directly.
func TestRedeemByToken_QuantityBounds(t *testing.T) {
	pinHash, err := gateway.HashStaffPIN("4242")
	require.NoError(t, err)
	svc := NewMealService(nil, nil, nil, 2990, 5, time.Hour, pinHash)

	for _, qty := range []int{0, -1, 6, 100} {
		_, err := svc.RedeemByToken(context.Background(), "token", qty, "4242", "")
		assert.ErrorIs(t, err, models.ErrInvalidQuantity, "qty %d", qty)
	}
}

func TestRedeemByToken_RejectsWrongStaffPIN(t *testing.T) {
	pinHash, err := gateway.HashStaffPIN("4242")
	require.NoError(t, err)
	svc := NewMealService(nil, nil, nil, 2990, 5, time.Hour, pinHash)

	_, err = svc.RedeemByToken(context.Background(), "token", 1, "9999", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestRedeemable(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	good := models.MealCard{
		Status:         models.MealCardStatusPaid,
		MealsRemaining: 3,
		ValidUntil:     now.Add(24 * time.Hour),
	}

	tests := []struct {
		name string
		card models.MealCard
		qty  int
		want error
	}{
		{"ok", good, 3, nil},
		{"unpaid card", models.MealCard{Status: models.MealCardStatusPending, MealsRemaining: 3, ValidUntil: now.Add(time.Hour)}, 1, models.ErrCardNotActive},
		{"expired card", models.MealCard{Status: models.MealCardStatusPaid, MealsRemaining: 3, ValidUntil: now.Add(-time.Hour)}, 1, models.ErrExpired},
		{"not enough meals", good, 4, models.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.card
			err := redeemable(tt.card, tt.qty, now)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, before, tt.card)
		})
	}
}

// An unpaid card outranks the expiry check, and expiry outranks balance.
func TestRedeemable_RejectionOrder(t *testing.T) {
	now := time.Now()
	card := models.MealCard{
		Status:         models.MealCardStatusPending,
		MealsRemaining: 0,
		ValidUntil:     now.Add(-time.Hour),
	}
	assert.ErrorIs(t, redeemable(card, 1, now), models.ErrCardNotActive)

	card.Status = models.MealCardStatusPaid
	assert.ErrorIs(t, redeemable(card, 1, now), models.ErrExpired)

	card.ValidUntil = now.Add(time.Hour)
	assert.ErrorIs(t, redeemable(card, 1, now), models.ErrInsufficientBalance)
}
