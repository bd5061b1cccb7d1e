package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiftCard_ApplyCycle_MonthlyReset(t *testing.T) {
	card := GiftCard{
		Amount:           10000,
		RemainingBalance: 2500,
		Status:           CardStatusPaid,
		CyclePolicy:      CyclePolicyMonthlyReset,
		LastReset:        time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
	}

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	updated, changed := card.ApplyCycle(now)

	require.True(t, changed)
	assert.Equal(t, 10000, updated.RemainingBalance)
	assert.Equal(t, now, updated.LastReset)
}

func TestGiftCard_ApplyCycle_MonthlyAdd(t *testing.T) {
	card := GiftCard{
		Amount:           10000,
		RemainingBalance: 1200,
		MonthlyAmount:    3000,
		Status:           CardStatusPaid,
		CyclePolicy:      CyclePolicyMonthlyAdd,
		LastReset:        time.Date(2026, 4, 30, 23, 0, 0, 0, time.UTC),
	}

	updated, changed := card.ApplyCycle(time.Date(2026, 5, 1, 0, 30, 0, 0, time.UTC))

	require.True(t, changed)
	assert.Equal(t, 4200, updated.RemainingBalance)
}

func TestGiftCard_ApplyCycle_SameMonthNoop(t *testing.T) {
	card := GiftCard{
		Amount:           10000,
		RemainingBalance: 2500,
		CyclePolicy:      CyclePolicyMonthlyReset,
		LastReset:        time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}

	updated, changed := card.ApplyCycle(time.Date(2026, 5, 28, 0, 0, 0, 0, time.UTC))

	assert.False(t, changed)
	assert.Equal(t, 2500, updated.RemainingBalance)
}

func TestGiftCard_ApplyCycle_NoPolicy(t *testing.T) {
	card := GiftCard{RemainingBalance: 500, LastReset: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	_, changed := card.ApplyCycle(time.Now())
	assert.False(t, changed)
}

func TestGiftCard_ApplyCycle_RevivesUsedCard(t *testing.T) {
	card := GiftCard{
		Amount:           5000,
		RemainingBalance: 0,
		Status:           CardStatusUsed,
		CyclePolicy:      CyclePolicyMonthlyReset,
		LastReset:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	updated, changed := card.ApplyCycle(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	require.True(t, changed)
	assert.Equal(t, CardStatusPaid, updated.Status)
	assert.Equal(t, 5000, updated.RemainingBalance)
}

func TestGiftCard_ExpiredAt(t *testing.T) {
	card := GiftCard{ExpiresAt: time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)}

	assert.False(t, card.ExpiredAt(time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)))
	assert.True(t, card.ExpiredAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))

	// Cards without a date never time out.
	assert.False(t, GiftCard{}.ExpiredAt(time.Now()))
}

func TestAllocateMeals_GreedyOldestFirst(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	cards := []MealCard{
		{ID: "old", MealsRemaining: 2, Status: MealCardStatusPaid, ValidUntil: until},
		{ID: "mid", MealsRemaining: 3, Status: MealCardStatusPaid, ValidUntil: until},
		{ID: "new", MealsRemaining: 10, Status: MealCardStatusPaid, ValidUntil: until},
	}

	plan, err := AllocateMeals(cards, 4, now)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, MealAllocation{CardID: "old", Use: 2}, plan[0])
	assert.Equal(t, MealAllocation{CardID: "mid", Use: 2}, plan[1])
}

func TestAllocateMeals_SkipsUnusableCards(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	cards := []MealCard{
		{ID: "expired", MealsRemaining: 5, Status: MealCardStatusPaid, ValidUntil: now.AddDate(0, 0, -1)},
		{ID: "unpaid", MealsRemaining: 5, Status: MealCardStatusPending},
		{ID: "empty", MealsRemaining: 0, Status: MealCardStatusPaid},
		{ID: "ok", MealsRemaining: 3, Status: MealCardStatusPaid},
	}

	plan, err := AllocateMeals(cards, 3, now)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "ok", plan[0].CardID)
}

func TestAllocateMeals_Insufficient(t *testing.T) {
	cards := []MealCard{{ID: "a", MealsRemaining: 2, Status: MealCardStatusPaid}}

	_, err := AllocateMeals(cards, 3, time.Now())
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestAllocateMeals_InvalidQuantity(t *testing.T) {
	_, err := AllocateMeals(nil, 0, time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = AllocateMeals(nil, -2, time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
