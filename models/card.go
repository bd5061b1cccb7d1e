package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	CardStatusPending = "pending"
	CardStatusPaid    = "paid"
	CardStatusSent    = "sent"
	CardStatusUsed    = "used"
	CardStatusExpired = "expired"

	CardKindGift   = "gift"
	CardKindCustom = "custom"

	CyclePolicyNone         = ""
	CyclePolicyMonthlyReset = "monthly_reset"
	CyclePolicyMonthlyAdd   = "monthly_add"
)

// GiftCard covers both gift cards and custom cards; the two differ only in
// how they are issued, so Kind keeps them apart in one collection.
type GiftCard struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind"`
	OrderID          string    `json:"order_id"`
	BuyerName        string    `json:"buyer_name"`
	BuyerEmail       string    `json:"buyer_email"`
	RecipientEmail   string    `json:"recipient_email"`
	Amount           int       `json:"amount"`
	RemainingBalance int       `json:"remaining_balance"`
	Status           string    `json:"status"`
	AccessToken      string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CyclePolicy      string    `json:"cycle_policy"`
	MonthlyAmount    int       `json:"monthly_amount"`
	LastReset        time.Time `json:"last_reset"`
}

func GiftCardFromRecord(r *core.Record) GiftCard {
	return GiftCard{
		ID:               r.Id,
		Kind:             r.GetString("kind"),
		OrderID:          r.GetString("order_id"),
		BuyerName:        r.GetString("buyer_name"),
		BuyerEmail:       r.GetString("buyer_email"),
		RecipientEmail:   r.GetString("recipient_email"),
		Amount:           r.GetInt("amount"),
		RemainingBalance: r.GetInt("remaining_balance"),
		Status:           r.GetString("status"),
		AccessToken:      r.GetString("access_token"),
		ExpiresAt:        r.GetDateTime("expires_at").Time(),
		CyclePolicy:      r.GetString("cycle_policy"),
		MonthlyAmount:    r.GetInt("monthly_amount"),
		LastReset:        r.GetDateTime("last_reset").Time(),
	}
}

// Active reports whether the card can be charged. Pending cards have not
// been paid for yet; sent counts as active for recipients.
func (c GiftCard) Active() bool {
	return c.Status == CardStatusPaid || c.Status == CardStatusSent
}

// ExpiredAt reports whether the card's fixed expiration date has passed.
// Cards without an expiration date never expire by time.
func (c GiftCard) ExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ApplyCycle applies the card's monthly policy once per calendar month:
// monthly_reset restores the original amount, monthly_add tops the balance
// up by the configured increment. Returns the adjusted card and whether
// anything changed. Same-month calls change nothing.
func (c GiftCard) ApplyCycle(now time.Time) (GiftCard, bool) {
	if c.CyclePolicy == CyclePolicyNone {
		return c, false
	}
	if sameMonth(c.LastReset, now) {
		return c, false
	}
	switch c.CyclePolicy {
	case CyclePolicyMonthlyReset:
		c.RemainingBalance = c.Amount
	case CyclePolicyMonthlyAdd:
		c.RemainingBalance += c.MonthlyAmount
	default:
		return c, false
	}
	if c.Status == CardStatusUsed && c.RemainingBalance > 0 {
		c.Status = CardStatusPaid
	}
	c.LastReset = now
	return c, true
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

const (
	MealCardStatusPending = "pending"
	MealCardStatusPaid    = "paid"
)

type MealCard struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	BuyerName      string    `json:"buyer_name"`
	BuyerEmail     string    `json:"buyer_email"`
	MealsTotal     int       `json:"meals_total"`
	MealsRemaining int       `json:"meals_remaining"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until"`
	Status         string    `json:"status"`
	AccessToken    string    `json:"-"`
	Created        time.Time `json:"created"`
}

func MealCardFromRecord(r *core.Record) MealCard {
	return MealCard{
		ID:             r.Id,
		OrderID:        r.GetString("order_id"),
		BuyerName:      r.GetString("buyer_name"),
		BuyerEmail:     r.GetString("buyer_email"),
		MealsTotal:     r.GetInt("meals_total"),
		MealsRemaining: r.GetInt("meals_remaining"),
		ValidFrom:      r.GetDateTime("valid_from").Time(),
		ValidUntil:     r.GetDateTime("valid_until").Time(),
		Status:         r.GetString("status"),
		AccessToken:    r.GetString("access_token"),
		Created:        r.GetDateTime("created").Time(),
	}
}

// ExpiredAt reports whether the card's validity window has closed.
func (c MealCard) ExpiredAt(now time.Time) bool {
	return !c.ValidUntil.IsZero() && now.After(c.ValidUntil)
}

// MealAllocation is one card's share of a multi-card redemption.
type MealAllocation struct {
	CardID string
	Use    int
}

// AllocateMeals spreads a requested quantity across cards greedily in the
// given order (callers pass cards oldest first). Cards that are unpaid or
// expired are skipped. Fails with ErrInsufficientBalance when the usable
// cards cannot cover the request.
func AllocateMeals(cards []MealCard, qty int, now time.Time) ([]MealAllocation, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	var plan []MealAllocation
	left := qty
	for _, c := range cards {
		if left == 0 {
			break
		}
		if c.Status != MealCardStatusPaid || c.ExpiredAt(now) || c.MealsRemaining <= 0 {
			continue
		}
		use := c.MealsRemaining
		if use > left {
			use = left
		}
		plan = append(plan, MealAllocation{CardID: c.ID, Use: use})
		left -= use
	}
	if left > 0 {
		return nil, ErrInsufficientBalance
	}
	return plan, nil
}
