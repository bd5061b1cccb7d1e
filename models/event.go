package models

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	EventCategoryEvent = "event"
	EventCategoryTour  = "tour"
)

type Event struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int       `json:"price"`
	Capacity        int       `json:"capacity"` // <= 0 means unlimited
	SoldOutFlag     bool      `json:"sold_out"`
	HostEmail       string    `json:"host_email"`
}

func EventFromRecord(r *core.Record) Event {
	return Event{
		ID:              r.Id,
		Slug:            r.GetString("slug"),
		Name:            r.GetString("name"),
		Category:        r.GetString("category"),
		Description:     r.GetString("description"),
		StartsAt:        r.GetDateTime("starts_at").Time(),
		DurationMinutes: r.GetInt("duration_minutes"),
		Price:           r.GetInt("price"),
		Capacity:        r.GetInt("capacity"),
		SoldOutFlag:     r.GetBool("sold_out"),
		HostEmail:       r.GetString("host_email"),
	}
}

// PurchaseDecision is the outcome of a capacity check for a requested
// ticket quantity.
type PurchaseDecision struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// TicketsSold sums quantities across tickets that count toward capacity.
// Only paid and door tickets count; pending, cancelled and error do not.
func TicketsSold(tickets []Ticket) int {
	sold := 0
	for _, t := range tickets {
		if t.Status == TicketStatusPaid || t.Status == TicketStatusDoor {
			sold += t.Quantity
		}
	}
	return sold
}

// Unlimited reports whether the event has no numeric capacity limit.
// A capacity that was never set comes back as 0, so 0 counts as unlimited.
func (e Event) Unlimited() bool {
	return e.Capacity <= 0
}

// IsSoldOut is true when the event is manually flagged sold out, or when a
// positive capacity has been reached by counted tickets.
func (e Event) IsSoldOut(sold int) bool {
	if e.SoldOutFlag {
		return true
	}
	if e.Unlimited() {
		return false
	}
	return sold >= e.Capacity
}

// RemainingCapacity returns the tickets still available. ok is false for
// unlimited events, where remaining has no meaning.
func (e Event) RemainingCapacity(sold int) (remaining int, ok bool) {
	if e.Unlimited() {
		return 0, false
	}
	remaining = e.Capacity - sold
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// CanPurchase decides whether qty tickets can be bought given the counted
// sold total. The reason is user-facing.
func (e Event) CanPurchase(sold, qty int) PurchaseDecision {
	if e.SoldOutFlag {
		return PurchaseDecision{OK: false, Reason: "marked sold out"}
	}
	remaining, limited := e.RemainingCapacity(sold)
	if !limited {
		return PurchaseDecision{OK: true}
	}
	if remaining == 0 {
		return PurchaseDecision{OK: false, Reason: "sold out by count"}
	}
	if qty > remaining {
		return PurchaseDecision{OK: false, Reason: fmt.Sprintf("only %d left", remaining)}
	}
	return PurchaseDecision{OK: true}
}
