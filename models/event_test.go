package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketsSold_CountsOnlyPaidAndDoor(t *testing.T) {
	tickets := []Ticket{
		{Quantity: 2, Status: TicketStatusPaid},
		{Quantity: 3, Status: TicketStatusDoor},
		{Quantity: 4, Status: TicketStatusPending},
		{Quantity: 5, Status: TicketStatusCancelled},
		{Quantity: 6, Status: TicketStatusError},
	}

	assert.Equal(t, 5, TicketsSold(tickets))
}

func TestTicketsSold_Empty(t *testing.T) {
	assert.Equal(t, 0, TicketsSold(nil))
	assert.Equal(t, 0, TicketsSold([]Ticket{}))
}

func TestEvent_IsSoldOut(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		sold     int
		expected bool
	}{
		{"manual flag wins", Event{SoldOutFlag: true, Capacity: 100}, 0, true},
		{"under capacity", Event{Capacity: 10}, 9, false},
		{"at capacity", Event{Capacity: 10}, 10, true},
		{"over capacity", Event{Capacity: 10}, 11, true},
		{"unlimited never sells out", Event{Capacity: 0}, 100000, false},
		{"negative capacity treated as unlimited", Event{Capacity: -1}, 100000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.IsSoldOut(tt.sold))
		})
	}
}

func TestEvent_RemainingCapacity(t *testing.T) {
	event := Event{Capacity: 10}

	remaining, ok := event.RemainingCapacity(4)
	require.True(t, ok)
	assert.Equal(t, 6, remaining)

	// Never negative, even when oversold.
	remaining, ok = event.RemainingCapacity(15)
	require.True(t, ok)
	assert.Equal(t, 0, remaining)

	_, ok = Event{Capacity: 0}.RemainingCapacity(3)
	assert.False(t, ok)
}

func TestEvent_CanPurchase(t *testing.T) {
	event := Event{Capacity: 10}

	decision := event.CanPurchase(7, 3)
	assert.True(t, decision.OK)
	assert.Empty(t, decision.Reason)

	decision = event.CanPurchase(7, 4)
	assert.False(t, decision.OK)
	assert.Equal(t, "only 3 left", decision.Reason)

	decision = event.CanPurchase(10, 1)
	assert.False(t, decision.OK)
	assert.Equal(t, "sold out by count", decision.Reason)

	decision = Event{SoldOutFlag: true, Capacity: 10}.CanPurchase(0, 1)
	assert.False(t, decision.OK)
	assert.Equal(t, "marked sold out", decision.Reason)
}

func TestEvent_CanPurchase_Unlimited(t *testing.T) {
	event := Event{Capacity: 0}

	decision := event.CanPurchase(5000, 200)
	assert.True(t, decision.OK)

	// The manual flag still applies to unlimited events.
	event.SoldOutFlag = true
	decision = event.CanPurchase(0, 1)
	assert.False(t, decision.OK)
	assert.Equal(t, "marked sold out", decision.Reason)
}
