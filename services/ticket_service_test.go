package services

import (
	"testing"

	"whitelotus/internal/gateway"
	"whitelotus/models"

	"github.com/stretchr/testify/assert"
)

// Checkout and confirmation both derive the gateway flow from the event
// category, so a tour order is counted and routed as a tour end to end.
func TestCheckoutFlow(t *testing.T) {
	assert.Equal(t, gateway.FlowTour, checkoutFlow(models.EventCategoryTour))
	assert.Equal(t, gateway.FlowTicket, checkoutFlow(models.EventCategoryEvent))
	assert.Equal(t, gateway.FlowTicket, checkoutFlow(""))
}
