package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingReference(t *testing.T) {
	date := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "jon-05-09", BookingReference("Jon@example.com", date))
	assert.Equal(t, "anna.k-05-09", BookingReference("anna.k@mama.is", date))

	// Malformed addresses fall back to the raw value.
	assert.Equal(t, "no-at-sign-05-09", BookingReference("no-at-sign", date))
}

func TestBookingReference_SharedLocalPartCollides(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	a := BookingReference("team@one.is", date)
	b := BookingReference("team@two.is", date)

	// Same local part and day produce the same base reference; the service
	// layer is responsible for suffixing the second one.
	assert.Equal(t, a, b)
}
