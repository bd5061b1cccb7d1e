package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_orders_started_total",
			Help: "Checkouts initiated per flow",
		},
		[]string{"flow"},
	)

	ordersPaid = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_orders_paid_total",
			Help: "Gateway-confirmed payments per flow",
		},
		[]string{"flow"},
	)

	cardCharges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_card_charges_total",
			Help: "Card and credit redemptions",
		},
		[]string{"kind", "status"},
	)

	casConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_cas_conflicts_total",
			Help: "Conditional updates that affected zero rows",
		},
		[]string{"table"},
	)

	bookingRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commerce_booking_requests_total",
			Help: "Venue booking requests received",
		},
	)

	ticketsSold = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "commerce_tickets_sold",
			Help: "Counted tickets (paid + door) per event",
		},
		[]string{"event_id"},
	)
)

// TrackOrderStarted counts a checkout initiation for a flow.
func TrackOrderStarted(flow string) {
	ordersStarted.WithLabelValues(flow).Inc()
}

// TrackOrderPaid counts a confirmed payment for a flow.
func TrackOrderPaid(flow string) {
	ordersPaid.WithLabelValues(flow).Inc()
}

// TrackCardCharge counts a redemption attempt outcome.
func TrackCardCharge(kind, status string) {
	cardCharges.WithLabelValues(kind, status).Inc()
}

// TrackCASConflict counts a conditional update that lost a race.
func TrackCASConflict(table string) {
	casConflicts.WithLabelValues(table).Inc()
}

// TrackBookingRequest counts a new venue booking request.
func TrackBookingRequest() {
	bookingRequests.Inc()
}

// SetTicketsSold records the current counted total for an event.
func SetTicketsSold(eventID string, sold int) {
	ticketsSold.WithLabelValues(eventID).Set(float64(sold))
}
