package handlers

import (
	"whitelotus/security"

	"github.com/pocketbase/pocketbase/core"
)

// Register mounts every route under /api/lotus. Checkout and token-redeem
// endpoints sit behind the rate limiter; the gateway return legs and the
// public catalog do not.
func Register(
	se *core.ServeEvent,
	limiter *security.RateLimiter,
	tickets *TicketHandler,
	cards *CardHandler,
	meals *MealHandler,
	credits *CreditHandler,
	bookings *BookingHandler,
	payments *PaymentHandler,
) {
	g := se.Router.Group("/api/lotus")

	// Events and tickets
	g.GET("/events", tickets.ListEvents)
	g.GET("/events/{eventId}", tickets.GetEvent)
	g.GET("/events/{eventId}/tickets", tickets.EventTickets)
	g.POST("/tickets/checkout", tickets.Checkout).BindFunc(limiter.Limit("checkout"))
	g.POST("/tickets/door-sale", tickets.DoorSale)

	// Gift and custom cards
	g.POST("/cards/checkout", cards.Checkout).BindFunc(limiter.Limit("checkout"))
	g.GET("/cards/{token}", cards.Lookup)
	g.POST("/cards/{token}/charge", cards.Charge).BindFunc(limiter.Limit("redeem"))
	g.GET("/cards/by-id/{cardId}/redemptions", cards.Redemptions)

	// Meal cards
	g.POST("/mealcards/checkout", meals.Checkout).BindFunc(limiter.Limit("checkout"))
	g.POST("/mealcards/{token}/redeem", meals.Redeem).BindFunc(limiter.Limit("redeem"))
	g.POST("/mealcards/redeem-mine", meals.RedeemMine).BindFunc(limiter.Limit("redeem"))
	g.GET("/mealcards/mine", meals.MyCards)
	g.GET("/mealcards/by-id/{cardId}/usage", meals.Usage)

	// Work credit
	g.GET("/credits/me", credits.MyBalance)
	g.GET("/credits/me/history", credits.MyHistory)
	g.POST("/credits/use", credits.Use)
	g.POST("/credits/add", credits.Add)
	g.POST("/credits/delete", credits.Delete)
	g.GET("/credits/{email}", credits.BalanceFor)

	// Venue bookings
	g.POST("/bookings", bookings.Create).BindFunc(limiter.Limit("booking"))
	g.GET("/bookings", bookings.List)
	g.GET("/bookings/{bookingId}", bookings.Get)
	g.PATCH("/bookings/{bookingId}/status", bookings.SetStatus)
	g.POST("/bookings/{bookingId}/comments", bookings.AddComment)
	g.PATCH("/booking-comments/{commentId}", bookings.ModerateComment)

	// Gateway return legs. The gateway itself posts to these, so they are
	// public and unthrottled.
	g.POST("/payment/{flow}/callback", payments.Callback)
	g.GET("/payment/{flow}/return", payments.Return)
	g.POST("/payment/{flow}/return", payments.Return)
	g.GET("/payment/{flow}/cancel", payments.Cancel)
	g.POST("/payment/{flow}/cancel", payments.Cancel)
	g.GET("/payment/{flow}/error", payments.Error)
	g.POST("/payment/{flow}/error", payments.Error)
}
