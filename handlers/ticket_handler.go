package handlers

import (
	"net/http"

	"whitelotus/models"
	"whitelotus/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TicketHandler struct {
	app      core.App
	tickets  *services.TicketService
	capacity *services.CapacityService
}

func NewTicketHandler(app core.App, tickets *services.TicketService, capacity *services.CapacityService) *TicketHandler {
	return &TicketHandler{app: app, tickets: tickets, capacity: capacity}
}

// ListEvents returns upcoming events with cached availability, for the
// public listing pages.
func (h *TicketHandler) ListEvents(e *core.RequestEvent) error {
	records, err := h.app.FindRecordsByFilter(
		"events",
		"starts_at >= @now",
		"+starts_at",
		0,
		0,
	)
	if err != nil {
		return apiError(err)
	}

	ctx := e.Request.Context()
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		event := models.EventFromRecord(r)
		sold, err := h.capacity.CachedTicketsSold(ctx, event.ID)
		if err != nil {
			sold = 0
		}
		out = append(out, map[string]any{
			"event":        event,
			"availability": h.capacity.Availability(event, sold),
		})
	}
	return e.JSON(http.StatusOK, out)
}

// GetEvent returns one event with a fresh availability count.
func (h *TicketHandler) GetEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}
	event := models.EventFromRecord(record)

	sold, err := h.capacity.TicketsSold(e.Request.Context(), event.ID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"event":        event,
		"availability": h.capacity.Availability(event, sold),
	})
}

// Checkout starts a ticket purchase and hands back the signed gateway form.
func (h *TicketHandler) Checkout(e *core.RequestEvent) error {
	var req services.TicketCheckoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	checkout, err := h.tickets.StartCheckout(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, checkout)
}

// DoorSale records an at-the-door sale. Admin only.
func (h *TicketHandler) DoorSale(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	var req struct {
		EventID   string `json:"event_id"`
		BuyerName string `json:"buyer_name"`
		Quantity  int    `json:"quantity"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if err := h.tickets.DoorSale(e.Request.Context(), req.EventID, req.BuyerName, req.Quantity); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"status": "recorded"})
}

// EventTickets lists an event's tickets for its host or an admin.
func (h *TicketHandler) EventTickets(e *core.RequestEvent) error {
	p, err := RequireRole(e, RoleHost)
	if err != nil {
		return err
	}
	eventID := e.Request.PathValue("eventId")
	record, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}
	event := models.EventFromRecord(record)
	if p.Role != RoleAdmin && event.HostEmail != p.Email {
		return apis.NewForbiddenError("Access denied", nil)
	}

	records, err := h.app.FindRecordsByFilter(
		"tickets",
		"event = {:event}",
		"-created",
		0,
		0,
		map[string]any{"event": eventID},
	)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, models.TicketsFromRecords(records))
}
