package services

import (
	"context"
	"fmt"
	"log/slog"

	"whitelotus/internal/gateway"
	"whitelotus/internal/storage"
	"whitelotus/models"
	"whitelotus/monitoring"
	"whitelotus/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

type TicketService struct {
	app      core.App
	gw       *gateway.Gateway
	capacity *CapacityService
	notifier *Notifier
	maxQty   int
}

func NewTicketService(app core.App, gw *gateway.Gateway, capacity *CapacityService, notifier *Notifier, maxQty int) *TicketService {
	return &TicketService{
		app:      app,
		gw:       gw,
		capacity: capacity,
		notifier: notifier,
		maxQty:   maxQty,
	}
}

type TicketCheckoutRequest struct {
	EventID    string `json:"event_id"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	Quantity   int    `json:"quantity"`
}

// StartCheckout validates capacity against fresh ticket rows, records a
// pending ticket and returns the signed gateway form for it.
func (s *TicketService) StartCheckout(ctx context.Context, req TicketCheckoutRequest) (*gateway.Checkout, error) {
	if req.Quantity < 1 || req.Quantity > s.maxQty {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", models.ErrInvalidQuantity, s.maxQty)
	}
	if req.BuyerName == "" || req.BuyerEmail == "" {
		return nil, fmt.Errorf("%w: buyer name and email are required", models.ErrValidation)
	}

	eventRecord, err := s.app.FindRecordById("events", req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s", models.ErrNotFound, req.EventID)
	}
	event := models.EventFromRecord(eventRecord)

	sold, err := s.capacity.TicketsSold(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if decision := event.CanPurchase(sold, req.Quantity); !decision.OK {
		return nil, fmt.Errorf("%w: %s", models.ErrSoldOut, decision.Reason)
	}

	orderID, err := utils.NewOrderID()
	if err != nil {
		return nil, err
	}

	collection, err := s.app.FindCollectionByNameOrId("tickets")
	if err != nil {
		return nil, err
	}
	ticket := core.NewRecord(collection)
	ticket.Set("event", event.ID)
	ticket.Set("order_id", orderID)
	ticket.Set("buyer_name", req.BuyerName)
	ticket.Set("buyer_email", req.BuyerEmail)
	ticket.Set("quantity", req.Quantity)
	ticket.Set("unit_price", event.Price)
	ticket.Set("total_price", event.Price*req.Quantity)
	ticket.Set("status", models.TicketStatusPending)
	if err := s.app.Save(ticket); err != nil {
		return nil, fmt.Errorf("ticket checkout: save pending ticket: %w", err)
	}

	flow := checkoutFlow(event.Category)
	checkout := s.gw.SignedCheckout(gateway.CheckoutRequest{
		Flow:            flow,
		OrderID:         orderID,
		Amount:          event.Price * req.Quantity,
		BuyerName:       req.BuyerName,
		BuyerEmail:      req.BuyerEmail,
		ItemDescription: fmt.Sprintf("%s x%d", event.Name, req.Quantity),
		ItemCount:       req.Quantity,
	})

	monitoring.TrackOrderStarted(string(flow))
	return &checkout, nil
}

// checkoutFlow maps an event category to its gateway flow. Tours run
// through the same ticket pipeline but sign with their own flow, which
// also routes the return legs.
func checkoutFlow(category string) gateway.Flow {
	if category == models.EventCategoryTour {
		return gateway.FlowTour
	}
	return gateway.FlowTicket
}

// ConfirmPayment handles the gateway's signed confirmation for a ticket
// order. The pending-to-paid move is a conditional update, so a replayed
// callback finds the row already paid and no-ops instead of double-marking.
func (s *TicketService) ConfirmPayment(ctx context.Context, orderID, amount, currency, receivedHash string) error {
	if !s.gw.VerifyCallback(orderID, amount, currency, receivedHash) {
		return fmt.Errorf("%w: payment signature mismatch", models.ErrForbidden)
	}

	record, err := s.app.FindFirstRecordByFilter("tickets", "order_id = {:order}", dbx.Params{"order": orderID})
	if err != nil {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, orderID)
	}
	ticket := models.TicketFromRecord(record)

	if gateway.FormatAmount(ticket.TotalPrice) != amount {
		return fmt.Errorf("%w: amount mismatch for order %s", models.ErrForbidden, orderID)
	}

	err = storage.UpdateIf(s.app.DB(), "tickets", ticket.ID, "status", models.TicketStatusPending, models.TicketStatusPaid)
	if err == models.ErrConcurrentUpdate {
		monitoring.TrackCASConflict("tickets")
		fresh, readErr := s.app.FindRecordById("tickets", ticket.ID)
		if readErr == nil && fresh.GetString("status") == models.TicketStatusPaid {
			// Replayed callback; the order is already settled.
			return nil
		}
		return models.ErrConcurrentUpdate
	}
	if err != nil {
		return err
	}

	flow := gateway.FlowTicket
	if eventRecord, eventErr := s.app.FindRecordById("events", ticket.EventID); eventErr == nil {
		flow = checkoutFlow(eventRecord.GetString("category"))
	}
	monitoring.TrackOrderPaid(string(flow))
	slog.Info("ticket order paid", "order", orderID, "event", ticket.EventID, "quantity", ticket.Quantity, "flow", flow)

	// Refresh the counted total now that the tickets hold capacity.
	if _, err := s.capacity.TicketsSold(ctx, ticket.EventID); err != nil {
		slog.Error("ticket confirm: refresh sold count", "event", ticket.EventID, "error", err)
	}

	go s.sendReceipt(ticket)
	go s.notifier.Publish("ticket_paid", map[string]any{
		"order_id": orderID,
		"event_id": ticket.EventID,
		"quantity": ticket.Quantity,
		"amount":   ticket.TotalPrice,
	})

	return nil
}

// ClosePayment moves a pending order to cancelled or error after the
// gateway reports a non-success outcome.
func (s *TicketService) ClosePayment(ctx context.Context, orderID, status string) error {
	if status != models.TicketStatusCancelled && status != models.TicketStatusError {
		return fmt.Errorf("%w: invalid close status %q", models.ErrValidation, status)
	}
	record, err := s.app.FindFirstRecordByFilter("tickets", "order_id = {:order}", dbx.Params{"order": orderID})
	if err != nil {
		return fmt.Errorf("%w: order %s", models.ErrNotFound, orderID)
	}
	err = storage.UpdateIf(s.app.DB(), "tickets", record.Id, "status", models.TicketStatusPending, status)
	if err == models.ErrConcurrentUpdate {
		// Already settled one way or another; closing is best-effort.
		monitoring.TrackCASConflict("tickets")
		return nil
	}
	return err
}

// DoorSale records an admin-entered sale that counts toward capacity
// without going through the gateway.
func (s *TicketService) DoorSale(ctx context.Context, eventID, buyerName string, quantity int) error {
	if quantity < 1 {
		return models.ErrInvalidQuantity
	}
	eventRecord, err := s.app.FindRecordById("events", eventID)
	if err != nil {
		return fmt.Errorf("%w: event %s", models.ErrNotFound, eventID)
	}
	event := models.EventFromRecord(eventRecord)

	sold, err := s.capacity.TicketsSold(ctx, event.ID)
	if err != nil {
		return err
	}
	if decision := event.CanPurchase(sold, quantity); !decision.OK {
		return fmt.Errorf("%w: %s", models.ErrSoldOut, decision.Reason)
	}

	orderID, err := utils.NewOrderID()
	if err != nil {
		return err
	}
	collection, err := s.app.FindCollectionByNameOrId("tickets")
	if err != nil {
		return err
	}
	ticket := core.NewRecord(collection)
	ticket.Set("event", event.ID)
	ticket.Set("order_id", orderID)
	ticket.Set("buyer_name", buyerName)
	ticket.Set("quantity", quantity)
	ticket.Set("unit_price", event.Price)
	ticket.Set("total_price", event.Price*quantity)
	ticket.Set("status", models.TicketStatusDoor)
	if err := s.app.Save(ticket); err != nil {
		return err
	}

	if _, err := s.capacity.TicketsSold(ctx, event.ID); err != nil {
		slog.Error("door sale: refresh sold count", "event", event.ID, "error", err)
	}
	return nil
}

func (s *TicketService) sendReceipt(ticket models.Ticket) {
	eventRecord, err := s.app.FindRecordById("events", ticket.EventID)
	if err != nil {
		slog.Error("ticket receipt: event lookup", "event", ticket.EventID, "error", err)
		return
	}
	event := models.EventFromRecord(eventRecord)

	html := fmt.Sprintf(
		"<p>Thank you for your purchase!</p><p>%s<br>%s<br>Tickets: %d<br>Total: %d kr.<br>Order: %s</p>",
		event.Name,
		event.StartsAt.Format("02.01.2006 15:04"),
		ticket.Quantity,
		ticket.TotalPrice,
		ticket.OrderID,
	)
	s.notifier.SendMail(ticket.BuyerEmail, "Your tickets - "+event.Name, html)

	if event.HostEmail != "" {
		s.notifier.SendMail(
			event.HostEmail,
			"Tickets sold - "+event.Name,
			fmt.Sprintf("<p>%d ticket(s) sold to %s (order %s).</p>", ticket.Quantity, ticket.BuyerName, ticket.OrderID),
		)
	}
}
