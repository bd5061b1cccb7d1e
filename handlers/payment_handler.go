package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"whitelotus/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// settler is the slice of a checkout service the gateway return legs need.
type settler interface {
	ConfirmPayment(ctx context.Context, orderID, amount, currency, receivedHash string) error
	ClosePayment(ctx context.Context, orderID, status string) error
}

// PaymentHandler terminates the gateway's four return legs for every
// checkout flow: the server-to-server callback, the buyer's success
// return, and the cancel and error returns.
type PaymentHandler struct {
	flows           map[string]settler
	successRedirect string
	failureRedirect string
}

func NewPaymentHandler(tickets *services.TicketService, cards *services.CardService, meals *services.MealService, successRedirect, failureRedirect string) *PaymentHandler {
	return &PaymentHandler{
		flows: map[string]settler{
			"tickets":   tickets,
			"tours":     tickets,
			"cards":     cards,
			"mealcards": meals,
		},
		successRedirect: successRedirect,
		failureRedirect: failureRedirect,
	}
}

func (h *PaymentHandler) flow(e *core.RequestEvent) (settler, error) {
	svc, ok := h.flows[e.Request.PathValue("flow")]
	if !ok {
		return nil, apis.NewNotFoundError("Unknown payment flow", nil)
	}
	return svc, nil
}

// Callback is the gateway's server-to-server confirmation. It must answer
// 200 on success or the gateway keeps retrying.
func (h *PaymentHandler) Callback(e *core.RequestEvent) error {
	svc, err := h.flow(e)
	if err != nil {
		return err
	}
	orderID := e.Request.FormValue("orderid")
	amount := e.Request.FormValue("amount")
	currency := e.Request.FormValue("currency")
	hash := e.Request.FormValue("orderhash")

	if err := svc.ConfirmPayment(e.Request.Context(), orderID, amount, currency, hash); err != nil {
		slog.Error("payment callback rejected", "flow", e.Request.PathValue("flow"), "order", orderID, "error", err)
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Return is where the buyer's browser lands after paying. The signed
// confirmation runs again (it no-ops when the server callback got there
// first) and the buyer gets sent to the success page.
func (h *PaymentHandler) Return(e *core.RequestEvent) error {
	svc, err := h.flow(e)
	if err != nil {
		return err
	}
	orderID := e.Request.FormValue("orderid")
	amount := e.Request.FormValue("amount")
	currency := e.Request.FormValue("currency")
	hash := e.Request.FormValue("orderhash")

	if err := svc.ConfirmPayment(e.Request.Context(), orderID, amount, currency, hash); err != nil {
		slog.Error("payment return rejected", "flow", e.Request.PathValue("flow"), "order", orderID, "error", err)
		return e.Redirect(http.StatusSeeOther, h.failureRedirect)
	}
	return e.Redirect(http.StatusSeeOther, h.successRedirect)
}

// Cancel closes the pending order after the buyer backed out.
func (h *PaymentHandler) Cancel(e *core.RequestEvent) error {
	return h.close(e, "cancelled")
}

// Error closes the pending order after the gateway reported a failure.
func (h *PaymentHandler) Error(e *core.RequestEvent) error {
	return h.close(e, "error")
}

func (h *PaymentHandler) close(e *core.RequestEvent, status string) error {
	svc, err := h.flow(e)
	if err != nil {
		return err
	}
	orderID := e.Request.FormValue("orderid")
	if orderID != "" {
		if err := svc.ClosePayment(e.Request.Context(), orderID, status); err != nil {
			slog.Error("payment close failed", "flow", e.Request.PathValue("flow"), "order", orderID, "error", err)
		}
	}
	return e.Redirect(http.StatusSeeOther, h.failureRedirect)
}
