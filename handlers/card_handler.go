package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"whitelotus/models"
	"whitelotus/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type CardHandler struct {
	cards *services.CardService
}

func NewCardHandler(cards *services.CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

// Checkout starts a gift or custom card purchase.
func (h *CardHandler) Checkout(e *core.RequestEvent) error {
	var req services.CardCheckoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	// Custom cards with cycle policies are issued by staff.
	if req.Kind == models.CardKindCustom || req.CyclePolicy != models.CyclePolicyNone {
		if _, err := RequireRole(e, RoleAdmin); err != nil {
			return err
		}
	}
	checkout, err := h.cards.StartCheckout(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, checkout)
}

// Lookup returns the card behind an access token, cycle policy applied.
func (h *CardHandler) Lookup(e *core.RequestEvent) error {
	card, err := h.cards.Lookup(e.Request.Context(), e.Request.PathValue("token"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, card)
}

// Charge redeems an amount from the card behind the token.
func (h *CardHandler) Charge(e *core.RequestEvent) error {
	var req struct {
		Amount int    `json:"amount"`
		Note   string `json:"note"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	card, err := h.cards.Charge(e.Request.Context(), e.Request.PathValue("token"), req.Amount, req.Note)
	if errors.Is(err, models.ErrInsufficientBalance) {
		return apis.NewBadRequestError(
			fmt.Sprintf("Insufficient balance. Available: %d kr.", card.RemainingBalance), nil)
	}
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, card)
}

// Redemptions lists a card's charge history. Admin only.
func (h *CardHandler) Redemptions(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	rows, err := h.cards.Redemptions(e.Request.Context(), e.Request.PathValue("cardId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, rows)
}
