package handlers

import (
	"errors"
	"net/http"

	"whitelotus/models"
	"whitelotus/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type MealHandler struct {
	meals *services.MealService
}

func NewMealHandler(meals *services.MealService) *MealHandler {
	return &MealHandler{meals: meals}
}

// Checkout starts a meal card purchase.
func (h *MealHandler) Checkout(e *core.RequestEvent) error {
	var req services.MealCheckoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	checkout, err := h.meals.StartCheckout(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, checkout)
}

// Redeem deducts meals from the card behind the token, gated by the staff
// PIN entered at the counter.
func (h *MealHandler) Redeem(e *core.RequestEvent) error {
	var req struct {
		Quantity int    `json:"quantity"`
		StaffPIN string `json:"staff_pin"`
		Note     string `json:"note"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	card, err := h.meals.RedeemByToken(e.Request.Context(), e.Request.PathValue("token"), req.Quantity, req.StaffPIN, req.Note)
	if errors.Is(err, models.ErrInsufficientBalance) {
		return apis.NewBadRequestError("Not enough meals left on this card", nil)
	}
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, card)
}

// RedeemMine spends meals across the signed-in caller's cards, oldest
// first.
func (h *MealHandler) RedeemMine(e *core.RequestEvent) error {
	p, err := RequireRole(e, RoleUser)
	if err != nil {
		return err
	}
	var req struct {
		Quantity int    `json:"quantity"`
		Note     string `json:"note"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	plan, err := h.meals.RedeemForEmail(e.Request.Context(), p.Email, req.Quantity, req.Note)
	if errors.Is(err, models.ErrInsufficientBalance) {
		return apis.NewBadRequestError("Not enough meals left across your cards", nil)
	}
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, plan)
}

// MyCards lists the signed-in caller's meal cards.
func (h *MealHandler) MyCards(e *core.RequestEvent) error {
	p, err := RequireRole(e, RoleUser)
	if err != nil {
		return err
	}
	cards, err := h.meals.CardsForEmail(e.Request.Context(), p.Email)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, cards)
}

// Usage lists a card's redemption history. Admin only.
func (h *MealHandler) Usage(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	rows, err := h.meals.Usage(e.Request.Context(), e.Request.PathValue("cardId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, rows)
}
