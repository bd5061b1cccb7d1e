package handlers

import (
	"net/http"

	"whitelotus/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type CreditHandler struct {
	credits *services.CreditService
}

func NewCreditHandler(credits *services.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits}
}

type creditMutation struct {
	Email  string `json:"email"`
	Amount int    `json:"amount"`
	Note   string `json:"note"`
}

// MyBalance returns the signed-in caller's credit.
func (h *CreditHandler) MyBalance(e *core.RequestEvent) error {
	p, err := RequireRole(e, RoleUser)
	if err != nil {
		return err
	}
	credit, err := h.credits.Balance(e.Request.Context(), p.Email)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, credit)
}

// MyHistory returns the signed-in caller's ledger.
func (h *CreditHandler) MyHistory(e *core.RequestEvent) error {
	p, err := RequireRole(e, RoleUser)
	if err != nil {
		return err
	}
	entries, err := h.credits.History(e.Request.Context(), p.Email)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, entries)
}

// Use spends the caller's own credit.
func (h *CreditHandler) Use(e *core.RequestEvent) error {
	p, err := RequireRole(e, RoleUser)
	if err != nil {
		return err
	}
	var req struct {
		Amount int    `json:"amount"`
		Note   string `json:"note"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	credit, err := h.credits.Use(e.Request.Context(), p.Email, req.Amount, req.Note)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, credit)
}

// Add credits a member. Admin only.
func (h *CreditHandler) Add(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	var req creditMutation
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	credit, err := h.credits.Add(e.Request.Context(), req.Email, req.Amount, req.Note)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, credit)
}

// Delete removes credit from a member. Admin only.
func (h *CreditHandler) Delete(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	var req creditMutation
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	credit, err := h.credits.Delete(e.Request.Context(), req.Email, req.Amount, req.Note)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, credit)
}

// BalanceFor returns any member's balance and ledger. Admin only.
func (h *CreditHandler) BalanceFor(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	email := e.Request.PathValue("email")
	credit, err := h.credits.Balance(e.Request.Context(), email)
	if err != nil {
		return apiError(err)
	}
	entries, err := h.credits.History(e.Request.Context(), email)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"balance": credit,
		"history": entries,
	})
}
