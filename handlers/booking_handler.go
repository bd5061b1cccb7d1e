package handlers

import (
	"net/http"
	"strconv"

	"whitelotus/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create takes a public venue booking request.
func (h *BookingHandler) Create(e *core.RequestEvent) error {
	var req services.BookingRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	booking, err := h.bookings.Create(e.Request.Context(), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, booking)
}

// List returns bookings for the back office. Admin only.
func (h *BookingHandler) List(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	q := e.Request.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	bookings, err := h.bookings.List(e.Request.Context(), q.Get("status"), limit, offset)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, bookings)
}

// Get returns one booking with its comments. Admins also see pending and
// declined comments.
func (h *BookingHandler) Get(e *core.RequestEvent) error {
	p, _ := PrincipalFrom(e)
	includePending := p.Role == RoleAdmin
	booking, comments, err := h.bookings.Get(e.Request.Context(), e.Request.PathValue("bookingId"), includePending)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"booking":  booking,
		"comments": comments,
	})
}

// SetStatus confirms or cancels a booking. Admin only.
func (h *BookingHandler) SetStatus(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	var req struct {
		Status    string `json:"status"`
		AdminNote string `json:"admin_note"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	booking, err := h.bookings.SetStatus(e.Request.Context(), e.Request.PathValue("bookingId"), req.Status, req.AdminNote)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, booking)
}

// AddComment attaches a comment to a booking. Signed-in callers only; the
// comment waits for moderation.
func (h *BookingHandler) AddComment(e *core.RequestEvent) error {
	p, err := RequireRole(e, RoleUser)
	if err != nil {
		return err
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	comment, err := h.bookings.AddComment(e.Request.Context(), e.Request.PathValue("bookingId"), p.Email, req.Body)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, comment)
}

// ModerateComment accepts or declines a comment. Admin only.
func (h *BookingHandler) ModerateComment(e *core.RequestEvent) error {
	if _, err := RequireRole(e, RoleAdmin); err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	comment, err := h.bookings.ModerateComment(e.Request.Context(), e.Request.PathValue("commentId"), req.Status)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, comment)
}
