package handlers

import (
	"errors"
	"net/http"

	"whitelotus/models"

	"github.com/pocketbase/pocketbase/apis"
)

// apiError maps service errors onto HTTP responses with the plain-language
// messages the site shows to visitors.
func apiError(err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return apis.NewNotFoundError("Not found", nil)
	case errors.Is(err, models.ErrUnauthorized):
		return apis.NewUnauthorizedError("Authentication required", nil)
	case errors.Is(err, models.ErrForbidden):
		return apis.NewForbiddenError("Access denied", nil)
	case errors.Is(err, models.ErrConcurrentUpdate):
		return apis.NewApiError(http.StatusConflict, "ConcurrentPaymentConflict: the card was charged by another request, please retry", nil)
	case errors.Is(err, models.ErrExpired):
		return apis.NewBadRequestError("This card has expired", nil)
	case errors.Is(err, models.ErrCardNotActive):
		return apis.NewBadRequestError("This card is not active", nil)
	case errors.Is(err, models.ErrInsufficientCredit):
		return apis.NewBadRequestError("Not enough work credit", nil)
	case errors.Is(err, models.ErrSoldOut), errors.Is(err, models.ErrNotEnoughSeats):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)
	case errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrValidation):
		return apis.NewBadRequestError(err.Error(), nil)
	default:
		return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", nil)
	}
}
