package models

import "errors"

var (
	// Card and credit errors
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientCredit  = errors.New("insufficient credit")
	ErrCardNotActive       = errors.New("card is not active")
	ErrExpired             = errors.New("card has expired")

	// Ticket errors
	ErrSoldOut         = errors.New("event is sold out")
	ErrNotEnoughSeats  = errors.New("not enough tickets left")
	ErrInvalidQuantity = errors.New("invalid quantity")

	// General errors
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConcurrentUpdate = errors.New("concurrent update detected")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden operation")
)
