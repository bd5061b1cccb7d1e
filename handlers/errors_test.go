package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"whitelotus/models"

	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"unauthorized", models.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", models.ErrForbidden, http.StatusForbidden},
		{"concurrent update", models.ErrConcurrentUpdate, http.StatusConflict},
		{"sold out", models.ErrSoldOut, http.StatusConflict},
		{"expired", models.ErrExpired, http.StatusBadRequest},
		{"not active", models.ErrCardNotActive, http.StatusBadRequest},
		{"insufficient balance", models.ErrInsufficientBalance, http.StatusBadRequest},
		{"insufficient credit", models.ErrInsufficientCredit, http.StatusBadRequest},
		{"invalid quantity", models.ErrInvalidQuantity, http.StatusBadRequest},
		{"validation", models.ErrValidation, http.StatusBadRequest},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr, ok := apiError(tt.err).(*router.ApiError)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestAPIErrorWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("%w: quantity must be between 1 and 10", models.ErrInvalidQuantity)
	apiErr, ok := apiError(err).(*router.ApiError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "quantity must be between 1 and 10")
}

func TestAPIErrorHidesInternals(t *testing.T) {
	apiErr, ok := apiError(fmt.Errorf("pq: connection reset")).(*router.ApiError)
	require.True(t, ok)
	assert.NotContains(t, apiErr.Message, "pq:")
}
