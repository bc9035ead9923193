package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("place order: %w", NewValidationError("items", "must not be empty"))

	require.ErrorIs(t, err, ErrValidation)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "items", vErr.Field)
	require.Equal(t, "validation failed: items: must not be empty", vErr.Error())
}

func TestInsufficientStockErrorCarriesProduct(t *testing.T) {
	var err error = &InsufficientStockError{ProductID: "p1", Requested: 10, Available: 5}

	require.ErrorIs(t, err, ErrInsufficientStock)
	require.False(t, errors.Is(err, ErrProductsUnavailable))
	require.Contains(t, err.Error(), "p1")

	var stockErr *InsufficientStockError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &stockErr)
	require.Equal(t, int64(10), stockErr.Requested)
	require.Equal(t, int64(5), stockErr.Available)
}
