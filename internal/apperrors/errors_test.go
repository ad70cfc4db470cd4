package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNotFoundResource(t *testing.T) {
	err := NewNotFoundResource("device", int64(7))
	require.Equal(t, ErrorCodeNotFound, err.Code)
	require.Equal(t, "device not found: 7", err.Error())
	require.Equal(t, 404, err.StatusCode)
	require.Equal(t, int64(7), err.Details["id"])
}

func TestNewNotFoundResource_NoID(t *testing.T) {
	err := NewNotFoundResource("device", nil)
	require.Equal(t, "device not found", err.Error())
	_, ok := err.Details["id"]
	require.False(t, ok)
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("get room: %w", NewNotFoundResource("room", int64(3)))

	require.True(t, errors.Is(wrapped, ErrNotFound))
	require.False(t, errors.Is(wrapped, ErrIntegrity))
	require.False(t, errors.Is(wrapped, ErrValidation))
}

func TestNewIntegrityError_UnwrapsCause(t *testing.T) {
	cause := errors.New("FOREIGN KEY constraint failed")
	err := NewIntegrityError("room", cause)

	require.True(t, errors.Is(err, ErrIntegrity))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "FOREIGN KEY constraint failed")
	require.Equal(t, 409, err.StatusCode)
}

func TestEnsureAppError(t *testing.T) {
	require.Equal(t, ErrorCodeInternalError, EnsureAppError(nil).Code)

	notFound := NewNotFoundResource("value type", int64(1))
	require.Same(t, notFound, EnsureAppError(fmt.Errorf("wrap: %w", notFound)))

	plain := errors.New("disk I/O error")
	converted := EnsureAppError(plain)
	require.Equal(t, ErrorCodeInternalError, converted.Code)
	require.ErrorIs(t, converted, plain)
}
