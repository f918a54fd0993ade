package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := ErrInternal("something broke").Wrap(cause)

	assert.Equal(t, CodeInternalError, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "connection refused")
}

func TestAsAppError(t *testing.T) {
	appErr := ErrNotFoundWithID("sale", "abc")

	found, ok := AsAppError(appErr)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, found.Code)
	assert.Equal(t, http.StatusNotFound, found.HTTPStatus)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "not found",
			err:        errors.New("sale item not found"),
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "cancelled conflict",
			err:        errors.New("sale is already cancelled"),
			wantCode:   CodeConflict,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "validation",
			err:        errors.New("quantity cannot exceed 20 units per product"),
			wantCode:   CodeValidationError,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "required field",
			err:        errors.New("sale number is required"),
			wantCode:   CodeValidationError,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "timeout",
			err:        errors.New("context deadline exceeded: timeout"),
			wantCode:   CodeTimeout,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantCode:   CodeInternalError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapDomainError(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
		})
	}
}

func TestMapDomainErrorPassthrough(t *testing.T) {
	original := ErrConflict("cannot add items to a cancelled sale")
	mapped := MapDomainError(original)
	assert.Same(t, original, mapped)
}
