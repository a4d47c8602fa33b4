package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.NewObjectNotFoundError("order", "42"), http.StatusNotFound},
		{errs.NewResourceGoneError("resource", "table-1"), http.StatusGone},
		{errs.NewInvalidTransitionError("order", "PLACED", "SERVED"), http.StatusConflict},
		{errs.NewConflictError("order"), http.StatusConflict},
		{errs.NewBlockedError("10.0.0.1", time.Minute), http.StatusTooManyRequests},
		{errs.NewRateLimitedError("10.0.0.1", 8), http.StatusTooManyRequests},
		{errs.NewBadTokenError("token is empty"), http.StatusBadRequest},
		{errs.NewValueIsRequiredError("items"), http.StatusBadRequest},
		{fmt.Errorf("admit: %w", errs.NewValueIsInvalidError("quantity")), http.StatusBadRequest},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestErrorBody_HidesInternals(t *testing.T) {
	body := errorBody(fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))
	assert.Equal(t, Error{Code: http.StatusInternalServerError, Message: "internal error"}, body)

	body = errorBody(echo.ErrNotFound)
	assert.Equal(t, Error{Code: http.StatusNotFound, Message: "Not Found"}, body)
}
