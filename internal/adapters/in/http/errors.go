package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrResourceGone):
		return http.StatusGone
	case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrBlocked), errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrBadToken),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) Error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		return Error{Code: code, Message: "internal error"}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return Error{Code: code, Message: http.StatusText(code)}
	}
	return Error{Code: code, Message: err.Error()}
}

// NewErrorHandler renders errors returned by handlers and middleware.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "http_errors")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := errorBody(err)
		if body.Code == http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		var blocked *errs.BlockedError
		if errors.As(err, &blocked) {
			seconds := int(math.Ceil(blocked.RetryAfter.Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(body.Code)
		} else {
			writeErr = c.JSON(body.Code, body)
		}
		if writeErr != nil {
			logger.WarnContext(c.Request().Context(), "writing error response", "error", writeErr)
		}
	}
}
