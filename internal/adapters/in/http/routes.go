package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const apiPrefix = "/api/v1/tenants/:tenant"

// NewEcho builds the router with error rendering, panic recovery and
// request logging installed.
func NewEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(logger)
	// Forwarding headers are client-controlled; the peer address is the identity.
	e.IPExtractor = echo.ExtractIPDirect()

	requests := logger.With("component", "http")
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			requests.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	}))

	return e
}

// Register mounts the API. Guest order intake passes the abuse guard before
// the idempotency layer so a blocked source never claims a token.
func (s *Server) Register(e *echo.Echo, abuse AbuseChecker, idem *Idempotency, metrics http.Handler) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	api := e.Group(apiPrefix)
	guard := AbuseMiddleware(abuse)

	api.POST("/resources/:token/orders", s.CreateOrder, guard, idem.Middleware)
	api.POST("/resources/:token/orders/batch", s.IngestBatch, guard, idem.Middleware)
	api.GET("/resources/:token/ws", s.ResourceChannel)

	api.GET("/orders", s.ListActiveOrders)
	api.GET("/orders/:order_id", s.GetOrder)
	api.POST("/orders/:order_id/:action", s.TransitionOrder, idem.Middleware)
	api.POST("/orders/:order_id/items/:item_id/:action", s.TransitionItem, idem.Middleware)

	api.GET("/events", s.TenantStream)
}
