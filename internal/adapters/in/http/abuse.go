package http

import (
	"orderflow/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// AbuseChecker reports whether a guest source is cooling down.
type AbuseChecker interface {
	Check(tenant kernel.TenantID, source kernel.Source) error
}

// AbuseMiddleware turns away blocked sources before any work is done, so a
// cooling-down guest cannot even burn an idempotency token.
func AbuseMiddleware(checker AbuseChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant, err := tenantParam(c)
			if err != nil {
				return err
			}
			source, err := sourceOf(c)
			if err != nil {
				return err
			}
			if err := checker.Check(tenant, source); err != nil {
				return err
			}
			return next(c)
		}
	}
}
