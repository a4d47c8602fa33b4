package http

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplay         = "Idempotent-Replay"
	headerLastEventID    = "Last-Event-ID"
)

var pathOptions = runtime.BindStyledParameterOptions{
	ParamLocation: runtime.ParamLocationPath,
	Explode:       false,
	Required:      true,
}

// pathParam binds free-form path segments such as resource tokens.
func pathParam(c echo.Context, name string) (string, error) {
	var value string
	if err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &value, pathOptions); err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return value, nil
}

func tenantParam(c echo.Context) (kernel.TenantID, error) {
	raw, err := pathParam(c, "tenant")
	if err != nil {
		return kernel.TenantID{}, err
	}
	tenant, err := kernel.NewTenantID(raw)
	if err != nil {
		return kernel.TenantID{}, errs.NewObjectNotFoundErrorWithCause("tenant", raw, err)
	}
	return tenant, nil
}

func uuidParam(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, pathOptions); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return parsed, nil
}

// lastEventID prefers the header browsers send on reconnect over the query
// parameter used by clients that cannot set headers. Zero means a fresh stream.
func lastEventID(c echo.Context) (uint64, error) {
	var id uint64
	if raw := c.Request().Header.Get(headerLastEventID); raw != "" {
		err := runtime.BindStyledParameterWithOptions("simple", headerLastEventID, raw, &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader})
		if err != nil {
			return 0, errs.NewValueIsInvalidErrorWithCause("last_event_id", err)
		}
		return id, nil
	}
	var query *uint64
	if err := runtime.BindQueryParameter("form", true, false, "last_event_id", c.QueryParams(), &query); err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("last_event_id", err)
	}
	if query != nil {
		id = *query
	}
	return id, nil
}

// sourceOf identifies the guest by client address. Headers the client
// chooses, such as a device id, are never trusted here: a blocked guest could
// shed its block by changing one.
func sourceOf(c echo.Context) (kernel.Source, error) {
	return kernel.NewSource(c.RealIP())
}
