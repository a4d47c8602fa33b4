package http

import (
	"context"
	"net/http"

	"orderflow/internal/adapters/in/realtime"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/eta"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (kernel.UUID, error)
	}
	BatchIngester interface {
		Handle(ctx context.Context, cmd commands.IngestBatchCommand) ([]commands.BatchResult, error)
	}
	OrderTransitioner interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionResult, error)
	}
	ItemTransitioner interface {
		Handle(ctx context.Context, cmd commands.TransitionItemCommand) (commands.TransitionResult, error)
	}
	ActiveOrdersReader interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.ActiveOrderView, error)
	}
	OrderReader interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
	}

	// ResourceResolver finds the resource behind a guest token.
	// Returns errs.ObjectNotFoundError for unknown tokens.
	ResourceResolver interface {
		ResolveResource(ctx context.Context, tenant kernel.TenantID, token string) (menu.Resource, error)
	}

	// WebSocketServer streams one resource channel over a socket.
	WebSocketServer interface {
		Serve(w http.ResponseWriter, r *http.Request, tenant kernel.TenantID, resourceID kernel.UUID, source string) error
	}

	// EventStreamServer streams the tenant channel as server-sent events.
	EventStreamServer interface {
		Serve(
			w http.ResponseWriter,
			r *http.Request,
			tenant kernel.TenantID,
			source string,
			lastEventID uint64,
			snapshot realtime.SnapshotFunc,
		) error
	}
)

// orderActions maps URL verbs onto target statuses.
var orderActions = map[string]order.Status{
	"accept": order.Accepted,
	"start":  order.InProgress,
	"ready":  order.Ready,
	"serve":  order.Served,
	"reject": order.Rejected,
	"cancel": order.Cancelled,
	"hold":   order.Hold,
}

var itemActions = map[string]order.Status{
	"start":  order.InProgress,
	"ready":  order.Ready,
	"serve":  order.Served,
	"cancel": order.Cancelled,
	"hold":   order.Hold,
}

// Server holds the guest and staff endpoints.
type Server struct {
	createOrder     OrderCreator
	ingestBatch     BatchIngester
	transitionOrder OrderTransitioner
	transitionItem  ItemTransitioner
	activeOrders    ActiveOrdersReader
	getOrder        OrderReader
	resources       ResourceResolver
	websocket       WebSocketServer
	events          EventStreamServer
}

func NewServer(
	createOrder OrderCreator,
	ingestBatch BatchIngester,
	transitionOrder OrderTransitioner,
	transitionItem ItemTransitioner,
	activeOrders ActiveOrdersReader,
	getOrder OrderReader,
	resources ResourceResolver,
	websocket WebSocketServer,
	events EventStreamServer,
) (*Server, error) {
	switch {
	case createOrder == nil:
		return nil, errs.NewValueIsRequiredError("createOrder")
	case ingestBatch == nil:
		return nil, errs.NewValueIsRequiredError("ingestBatch")
	case transitionOrder == nil:
		return nil, errs.NewValueIsRequiredError("transitionOrder")
	case transitionItem == nil:
		return nil, errs.NewValueIsRequiredError("transitionItem")
	case activeOrders == nil:
		return nil, errs.NewValueIsRequiredError("activeOrders")
	case getOrder == nil:
		return nil, errs.NewValueIsRequiredError("getOrder")
	case resources == nil:
		return nil, errs.NewValueIsRequiredError("resources")
	case websocket == nil:
		return nil, errs.NewValueIsRequiredError("websocket")
	case events == nil:
		return nil, errs.NewValueIsRequiredError("events")
	}

	return &Server{
		createOrder:     createOrder,
		ingestBatch:     ingestBatch,
		transitionOrder: transitionOrder,
		transitionItem:  transitionItem,
		activeOrders:    activeOrders,
		getOrder:        getOrder,
		resources:       resources,
		websocket:       websocket,
		events:          events,
	}, nil
}

// CreateOrder handles POST /resources/:token/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	token, err := pathParam(c, "token")
	if err != nil {
		return err
	}
	source, err := sourceOf(c)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	lines, err := toLineRequests(req.Items)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(tenant, token, source, lines)
	if err != nil {
		return err
	}
	orderID, err := s.createOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, CreateOrderResponse{OrderID: orderID.String()})
}

// IngestBatch handles POST /resources/:token/orders/batch. Per-entry
// failures are reported in the body; the request itself succeeds.
func (s *Server) IngestBatch(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	token, err := pathParam(c, "token")
	if err != nil {
		return err
	}
	source, err := sourceOf(c)
	if err != nil {
		return err
	}

	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	entries, err := toBatchEntries(req.Orders)
	if err != nil {
		return err
	}

	cmd, err := commands.NewIngestBatchCommand(tenant, token, source, entries)
	if err != nil {
		return err
	}
	results, err := s.ingestBatch.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fromBatchResults(results))
}

// TransitionOrder handles POST /orders/:order_id/:action.
func (s *Server) TransitionOrder(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		return err
	}
	to, ok := orderActions[c.Param("action")]
	if !ok {
		return echo.ErrNotFound
	}

	cmd, err := commands.NewTransitionOrderCommand(tenant, orderID, to)
	if err != nil {
		return err
	}
	result, err := s.transitionOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TransitionResponse{
		OrderID: orderID.String(),
		Status:  result.Status.String(),
		ETASecs: eta.Seconds(result.ETA),
	})
}

// TransitionItem handles POST /orders/:order_id/items/:item_id/:action.
func (s *Server) TransitionItem(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		return err
	}
	itemID, err := uuidParam(c, "item_id")
	if err != nil {
		return err
	}
	to, ok := itemActions[c.Param("action")]
	if !ok {
		return echo.ErrNotFound
	}

	cmd, err := commands.NewTransitionItemCommand(tenant, orderID, itemID, to)
	if err != nil {
		return err
	}
	result, err := s.transitionItem.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TransitionResponse{
		OrderID: orderID.String(),
		ItemID:  itemID.String(),
		Status:  result.Status.String(),
		ETASecs: eta.Seconds(result.ETA),
	})
}

// ListActiveOrders handles GET /orders.
func (s *Server) ListActiveOrders(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	orders, err := s.snapshot(c.Request().Context(), tenant)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /orders/:order_id.
func (s *Server) GetOrder(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(tenant, orderID)
	if err != nil {
		return err
	}
	view, err := s.getOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fromOrderView(view))
}

// ResourceChannel handles GET /resources/:token/ws.
func (s *Server) ResourceChannel(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	token, err := pathParam(c, "token")
	if err != nil {
		return err
	}
	resource, err := s.resources.ResolveResource(c.Request().Context(), tenant, token)
	if err != nil {
		return err
	}
	if !resource.Active {
		return errs.NewResourceGoneError("resource", token)
	}

	return s.websocket.Serve(c.Response(), c.Request(), tenant, resource.ID, c.RealIP())
}

// TenantStream handles GET /events.
func (s *Server) TenantStream(c echo.Context) error {
	tenant, err := tenantParam(c)
	if err != nil {
		return err
	}
	lastID, err := lastEventID(c)
	if err != nil {
		return err
	}

	snapshot := func(ctx context.Context) (any, error) {
		return s.snapshot(ctx, tenant)
	}
	return s.events.Serve(c.Response(), c.Request(), tenant, c.RealIP(), lastID, snapshot)
}

func (s *Server) snapshot(ctx context.Context, tenant kernel.TenantID) (Snapshot, error) {
	query, err := queries.NewGetActiveOrdersQuery(tenant)
	if err != nil {
		return Snapshot{}, err
	}
	views, err := s.activeOrders.Handle(ctx, query)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Orders: fromActiveOrders(views)}, nil
}
