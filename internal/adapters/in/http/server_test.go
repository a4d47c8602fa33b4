package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/menu"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTenant = "bistro"

type fixture struct {
	echo        *echo.Echo
	create      *MockOrderCreator
	batch       *MockBatchIngester
	transition  *MockOrderTransitioner
	item        *MockItemTransitioner
	active      *MockActiveOrdersReader
	detail      *MockOrderReader
	resources   *MockResourceResolver
	abuse       *MockAbuseChecker
	websocket   *stubWebSocket
	events      *stubEventStream
	store       *memStore
	idempotency *Idempotency
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		create:     new(MockOrderCreator),
		batch:      new(MockBatchIngester),
		transition: new(MockOrderTransitioner),
		item:       new(MockItemTransitioner),
		active:     new(MockActiveOrdersReader),
		detail:     new(MockOrderReader),
		resources:  new(MockResourceResolver),
		abuse:      new(MockAbuseChecker),
		websocket:  &stubWebSocket{},
		events:     &stubEventStream{},
		store:      newMemStore(),
	}
	f.idempotency = NewIdempotency(f.store, time.Hour, 200*time.Millisecond, discardLogger())
	f.idempotency.poll = 5 * time.Millisecond

	server, err := NewServer(f.create, f.batch, f.transition, f.item, f.active, f.detail,
		f.resources, f.websocket, f.events)
	require.NoError(t, err)

	f.echo = NewEcho(discardLogger())
	server.Register(f.echo, f.abuse, f.idempotency, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	}))
	return f
}

func (f *fixture) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var body Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func ordersPath(token string) string {
	return "/api/v1/tenants/" + testTenant + "/resources/" + token + "/orders"
}

func orderBody(menuItemID kernel.UUID) string {
	return `{"items":[{"menu_item_id":"` + menuItemID.String() + `","quantity":2}]}`
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())

	rec = f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	menuItemID := kernel.NewUUID()
	orderID := kernel.NewUUID()

	f.abuse.On("Check", kernel.MustTenantID(testTenant), mock.Anything).Return(nil)
	f.create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		lines := cmd.Lines()
		return cmd.ResourceToken() == "table-7" &&
			cmd.Source().String() == "192.0.2.1" &&
			len(lines) == 1 && lines[0].MenuItemID == menuItemID && lines[0].Quantity == 2
	})).Return(orderID, nil).Once()

	rec := f.do(http.MethodPost, ordersPath("table-7"), orderBody(menuItemID),
		map[string]string{"X-Device-ID": "device-1"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, orderID.String(), resp.OrderID)
	f.create.AssertExpectations(t)
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unknown resource", errs.NewObjectNotFoundError("resource", "table-7"), http.StatusNotFound},
		{"retired resource", errs.NewResourceGoneError("resource", "table-7"), http.StatusGone},
		{"bad quantity", errs.NewValueIsOutOfRangeError("quantity", 0, 1, 99), http.StatusBadRequest},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.abuse.On("Check", mock.Anything, mock.Anything).Return(nil)
			f.create.On("Handle", mock.Anything, mock.Anything).Return(kernel.UUID{}, tt.err)

			rec := f.do(http.MethodPost, ordersPath("table-7"), orderBody(kernel.NewUUID()), nil)

			assert.Equal(t, tt.code, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			if tt.code == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body.Message)
			}
		})
	}
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	f := newFixture(t)
	f.abuse.On("Check", mock.Anything, mock.Anything).Return(nil)

	rec := f.do(http.MethodPost, ordersPath("table-7"), `{"items":[{"menu_item_id":"nope","quantity":1}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, ordersPath("table-7"), `{"items":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.create.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestCreateOrder_BlockedSource(t *testing.T) {
	f := newFixture(t)
	f.abuse.On("Check", mock.Anything, mock.Anything).Return(errs.NewBlockedError("192.0.2.1", 90*time.Second))

	rec := f.do(http.MethodPost, ordersPath("table-7"), orderBody(kernel.NewUUID()), map[string]string{
		headerIdempotencyKey: "retry-token-1",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))
	assert.Zero(t, f.store.claimCount())
	f.create.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestCreateOrder_BlockSurvivesHeaderChanges(t *testing.T) {
	f := newFixture(t)
	blocked := kernel.MustSource("192.0.2.1")
	f.abuse.On("Check", kernel.MustTenantID(testTenant), blocked).
		Return(errs.NewBlockedError(blocked.String(), time.Minute))

	for _, headers := range []map[string]string{
		nil,
		{"X-Device-ID": "device-1"},
		{"X-Device-ID": "device-2"},
		{echo.HeaderXForwardedFor: "203.0.113.9"},
		{echo.HeaderXRealIP: "203.0.113.10"},
	} {
		rec := f.do(http.MethodPost, ordersPath("table-7"), orderBody(kernel.NewUUID()), headers)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, headers)
	}
	f.abuse.AssertNumberOfCalls(t, "Check", 5)
	f.create.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestUnknownTenant(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/tenants/Not_A_Slug/orders", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestBatch_ReportsPerEntry(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	f.abuse.On("Check", mock.Anything, mock.Anything).Return(nil)
	f.batch.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.IngestBatchCommand) bool {
		return len(cmd.Entries()) == 3
	})).Return([]commands.BatchResult{
		{OpID: "op-1", OrderID: &orderID},
		{OpID: "op-2", Err: errs.NewResourceGoneError("menu item", "soup")},
		{OpID: "op-1", OrderID: &orderID, Duplicate: true},
	}, nil)

	item := kernel.NewUUID().String()
	body := `{"orders":[` +
		`{"op_id":"op-1","items":[{"menu_item_id":"` + item + `","quantity":1}]},` +
		`{"op_id":"op-2","items":[{"menu_item_id":"` + item + `","quantity":1}]},` +
		`{"op_id":"op-1","items":[{"menu_item_id":"` + item + `","quantity":1}]}]}`
	rec := f.do(http.MethodPost, ordersPath("counter")+"/batch", body, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, orderID.String(), resp.Results[0].OrderID)
	assert.Nil(t, resp.Results[0].Error)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, http.StatusGone, resp.Results[1].Error.Code)
	assert.True(t, resp.Results[2].Duplicate)
}

func TestTransitionOrder(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	f.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.TransitionOrderCommand) bool {
		return cmd.OrderID() == orderID && cmd.To() == order.Accepted
	})).Return(commands.TransitionResult{Status: order.Accepted, ETA: 1500 * time.Millisecond}, nil)

	rec := f.do(http.MethodPost, "/api/v1/tenants/"+testTenant+"/orders/"+orderID.String()+"/accept", "", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TransitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ACCEPTED", resp.Status)
	assert.Equal(t, int64(2), resp.ETASecs)
	assert.Empty(t, resp.ItemID)
}

func TestTransitionOrder_Errors(t *testing.T) {
	orderID := kernel.NewUUID()
	path := "/api/v1/tenants/" + testTenant + "/orders/" + orderID.String()

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, path+"/teleport", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/v1/tenants/"+testTenant+"/orders/42/accept", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("illegal transition", func(t *testing.T) {
		f := newFixture(t)
		f.transition.On("Handle", mock.Anything, mock.Anything).
			Return(commands.TransitionResult{}, errs.NewInvalidTransitionError("order", "SERVED", "READY"))
		rec := f.do(http.MethodPost, path+"/ready", "", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "SERVED -> READY")
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t)
		f.transition.On("Handle", mock.Anything, mock.Anything).
			Return(commands.TransitionResult{}, errs.NewObjectNotFoundError("order", orderID))
		rec := f.do(http.MethodPost, path+"/cancel", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTransitionItem(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	itemID := kernel.NewUUID()
	path := "/api/v1/tenants/" + testTenant + "/orders/" + orderID.String() + "/items/" + itemID.String()
	f.item.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.TransitionItemCommand) bool {
		return cmd.OrderID() == orderID && cmd.ItemID() == itemID && cmd.To() == order.Ready
	})).Return(commands.TransitionResult{Status: order.Ready, ETA: 30 * time.Second}, nil)

	rec := f.do(http.MethodPost, path+"/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp TransitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, itemID.String(), resp.ItemID)
	assert.Equal(t, "READY", resp.Status)
	assert.Equal(t, int64(30), resp.ETASecs)

	// Items are never accepted or rejected on their own.
	rec = f.do(http.MethodPost, path+"/accept", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListActiveOrders(t *testing.T) {
	f := newFixture(t)
	placed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	view := queries.ActiveOrderView{
		ID:            kernel.NewUUID(),
		ResourceID:    kernel.NewUUID(),
		ResourceLabel: "Table 7",
		Status:        order.Placed,
		ItemCount:     3,
		Total:         kernel.MustMoney("35.5"),
		PlacedAt:      placed,
		ETA:           10 * time.Minute,
	}
	f.active.On("Handle", mock.Anything, mock.Anything).Return([]queries.ActiveOrderView{view}, nil)

	rec := f.do(http.MethodGet, "/api/v1/tenants/"+testTenant+"/orders", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	got := resp.Orders[0]
	assert.Equal(t, view.ID.String(), got.OrderID)
	assert.Equal(t, "Table 7", got.ResourceLabel)
	assert.Equal(t, "PLACED", got.Status)
	assert.Equal(t, "35.50", got.Total)
	assert.Equal(t, int64(600), got.ETASecs)
	assert.Nil(t, got.AcceptedAt)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	accepted := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	f.detail.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID() == orderID
	})).Return(queries.OrderView{
		ID:       orderID,
		Status:   order.Accepted,
		Total:    kernel.MustMoney("12"),
		Timeline: order.Timeline{AcceptedAt: &accepted},
		Items: []queries.ItemView{{
			ID:        kernel.NewUUID(),
			Name:      "Ramen",
			UnitPrice: kernel.MustMoney("12"),
			Quantity:  1,
			LineTotal: kernel.MustMoney("12"),
			Modifiers: []string{"extra egg"},
			Status:    order.Accepted,
		}},
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/tenants/"+testTenant+"/orders/"+orderID.String(), "", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp OrderDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "12.00", resp.Total)
	require.NotNil(t, resp.Timeline.AcceptedAt)
	assert.True(t, accepted.Equal(*resp.Timeline.AcceptedAt))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, []string{"extra egg"}, resp.Items[0].Modifiers)
}

func TestResourceChannel(t *testing.T) {
	tenant := kernel.MustTenantID(testTenant)
	resourceID := kernel.NewUUID()
	path := "/api/v1/tenants/" + testTenant + "/resources/table-7/ws"

	t.Run("active resource", func(t *testing.T) {
		f := newFixture(t)
		f.resources.On("ResolveResource", mock.Anything, tenant, "table-7").
			Return(menu.Resource{ID: resourceID, Tenant: tenant, Token: "table-7", Active: true}, nil)

		rec := f.do(http.MethodGet, path, "", nil)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, resourceID, f.websocket.resourceID)
	})

	t.Run("retired resource", func(t *testing.T) {
		f := newFixture(t)
		f.resources.On("ResolveResource", mock.Anything, tenant, "table-7").
			Return(menu.Resource{ID: resourceID, Tenant: tenant, Token: "table-7"}, nil)

		rec := f.do(http.MethodGet, path, "", nil)

		assert.Equal(t, http.StatusGone, rec.Code)
	})

	t.Run("unknown resource", func(t *testing.T) {
		f := newFixture(t)
		f.resources.On("ResolveResource", mock.Anything, tenant, "table-7").
			Return(menu.Resource{}, errs.NewObjectNotFoundError("resource", "table-7"))

		rec := f.do(http.MethodGet, path, "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTenantStream(t *testing.T) {
	f := newFixture(t)
	f.active.On("Handle", mock.Anything, mock.Anything).Return([]queries.ActiveOrderView{}, nil)

	rec := f.do(http.MethodGet, "/api/v1/tenants/"+testTenant+"/events?last_event_id=41", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"orders":[]}`, rec.Body.String())
	assert.Equal(t, uint64(41), f.events.lastEventID)

	rec = f.do(http.MethodGet, "/api/v1/tenants/"+testTenant+"/events?last_event_id=1", "",
		map[string]string{headerLastEventID: "77"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(77), f.events.lastEventID)

	rec = f.do(http.MethodGet, "/api/v1/tenants/"+testTenant+"/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, f.events.lastEventID)
}

func TestTenantStream_MalformedLastEventID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/tenants/"+testTenant+"/events?last_event_id=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/tenants/"+testTenant+"/events", "",
		map[string]string{headerLastEventID: "-3"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func transitionAccepted() commands.TransitionResult {
	return commands.TransitionResult{Status: order.Accepted, ETA: 5 * time.Minute}
}
