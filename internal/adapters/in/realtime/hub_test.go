package realtime

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTenant = kernel.MustTenantID("harbour-grill")
	testAt     = time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub() (*Hub, *Metrics) {
	metrics := NewMetrics()
	hub := NewHub(metrics, discardLogger())
	hub.seqBase = 0
	return hub, metrics
}

func statusEvent(tenant kernel.TenantID, resourceID kernel.UUID, status order.Status) order.StatusChanged {
	return order.StatusChanged{
		Tenant:     tenant,
		ResourceID: resourceID,
		OrderID:    kernel.NewUUID(),
		Scope:      order.ScopeOrder,
		Status:     status,
		ETA:        90*time.Second + 200*time.Millisecond,
		At:         testAt,
	}
}

func receive(t *testing.T, sub *Subscriber) Message {
	t.Helper()
	select {
	case msg := <-sub.C():
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "no message delivered")
		return Message{}
	}
}

func assertEmpty(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case msg := <-sub.C():
		assert.Failf(t, "unexpected message", "%+v", msg)
	default:
	}
}

func TestHub_RoutesByResource(t *testing.T) {
	hub, _ := newTestHub()
	table7, table8 := kernel.NewUUID(), kernel.NewUUID()

	guest := hub.SubscribeResource(testTenant, table7, TransportWebSocket, 4)
	other := hub.SubscribeResource(testTenant, table8, TransportWebSocket, 4)

	event := statusEvent(testTenant, table7, order.Accepted)
	hub.Broadcast(event)

	msg := receive(t, guest)
	assert.Equal(t, event.OrderID.String(), msg.OrderID)
	assert.Equal(t, table7.String(), msg.ResourceID)
	assert.Equal(t, "ACCEPTED", msg.Status)
	assert.Equal(t, "order", msg.Scope)
	assert.Equal(t, int64(91), msg.ETASecs)
	assert.Equal(t, testAt, msg.Timestamp)
	assert.Empty(t, msg.ItemID)
	assertEmpty(t, other)
}

func TestHub_TenantSubscribersSeeEveryResource(t *testing.T) {
	hub, _ := newTestHub()
	kitchen, _ := hub.SubscribeTenant(testTenant, TransportSSE, 4)
	elsewhere, _ := hub.SubscribeTenant(kernel.MustTenantID("other-place"), TransportSSE, 4)

	hub.Broadcast(statusEvent(testTenant, kernel.NewUUID(), order.Placed))
	hub.Broadcast(statusEvent(testTenant, kernel.NewUUID(), order.Ready))

	assert.Equal(t, "PLACED", receive(t, kitchen).Status)
	assert.Equal(t, "READY", receive(t, kitchen).Status)
	assertEmpty(t, elsewhere)
}

func TestHub_SequenceIsPerTenantAndSnapshotReservesAnID(t *testing.T) {
	hub, _ := newTestHub()
	resource := kernel.NewUUID()

	hub.Broadcast(statusEvent(testTenant, resource, order.Placed))
	hub.Broadcast(statusEvent(kernel.MustTenantID("other-place"), resource, order.Placed))

	sub, snapshotID := hub.SubscribeTenant(testTenant, TransportSSE, 4)
	assert.Equal(t, uint64(2), snapshotID)

	hub.Broadcast(statusEvent(testTenant, resource, order.Accepted))
	hub.Broadcast(statusEvent(testTenant, resource, order.Ready))

	assert.Equal(t, uint64(3), receive(t, sub).Seq)
	assert.Equal(t, uint64(4), receive(t, sub).Seq)

	_, next := hub.SubscribeTenant(testTenant, TransportSSE, 4)
	assert.Equal(t, uint64(5), next)
}

func TestHub_SequenceStartsFromCreationTime(t *testing.T) {
	before := seqBase(time.Now())
	hub := NewHub(NewMetrics(), discardLogger())
	sub, first := hub.SubscribeTenant(testTenant, TransportSSE, 1)
	defer hub.Unsubscribe(sub)

	assert.Greater(t, first, before)

	time.Sleep(2 * time.Millisecond)
	restarted := NewHub(NewMetrics(), discardLogger())
	_, afterRestart := restarted.SubscribeTenant(testTenant, TransportSSE, 1)

	assert.Greater(t, afterRestart, first)
}

func TestHub_ItemEventCarriesItemID(t *testing.T) {
	hub, _ := newTestHub()
	resource := kernel.NewUUID()
	sub := hub.SubscribeResource(testTenant, resource, TransportWebSocket, 1)

	event := statusEvent(testTenant, resource, order.InProgress)
	itemID := kernel.NewUUID()
	event.ItemID = &itemID
	event.Scope = order.ScopeItem
	event.ETA = 0
	hub.Broadcast(event)

	msg := receive(t, sub)
	assert.Equal(t, itemID.String(), msg.ItemID)
	assert.Equal(t, "item", msg.Scope)
	assert.Equal(t, int64(0), msg.ETASecs)
}

func TestHub_DropsSlowSubscriberWithoutBlocking(t *testing.T) {
	hub, metrics := newTestHub()
	resource := kernel.NewUUID()
	slow := hub.SubscribeResource(testTenant, resource, TransportWebSocket, 1)
	fast := hub.SubscribeResource(testTenant, resource, TransportWebSocket, 8)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			hub.Broadcast(statusEvent(testTenant, resource, order.Placed))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "broadcast blocked on a slow subscriber")
	}

	select {
	case <-slow.Done():
	default:
		require.FailNow(t, "slow subscriber was not dropped")
	}
	for i := 0; i < 3; i++ {
		receive(t, fast)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.dropped.WithLabelValues(TransportWebSocket)))
	assert.Equal(t, 1, hub.Subscribers(testTenant))
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub, _ := newTestHub()
	sub := hub.SubscribeResource(testTenant, kernel.NewUUID(), TransportWebSocket, 1)
	tenantSub, _ := hub.SubscribeTenant(testTenant, TransportSSE, 1)
	require.Equal(t, 2, hub.Subscribers(testTenant))

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(tenantSub)

	assert.Zero(t, hub.Subscribers(testTenant))
	<-sub.Done()
	<-tenantSub.Done()
}

func TestHub_PublishBroadcasts(t *testing.T) {
	hub, _ := newTestHub()
	resource := kernel.NewUUID()
	sub := hub.SubscribeResource(testTenant, resource, TransportWebSocket, 1)

	require.NoError(t, hub.Publish(context.Background(), statusEvent(testTenant, resource, order.Served)))

	assert.Equal(t, "SERVED", receive(t, sub).Status)
}
