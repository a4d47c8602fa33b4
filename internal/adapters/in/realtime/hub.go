package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// Subscriber is one connection's view of the hub.
type Subscriber struct {
	transport string
	tenant    string
	resource  string
	ch        chan Message
	done      chan struct{}
	once      sync.Once
}

// C delivers messages in publish order.
func (s *Subscriber) C() <-chan Message { return s.ch }

// Done is closed when the hub drops the subscriber for falling behind.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

type resourceKey struct {
	tenant   string
	resource string
}

// Hub routes status changes to resource and tenant subscribers in this process.
type Hub struct {
	mu        sync.Mutex
	resources map[resourceKey]map[*Subscriber]struct{}
	tenants   map[string]map[*Subscriber]struct{}
	seq       map[string]uint64
	seqBase   uint64
	metrics   *Metrics
	logger    *slog.Logger
}

// NewHub creates an empty hub. Sequence ids start from the creation time, so
// ids handed out after a restart are larger than any the previous process
// could have reached at up to 1024 events per millisecond.
func NewHub(metrics *Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		resources: make(map[resourceKey]map[*Subscriber]struct{}),
		tenants:   make(map[string]map[*Subscriber]struct{}),
		seq:       make(map[string]uint64),
		seqBase:   seqBase(time.Now()),
		metrics:   metrics,
		logger:    logger.With("component", "realtime_hub"),
	}
}

func seqBase(now time.Time) uint64 {
	return uint64(now.UnixMilli()) << 10
}

// nextSeq must be called with h.mu held.
func (h *Hub) nextSeq(tenant string) uint64 {
	seq, ok := h.seq[tenant]
	if !ok {
		seq = h.seqBase
	}
	seq++
	h.seq[tenant] = seq
	return seq
}

// SubscribeResource registers a subscriber for one resource channel.
func (h *Hub) SubscribeResource(tenant kernel.TenantID, resourceID kernel.UUID, transport string, buffer int) *Subscriber {
	sub := newSubscriber(transport, tenant.String(), resourceID.String(), buffer)
	key := resourceKey{tenant: sub.tenant, resource: sub.resource}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resources[key] == nil {
		h.resources[key] = make(map[*Subscriber]struct{})
	}
	h.resources[key][sub] = struct{}{}
	return sub
}

// SubscribeTenant registers a subscriber for every change of a tenant and
// reserves the next sequence id for its snapshot. Messages delivered to the
// subscriber afterwards carry larger ids.
func (h *Hub) SubscribeTenant(tenant kernel.TenantID, transport string, buffer int) (*Subscriber, uint64) {
	sub := newSubscriber(transport, tenant.String(), "", buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tenants[sub.tenant] == nil {
		h.tenants[sub.tenant] = make(map[*Subscriber]struct{})
	}
	h.tenants[sub.tenant][sub] = struct{}{}
	return sub, h.nextSeq(sub.tenant)
}

// Unsubscribe removes a subscriber. It is safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

func (h *Hub) remove(sub *Subscriber) {
	if sub.resource != "" {
		key := resourceKey{tenant: sub.tenant, resource: sub.resource}
		delete(h.resources[key], sub)
		if len(h.resources[key]) == 0 {
			delete(h.resources, key)
		}
	} else {
		delete(h.tenants[sub.tenant], sub)
		if len(h.tenants[sub.tenant]) == 0 {
			delete(h.tenants, sub.tenant)
		}
	}
	sub.close()
}

// Broadcast stamps the event with the tenant's next sequence id and offers
// it to every matching subscriber without blocking.
func (h *Hub) Broadcast(event order.StatusChanged) {
	tenant := event.Tenant.String()

	h.mu.Lock()
	defer h.mu.Unlock()

	msg := newMessage(h.nextSeq(tenant), event)

	for sub := range h.resources[resourceKey{tenant: tenant, resource: msg.ResourceID}] {
		h.offer(sub, msg)
	}
	for sub := range h.tenants[tenant] {
		h.offer(sub, msg)
	}
}

func (h *Hub) offer(sub *Subscriber, msg Message) {
	select {
	case sub.ch <- msg:
	default:
		h.remove(sub)
		h.metrics.Dropped(sub.transport)
		h.logger.Warn("dropping slow subscriber",
			"transport", sub.transport, "tenant", sub.tenant, "resource", sub.resource)
	}
}

// Publish lets the hub stand in for the broker when the service runs as a
// single process.
func (h *Hub) Publish(_ context.Context, event order.StatusChanged) error {
	h.Broadcast(event)
	return nil
}

// Subscribers reports open subscriptions of a tenant.
func (h *Hub) Subscribers(tenant kernel.TenantID) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.tenants[tenant.String()])
	for key, subs := range h.resources {
		if key.tenant == tenant.String() {
			n += len(subs)
		}
	}
	return n
}

func newSubscriber(transport, tenant, resource string, buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 1
	}
	return &Subscriber{
		transport: transport,
		tenant:    tenant,
		resource:  resource,
		ch:        make(chan Message, buffer),
		done:      make(chan struct{}),
	}
}
