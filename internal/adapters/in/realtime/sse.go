package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// SnapshotFunc renders the full current state a stream starts with.
type SnapshotFunc func(ctx context.Context) (any, error)

// SSETransport serves tenant-wide event streams.
type SSETransport struct {
	hub      *Hub
	limiter  *ConnLimiter
	metrics  *Metrics
	settings Settings
	logger   *slog.Logger

	quit     chan struct{}
	quitOnce sync.Once
}

func NewSSETransport(hub *Hub, limiter *ConnLimiter, metrics *Metrics, settings Settings, logger *slog.Logger) *SSETransport {
	return &SSETransport{
		hub:      hub,
		limiter:  limiter,
		metrics:  metrics,
		settings: settings,
		logger:   logger.With("component", "sse_transport"),
		quit:     make(chan struct{}),
	}
}

// Serve writes a snapshot event and then one event per status change. The
// subscription is taken before the snapshot is read, so no change between the
// two is lost; it may show up in both. lastEventID is only logged: every
// stream, fresh or resumed, starts from a snapshot.
func (t *SSETransport) Serve(
	w http.ResponseWriter,
	r *http.Request,
	tenant kernel.TenantID,
	source string,
	lastEventID uint64,
	snapshot SnapshotFunc,
) error {
	if err := t.limiter.Acquire(source); err != nil {
		return err
	}
	defer t.limiter.Release(source)

	sub, seq := t.hub.SubscribeTenant(tenant, TransportSSE, t.settings.Watermark)
	defer t.hub.Unsubscribe(sub)

	state, err := snapshot(r.Context())
	if err != nil {
		return err
	}

	t.metrics.Connected(TransportSSE)
	defer t.metrics.Disconnected(TransportSSE)

	if lastEventID != 0 {
		t.logger.Debug("stream resumed", "tenant", tenant.String(), "last_event_id", lastEventID, "snapshot_id", seq)
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err = t.send(rc, func() error { return writeEvent(w, seq, "snapshot", state) }); err != nil {
		return nil
	}

	ticker := time.NewTicker(t.settings.Keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-sub.Done():
			// Dropped for reading too slowly; the client reconnects into a fresh snapshot.
			return nil
		case msg := <-sub.C():
			if err = t.send(rc, func() error { return writeEvent(w, msg.Seq, "status", msg) }); err != nil {
				return nil
			}
		case <-ticker.C:
			if err = t.send(rc, func() error { return writeComment(w, "keepalive") }); err != nil {
				return nil
			}
		case <-r.Context().Done():
			return nil
		case <-t.quit:
			return nil
		}
	}
}

// Close ends every open stream.
func (t *SSETransport) Close() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func (t *SSETransport) send(rc *http.ResponseController, write func() error) error {
	if err := rc.SetWriteDeadline(time.Now().Add(t.settings.WriteTimeout)); err != nil &&
		!errors.Is(err, http.ErrNotSupported) {
		return err
	}
	if err := write(); err != nil {
		return err
	}
	return rc.Flush()
}

func writeEvent(w io.Writer, id uint64, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, data)
	return err
}

func writeComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
