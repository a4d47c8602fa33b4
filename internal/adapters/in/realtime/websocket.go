package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
)

const maxInboundMessage = 512

// WebSocketTransport serves one resource channel per connection. Clients only
// listen; anything they send is read and discarded.
type WebSocketTransport struct {
	hub      *Hub
	limiter  *ConnLimiter
	metrics  *Metrics
	settings Settings
	upgrader websocket.Upgrader
	logger   *slog.Logger

	quit     chan struct{}
	quitOnce sync.Once
}

func NewWebSocketTransport(
	hub *Hub,
	limiter *ConnLimiter,
	metrics *Metrics,
	settings Settings,
	logger *slog.Logger,
) *WebSocketTransport {
	return &WebSocketTransport{
		hub:      hub,
		limiter:  limiter,
		metrics:  metrics,
		settings: settings,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Guest devices load the page from the tenant's own domain.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "websocket_transport"),
		quit:   make(chan struct{}),
	}
}

// Serve upgrades the request and streams the resource channel until the
// client leaves, falls behind, or the transport is closed. A source over its
// connection cap gets a RateLimitedError before the upgrade.
func (t *WebSocketTransport) Serve(
	w http.ResponseWriter,
	r *http.Request,
	tenant kernel.TenantID,
	resourceID kernel.UUID,
	source string,
) error {
	if err := t.limiter.Acquire(source); err != nil {
		return err
	}
	defer t.limiter.Release(source)

	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the client.
		t.logger.Debug("upgrade failed", "source", source, "error", err)
		return nil
	}

	sub := t.hub.SubscribeResource(tenant, resourceID, TransportWebSocket, t.settings.Watermark)
	t.metrics.Connected(TransportWebSocket)
	defer func() {
		t.hub.Unsubscribe(sub)
		t.metrics.Disconnected(TransportWebSocket)
		_ = conn.Close()
	}()

	closed := make(chan struct{})
	go t.readPump(conn, closed)
	t.writePump(conn, sub, closed)
	return nil
}

// Close ends every open connection.
func (t *WebSocketTransport) Close() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func (t *WebSocketTransport) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	pongWait := 2 * t.settings.Keepalive
	conn.SetReadLimit(maxInboundMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.logger.Debug("connection closed", "error", err)
			}
			return
		}
	}
}

func (t *WebSocketTransport) writePump(conn *websocket.Conn, sub *Subscriber, closed <-chan struct{}) {
	ticker := time.NewTicker(t.settings.Keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-sub.Done():
			t.closeWith(conn, websocket.ClosePolicyViolation, "slow consumer")
			return
		default:
		}

		select {
		case <-sub.Done():
			t.closeWith(conn, websocket.ClosePolicyViolation, "slow consumer")
			return
		case msg := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(t.settings.WriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(t.settings.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-closed:
			return
		case <-t.quit:
			t.closeWith(conn, websocket.CloseGoingAway, "server shutting down")
			return
		}
	}
}

func (t *WebSocketTransport) closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(t.settings.WriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
