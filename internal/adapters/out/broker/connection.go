// Package broker carries status changes between service processes over a
// RabbitMQ fanout exchange. Every process publishes to the exchange and
// consumes from its own exclusive queue, so each process's realtime hub sees
// every change regardless of which process committed it.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultExchange = "orderflow.status"
	dialAttempts    = 5
	dialTimeout     = 3 * time.Second
)

var (
	// ErrUnavailable is returned while the connection is being re-established.
	ErrUnavailable = errors.New("broker unavailable")
	ErrClosed      = errors.New("broker connection closed")
)

// Connection wraps an AMQP connection and the one channel used for
// publishing. The mutex only guards the handles; dialing happens outside it,
// at most once at a time, so a dead broker never stalls publishers.
type Connection struct {
	url         string
	exchange    string
	dialTimeout time.Duration
	logger      *slog.Logger

	redial singleflight.Group

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

func newConnection(url, exchange string, logger *slog.Logger) *Connection {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Connection{
		url:         url,
		exchange:    exchange,
		dialTimeout: dialTimeout,
		logger:      logger.With("component", "amqp_connection"),
	}
}

// Dial connects and declares the exchange, retrying with a linear backoff.
func Dial(ctx context.Context, url, exchange string, logger *slog.Logger) (*Connection, error) {
	c := newConnection(url, exchange, logger)

	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		if err = c.reconnect(); err == nil {
			return c, nil
		}
		if attempt == dialAttempts {
			break
		}

		wait := time.Duration(attempt) * 2 * time.Second
		c.logger.WarnContext(ctx, "broker unreachable, retrying", "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect to broker after %d attempts: %w", dialAttempts, err)
}

// dial opens a connection and a channel with the exchange declared. The
// handshake is bounded by dialTimeout.
func (c *Connection) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(c.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(c.dialTimeout),
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if err = declareExchange(ch, c.exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// reconnect replaces dead handles. Concurrent callers share one dial.
func (c *Connection) reconnect() error {
	_, err, _ := c.redial.Do("dial", func() (any, error) {
		if c.isClosed() {
			return nil, ErrClosed
		}
		if _, _, ok := c.healthy(); ok {
			return nil, nil
		}

		conn, ch, err := c.dial()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			_ = ch.Close()
			_ = conn.Close()
			return nil, ErrClosed
		}
		c.closeLocked()
		c.conn, c.channel = conn, ch
		return nil, nil
	})
	return err
}

func (c *Connection) healthy() (*amqp.Connection, *amqp.Channel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed()
	return c.conn, c.channel, ok
}

func (c *Connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func declareExchange(ch *amqp.Channel, name string) error {
	if err := ch.ExchangeDeclare(
		name,     // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}

// publish runs fn on the shared channel. While the broker is down it fails
// fast with ErrUnavailable and leaves a reconnect running in the background.
func (c *Connection) publish(fn func(ch *amqp.Channel) error) error {
	if c.isClosed() {
		return ErrClosed
	}
	_, ch, ok := c.healthy()
	if !ok {
		go func() {
			if err := c.reconnect(); err != nil && !errors.Is(err, ErrClosed) {
				c.logger.Warn("reconnect to broker failed", "error", err)
			}
		}()
		return ErrUnavailable
	}
	return fn(ch)
}

// openChannel hands a consumer its own channel, reconnecting first if needed.
func (c *Connection) openChannel(ctx context.Context) (*amqp.Channel, error) {
	conn, _, ok := c.healthy()
	if !ok {
		done := make(chan error, 1)
		go func() { done <- c.reconnect() }()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-done:
			if err != nil {
				return nil, err
			}
		}
		if conn, _, ok = c.healthy(); !ok {
			return nil, ErrUnavailable
		}
	}
	return conn.Channel()
}

func (c *Connection) Exchange() string {
	return c.exchange
}

// Close shuts the connection down for good; later publishes get ErrClosed.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	var err error
	if c.channel != nil && !c.channel.IsClosed() {
		err = c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		err = errors.Join(err, c.conn.Close())
	}
	c.channel = nil
	c.conn = nil
	return err
}
