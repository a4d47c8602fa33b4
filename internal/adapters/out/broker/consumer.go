package broker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Sink receives decoded status changes.
type Sink interface {
	Broadcast(event order.StatusChanged)
}

// Consumer feeds every message of the exchange into a Sink through a queue
// that exists only while this process is connected.
type Consumer struct {
	conn   *Connection
	sink   Sink
	logger *slog.Logger
	retry  time.Duration
}

func NewConsumer(conn *Connection, sink Sink, logger *slog.Logger) *Consumer {
	return &Consumer{
		conn:   conn,
		sink:   sink,
		logger: logger.With("component", "amqp_consumer"),
		retry:  2 * time.Second,
	}
}

// Run consumes until ctx is cancelled, resubscribing after connection loss.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.WarnContext(ctx, "consumer interrupted, resubscribing", "error", err, "wait", c.retry)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.retry):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	ch, err := c.conn.openChannel(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	queue, err := ch.QueueDeclare(
		"",    // name: server generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}
	if err = ch.QueueBind(queue.Name, "", c.conn.Exchange(), false, nil); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(
		ctx,
		queue.Name, // queue
		"",         // consumer tag
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "consuming status changes", "queue", queue.Name, "exchange", c.conn.Exchange())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	event, err := decode(d.Body)
	if err != nil {
		c.logger.WarnContext(ctx, "discarding malformed status message", "error", err, "size", len(d.Body))
		return
	}
	c.sink.Broadcast(event)
}
