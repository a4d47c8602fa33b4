package broker

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/order"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher implements ports.Publisher on the fanout exchange. Messages are
// transient: a change nobody is listening for is not worth keeping.
type Publisher struct {
	conn *Connection
}

func NewPublisher(conn *Connection) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, event order.StatusChanged) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.conn.publish(func(ch *amqp.Channel) error {
		return ch.PublishWithContext(
			ctx,
			p.conn.Exchange(), // exchange
			"",                // routing key (ignored for fanout)
			false,             // mandatory
			false,             // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Transient,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
	})
}
