// Package queue publishes order events to RabbitMQ for downstream consumers
// (receipts, admin reporting). Publishing is best effort: failures are logged
// and never fail a checkout.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const orderPaidQueue = "order.paid"

// OrderPaidEvent is the wire payload for a completed checkout.
type OrderPaidEvent struct {
	OrderID    string      `json:"order_id"`
	OwnerKey   string      `json:"owner_key"`
	TotalCents int64       `json:"total_cents"`
	Lines      []OrderLine `json:"lines"`
	PaidAt     time.Time   `json:"paid_at"`
}

type OrderLine struct {
	TicketTypeID string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
}

// Publisher owns a long-lived connection and channel. A nil Publisher is a
// valid no-op, used when AMQP_URL is not configured.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *logrus.Logger
}

func NewPublisher(url string, log *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	// Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(orderPaidQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare %s: %w", orderPaidQueue, err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

// PublishOrderPaid sends the event as a persistent JSON message.
func (p *Publisher) PublishOrderPaid(ctx context.Context, event OrderPaidEvent) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order.paid: %w", err)
	}
	err = p.ch.PublishWithContext(ctx,
		"",             // default exchange
		orderPaidQueue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.log.WithError(err).WithField("order_id", event.OrderID).Error("failed to publish order.paid")
		return err
	}
	return nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	_ = p.ch.Close()
	_ = p.conn.Close()
}
