package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/dwikikusuma/marketplace/internal/restock/app"
)

const publishTimeout = 5 * time.Second

// Notifier publishes rendered notifications to a topic exchange. Delivery is
// fire-and-forget: the caller logs failures and moves on, so this type makes
// no reconnect or confirm guarantees.
type Notifier struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	log        *slog.Logger
}

func NewNotifier(url, exchange, routingKey string, log *slog.Logger) (*Notifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &Notifier{conn: conn, channel: ch, exchange: exchange, routingKey: routingKey, log: log}, nil
}

func (n *Notifier) Close() error {
	if err := n.channel.Close(); err != nil {
		return fmt.Errorf("close channel: %w", err)
	}
	return n.conn.Close()
}

type notificationPayload struct {
	RecipientUserID     string    `json:"recipient_user_id,omitempty"`
	RecipientSupplierID string    `json:"recipient_supplier_id,omitempty"`
	Subject             string    `json:"subject"`
	Body                string    `json:"body"`
	SentAt              time.Time `json:"sent_at"`
}

func (n *Notifier) Notify(ctx context.Context, msg app.Notification) error {
	body, err := json.Marshal(notificationPayload{
		RecipientUserID:     msg.RecipientUserID,
		RecipientSupplierID: msg.RecipientSupplierID,
		Subject:             msg.Subject,
		Body:                msg.Body,
		SentAt:              time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- n.channel.Publish(n.exchange, n.routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("publish notification: %w", err)
		}
		n.log.Debug("notification published", slog.String("subject", msg.Subject))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish notification: %w", ctx.Err())
	}
}

// NopNotifier drops notifications; used when dispatch is disabled by config.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, msg app.Notification) error { return nil }
