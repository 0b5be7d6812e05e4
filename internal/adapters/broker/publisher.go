// Package broker publishes registration changes to RabbitMQ. Publishing is best effort:
// failures are returned so callers can log them without failing the request.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"ourevents/internal/domain"
)

// RegistrationQueue is the durable queue registration changes are routed to.
const RegistrationQueue = "registration.changed"

type dialFunc func(ctx context.Context, url string) (amqpConnection, error)

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connAdapter struct {
	*amqp.Connection
}

func (c connAdapter) Channel() (amqpChannel, error) {
	return c.Connection.Channel()
}

// dialAMQP connects within ctx: the TCP dial and the AMQP handshake share its deadline.
func dialAMQP(ctx context.Context, url string) (amqpConnection, error) {
	var dialer net.Dialer
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			c, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if deadline, ok := ctx.Deadline(); ok {
				if err := c.SetDeadline(deadline); err != nil {
					_ = c.Close()
					return nil, err
				}
			}
			return c, nil
		},
	})
	if err != nil {
		return nil, err
	}
	return connAdapter{conn}, nil
}

type amqpPublisher struct {
	url    string
	dial   dialFunc
	logger *slog.Logger
}

// NewRegistrationPublisher returns a publisher that dials url for each message.
// An empty url disables publishing.
func NewRegistrationPublisher(url string, logger *slog.Logger) domain.RegistrationPublisher {
	if url == "" {
		return noopPublisher{}
	}
	return &amqpPublisher{url: url, dial: dialAMQP, logger: logger}
}

func (p *amqpPublisher) PublishRegistrationChanged(ctx context.Context, msg domain.RegistrationChanged) error {
	if err := p.publish(ctx, msg); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "registration message published",
		"queue", RegistrationQueue, "user_id", msg.UserID, "event_id", msg.EventID, "action", msg.Action)
	return nil
}

func (p *amqpPublisher) publish(ctx context.Context, msg domain.RegistrationChanged) error {
	conn, err := p.dial(ctx, p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(RegistrationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         RegistrationQueue,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", RegistrationQueue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishRegistrationChanged(context.Context, domain.RegistrationChanged) error {
	return nil
}
