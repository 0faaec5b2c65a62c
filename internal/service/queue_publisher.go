package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MathiAviles/abogapp/internal/queue"
)

// EventPublisher delivers domain events to the broker.
type EventPublisher interface {
	MeetingBooked(ctx context.Context, ev queue.MeetingBookedEvent) error
}

// AMQPPublisher publishes persistent JSON messages to RabbitMQ through the
// default exchange.  A connection is opened per publish; booking volume is
// low enough that this stays simple.
type AMQPPublisher struct {
	URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// MeetingBooked publishes ev to the meeting.booked queue.
func (p *AMQPPublisher) MeetingBooked(ctx context.Context, ev queue.MeetingBookedEvent) error {
	return p.publish(ctx, queue.MeetingBookedQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) MeetingBooked(context.Context, queue.MeetingBookedEvent) error { return nil }
