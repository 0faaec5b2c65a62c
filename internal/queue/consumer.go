package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Consumer appends one line per booking event to a rotating log file.
type Consumer struct {
	URL string
	Out io.Writer
	Log *zap.Logger
}

// NewConsumer writes to path through lumberjack, rotating at 10 MB and
// keeping five compressed backups.
func NewConsumer(url, path string, log *zap.Logger) *Consumer {
	return &Consumer{
		URL: url,
		Out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
		Log: log,
	}
}

// Run consumes until ctx is cancelled, redialling with exponential backoff
// (capped at 30s) whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err == nil {
			backoff = time.Second
			err = c.consume(ctx, conn)
			_ = conn.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		c.Log.Warn("booking consumer disconnected", zap.Error(err), zap.Duration("retry_in", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	if _, err := ch.QueueDeclare(MeetingBookedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, MeetingBookedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.Log.Error("booking event rejected", zap.Error(err))
			// Not requeued: a malformed body would loop forever.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one event and writes its log line.
func (c *Consumer) Handle(body []byte) error {
	var ev MeetingBookedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.MeetingID == 0 {
		return errors.New("event without meeting_id")
	}
	line := fmt.Sprintf("[%s] Meeting booked | meeting_id=%d | client_id=%d | lawyer_id=%d | date=%s | time=%q | slots=[%s] | price=%d %s\n",
		ev.BookedAt, ev.MeetingID, ev.ClientID, ev.LawyerID, ev.Date, ev.Time,
		strings.Join(ev.ConsumedSlots, ","), ev.PriceCents, ev.Currency)
	if _, err := io.WriteString(c.Out, line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
