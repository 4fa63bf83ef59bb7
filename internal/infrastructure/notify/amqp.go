// Package notify contains the EventSink implementations that carry
// notification events out of the process.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pixelforge/storefront/internal/core/domain"
)

const defaultQueue = "storefront.notifications"

// AMQPConfig configures the RabbitMQ sink.
type AMQPConfig struct {
	URL   string
	Queue string
}

// amqpChannel is the subset of *amqp.Channel the sink uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// AMQPSink publishes events as JSON messages to a durable queue. A mail
// worker downstream turns them into emails. A closed channel is reopened on
// the next publish, redialing the broker if the connection is gone too.
type AMQPSink struct {
	mu      sync.Mutex
	url     string
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
	open    func() (amqpChannel, error)
}

// NewAMQPSink dials the broker and declares the queue.
func NewAMQPSink(cfg AMQPConfig) (*AMQPSink, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("amqp url is required")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = defaultQueue
	}

	s := &AMQPSink{url: cfg.URL, queue: queue}
	s.open = s.dialChannel
	ch, err := s.open()
	if err != nil {
		if s.conn != nil {
			_ = s.conn.Close()
		}
		return nil, err
	}
	s.channel = ch
	return s, nil
}

// dialChannel opens a channel and declares the queue. The connection is
// redialed first when it is missing or closed.
func (s *AMQPSink) dialChannel() (amqpChannel, error) {
	if s.conn == nil || s.conn.IsClosed() {
		conn, err := amqp.Dial(s.url)
		if err != nil {
			return nil, fmt.Errorf("amqp dial: %w", err)
		}
		s.conn = conn
	}
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", s.queue, err)
	}
	return ch, nil
}

func (s *AMQPSink) Publish(ctx context.Context, e domain.Event) error {
	msg, err := newPublishing(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == nil || s.channel.IsClosed() {
		if err := s.reopen(); err != nil {
			return err
		}
	}

	err = s.channel.PublishWithContext(ctx, "", s.queue, false, false, msg)
	if err == nil {
		return nil
	}
	if !errors.Is(err, amqp.ErrClosed) && !s.channel.IsClosed() {
		return fmt.Errorf("amqp publish: %w", err)
	}
	if rerr := s.reopen(); rerr != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	if err := s.channel.PublishWithContext(ctx, "", s.queue, false, false, msg); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// reopen replaces the current channel. Callers hold s.mu.
func (s *AMQPSink) reopen() error {
	if s.channel != nil {
		_ = s.channel.Close()
		s.channel = nil
	}
	ch, err := s.open()
	if err != nil {
		return fmt.Errorf("amqp reopen: %w", err)
	}
	s.channel = ch
	return nil
}

// Close closes the underlying channel and connection.
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != nil {
		_ = s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func newPublishing(e domain.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    e.OccurredAt,
		Type:         string(e.Kind),
		Headers: amqp.Table{
			"kind":    string(e.Kind),
			"subject": e.Subject,
		},
		Body: body,
	}, nil
}
