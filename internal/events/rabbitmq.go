package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher keeps one connection open and publishes persistent JSON
// messages to durable queues through the default exchange.
type RabbitPublisher struct {
	url    string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitPublisher(url string, logger *slog.Logger) (*RabbitPublisher, error) {
	p := &RabbitPublisher{
		url:    url,
		logger: logger,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *RabbitPublisher) PublishBookingConfirmed(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, BookingConfirmedQueue, event)
}

func (p *RabbitPublisher) PublishBookingCancelled(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, BookingCancelledQueue, event)
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closeLocked()
}

func (p *RabbitPublisher) publish(ctx context.Context, queue string, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.logger.Warn("rabbitmq channel closed, reconnecting", "queue", queue)

		if err := p.connect(); err != nil {
			return err
		}
	}

	err = p.ch.PublishWithContext(ctx, "", queue, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}

	return nil
}

// connect must be called with mu held.
func (p *RabbitPublisher) connect() error {
	_ = p.closeLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	for _, queue := range []string{BookingConfirmedQueue, BookingCancelledQueue} {
		_, err := ch.QueueDeclare(queue, true, false, false, false, nil)
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("rabbitmq declare %s: %w", queue, err)
		}
	}

	p.conn = conn
	p.ch = ch

	return nil
}

func (p *RabbitPublisher) closeLocked() error {
	var errs []error

	if p.ch != nil && !p.ch.IsClosed() {
		errs = append(errs, p.ch.Close())
	}

	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}

	p.ch = nil
	p.conn = nil

	return errors.Join(errs...)
}
