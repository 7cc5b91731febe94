// Package amqp publishes and consumes expense change events over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"pengeluaran/internal/core"
)

const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
	publishTimeout   = 5 * time.Second
	maxBackoff       = 30 * time.Second
	prefetch         = 1
)

var (
	ErrBreakerOpen      = errors.New("event publishing paused after repeated failures")
	errDeliveriesClosed = errors.New("delivery channel closed")
	errClientClosed     = errors.New("AMQP client closed")
)

// EventHandler processes one event. Returning an error requeues it.
type EventHandler func(ctx context.Context, ev *ExpenseEvent) error

// Client owns one connection and channel. Both are reopened on demand
// after the broker drops them.
type Client struct {
	url      string
	exchange string
	queue    string
	breaker  *breaker

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	closed  bool
}

// NewClient connects to url and declares a durable direct exchange with
// one queue bound under its own name.
func NewClient(url, exchange, queue string) (*Client, error) {
	c := newClient(url, exchange, queue)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dialLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(url, exchange, queue string) *Client {
	return &Client{
		url:      url,
		exchange: exchange,
		queue:    queue,
		breaker:  newBreaker(breakerThreshold, breakerCooldown),
	}
}

func (c *Client) dialLocked() error {
	c.dropLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declare(ch, c.exchange, c.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	c.conn, c.channel = conn, ch
	return nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	return nil
}

// channelFor returns the open channel, redialling if the broker closed it.
func (c *Client) channelFor(ctx context.Context) (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errClientClosed
	}
	if c.channel != nil && !c.channel.IsClosed() && !c.conn.IsClosed() {
		return c.channel, nil
	}
	slog.InfoContext(ctx, "Reconnecting to AMQP broker", "component", "amqp", "exchange", c.exchange)
	if err := c.dialLocked(); err != nil {
		return nil, err
	}
	return c.channel, nil
}

func (c *Client) PublishExpenseCreated(ctx context.Context, e core.Expense) error {
	return c.Publish(ctx, NewExpenseEvent(EventExpenseCreated, e))
}

func (c *Client) PublishExpenseDeleted(ctx context.Context, e core.Expense) error {
	return c.Publish(ctx, NewExpenseEvent(EventExpenseDeleted, e))
}

// Publish sends ev as a persistent JSON message. While the breaker is open
// it returns ErrBreakerOpen without touching the broker.
func (c *Client) Publish(ctx context.Context, ev *ExpenseEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.breaker.allow() {
		return fmt.Errorf("%w: dropping %s", ErrBreakerOpen, ev.Type)
	}

	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}

	if err := c.send(ctx, ev, body); err != nil {
		if c.breaker.failure() {
			slog.WarnContext(ctx, "AMQP publishing paused", "component", "amqp", "cooldown", breakerCooldown)
		}
		return err
	}
	c.breaker.success()

	slog.InfoContext(ctx, "Published expense event",
		"component", "amqp",
		"type", ev.Type,
		"expense_id", ev.ID,
		"exchange", c.exchange)
	return nil
}

func (c *Client) send(ctx context.Context, ev *ExpenseEvent, body []byte) error {
	ch, err := c.channelFor(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    ev.Timestamp,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, c.exchange, c.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Consume hands events to handler one at a time until ctx is done. A lost
// connection is redialled with exponential backoff; other errors end the
// loop.
func (c *Client) Consume(ctx context.Context, handler EventHandler) error {
	for attempt := 0; ; attempt++ {
		err := c.consume(ctx, handler, func() { attempt = 0 })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) {
			return err
		}

		wait := backoff(attempt)
		slog.WarnContext(ctx, "AMQP consumer disconnected",
			"component", "amqp", "error", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consume(ctx context.Context, handler EventHandler, subscribed func()) error {
	ch, err := c.channelFor(ctx)
	if err != nil {
		return err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	subscribed()
	slog.InfoContext(ctx, "Consuming expense events", "component", "amqp", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}
			dispatch(ctx, d.Body, d, handler)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// dispatch acks handled events, requeues handler failures and drops bodies
// that do not decode.
func dispatch(ctx context.Context, body []byte, ack acknowledger, handler EventHandler) {
	ev, err := ExpenseEventFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping undecodable message", "component", "amqp", "error", err)
		_ = ack.Nack(false, false)
		return
	}
	log := slog.With("component", "amqp", "type", ev.Type, "expense_id", ev.ID)

	if err := handler(ctx, ev); err != nil {
		log.ErrorContext(ctx, "Expense event handler failed, requeueing", "error", err)
		_ = ack.Nack(false, true)
		return
	}
	if err := ack.Ack(false); err != nil {
		log.WarnContext(ctx, "Failed to ack expense event", "error", err)
		return
	}
	log.InfoContext(ctx, "Processed expense event")
}

// Close shuts the connection. Later publishes fail with errClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.dropLocked()
}

func (c *Client) dropLocked() error {
	var err error
	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		if cerr := c.conn.Close(); cerr != nil && !errors.Is(cerr, amqp091.ErrClosed) {
			err = cerr
		}
		c.conn = nil
	}
	return err
}

// backoff is 1s doubling per attempt, capped at maxBackoff.
func backoff(attempt int) time.Duration {
	attempt = min(max(attempt, 0), 5)
	return min(time.Second<<attempt, maxBackoff)
}

// retryable reports whether err means the broker connection went away.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Recover || amqpErr.Code == amqp091.ConnectionForced
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) ||
		errors.Is(err, errDeliveriesClosed) ||
		errors.Is(err, amqp091.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
