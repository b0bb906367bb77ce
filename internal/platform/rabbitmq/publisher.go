package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/phrazzld/taskdesk-api/internal/events"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher is an events.EventHandler that publishes each event to the exchange.
type Publisher struct {
	ch       Channel
	exchange string
	traceID  func(context.Context) string
	timeout  time.Duration
	logger   *slog.Logger
}

var _ events.EventHandler = (*Publisher)(nil)

// Option configures a Publisher.
type Option func(*Publisher)

// WithTraceID sets the function used to read the request trace id, which is
// forwarded in the X-Trace-ID header.
func WithTraceID(fn func(context.Context) string) Option {
	return func(p *Publisher) { p.traceID = fn }
}

// WithTimeout bounds each publish call. The default is five seconds.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) { p.timeout = d }
}

// NewPublisher creates a Publisher writing to exchange over ch.
func NewPublisher(ch Channel, exchange string, logger *slog.Logger, opts ...Option) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		ch:       ch,
		exchange: exchange,
		traceID:  func(context.Context) string { return "" },
		timeout:  5 * time.Second,
		logger:   logger.With(slog.String("component", "rabbitmq_publisher")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleEvent implements events.EventHandler.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	headers := amqp.Table{}
	if id := p.traceID(ctx); id != "" {
		headers["X-Trace-ID"] = id
	}

	// The request may already be winding down; give the publish its own budget.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.ch.PublishWithContext(pubCtx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Headers:      headers,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("failed to publish event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("published event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))
	return nil
}
