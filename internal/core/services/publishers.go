package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/pkg/rabbitmq"
)

// rabbitPublisher connects lazily and reconnects after a failed publish.
type rabbitPublisher struct {
	mu       sync.Mutex
	url      string
	exchange string
	producer *rabbitmq.EventProducer
}

// NewRabbitPublisher publishes outbox messages to a durable topic exchange.
func NewRabbitPublisher(amqpURL, exchange string) portssvc.EventPublisher {
	return &rabbitPublisher{url: amqpURL, exchange: exchange}
}

func (p *rabbitPublisher) Publish(ctx context.Context, msg domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.producer == nil {
		producer, err := rabbitmq.NewEventProducer(p.url, p.exchange)
		if err != nil {
			return err
		}
		p.producer = producer
	}
	if err := p.producer.Publish(ctx, msg.RoutingKey, msg.EventID, msg.Payload); err != nil {
		_ = p.producer.Close()
		p.producer = nil
		return err
	}
	return nil
}

func (p *rabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.producer == nil {
		return nil
	}
	err := p.producer.Close()
	p.producer = nil
	return err
}

// logPublisher writes events to the log when no broker is configured.
type logPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(logger *slog.Logger) portssvc.EventPublisher {
	return &logPublisher{logger: logger}
}

func (p *logPublisher) Publish(ctx context.Context, msg domain.OutboxMessage) error {
	p.logger.InfoContext(ctx, "Event published",
		slog.String("event_id", msg.EventID),
		slog.String("routing_key", msg.RoutingKey),
		slog.Int("payload_bytes", len(msg.Payload)))
	return nil
}

func (p *logPublisher) Close() error { return nil }
