/**
 * @description
 * This package provides a producer for publishing ledger domain events to
 * RabbitMQ. It encapsulates the connection handling and exposes a small
 * Publisher interface so the application layer never touches AMQP types
 * directly; a no-op fallback publisher keeps the service usable when the
 * broker is unavailable at startup.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/blockbudget/ledger-service/internal/domain"
)

// LedgerEventExchange is the topic exchange all domain events go to; the
// routing key is the event type (e.g. "campaign.contribution_refunded").
const LedgerEventExchange = "ledger.events"

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, event domain.Event) error
	Close()
}

// EventProducer holds the RabbitMQ connection and channel for publishing messages.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// FallbackPublisher is a minimal no-op publisher used when RabbitMQ is
// unavailable at startup.
type FallbackPublisher struct{}

func (p *FallbackPublisher) PublishLedgerEvent(ctx context.Context, event domain.Event) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"event publish skipped\" type=%s entity=%s", event.Type, event.EntityID)
	return nil
}

func (p *FallbackPublisher) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	// If any stray characters precede the scheme, slice from first occurrence of amqp
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("unsupported amqp scheme")
	}
	return u.String(), nil
}

// NewEventProducer connects to RabbitMQ and declares the ledger event
// exchange.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("invalid rabbitmq url: %w", err)
	}

	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(LedgerEventExchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &EventProducer{conn: conn, channel: channel}, nil
}

// PublishLedgerEvent publishes one domain event with its type as routing key.
func (p *EventProducer) PublishLedgerEvent(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(pubCtx,
		LedgerEventExchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		})
}

// Close shuts down the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
