package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/golden-vcr/openaccess"
)

type Type string

const (
	TypeUserLinked          Type = "user-linked"
	TypeUserUnlinked        Type = "user-unlinked"
	TypeEntitlementsChanged Type = "entitlements-changed"
)

// Event describes a change that was accepted by the Open Access API
type Event struct {
	Type          Type                    `json:"type"`
	PartnerUserId string                  `json:"partner_user_id"`
	Entitlements  openaccess.Entitlements `json:"entitlements,omitempty"`
}

// Producer publishes events
type Producer interface {
	Send(ctx context.Context, ev Event) error
}

// publisher is the subset of *amqp.Channel used to publish messages
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type amqpProducer struct {
	ch       publisher
	exchange string
}

// NewProducer opens a channel on the given connection, declares a durable fanout
// exchange with the given name, and returns a Producer that publishes to it
func NewProducer(conn *amqp.Connection, exchange string) (Producer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}
	return &amqpProducer{
		ch:       ch,
		exchange: exchange,
	}, nil
}

func (p *amqpProducer) Send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   uuid.NewString(),
		Timestamp:   time.Now(),
		Type:        string(ev.Type),
		Body:        body,
	})
}

// NoopProducer discards all events; it's used when no AMQP broker is configured
type NoopProducer struct{}

func (NoopProducer) Send(ctx context.Context, ev Event) error {
	return nil
}
