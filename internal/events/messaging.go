package events

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange          = "ecommerce.events"
	OrderPlacedRoutingKey   = "order.placed.v1"
	EventTypeOrderPlaced    = "OrderPlaced"
	OrderPlacedEventVersion = 1
	OrderPlacedSchemaPath   = "contracts/events/storefront/OrderPlaced.v1.enveloped.schema.json"
	DefaultProducer         = "storefront-service"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

func declareEventsExchange(ch channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
