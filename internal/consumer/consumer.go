// Package consumer reads order events back from Kafka and drops the cached
// catalog entries of the ordered products. It backs up the invalidation the
// placing instance does inline, which is best effort.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"storefront/internal/events"
)

// readRetryDelay spaces out reads after a broker error.
const readRetryDelay = time.Second

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Invalidator drops cached products.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

type Consumer struct {
	reader MessageReader
	cache  Invalidator
}

func NewConsumer(reader MessageReader, cache Invalidator) *Consumer {
	return &Consumer{reader: reader, cache: cache}
}

// Run reads order events until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info().Msg("Order event consumer stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				log.Info().Msg("Order event consumer stopped")
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}
		c.processMessage(ctx, msg)
	}
}

// processMessage handles one event. key -> "order-created-ORD-..."
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	eventType, ok := eventTypeOf(string(msg.Key))
	if !ok {
		log.Error().Msgf("Unexpected message key: %s", msg.Key)
		return
	}

	var event events.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}
	if event.Order == nil {
		log.Error().Msgf("Order event %s has no order", msg.Key)
		return
	}

	switch eventType {
	case events.OrderCreated:
		ids := make([]string, 0, len(event.Order.Items))
		for _, item := range event.Order.Items {
			ids = append(ids, item.ProductID)
		}
		if err := c.cache.Invalidate(ctx, ids...); err != nil {
			log.Error().Msgf("Error invalidating products of order %s: %v", event.Order.OrderID, err)
		}
	default:
		log.Warn().Msgf("Unknown order event type: %s", eventType)
	}
}

func eventTypeOf(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, "order-")
	if !ok {
		return "", false
	}
	eventType, _, ok := strings.Cut(rest, "-")
	return eventType, ok && eventType != ""
}
