// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/internal/entity"
)

const OrderCreated = "created"

// OrderEvent is the message value written for every order event.
type OrderEvent struct {
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurredAt"`
	Order      *entity.Order `json:"order"`
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	writer MessageWriter
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order *entity.Order) error {
	return p.publish(ctx, order, OrderCreated)
}

func (p *Publisher) publish(ctx context.Context, order *entity.Order, eventType string) error {
	now := time.Now().UTC()
	value, err := json.Marshal(OrderEvent{Type: eventType, OccurredAt: now, Order: order})
	if err != nil {
		return err
	}

	// order-created-ORD-1700000000000-ABCDEFGHI
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%s", eventType, order.OrderID)),
		Value: value,
		Time:  now,
	}
	return p.writer.WriteMessages(ctx, msg)
}
