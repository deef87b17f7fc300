// Package events publishes reservation lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types.
const (
	TypeCreated   = "reservation.created"
	TypeUpdated   = "reservation.updated"
	TypeCancelled = "reservation.cancelled"
	TypeDeleted   = "reservation.deleted"
)

// Event is the message body. Deleted events carry only the identifiers.
type Event struct {
	ID            uuid.UUID          `json:"id"`
	Type          string             `json:"type"`
	OccurredAt    time.Time          `json:"occurred_at"`
	ReservationID int64              `json:"reservation_id"`
	ResourceID    int64              `json:"resource_id"`
	Reservation   *model.Reservation `json:"reservation,omitempty"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(typ string, reservationID, resourceID int64, res *model.Reservation) Event {
	return Event{
		ID:            uuid.New(),
		Type:          typ,
		OccurredAt:    time.Now().UTC(),
		ReservationID: reservationID,
		ResourceID:    resourceID,
		Reservation:   res,
	}
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Producer writes events to one Kafka topic, keyed by resource so all events
// of a resource land on the same partition in order.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer initializes a Kafka producer.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish publishes a message to Kafka.
func (p *Producer) Publish(ctx context.Context, e Event) error {
	const op = "events.producer.Publish"

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.ResourceID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close flushes pending writes.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
