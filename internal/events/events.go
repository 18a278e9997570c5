package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type Type string

const (
	PricingUpserted        Type = "pricing.upserted"
	PricingRemoved         Type = "pricing.removed"
	PricingTypeInitialized Type = "pricing-type.initialized"
	RoadServiceChanged     Type = "road-service.changed"
)

// Event announces a change to pricing data.
type Event struct {
	Type          Type      `json:"type"`
	CompanyID     string    `json:"company_id,omitempty"`
	PricingTypeID string    `json:"pricing_type_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Key keeps events of one (company, pricing type) on one partition, in order.
func (e Event) Key() string {
	if e.CompanyID == "" {
		return string(e.Type)
	}
	return e.CompanyID + "." + e.PricingTypeID
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes events to Kafka.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(writer *kafka.Writer) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
	})
}
