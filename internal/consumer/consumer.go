package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"insurance-pricing-service/internal/events"
)

// CatalogReloader refreshes the in-memory pricing type catalog.
type CatalogReloader interface {
	Reload(ctx context.Context) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer keeps this instance's catalog in step with pricing type changes
// made through other instances.
type Consumer struct {
	reader   messageReader
	reloader CatalogReloader
}

func NewConsumer(reader *kafka.Reader, reloader CatalogReloader) *Consumer {
	return &Consumer{reader: reader, reloader: reloader}
}

// Start reads pricing events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	defer c.reader.Close()
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info().Msg("Pricing event consumer stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			continue
		}
		c.processMessage(ctx, msg)
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	var event events.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error().Msgf("Error unmarshalling message: %v", err)
		return
	}

	switch event.Type {
	case events.PricingTypeInitialized:
		if err := c.reloader.Reload(ctx); err != nil {
			log.Error().Msgf("Error reloading pricing type catalog: %v", err)
		}
	case events.PricingUpserted, events.PricingRemoved, events.RoadServiceChanged:
		// The configuration cache is shared and already invalidated by the writer.
	default:
		log.Warn().Msgf("Unknown pricing event type: %s", event.Type)
	}
}
