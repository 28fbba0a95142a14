package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/geodesylab/slowslip/internal/config"
	"github.com/geodesylab/slowslip/internal/domain"
)

// Writer produces catalog events to a Kafka topic.
// It implements pipeline.CatalogPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishCatalog serializes every catalog event and publishes them in a single
// WriteMessages call. Deterministic event IDs make redelivery idempotent for
// downstream consumers keyed on the ID.
func (w *Writer) PublishCatalog(ctx context.Context, catalog domain.Catalog) error {
	if len(catalog.Events) == 0 {
		w.logger.Info("empty catalog, nothing to publish")
		return nil
	}
	msgs := make([]kafkago.Message, len(catalog.Events))
	for i := range catalog.Events {
		msg, err := serializeToMessage(catalog.Events[i], catalog.GeneratedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a catalog event into a Kafka message.
func serializeToMessage(event domain.CatalogEvent, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize catalog event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
			{Key: "stations", Value: []byte(strconv.Itoa(len(event.Stations)))},
		},
	}, nil
}
