// Package messaging delivers domain events to NATS or Kafka.
package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"lms-service/internal/config"
	"lms-service/internal/metrics"
)

const (
	DriverNone  = "none"
	DriverNATS  = "nats"
	DriverKafka = "kafka"
)

// Publisher sends a JSON-encoded value under key.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// New builds the publisher selected by cfg.Driver. mm may be nil.
func New(cfg config.MessagingConfig, logger *slog.Logger, mm *metrics.MessagingMetrics) (Publisher, error) {
	switch cfg.Driver {
	case "", DriverNone:
		logger.Info("event publishing disabled")
		return Noop{}, nil
	case DriverNATS:
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger, mm)
	case DriverKafka:
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, mm)
	default:
		return nil, fmt.Errorf("unknown messaging driver %q", cfg.Driver)
	}
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(ctx context.Context, key string, value interface{}) error { return nil }

func (Noop) Close() error { return nil }
