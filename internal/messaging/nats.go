package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"lms-service/internal/metrics"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.MessagingMetrics
}

func NewNATSPublisher(url, subject string, logger *slog.Logger, mm *metrics.MessagingMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("lms-service"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: mm,
	}, nil
}

// Publish sends value on the configured subject. The key travels in the
// Nats-Msg-Id header so JetStream consumers can deduplicate.
func (p *NATSPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set(nats.MsgIdHdr, key)

	start := time.Now()
	err = p.conn.PublishMsg(msg)
	p.metrics.RecordPublish(ctx, DriverNATS, p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to NATS", "subject", p.subject, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "message sent to NATS", "subject", p.subject, "key", key)
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
