package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/capstone-dashboard-api/internal/observability"
)

// IngestionEvent announces an accepted upload to other services.
type IngestionEvent struct {
	Course        string    `json:"course"`
	Kind          string    `json:"kind"`
	Sprint        int       `json:"sprint"`
	FileName      string    `json:"file_name"`
	Records       int       `json:"records"`
	Warnings      int       `json:"warnings"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CompletedAt   time.Time `json:"completed_at"`
}

// EventPublisher delivers ingestion events.
type EventPublisher interface {
	PublishIngestion(ctx context.Context, event IngestionEvent) error
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher publishes events on subject. A nil connection yields a
// publisher that drops events.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "nats_publisher").Logger(),
	}
}

func (p *natsPublisher) PublishIngestion(ctx context.Context, event IngestionEvent) error {
	if p.conn == nil || p.subject == "" {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		observability.EventsPublished().WithLabelValues("error").Inc()
		return err
	}

	observability.EventsPublished().WithLabelValues("ok").Inc()
	p.logger.Debug().Str("course", event.Course).Str("kind", event.Kind).Msg("ingestion event published")
	return nil
}
