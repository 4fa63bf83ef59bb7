package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/core/domain"
)

// LogSink writes events to the log. Used in development when neither a
// broker nor a database is available for notifications.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, e domain.Event) error {
	s.log.Info().
		Str("kind", string(e.Kind)).
		Str("subject", e.Subject).
		Str("recipient", e.Recipient).
		Interface("attributes", e.Attributes).
		Time("occurred_at", e.OccurredAt).
		Msg("notification")
	return nil
}
