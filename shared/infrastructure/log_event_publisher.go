package infrastructure

import (
	"context"

	"github.com/draftea/provisioning-system/shared/events"
	"github.com/rs/zerolog"
)

var _ events.Publisher = (*LogEventPublisher)(nil)

// LogEventPublisher writes events to the structured log. Used when no
// broker is configured.
type LogEventPublisher struct {
	logger zerolog.Logger
}

func NewLogEventPublisher(logger zerolog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger.With().Str("component", "event_log").Logger()}
}

func (p *LogEventPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	for _, e := range evts {
		payload, err := e.MarshalPayload()
		if err != nil {
			return err
		}
		p.logger.Info().
			Str("event_id", e.ID.String()).
			Str("topic", e.Topic.String()).
			Str("aggregate_id", e.AggregateID.String()).
			RawJSON("payload", payload).
			Msg("event published")
	}
	return nil
}
