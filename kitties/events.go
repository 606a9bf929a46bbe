package kitties

import (
	"kitty-services/types"

	"github.com/rs/zerolog"
)

// EventSink receives lifecycle events. The engine publishes exactly one
// event per successful mutating call and none on failure; events for rolled
// back calls are never published.
type EventSink interface {
	Publish(event types.Event)
}

// LogSink writes events to the service log, the default sink when no
// external indexer is attached.
type LogSink struct {
	log *zerolog.Logger
}

func NewLogSink(log *zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(event types.Event) {
	s.log.Info().
		Str("event", string(event.Kind())).
		Interface("payload", event).
		Msg("kitty event")
}
