package playback

import (
	"time"

	"lyrica/internal/core/model"
)

// EventType defines the type of playback engine event.
type EventType string

const (
	EventStateChange    EventType = "state_change"
	EventProgress       EventType = "progress"
	EventTokenAdvance   EventType = "token_advance"
	EventSeek           EventType = "seek"
	EventTokensReplaced EventType = "tokens_replaced"
)

// Event represents a playback engine update for observers.
type Event struct {
	Type               EventType
	Status             model.Status
	PositionMs         float64
	DurationMs         float64
	OriginalPositionMs float64
	OriginalDurationMs float64
	TokenIndex         int
	At                 time.Time
}
