package notify

import (
	"time"

	"github.com/google/uuid"
)

// Meta identifies one published event.
type Meta struct {
	// Unique event ID.
	ID string `json:"id"`
	// Trace / request correlation ID.
	CorrelationID string `json:"correlation_id,omitempty"`
	// Emitting service and version.
	Producer string `json:"producer,omitempty"`
	// Timestamp when the event was emitted.
	Time time.Time `json:"time"`
	// Event name and version, e.g. status.changed.v1.
	Type string `json:"type"`
}

// Envelope is the JSON wire shape for published events.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// NewEnvelope wraps data in a versioned envelope with a fresh event id.
func NewEnvelope(eventType, producer string, data any, now time.Time) Envelope {
	return Envelope{
		Meta: Meta{
			ID:       uuid.NewString(),
			Producer: producer,
			Time:     now,
			Type:     eventType + ".v1",
		},
		Data: data,
	}
}
