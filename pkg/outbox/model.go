package outbox

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// MaxRetries is how many failed dispatches an event gets before it is parked.
const MaxRetries = 5

type Event struct {
	ID            int64             `json:"id"`
	EventID       string            `json:"event_id"`
	AggregateType string            `json:"aggregate_type"`
	AggregateID   string            `json:"aggregate_id"`
	Type          string            `json:"type"`
	Payload       []byte            `json:"payload"`
	Headers       map[string]string `json:"headers,omitempty"`
	Traceparent   string            `json:"traceparent,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Status        Status            `json:"status"`
	RelayID       string            `json:"relay_id,omitempty"`
	LeaseUntil    time.Time         `json:"lease_until,omitempty"`
	RetryCount    int               `json:"retry_count"`
	LastError     *string           `json:"last_error,omitempty"`
}

// NewEvent builds a pending event with a fresh EventID.
func NewEvent(aggregateType, aggregateID, eventType string, payload []byte) Event {
	return Event{
		EventID:       uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
		Status:        StatusPending,
	}
}

// Claimable reports whether a relay may pick the event up at now.
func (e Event) Claimable(now time.Time) bool {
	switch e.Status {
	case StatusPending:
		return true
	case StatusFailed:
		return e.RetryCount < MaxRetries
	case StatusInProgress:
		return now.After(e.LeaseUntil)
	}
	return false
}
