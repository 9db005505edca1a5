package events

import (
	"time"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventRunCompleted EventType = "run_completed"
	EventRunFailed    EventType = "run_failed"
)

// Event represents a pipeline event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RunStartedPayload payload.
type RunStartedPayload struct {
	Sources []string `json:"sources"`
	Workers int      `json:"workers"`
}

// RunCompletedPayload carries the final report.
type RunCompletedPayload struct {
	Report domain.RunReport `json:"report"`
}

// RunFailedPayload payload.
type RunFailedPayload struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}
