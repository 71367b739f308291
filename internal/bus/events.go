// Package bus is the in-process pub/sub channel for pipeline lifecycle
// events. Observers (the TUI, metrics, logs) subscribe without the
// pipeline knowing about them.
package bus

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a pipeline lifecycle event.
type EventType string

const (
	// EventMessageReceived fires when a user message enters the pipeline.
	EventMessageReceived EventType = "message_received"

	// EventRoutingCompleted fires after intent classification.
	EventRoutingCompleted EventType = "routing_completed"

	// EventToolExecuted fires once per completed tool execution.
	EventToolExecuted EventType = "tool_executed"

	// EventResponseReady fires when the assistant reply is generated.
	EventResponseReady EventType = "response_ready"

	// EventPipelineFailed fires when the pipeline absorbs a failure.
	EventPipelineFailed EventType = "pipeline_failed"
)

// Event is one pipeline lifecycle occurrence.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewEvent builds an event with a fresh ID and current timestamp.
func NewEvent(eventType EventType, sessionID string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Payload:   payload,
	}
}
