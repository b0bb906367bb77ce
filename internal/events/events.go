package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Task lifecycle event types. They double as broker routing keys.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskUpdated       = "task.updated"
	TypeTaskStatusChanged = "task.status_changed"
	TypeTaskVerified      = "task.verified"
	TypeTaskDeleted       = "task.deleted"
)

// Event records a committed change to a task.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// TaskID is the task the change applies to
	TaskID uuid.UUID `json:"task_id"`

	// ActorID is the user whose request produced the change
	ActorID uuid.UUID `json:"actor_id"`

	// Payload is the JSON snapshot relevant to the event, usually the task itself
	Payload json.RawMessage `json:"payload,omitempty"`

	// OccurredAt is the timestamp when the change was committed
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with a fresh ID. A nil payload is omitted.
func NewEvent(eventType string, taskID, actorID uuid.UUID, payload interface{}) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     taskID,
		ActorID:    actorID,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
