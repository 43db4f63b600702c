// Package events publishes Example lifecycle events to a Redis stream.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream carrying example events.
const StreamName = "example-events"

// EventType represents the type of example event.
type EventType string

const (
	ExampleCreated EventType = "EXAMPLE_CREATED"
	ExampleUpdated EventType = "EXAMPLE_UPDATED"
	ExampleDeleted EventType = "EXAMPLE_DELETED"
)

// ExampleEvent is the envelope for all example events.
type ExampleEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	ExampleID int64     `json:"example_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ExampleSnapshotPayload carries the example state for created and deleted events.
type ExampleSnapshotPayload struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ExampleUpdatedPayload lists the fields an update touched.
type ExampleUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
	Name          string   `json:"name"`
	IsActive      bool     `json:"is_active"`
}
