package events

import (
	"time"

	"github.com/spec-kit/job-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserUpdated    EventType = "user_updated"
	EventJobCreated     EventType = "job_created"
	EventJobUpdated     EventType = "job_updated"
	EventJobDeleted     EventType = "job_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	Company  string           `json:"company"`
	Position string           `json:"position"`
	Status   domain.JobStatus `json:"status"`
}

// JobUpdatedPayload payload. OldStatus equals NewStatus when the status did not change.
type JobUpdatedPayload struct {
	OldStatus domain.JobStatus `json:"old_status"`
	NewStatus domain.JobStatus `json:"new_status"`
}

// UserPayload payload.
type UserPayload struct {
	Email string `json:"email"`
}
