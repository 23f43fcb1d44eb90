package events

import (
	"time"

	"github.com/spec-kit/school-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventMessagePosted  EventType = "message_posted"
	EventContactChanged EventType = "contact_changed"
)

// Actor identifies the principal that triggered an event.
type Actor struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// MessagePostedPayload payload.
type MessagePostedPayload struct {
	MessageID   string `json:"message_id"`
	GroupName   string `json:"group_name"`
	BodyPreview string `json:"body_preview"`
}

// ContactChangedPayload payload.
type ContactChangedPayload struct {
	ContactID string `json:"contact_id"`
	Change    string `json:"change"`
}
