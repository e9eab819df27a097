package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSaved   EventType = "user_saved"
	EventUserCreated EventType = "user_created"
	EventItemCreated EventType = "item_created"
	EventNoteCreated EventType = "note_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subject string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserSavedPayload is published when the tutorial API "saves" a user. The
// record is not persisted.
type UserSavedPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// ItemCreatedPayload payload.
type ItemCreatedPayload struct {
	ItemID  int64  `json:"item_id"`
	OwnerID int64  `json:"owner_id"`
	Title   string `json:"title"`
}

// NoteCreatedPayload payload.
type NoteCreatedPayload struct {
	NoteID    int64 `json:"note_id"`
	Completed bool  `json:"completed"`
}
