package events

import "time"

// EventType enumerates supported security event identifiers.
type EventType string

const (
	EventLogonSucceeded         EventType = "logon_succeeded"
	EventLogonFailed            EventType = "logon_failed"
	EventAccountLockedOut       EventType = "account_locked_out"
	EventPasswordChanged        EventType = "password_changed"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
)

// AllEventTypes lists every event type, for consumers that subscribe to the
// full stream.
var AllEventTypes = []EventType{
	EventLogonSucceeded,
	EventLogonFailed,
	EventAccountLockedOut,
	EventPasswordChanged,
	EventPasswordResetRequested,
	EventPasswordResetCompleted,
}

// Event represents a security event emitted by the credential services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Username  string      `json:"username,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LogonFailedPayload payload.
type LogonFailedPayload struct {
	FailedLogonAttempts int `json:"failed_logon_attempts"`
}

// AccountLockedOutPayload payload.
type AccountLockedOutPayload struct {
	MaxFailedAttempts int `json:"max_failed_attempts"`
}
