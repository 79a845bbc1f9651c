package domain

import "time"

type EventType string

const (
	EventAttempt          EventType = "attempt"
	EventPassphraseFailed EventType = "passphrase_failed"
	EventSuccess          EventType = "success"
	EventGeneralFailure   EventType = "general_failure"
)

// AuditEntry is an immutable record of one signing-related event.
// DocumentID is empty for pre-document events such as authentication
// failures and user registration. Entries reference documents and
// applications by id only and outlive both.
type AuditEntry struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id,omitempty"`
	GovtID     string    `json:"govt_id,omitempty"`
	AppID      string    `json:"app_id,omitempty"`
	AppUserID  string    `json:"app_user_id,omitempty"`
	EventType  EventType `json:"event_type"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// DocumentEventType labels lifecycle events published for integrators.
type DocumentEventType string

const (
	DocumentSubmitted DocumentEventType = "submitted"
	DocumentSigned    DocumentEventType = "signed"
	DocumentFailed    DocumentEventType = "failed"
	DocumentCanceled  DocumentEventType = "canceled"
)

type DocumentEvent struct {
	Type       DocumentEventType `json:"type"`
	DocumentID string            `json:"document_id"`
	AppID      string            `json:"app_id"`
	At         time.Time         `json:"at"`
}
