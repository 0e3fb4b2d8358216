// Package queue defines message payloads exchanged over the message broker.
package queue

// Audit actions published for break-glass operations.
const (
	ActionPasswordReset      = "password.reset"
	ActionSessionsInvalidate = "sessions.invalidate_all"
)

// AuditEvent is published whenever a master-password-gated operation runs.
// It carries enough information for downstream consumers to build an audit
// trail without querying the primary database. Secrets are never included.
type AuditEvent struct {
	EventID    string `json:"event_id"`
	Action     string `json:"action"`
	Username   string `json:"username,omitempty"` // target user for password resets
	SourceIP   string `json:"source_ip"`
	Succeeded  bool   `json:"succeeded"`
	OccurredAt string `json:"occurred_at"`
}
