// Package queue defines message payloads exchanged over the message broker.
package queue

// SecurityEventMessage is published to the security.audit queue for every
// auth-relevant action.  It carries enough information for downstream
// consumers to build an audit trail without querying the primary database.
type SecurityEventMessage struct {
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	Severity  string            `json:"severity"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp string            `json:"timestamp"`
}
