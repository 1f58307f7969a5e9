package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// EventTypeDecision is an authorization decision on a project
	EventTypeDecision EventType = "authz.decision"
	// EventTypeBatchDecision is a bulk read filter evaluation
	EventTypeBatchDecision EventType = "authz.batch_decision"
	// EventTypeResolution is a credential resolution attempt
	EventTypeResolution EventType = "authn.resolution"
)

// Event is a single audit trail entry
type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType EventType `json:"event_type"`

	// Actor
	UserID    string `json:"user_id,omitempty"`
	Method    string `json:"method,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`

	// Decision
	ProjectID string `json:"project_id,omitempty"`
	Action    string `json:"action,omitempty"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"`
	GrantedBy string `json:"granted_by,omitempty"`

	Message string `json:"message,omitempty"`
}

// ToJSON converts the event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Filter narrows audit trail queries
type Filter struct {
	UserID    string
	ProjectID string
	Outcome   string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

// DefaultQueryLimit bounds unpaginated trail queries
const DefaultQueryLimit = 100
