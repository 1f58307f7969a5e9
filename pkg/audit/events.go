package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/contextkeys"
)

// DecisionEvent builds the audit entry for a single authorization
// decision, pulling request context from ctx
func DecisionEvent(ctx context.Context, userID, projectID string, action authz.Action, d authz.Decision) *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
		EventType: EventTypeDecision,
		UserID:    userID,
		RequestID: contextkeys.GetRequestID(ctx),
		ProjectID: projectID,
		Action:    string(action),
		Outcome:   d.Outcome(),
		Reason:    string(d.DenialReason()),
		GrantedBy: string(d.GrantedBy()),
	}
}

// BatchDecisionEvent summarizes a bulk read filter evaluation
func BatchDecisionEvent(ctx context.Context, userID string, requested, allowed int) *Event {
	outcome := "denied"
	if allowed > 0 {
		outcome = "allowed"
	}
	return &Event{
		Timestamp: time.Now().UTC(),
		EventType: EventTypeBatchDecision,
		UserID:    userID,
		RequestID: contextkeys.GetRequestID(ctx),
		Action:    string(authz.ActionRead),
		Outcome:   outcome,
		Message:   fmt.Sprintf("batch read check: %d of %d projects readable", allowed, requested),
	}
}
