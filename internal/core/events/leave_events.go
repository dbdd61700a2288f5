package events

import (
	"time"

	"github.com/google/uuid"
)

// Leave lifecycle event types published by the leave service and consumed by
// the audit-log subscriber.
const (
	EventLeaveApplied   = "leave.applied"
	EventLeaveApproved  = "leave.approved"
	EventLeaveRejected  = "leave.rejected"
	EventLeaveCancelled = "leave.cancelled"

	EventMonetizationApproved = "leave.monetization.approved"
)

// NewLeaveEvent builds a BaseEvent for a leave application transition.
func NewLeaveEvent(eventType, applicationID, personnelID string, totalDays int, actorID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"application_id": applicationID,
			"personnel_id":   personnelID,
			"total_days":     totalDays,
			"actor_id":       actorID,
		},
	}
}

// NewMonetizationEvent builds a BaseEvent for a monetization approval.
func NewMonetizationEvent(monetizationID, personnelID string, amount float64, actorID int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventMonetizationApproved,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"monetization_id": monetizationID,
			"personnel_id":    personnelID,
			"amount":          amount,
			"actor_id":        actorID,
		},
	}
}
