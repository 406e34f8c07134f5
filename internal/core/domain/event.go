package domain

import "time"

// UserEventType names a change applied to a user record.
type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

// UserEvent is published to downstream consumers after a user mutation.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     int64         `json:"userId"`
	Email      string        `json:"email,omitempty"`
	ActorID    int64         `json:"actorId,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
