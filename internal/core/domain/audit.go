package domain

import "time"

const (
	AuditActionReadProperty  = "read_property"
	AuditActionWriteProperty = "write_property"
	AuditActionReadIdentity  = "read_identity"
)

// AuditEvent records an admin acting on behalf of another user.
type AuditEvent struct {
	ID           string    `bson:"_id"`
	ActorID      string    `bson:"actor_id"`
	ActorEmail   string    `bson:"actor_email"`
	TargetUserID string    `bson:"target_user_id"`
	Action       string    `bson:"action"`
	Property     string    `bson:"property,omitempty"`
	Method       string    `bson:"method"`
	Path         string    `bson:"path"`
	RequestID    string    `bson:"request_id,omitempty"`
	OccurredAt   time.Time `bson:"occurred_at"`
}
