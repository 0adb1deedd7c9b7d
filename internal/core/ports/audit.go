package ports

import (
	"context"

	"github.com/userprops/profile-service/internal/core/domain"
)

// AuditRepository stores impersonation audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the request path.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditService handles one dequeued audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}
