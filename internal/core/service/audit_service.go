package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAuditService returns the processor the audit dispatcher feeds.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log, now: time.Now}
}

// Process persists a single audit event, filling in ID and timestamp if absent.
func (s *auditService) Process(ctx context.Context, event domain.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}

	// The log line is the audit trail of last resort if the insert fails.
	s.log.Info().
		Str("actor_id", event.ActorID).
		Str("actor_email", event.ActorEmail).
		Str("target_user_id", event.TargetUserID).
		Str("action", event.Action).
		Str("property", event.Property).
		Str("request_id", event.RequestID).
		Msg("admin acted on behalf of user")

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}
	return nil
}
