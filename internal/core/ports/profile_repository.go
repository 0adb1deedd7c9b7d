package ports

import (
	"context"

	"github.com/userprops/profile-service/internal/core/domain"
)

// ProfileRepository persists per-user profile documents keyed by user id.
type ProfileRepository interface {
	// FindByUserID returns domain.ErrProfileNotFound when no document exists.
	FindByUserID(ctx context.Context, userID string) (domain.ProfileDocument, error)
	// SetField upserts the document for userID, setting exactly one field.
	SetField(ctx context.Context, userID, field string, value any) error
}
