package ports

import (
	"context"

	"github.com/userprops/profile-service/internal/core/domain"
)

// PropertyValue is the result of reading a single profile field.
type PropertyValue struct {
	Value any
	Set   bool // false when the document exists but the field was never written
}

// ProfileService reads and writes named fields on the effective user's profile.
type ProfileService interface {
	GetProperty(ctx context.Context, ec domain.EffectiveContext, property string) (*PropertyValue, error)
	SetProperty(ctx context.Context, ec domain.EffectiveContext, property string, value any) error
}

// CurrentUser is the "who am I" view of a caller.
type CurrentUser struct {
	UserID      string
	Email       string
	DisplayName string
	IsAdmin     bool
}

// UserService serves the identity endpoints.
type UserService interface {
	ListUsers(ctx context.Context, ec domain.EffectiveContext, input ListUsersInput) (*domain.UserPage, error)
	CurrentUser(ctx context.Context, ec domain.EffectiveContext) (*CurrentUser, error)
}
