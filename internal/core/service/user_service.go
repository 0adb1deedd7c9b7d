package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
)

const maxListResults = 1000

type UserService struct {
	directory ports.IdentityDirectory
	logger    zerolog.Logger
}

func NewUserService(directory ports.IdentityDirectory, logger zerolog.Logger) *UserService {
	return &UserService{directory: directory, logger: logger}
}

// ListUsers pages through the provider's identities. Admins only.
func (s *UserService) ListUsers(ctx context.Context, ec domain.EffectiveContext, input ports.ListUsersInput) (*domain.UserPage, error) {
	if !ec.IsAdmin {
		return nil, domain.ErrForbidden
	}
	if input.MaxResults <= 0 || input.MaxResults > maxListResults {
		input.MaxResults = maxListResults
	}

	page, err := s.directory.ListUsers(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	s.logger.Debug().
		Str("caller_id", ec.CallerID).
		Int("count", len(page.Users)).
		Bool("has_more", page.PageToken != "").
		Msg("users listed")
	return page, nil
}

// CurrentUser describes the caller, never the impersonated user.
func (s *UserService) CurrentUser(ctx context.Context, ec domain.EffectiveContext) (*ports.CurrentUser, error) {
	rec, err := s.directory.GetUser(ctx, ec.CallerID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &ports.CurrentUser{
		UserID:      ec.CallerID,
		Email:       ec.CallerEmail,
		DisplayName: rec.DisplayName,
		IsAdmin:     ec.IsAdmin,
	}, nil
}
