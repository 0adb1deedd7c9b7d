package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
)

type ProfileService struct {
	repo   ports.ProfileRepository
	logger zerolog.Logger
}

func NewProfileService(repo ports.ProfileRepository, logger zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// GetProperty returns a single field of the effective user's profile. A missing
// document is domain.ErrProfileNotFound; a missing field is not an error.
func (s *ProfileService) GetProperty(ctx context.Context, ec domain.EffectiveContext, property string) (*ports.PropertyValue, error) {
	doc, err := s.repo.FindByUserID(ctx, ec.EffectiveUserID)
	if err != nil {
		return nil, fmt.Errorf("get property %q: %w", property, err)
	}

	v, ok := doc.Field(property)
	return &ports.PropertyValue{Value: v, Set: ok}, nil
}

// SetProperty upserts the effective user's profile with property set to value.
// The value is stored as given.
func (s *ProfileService) SetProperty(ctx context.Context, ec domain.EffectiveContext, property string, value any) error {
	if err := domain.ValidatePropertyName(property); err != nil {
		return fmt.Errorf("set property %q: %w", property, err)
	}

	if err := s.repo.SetField(ctx, ec.EffectiveUserID, property, value); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", ec.EffectiveUserID).
			Str("property", property).
			Msg("failed to set profile property")
		return fmt.Errorf("set property %q: %w", property, err)
	}

	s.logger.Info().
		Str("user_id", ec.EffectiveUserID).
		Str("caller_id", ec.CallerID).
		Str("property", property).
		Bool("on_behalf", ec.Impersonating()).
		Msg("profile property set")
	return nil
}
