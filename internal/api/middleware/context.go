package middleware

import (
	"context"

	"github.com/userprops/profile-service/internal/core/domain"
)

type effectiveContextKey struct{}

// WithEffectiveContext returns a copy of ctx carrying ec.
func WithEffectiveContext(ctx context.Context, ec domain.EffectiveContext) context.Context {
	return context.WithValue(ctx, effectiveContextKey{}, ec)
}

// EffectiveContextFrom returns the EffectiveContext attached by Auth.
func EffectiveContextFrom(ctx context.Context) (domain.EffectiveContext, bool) {
	ec, ok := ctx.Value(effectiveContextKey{}).(domain.EffectiveContext)
	return ec, ok
}
