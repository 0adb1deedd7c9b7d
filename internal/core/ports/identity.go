package ports

import (
	"context"

	"github.com/userprops/profile-service/internal/core/domain"
)

// TokenVerifier turns a bearer credential into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// ListUsersInput carries the paging parameters of the identity listing.
type ListUsersInput struct {
	MaxResults int    // 0 = provider default
	PageToken  string // empty = first page
}

// IdentityDirectory exposes the identity provider's user records.
type IdentityDirectory interface {
	ListUsers(ctx context.Context, input ListUsersInput) (*domain.UserPage, error)
	GetUser(ctx context.Context, uid string) (*domain.UserRecord, error)
}
