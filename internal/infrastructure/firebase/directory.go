package firebase

import (
	"context"
	"fmt"
	"time"

	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
)

// Directory reads user records from Firebase Authentication through the
// Identity Toolkit API.
type Directory struct {
	svc       *identitytoolkit.Service
	projectID string
}

// NewDirectory builds a Directory. Production callers pass
// option.WithCredentialsJSON with the service-account key.
func NewDirectory(ctx context.Context, projectID string, opts ...option.ClientOption) (*Directory, error) {
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit client: %w", err)
	}
	return &Directory{svc: svc, projectID: projectID}, nil
}

// ListUsers returns one page of accounts.
func (d *Directory) ListUsers(ctx context.Context, input ports.ListUsersInput) (*domain.UserPage, error) {
	resp, err := d.svc.Relyingparty.DownloadAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDownloadAccountRequest{
		MaxResults:      int64(input.MaxResults),
		NextPageToken:   input.PageToken,
		TargetProjectId: d.projectID,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("download accounts: %w", err)
	}

	page := &domain.UserPage{
		Users:     make([]domain.UserRecord, 0, len(resp.Users)),
		PageToken: resp.NextPageToken,
	}
	for _, u := range resp.Users {
		page.Users = append(page.Users, toUserRecord(u))
	}
	return page, nil
}

// GetUser looks up a single account by uid.
func (d *Directory) GetUser(ctx context.Context, uid string) (*domain.UserRecord, error) {
	resp, err := d.svc.Relyingparty.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		LocalId: []string{uid},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	if len(resp.Users) == 0 {
		return nil, domain.ErrUserNotFound
	}

	rec := toUserRecord(resp.Users[0])
	return &rec, nil
}

func toUserRecord(u *identitytoolkit.UserInfo) domain.UserRecord {
	return domain.UserRecord{
		UID:           u.LocalId,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoUrl,
		Disabled:      u.Disabled,
		CreatedAt:     millisToTime(u.CreatedAt),
		LastSignInAt:  millisToTime(u.LastLoginAt),
	}
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
