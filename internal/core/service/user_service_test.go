package service

import (
	"context"
	"errors"
	"testing"

	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
)

type stubDirectory struct {
	listFn func(ctx context.Context, input ports.ListUsersInput) (*domain.UserPage, error)
	getFn  func(ctx context.Context, uid string) (*domain.UserRecord, error)
}

func (d *stubDirectory) ListUsers(ctx context.Context, input ports.ListUsersInput) (*domain.UserPage, error) {
	return d.listFn(ctx, input)
}

func (d *stubDirectory) GetUser(ctx context.Context, uid string) (*domain.UserRecord, error) {
	return d.getFn(ctx, uid)
}

func TestUserService_ListUsers_NonAdminForbidden(t *testing.T) {
	dir := &stubDirectory{
		listFn: func(context.Context, ports.ListUsersInput) (*domain.UserPage, error) {
			t.Fatalf("directory must not be called for non-admins")
			return nil, nil
		},
	}
	svc := NewUserService(dir, discardLogger)

	_, err := svc.ListUsers(context.Background(), userCtx("u1", "a@x.com", ""), ports.ListUsersInput{})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_ListUsers_PassesPaging(t *testing.T) {
	var got ports.ListUsersInput
	dir := &stubDirectory{
		listFn: func(_ context.Context, input ports.ListUsersInput) (*domain.UserPage, error) {
			got = input
			return &domain.UserPage{Users: []domain.UserRecord{{UID: "u1"}}, PageToken: "next"}, nil
		},
	}
	svc := NewUserService(dir, discardLogger)

	page, err := svc.ListUsers(context.Background(), userCtx("a1", "admin@x.com", ""), ports.ListUsersInput{MaxResults: 10, PageToken: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MaxResults != 10 || got.PageToken != "tok" {
		t.Fatalf("paging not forwarded: %+v", got)
	}
	if len(page.Users) != 1 || page.PageToken != "next" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestUserService_ListUsers_DefaultsMaxResults(t *testing.T) {
	var got ports.ListUsersInput
	dir := &stubDirectory{
		listFn: func(_ context.Context, input ports.ListUsersInput) (*domain.UserPage, error) {
			got = input
			return &domain.UserPage{}, nil
		},
	}
	svc := NewUserService(dir, discardLogger)

	if _, err := svc.ListUsers(context.Background(), userCtx("a1", "admin@x.com", ""), ports.ListUsersInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MaxResults != maxListResults {
		t.Fatalf("expected default %d, got %d", maxListResults, got.MaxResults)
	}
}

func TestUserService_CurrentUser_NonAdmin(t *testing.T) {
	dir := &stubDirectory{
		getFn: func(_ context.Context, uid string) (*domain.UserRecord, error) {
			if uid != "u1" {
				t.Fatalf("expected lookup of u1, got %s", uid)
			}
			return &domain.UserRecord{UID: "u1", DisplayName: "Alice"}, nil
		},
	}
	svc := NewUserService(dir, discardLogger)

	cu, err := svc.CurrentUser(context.Background(), userCtx("u1", "a@x.com", "u2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ports.CurrentUser{UserID: "u1", Email: "a@x.com", DisplayName: "Alice", IsAdmin: false}
	if *cu != want {
		t.Fatalf("expected %+v, got %+v", want, *cu)
	}
}

func TestUserService_CurrentUser_AdminImpersonatingStillSelf(t *testing.T) {
	dir := &stubDirectory{
		getFn: func(_ context.Context, uid string) (*domain.UserRecord, error) {
			return &domain.UserRecord{UID: uid, DisplayName: "Root"}, nil
		},
	}
	svc := NewUserService(dir, discardLogger)

	cu, err := svc.CurrentUser(context.Background(), userCtx("a1", "admin@x.com", "u2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cu.UserID != "a1" || !cu.IsAdmin {
		t.Fatalf("expected caller a1 as admin, got %+v", cu)
	}
}

func TestUserService_CurrentUser_DirectoryError(t *testing.T) {
	upstream := errors.New("provider unavailable")
	dir := &stubDirectory{
		getFn: func(context.Context, string) (*domain.UserRecord, error) { return nil, upstream },
	}
	svc := NewUserService(dir, discardLogger)

	if _, err := svc.CurrentUser(context.Background(), userCtx("u1", "a@x.com", "")); !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}
