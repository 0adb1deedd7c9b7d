package domain

import (
	"strings"
	"time"
)

// Identity is what the token verifier vouches for. It is never built from
// request input.
type Identity struct {
	UserID string
	Email  string
}

// AdminAllowlist is the static set of emails granted admin access.
type AdminAllowlist map[string]struct{}

// NewAdminAllowlist builds an allowlist from a comma separated list of emails.
// Entries are trimmed and empty entries dropped; matching stays case-sensitive.
func NewAdminAllowlist(csv string) AdminAllowlist {
	list := make(AdminAllowlist)
	for _, e := range strings.Split(csv, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		list[e] = struct{}{}
	}
	return list
}

// IsAdmin reports whether email is an exact member of the allowlist.
func IsAdmin(email string, allowlist AdminAllowlist) bool {
	if email == "" || len(allowlist) == 0 {
		return false
	}
	_, ok := allowlist[email]
	return ok
}

// EffectiveContext is the per-request outcome of authentication: who called
// and which user id the request acts upon.
type EffectiveContext struct {
	CallerID        string
	CallerEmail     string
	IsAdmin         bool
	EffectiveUserID string
}

// Impersonating reports whether an admin is acting on another user's id.
func (ec EffectiveContext) Impersonating() bool {
	return ec.EffectiveUserID != ec.CallerID
}

// Resolve computes the EffectiveContext for a verified identity. The override
// only takes effect for admins; for everyone else it is ignored.
func Resolve(id Identity, allowlist AdminAllowlist, override string) EffectiveContext {
	ec := EffectiveContext{
		CallerID:        id.UserID,
		CallerEmail:     id.Email,
		IsAdmin:         IsAdmin(id.Email, allowlist),
		EffectiveUserID: id.UserID,
	}
	if ec.IsAdmin && override != "" {
		ec.EffectiveUserID = override
	}
	return ec
}

// UserRecord is an identity record as managed by the identity provider.
type UserRecord struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
	Disabled      bool
	CreatedAt     time.Time
	LastSignInAt  time.Time
}

// UserPage is one page of the provider's identity listing. An empty PageToken
// means there are no further pages.
type UserPage struct {
	Users     []UserRecord
	PageToken string
}
