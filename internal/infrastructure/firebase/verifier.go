package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userprops/profile-service/internal/core/domain"
)

const (
	issuerPrefix  = "https://securetoken.google.com/"
	maxSubjectLen = 128
)

// idTokenClaims are the Firebase ID token claims the service relies on.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	AuthTime int64  `json:"auth_time"`
}

// TokenVerifier verifies Firebase ID tokens for one project.
type TokenVerifier struct {
	projectID string
	keys      keySource
	now       func() time.Time
}

// VerifierOption customises a TokenVerifier.
type VerifierOption func(*TokenVerifier)

// WithCertsURL points the verifier at a different certificate endpoint.
func WithCertsURL(url string, client *http.Client) VerifierOption {
	return func(v *TokenVerifier) { v.keys = newCertKeySource(url, client) }
}

func NewTokenVerifier(projectID string, opts ...VerifierOption) *TokenVerifier {
	v := &TokenVerifier{
		projectID: projectID,
		keys:      newCertKeySource(GoogleCertsURL, nil),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks signature, audience, issuer and lifetime of an ID token and
// returns the identity it carries.
func (v *TokenVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("missing kid header")
			}
			return v.keys.Key(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("verify id token: %w", err)
	}

	if claims.Subject == "" || len(claims.Subject) > maxSubjectLen {
		return domain.Identity{}, errors.New("verify id token: invalid sub claim")
	}
	if claims.AuthTime == 0 || time.Unix(claims.AuthTime, 0).After(v.now()) {
		return domain.Identity{}, errors.New("verify id token: invalid auth_time claim")
	}

	return domain.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
