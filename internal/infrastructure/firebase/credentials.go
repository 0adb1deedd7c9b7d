// Package firebase adapts Firebase Authentication to the service ports: ID
// token verification and the provider-managed user directory.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// ServiceAccount holds the fields of a service-account key file this package
// cares about. The raw JSON is still what gets handed to the Google client.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// ParseServiceAccount validates a service-account key file.
func ParseServiceAccount(raw []byte) (*ServiceAccount, error) {
	if len(raw) == 0 {
		return nil, errors.New("firebase credentials: empty")
	}

	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("firebase credentials: %w", err)
	}
	if sa.Type != "service_account" {
		return nil, fmt.Errorf("firebase credentials: unexpected type %q", sa.Type)
	}
	if sa.ProjectID == "" {
		return nil, errors.New("firebase credentials: missing project_id")
	}
	return &sa, nil
}

// ClientOption turns a service-account key file into credentials for the
// Google API clients used by this package.
func ClientOption(ctx context.Context, raw []byte) (option.ClientOption, error) {
	creds, err := google.CredentialsFromJSON(ctx, raw,
		identitytoolkit.CloudPlatformScope,
		identitytoolkit.FirebaseScope,
	)
	if err != nil {
		return nil, fmt.Errorf("firebase credentials: %w", err)
	}
	return option.WithCredentials(creds), nil
}
