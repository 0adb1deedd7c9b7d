package handler

import (
	"time"

	"github.com/userprops/profile-service/internal/core/domain"
)

type listUsersRequest struct {
	MaxResults int    `query:"maxResults" validate:"omitempty,min=1,max=1000"`
	PageToken  string `query:"pageToken"`
}

type userMetadata struct {
	CreationTime   string `json:"creationTime,omitempty"`
	LastSignInTime string `json:"lastSignInTime,omitempty"`
}

type userRecordResponse struct {
	UID           string       `json:"uid"`
	Email         string       `json:"email,omitempty"`
	EmailVerified bool         `json:"emailVerified"`
	DisplayName   string       `json:"displayName,omitempty"`
	PhotoURL      string       `json:"photoURL,omitempty"`
	Disabled      bool         `json:"disabled"`
	Metadata      userMetadata `json:"metadata"`
}

type listUsersResponse struct {
	Users     []userRecordResponse `json:"users"`
	PageToken string               `json:"pageToken,omitempty"`
}

type currentUserResponse struct {
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	DisplayName string `json:"displayName"`
	OboAdmin    bool   `json:"oboAdmin"`
}

type notFoundResponse struct {
	Msg string `json:"msg"`
}

type successResponse struct {
	Msg string `json:"msg"`
}

func toUserRecordResponse(u domain.UserRecord) userRecordResponse {
	return userRecordResponse{
		UID:           u.UID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		Disabled:      u.Disabled,
		Metadata: userMetadata{
			CreationTime:   formatTime(u.CreatedAt),
			LastSignInTime: formatTime(u.LastSignInAt),
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
