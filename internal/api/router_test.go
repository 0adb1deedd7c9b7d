package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
	"github.com/userprops/profile-service/internal/core/service"
)

type tokenTable map[string]domain.Identity

func (t tokenTable) Verify(_ context.Context, token string) (domain.Identity, error) {
	id, ok := t[token]
	if !ok {
		return domain.Identity{}, errors.New("signature invalid")
	}
	return id, nil
}

type memoryProfiles struct {
	mu    sync.Mutex
	docs  map[string]domain.ProfileDocument
	reads int
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{docs: make(map[string]domain.ProfileDocument)}
}

func (m *memoryProfiles) FindByUserID(_ context.Context, userID string) (domain.ProfileDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	doc, ok := m.docs[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return doc, nil
}

func (m *memoryProfiles) SetField(_ context.Context, userID, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[userID]
	if !ok {
		doc = domain.ProfileDocument{domain.ProfileKeyField: userID}
		m.docs[userID] = doc
	}
	doc[field] = value
	return nil
}

type staticDirectory map[string]domain.UserRecord

func (d staticDirectory) ListUsers(context.Context, ports.ListUsersInput) (*domain.UserPage, error) {
	page := &domain.UserPage{}
	for _, u := range d {
		page.Users = append(page.Users, u)
	}
	return page, nil
}

func (d staticDirectory) GetUser(_ context.Context, uid string) (*domain.UserRecord, error) {
	u, ok := d[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type testServer struct {
	handler  http.Handler
	profiles *memoryProfiles
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	profiles := newMemoryProfiles()
	dir := staticDirectory{
		"u1":    {UID: "u1", Email: "u1@example.com", DisplayName: "User One"},
		"u2":    {UID: "u2", Email: "bob@example.com", DisplayName: "Bob"},
		"admin": {UID: "admin", Email: "admin@example.com", DisplayName: "Admin"},
	}

	e := NewRouter(Dependencies{
		Logger:      log,
		Prefix:      "/api",
		CORSOrigins: []string{"*"},
		Verifier: tokenTable{
			"t-u1":    {UserID: "u1", Email: "u1@example.com"},
			"t-admin": {UserID: "admin", Email: "admin@example.com"},
		},
		Allowlist: domain.NewAdminAllowlist("admin@example.com"),
		Profiles:  service.NewProfileService(profiles, log),
		Users:     service.NewUserService(dir, log),
	})
	return &testServer{handler: e, profiles: profiles}
}

func (s *testServer) do(t *testing.T, method, target, token, body string) (int, string) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec.Code, strings.TrimSpace(rec.Body.String())
}

func jsonEqual(t *testing.T, got, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("invalid json %q: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("invalid json %q: %v", want, err)
	}
	if !reflect.DeepEqual(g, w) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRouter_NoTokenNeverReachesStore(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/api/users", "/api/current-user", "/api/current-user/nickname"} {
		code, body := s.do(t, http.MethodGet, target, "", "")
		if code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", target, code)
		}
		jsonEqual(t, body, `{"error":"No Firebase token provided"}`)
	}
	code, _ := s.do(t, http.MethodPost, "/api/current-user/nickname", "", `"x"`)
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if s.profiles.reads != 0 || len(s.profiles.docs) != 0 {
		t.Fatalf("store must not be touched")
	}
}

func TestRouter_InvalidToken(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/current-user", "forged", "")
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	jsonEqual(t, body, `{"error":"Firebase token not valid"}`)
}

func TestRouter_CurrentUser(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/current-user", "t-u1", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	jsonEqual(t, body, `{"userId":"u1","userEmail":"u1@example.com","displayName":"User One","oboAdmin":false}`)
}

func TestRouter_CurrentUserIgnoresOverride(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/current-user?oboUserId=u2", "t-admin", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	jsonEqual(t, body, `{"userId":"admin","userEmail":"admin@example.com","displayName":"Admin","oboAdmin":true}`)
}

func TestRouter_NonAdminListUsers(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/users", "t-u1", "")
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	jsonEqual(t, body, `{"error":"You must be an admin to make this call"}`)
}

func TestRouter_AdminListUsers(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/users?maxResults=10", "t-admin", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var resp struct {
		Users []map[string]any `json:"users"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(resp.Users))
	}
}

func TestRouter_AdminOnBehalfOfMissingProfile(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/current-user/nickname?oboUserId=u2", "t-admin", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	jsonEqual(t, body, `{"msg":"No user found with id u2"}`)
}

func TestRouter_AdminOnBehalfOfWriteThenRead(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/current-user/nickname?oboUserId=u2", "t-admin", `"Bob"`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	jsonEqual(t, body, `{"msg":"success"}`)

	want := domain.ProfileDocument{domain.ProfileKeyField: "u2", "nickname": "Bob"}
	if !reflect.DeepEqual(s.profiles.docs["u2"], want) {
		t.Fatalf("unexpected stored doc %v", s.profiles.docs["u2"])
	}
	if _, ok := s.profiles.docs["admin"]; ok {
		t.Fatalf("admin's own profile must not be written")
	}

	code, body = s.do(t, http.MethodGet, "/api/current-user/nickname?oboUserId=u2", "t-admin", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	jsonEqual(t, body, `"Bob"`)
}

func TestRouter_NonAdminOverrideWritesOwnProfile(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodPost, "/api/current-user/nickname?oboUserId=u2", "t-u1", `"Mallory"`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if _, ok := s.profiles.docs["u2"]; ok {
		t.Fatalf("non-admin must not write another user's profile")
	}
	if s.profiles.docs["u1"]["nickname"] != "Mallory" {
		t.Fatalf("expected own profile written, got %v", s.profiles.docs["u1"])
	}
}

func TestRouter_RoundTripStructuredValue(t *testing.T) {
	s := newTestServer(t)
	value := `{"theme":"dark","tags":["a","b"],"size":12,"ratio":0.5,"nested":{"ok":true,"none":null}}`

	for i := 0; i < 2; i++ {
		code, _ := s.do(t, http.MethodPost, "/api/current-user/settings", "t-u1", value)
		if code != http.StatusOK {
			t.Fatalf("write %d: expected 200, got %d", i, code)
		}
	}
	if len(s.profiles.docs["u1"]) != 2 {
		t.Fatalf("repeated writes must leave one field, got %v", s.profiles.docs["u1"])
	}

	code, body := s.do(t, http.MethodGet, "/api/current-user/settings", "t-u1", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	jsonEqual(t, body, value)
	if !strings.Contains(body, `"size":12`) {
		t.Fatalf("integers must stay integral, got %s", body)
	}
}

func TestRouter_UnsetFieldIsNull(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/current-user/nickname", "t-u1", `"Al"`)

	code, body := s.do(t, http.MethodGet, "/api/current-user/age", "t-u1", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body != "null" {
		t.Fatalf("expected null, got %s", body)
	}
}

func TestRouter_ReservedProperty(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodPost, "/api/current-user/firebaseUserId", "t-u1", `"u2"`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	jsonEqual(t, body, `{"error":"firebaseUserId is a reserved field"}`)
}

func TestRouter_PropertyNameIsVerbatim(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/current-user/a%2541", "t-u1", `"pct"`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if _, ok := s.profiles.docs["u1"]["a%41"]; !ok {
		t.Fatalf("expected field a%%41, got %v", s.profiles.docs["u1"])
	}
	if _, ok := s.profiles.docs["u1"]["aA"]; ok {
		t.Fatalf("field name must not be decoded twice")
	}

	code, body := s.do(t, http.MethodGet, "/api/current-user/a%2541", "t-u1", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	jsonEqual(t, body, `"pct"`)
}

func TestRouter_PropertyWithEncodedSpaceAndSlash(t *testing.T) {
	s := newTestServer(t)

	for target, field := range map[string]string{
		"/api/current-user/home%20town": "home town",
		"/api/current-user/a%2Fb":       "a/b",
	} {
		code, _ := s.do(t, http.MethodPost, target, "t-u1", `1`)
		if code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, code)
		}
		if _, ok := s.profiles.docs["u1"][field]; !ok {
			t.Fatalf("%s: expected field %q, got %v", target, field, s.profiles.docs["u1"])
		}
	}
}

func TestRouter_RejectsUnstorablePropertyNames(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"a.b", "$set", "%24x"} {
		code, body := s.do(t, http.MethodPost, "/api/current-user/"+name, "t-u1", `"x"`)
		if code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, code)
		}
		if !strings.Contains(body, "is not a valid field name") {
			t.Fatalf("%s: unexpected body %s", name, body)
		}
	}
	if len(s.profiles.docs) != 0 {
		t.Fatalf("nothing must be stored, got %v", s.profiles.docs)
	}
}

func TestRouter_NumberOutOfRangeIsRejected(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodPost, "/api/current-user/big", "t-u1", `1e400`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if len(s.profiles.docs) != 0 {
		t.Fatalf("nothing must be stored, got %v", s.profiles.docs)
	}
}

func TestRouter_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/health", "/health/ready", "/metrics"} {
		code, _ := s.do(t, http.MethodGet, target, "", "")
		if code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, code)
		}
	}
}
