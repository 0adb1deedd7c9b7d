package firebase

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// GoogleCertsURL serves the x509 certificates that sign Firebase ID tokens.
const GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const (
	defaultCertsTTL = time.Hour
	// An unknown kid forces a refetch, at most this often.
	minRefreshInterval = time.Minute
)

var errUnknownKey = errors.New("unknown signing key")

type keySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// certKeySource caches Google's signing certificates for as long as the
// response's Cache-Control max-age allows.
type certKeySource struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
	fetchedAt time.Time

	group singleflight.Group
}

func newCertKeySource(url string, client *http.Client) *certKeySource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &certKeySource{url: url, client: client, now: time.Now}
}

// Key returns the public key for kid, refreshing the certificate set when it
// has expired or does not know kid.
func (s *certKeySource) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := s.now()

	s.mu.RLock()
	key, ok := s.keys[kid]
	fresh := now.Before(s.expiresAt)
	canRefetch := now.Sub(s.fetchedAt) >= minRefreshInterval
	s.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	if fresh && !canRefetch {
		return nil, errUnknownKey
	}

	// The shared fetch must outlive the cancellation of whichever caller started it.
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if key, ok := s.keys[kid]; ok {
		return key, nil
	}
	return nil, errUnknownKey
}

func (s *certKeySource) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("fetch signing certs: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing certs: unexpected status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode signing certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
		if err != nil {
			return fmt.Errorf("parse signing cert %s: %w", kid, err)
		}
		keys[kid] = pub
	}

	now := s.now()
	s.mu.Lock()
	s.keys = keys
	s.fetchedAt = now
	s.expiresAt = now.Add(maxAge(resp.Header.Get("Cache-Control")))
	s.mu.Unlock()
	return nil
}

// maxAge extracts max-age from a Cache-Control header.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		v, ok := strings.CutPrefix(directive, "max-age=")
		if !ok {
			continue
		}
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			break
		}
		return time.Duration(secs) * time.Second
	}
	return defaultCertsTTL
}
