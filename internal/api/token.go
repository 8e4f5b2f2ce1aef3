package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// refreshSkew forces a proactive refresh when the access token is within
// this window of its exp claim, instead of waiting for a 401.
const refreshSkew = 30 * time.Second

var ErrNoCredentials = errors.New("no stored credentials")

// TokenSource supplies bearer tokens for outbound requests. Refresh is
// single-flight: concurrent 401s share one refresh round trip.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a fixed token with no refresh, for tests and tooling.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error)   { return string(t), nil }
func (t StaticToken) Refresh(context.Context) (string, error) { return string(t), nil }

// RefreshingTokenSource holds an access/refresh token pair and exchanges
// the refresh token at the backend auth endpoint when the access token is
// missing, near expiry, or rejected.
type RefreshingTokenSource struct {
	refreshURL string
	http       *http.Client

	mu      sync.Mutex
	access  string
	refresh string

	group singleflight.Group
}

func NewRefreshingTokenSource(refreshURL, accessToken, refreshToken string, client *http.Client) *RefreshingTokenSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RefreshingTokenSource{
		refreshURL: strings.TrimSpace(refreshURL),
		http:       client,
		access:     strings.TrimSpace(accessToken),
		refresh:    strings.TrimSpace(refreshToken),
	}
}

// Token returns the current access token, refreshing first when the exp
// claim is inside the skew window.
func (s *RefreshingTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	access := s.access
	s.mu.Unlock()

	if access == "" {
		return s.Refresh(ctx)
	}
	if expiresSoon(access, time.Now()) {
		if fresh, err := s.Refresh(ctx); err == nil {
			return fresh, nil
		}
		// Refresh failed; let the server be the judge of the old token.
	}
	return access, nil
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers are collapsed into a single request.
func (s *RefreshingTokenSource) Refresh(ctx context.Context) (string, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		return s.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (s *RefreshingTokenSource) doRefresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()
	if refresh == "" || s.refreshURL == "" {
		return "", ErrNoCredentials
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refresh})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("token refresh http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("token refresh decode: %w", err)
	}
	var payload refreshResponse
	if err := env.Decode(&payload); err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("token refresh: empty access token")
	}

	s.mu.Lock()
	s.access = payload.AccessToken
	if payload.RefreshToken != "" {
		s.refresh = payload.RefreshToken
	}
	s.mu.Unlock()

	return payload.AccessToken, nil
}

// expiresSoon inspects the exp claim without verifying the signature; the
// backend remains the authority, this only avoids a predictable 401.
func expiresSoon(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.Add(refreshSkew).After(claims.ExpiresAt.Time)
}
