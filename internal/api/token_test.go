package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func refreshServer(t *testing.T, hits *int32, access string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			t.Errorf("bad refresh request: %v", err)
		}
		data, _ := json.Marshal(refreshResponse{AccessToken: access})
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(data)})
	}))
}

func TestRefreshingTokenSource_RefreshExchangesToken(t *testing.T) {
	var hits int32
	srv := refreshServer(t, &hits, "fresh-access")
	defer srv.Close()

	s := NewRefreshingTokenSource(srv.URL, "", "refresh-1", nil)
	got, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fresh-access" {
		t.Fatalf("expected fresh token, got %q", got)
	}
	if hits != 1 {
		t.Fatalf("expected one refresh hit, got %d", hits)
	}
}

func TestRefreshingTokenSource_ConcurrentRefreshIsSingleFlight(t *testing.T) {
	var hits int32
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(100 * time.Millisecond)
		data, _ := json.Marshal(refreshResponse{AccessToken: "shared"})
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(data)})
	}))
	defer slow.Close()

	s := NewRefreshingTokenSource(slow.URL, "", "refresh-1", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Refresh(context.Background())
			if err != nil || got != "shared" {
				t.Errorf("refresh: %q %v", got, err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one shared refresh round trip, got %d", got)
	}
}

func TestRefreshingTokenSource_ValidTokenSkipsRefresh(t *testing.T) {
	var hits int32
	srv := refreshServer(t, &hits, "unused")
	defer srv.Close()

	access := signedToken(t, time.Hour)
	s := NewRefreshingTokenSource(srv.URL, access, "refresh-1", nil)

	got, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != access {
		t.Fatalf("expected stored token returned")
	}
	if hits != 0 {
		t.Fatalf("expected no refresh for a valid token, got %d", hits)
	}
}

func TestRefreshingTokenSource_NearExpiryRefreshesProactively(t *testing.T) {
	var hits int32
	srv := refreshServer(t, &hits, "fresh-access")
	defer srv.Close()

	access := signedToken(t, 5*time.Second) // inside the skew window
	s := NewRefreshingTokenSource(srv.URL, access, "refresh-1", nil)

	got, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fresh-access" {
		t.Fatalf("expected proactive refresh, got %q", got)
	}
	if hits != 1 {
		t.Fatalf("expected one refresh hit, got %d", hits)
	}
}

func TestRefreshingTokenSource_NoCredentials(t *testing.T) {
	s := NewRefreshingTokenSource("", "", "", nil)
	if _, err := s.Token(context.Background()); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestExpiresSoon(t *testing.T) {
	now := time.Now()
	if expiresSoon(signedToken(t, time.Hour), now) {
		t.Fatalf("one-hour token should not be near expiry")
	}
	if !expiresSoon(signedToken(t, 10*time.Second), now) {
		t.Fatalf("ten-second token should be near expiry")
	}
	if expiresSoon("not-a-jwt", now) {
		t.Fatalf("unparseable token should not force refresh")
	}
}
