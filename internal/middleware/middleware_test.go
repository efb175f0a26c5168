// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carterperez-dev/stackrec/internal/core"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("propagated id = %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 {
		t.Errorf("generated id = %q, want uuid", seen)
	}
}

func TestLocalRateLimiter(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:      PerMinute(2, 2),
		BypassFunc: BypassProbes,
	})
	h := rl.Handler(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/v1/recommendations", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("429 without Retry-After")
		}
	}

	want := []int{200, 200, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("probe limited: %d", rec.Code)
	}
}

func TestKeyByIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"remote addr", nil, "198.51.100.4:5555", "ratelimit:ip:198.51.100.4"},
		{"forwarded uses last hop", map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.2"}, "x", "ratelimit:ip:10.0.0.2"},
		{"real ip", map[string]string{"X-Real-IP": "192.0.2.7"}, "x", "ratelimit:ip:192.0.2.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := KeyByIP(req); got != tt.want {
				t.Errorf("KeyByIP = %q, want %q", got, tt.want)
			}
		})
	}
}

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(context.Context, string) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func TestAuthenticatorAndRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		want     int
	}{
		{"missing token", "", stubVerifier{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubVerifier{}, http.StatusUnauthorized},
		{"expired", "Bearer t", stubVerifier{err: core.ErrTokenExpired}, http.StatusUnauthorized},
		{"invalid", "Bearer t", stubVerifier{err: errors.New("bad signature")}, http.StatusUnauthorized},
		{"not admin", "Bearer t", stubVerifier{claims: &AccessTokenClaims{Subject: "u1", Role: "viewer"}}, http.StatusForbidden},
		{"admin", "Bearer t", stubVerifier{claims: &AccessTokenClaims{Subject: "u1", Role: "admin"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticator(tt.verifier)(RequireAdmin(okHandler()))

			req := httptest.NewRequest(http.MethodGet, "/v1/admin/stacks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("missing HSTS in production")
	}
}
