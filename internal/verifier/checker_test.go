// AngelaMos | 2026
// checker_test.go

package verifier_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/carterperez-dev/stackrec/internal/verifier"
)

func TestHTTPCheckerCheck(t *testing.T) {
	var mu sync.Mutex
	agents := map[string]string{}

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents[r.URL.Path] = r.UserAgent()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/missing", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/no-head", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Range") != "bytes=0-0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusPartialContent)
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	checker := verifier.NewHTTPChecker(verifier.CheckerConfig{
		Timeout:      200 * time.Millisecond,
		UserAgent:    "stackrec-test",
		PerHostRate:  1000,
		PerHostBurst: 100,
	}, nil)

	tests := []struct {
		name       string
		url        string
		wantOK     bool
		wantStatus int
	}{
		{"ok", srv.URL + "/ok", true, http.StatusOK},
		{"not found", srv.URL + "/missing", false, http.StatusNotFound},
		{"redirect counts as reachable", srv.URL + "/moved", true, http.StatusMovedPermanently},
		{"head refused falls back to ranged get", srv.URL + "/no-head", true, http.StatusPartialContent},
		{"forbidden on both methods", srv.URL + "/forbidden", false, http.StatusForbidden},
		{"server error", srv.URL + "/down", false, http.StatusServiceUnavailable},
		{"timeout", srv.URL + "/slow", false, 0},
		{"unsupported scheme", "ftp://files.example/x", false, 0},
		{"not a url", "::::", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, status := checker.Check(context.Background(), tt.url)
			if ok != tt.wantOK || status != tt.wantStatus {
				t.Errorf("Check(%s) = (%v, %d), want (%v, %d)",
					tt.url, ok, status, tt.wantOK, tt.wantStatus)
			}
		})
	}

	mu.Lock()
	defer mu.Unlock()
	if agents["/ok"] != "stackrec-test" {
		t.Errorf("user agent = %q, want stackrec-test", agents["/ok"])
	}
}

func TestHTTPCheckerHonorsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := verifier.NewHTTPChecker(verifier.CheckerConfig{PerHostRate: 1, PerHostBurst: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ok, _ := checker.Check(ctx, srv.URL); ok {
		t.Error("Check succeeded with a cancelled context")
	}
}
