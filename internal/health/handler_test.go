// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func serve(t *testing.T, h *Handler, path string) (int, ReadinessResponse) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body ReadinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       []Dependency
		wantCode   int
		wantStatus string
	}{
		{
			name: "all healthy",
			deps: []Dependency{
				{Name: "database", Checker: CheckerFunc(ok)},
				{Name: "stack_cache", Checker: CheckerFunc(ok)},
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "required dependency down",
			deps: []Dependency{
				{Name: "database", Checker: CheckerFunc(down)},
				{Name: "stack_cache", Checker: CheckerFunc(ok)},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unavailable",
		},
		{
			name: "optional dependency down",
			deps: []Dependency{
				{Name: "stack_cache", Checker: CheckerFunc(ok)},
				{Name: "evidence", Checker: CheckerFunc(down), Optional: true},
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "missing checker",
			deps:       []Dependency{{Name: "database"}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, NewHandler(tt.deps...), "/readyz")
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if len(body.Checks) != len(tt.deps) {
				t.Fatalf("checks = %d, want %d", len(body.Checks), len(tt.deps))
			}
			for i, c := range body.Checks {
				if c.Name != tt.deps[i].Name {
					t.Errorf("check %d name = %q, want %q", i, c.Name, tt.deps[i].Name)
				}
			}
		})
	}
}

func TestLivenessAndShutdown(t *testing.T) {
	h := NewHandler(Dependency{Name: "stack_cache", Checker: CheckerFunc(ok)})

	if code, body := serve(t, h, "/livez"); code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("livez = %d %q", code, body.Status)
	}

	h.SetReady(false)
	if code, body := serve(t, h, "/readyz"); code != http.StatusServiceUnavailable || body.Status != "not_ready" {
		t.Fatalf("readyz while not ready = %d %q", code, body.Status)
	}

	h.SetShutdown(true)
	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		if code, body := serve(t, h, path); code != http.StatusServiceUnavailable || body.Status != "shutting_down" {
			t.Errorf("%s = %d %q", path, code, body.Status)
		}
	}
}
