// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/stack"
	"github.com/carterperez-dev/stackrec/internal/stackcache"
	"github.com/carterperez-dev/stackrec/internal/verifier"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *core.ErrorBody `json:"error"`
}

type fakeVerification struct {
	triggerErr error
	triggered  int
	report     *verifier.Report
}

func (f *fakeVerification) Trigger(context.Context) error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.triggered++
	return nil
}

func (f *fakeVerification) LastReport() (verifier.Report, bool) {
	if f.report == nil {
		return verifier.Report{}, false
	}
	return *f.report, true
}

type fakeRegenerator struct {
	err error
}

func (f fakeRegenerator) Regenerate(_ context.Context, archetypeID string) (stack.Stack, error) {
	if f.err != nil {
		return stack.Stack{}, f.err
	}
	return stack.Stack{
		ID:          "regenerated",
		ArchetypeID: archetypeID,
		Status:      stack.StatusUnverified,
		Entries:     []stack.Entry{{ProductID: "multi"}},
	}, nil
}

func seededCache(t *testing.T, stacks ...stack.Stack) *stackcache.Cache {
	t.Helper()
	cache := stackcache.New(stackcache.NewMemoryStore())
	for _, s := range stacks {
		if err := cache.Put(context.Background(), s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return cache
}

func sampleStack(archetypeID string, status stack.Status, broken bool) stack.Stack {
	return stack.Stack{
		ID:          "stack-" + archetypeID,
		ArchetypeID: archetypeID,
		Status:      status,
		GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries: []stack.Entry{
			{ProductID: "multi", PriceCents: 1000},
			{ProductID: "omega", PriceCents: 2000, Broken: broken},
		},
		TotalCostCents: 3000,
	}
}

func router(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string) (int, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var env envelope
	if rec.Code != http.StatusNoContent {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func TestStackRoutes(t *testing.T) {
	cache := seededCache(t,
		sampleStack("young-male-muscle", stack.StatusVerified, false),
		sampleStack("busy-professional-stress", stack.StatusPartial, true),
	)
	h := router(NewHandler(HandlerConfig{
		Cache:       cache,
		Verify:      &fakeVerification{},
		Regenerator: fakeRegenerator{},
	}))

	code, env := do(t, h, http.MethodGet, "/admin/stacks")
	if code != http.StatusOK {
		t.Fatalf("list code = %d", code)
	}
	var summaries []StackSummary
	if err := json.Unmarshal(env.Data, &summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 2 || summaries[0].ArchetypeID != "busy-professional-stress" {
		t.Fatalf("summaries = %+v", summaries)
	}
	if summaries[0].BrokenEntries != 1 || summaries[0].Entries != 2 {
		t.Errorf("broken summary = %+v", summaries[0])
	}

	code, env = do(t, h, http.MethodGet, "/admin/stacks/young-male-muscle")
	if code != http.StatusOK {
		t.Fatalf("get code = %d", code)
	}
	var got stack.Stack
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode stack: %v", err)
	}
	if got.ID != "stack-young-male-muscle" || got.Status != stack.StatusVerified {
		t.Errorf("stack = %+v", got)
	}

	if code, _ := do(t, h, http.MethodGet, "/admin/stacks/unknown"); code != http.StatusNotFound {
		t.Errorf("get unknown code = %d", code)
	}

	if code, _ := do(t, h, http.MethodDelete, "/admin/stacks/young-male-muscle"); code != http.StatusNoContent {
		t.Fatalf("delete code = %d", code)
	}
	if _, ok, _ := cache.Get(context.Background(), "young-male-muscle"); ok {
		t.Error("stack still cached after delete")
	}
	if code, _ := do(t, h, http.MethodDelete, "/admin/stacks/young-male-muscle"); code != http.StatusNotFound {
		t.Errorf("second delete code = %d", code)
	}
}

func TestRegenerateStack(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"ok", nil, http.StatusOK},
		{"unknown archetype", fmt.Errorf("archetype x: %w", core.ErrNotFound), http.StatusNotFound},
		{"catalog down", fmt.Errorf("list: %w", core.ErrCollaboratorUnavailable), http.StatusServiceUnavailable},
		{"budget", fmt.Errorf("build: %w", stack.ErrInsufficientBudget), http.StatusUnprocessableEntity},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := router(NewHandler(HandlerConfig{
				Cache:       seededCache(t),
				Verify:      &fakeVerification{},
				Regenerator: fakeRegenerator{err: tt.err},
			}))

			code, env := do(t, h, http.MethodPost, "/admin/stacks/general-wellness/regenerate")
			if code != tt.wantCode {
				t.Fatalf("code = %d, want %d", code, tt.wantCode)
			}
			if tt.err == nil {
				var got stack.Stack
				if err := json.Unmarshal(env.Data, &got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if got.ArchetypeID != "general-wellness" {
					t.Errorf("archetype = %q", got.ArchetypeID)
				}
			}
		})
	}
}

func TestVerificationRoutes(t *testing.T) {
	fv := &fakeVerification{}
	h := router(NewHandler(HandlerConfig{Cache: seededCache(t), Verify: fv, Regenerator: fakeRegenerator{}}))

	if code, _ := do(t, h, http.MethodGet, "/admin/verify/last"); code != http.StatusNotFound {
		t.Errorf("last report before any pass = %d, want 404", code)
	}

	if code, _ := do(t, h, http.MethodPost, "/admin/verify"); code != http.StatusAccepted {
		t.Fatalf("trigger code = %d", code)
	}
	if fv.triggered != 1 {
		t.Errorf("triggered = %d", fv.triggered)
	}

	fv.triggerErr = verifier.ErrPassInProgress
	code, env := do(t, h, http.MethodPost, "/admin/verify")
	if code != http.StatusConflict || env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Errorf("trigger while running = %d %+v", code, env.Error)
	}

	fv.report = &verifier.Report{Verified: 3, Partial: 1, Checked: 20}
	code, env = do(t, h, http.MethodGet, "/admin/verify/last")
	if code != http.StatusOK {
		t.Fatalf("last code = %d", code)
	}
	var report verifier.Report
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Verified != 3 || report.Partial != 1 || report.BrokenURLs == nil {
		t.Errorf("report = %+v", report)
	}
}

func TestSystemStats(t *testing.T) {
	cache := seededCache(t,
		sampleStack("a", stack.StatusVerified, false),
		sampleStack("b", stack.StatusVerified, false),
		sampleStack("c", stack.StatusStale, false),
	)

	h := router(NewHandler(HandlerConfig{
		Cache:       cache,
		Verify:      &fakeVerification{},
		Regenerator: fakeRegenerator{},
		DBPing:      func(context.Context) error { return errors.New("down") },
	}))

	code, env := do(t, h, http.MethodGet, "/admin/stats")
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}

	var stats SystemStatsResponse
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !stats.Cache.Healthy || stats.Cache.Stacks != 3 {
		t.Errorf("cache stats = %+v", stats.Cache)
	}
	if stats.Cache.ByStatus["verified"] != 2 || stats.Cache.ByStatus["stale"] != 1 {
		t.Errorf("by status = %v", stats.Cache.ByStatus)
	}
	if stats.Database == nil || stats.Database.Healthy {
		t.Errorf("database = %+v, want reported unhealthy", stats.Database)
	}
	if stats.Redis != nil {
		t.Errorf("redis = %+v, want omitted when not configured", stats.Redis)
	}
	if stats.Runtime.NumCPU < 1 || stats.Runtime.GoVersion == "" {
		t.Errorf("runtime = %+v", stats.Runtime)
	}
}
