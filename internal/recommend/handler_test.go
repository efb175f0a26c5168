// AngelaMos | 2026
// handler_test.go

package recommend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/recommend"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *core.ErrorBody `json:"error"`
}

func newRouter(t *testing.T, e *env) http.Handler {
	t.Helper()
	table, err := archetype.NewTable(archetype.Defaults())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	r := chi.NewRouter()
	recommend.NewHandler(e.service, table).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestHandlerRecommend(t *testing.T) {
	e := newEnv(t, seeded(t, cachedMuscleStack(stack.StatusVerified, 7000)), nil)
	h := newRouter(t, e)

	code, env := do(t, h, http.MethodPost, "/recommendations", `{
		"age": 24,
		"gender": "male",
		"activity_level": "active",
		"primary_goals": ["muscle-building"],
		"budget_cents": 7500
	}`)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, body = %+v", code, env)
	}

	var resp recommend.RecommendResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Source != "cached" || resp.ArchetypeID != "young-male-muscle" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Stack.TotalCostCents != 7000 || len(resp.Stack.Entries) != 2 {
		t.Errorf("stack = %+v", resp.Stack)
	}
	if resp.Stack.SynergyNotes == nil || resp.Stack.Entries[0].Goals == nil {
		t.Error("list fields should serialize as empty arrays")
	}
}

func TestHandlerRecommendErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		catalogErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed body",
			body:       `{"age": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "age out of range",
			body:       `{"age": 5, "budget_cents": 5000}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "unknown gender",
			body:       `{"age": 30, "gender": "robot", "budget_cents": 5000}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "budget below cheapest core item",
			body:       `{"age": 30, "primary_goals": ["muscle-building"], "budget_cents": 500}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_BUDGET",
		},
		{
			name:       "catalog unavailable",
			body:       `{"age": 30, "primary_goals": ["sleep"], "budget_cents": 5000}`,
			catalogErr: core.ErrCollaboratorUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, seeded(t), nil)
			e.provider.err = tt.catalogErr

			code, env := do(t, newRouter(t, e), http.MethodPost, "/recommendations", tt.body)
			if code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", code, tt.wantStatus)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestHandlerListArchetypes(t *testing.T) {
	e := newEnv(t, seeded(t), nil)

	code, env := do(t, newRouter(t, e), http.MethodGet, "/archetypes", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}

	var list []recommend.ArchetypeResponse
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != len(archetype.Defaults()) || list[0].ID != "young-male-muscle" {
		t.Errorf("archetypes = %+v", list)
	}
}
