// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/middleware"
	"github.com/carterperez-dev/stackrec/internal/stack"
	"github.com/carterperez-dev/stackrec/internal/verifier"
)

type StackCache interface {
	Get(ctx context.Context, archetypeID string) (stack.Stack, bool, error)
	Delete(ctx context.Context, archetypeID string) error
	All(ctx context.Context) ([]stack.Stack, error)
}

// Verification is the slice of the verifier service the admin surface
// drives.
type Verification interface {
	Trigger(ctx context.Context) error
	LastReport() (verifier.Report, bool)
}

type Regenerator interface {
	Regenerate(ctx context.Context, archetypeID string) (stack.Stack, error)
}

type Handler struct {
	cache       StackCache
	verify      Verification
	regenerator Regenerator
	dbStats     func() sql.DBStats
	redisStats  func() *redis.PoolStats
	dbPing      func(ctx context.Context) error
	redisPing   func(ctx context.Context) error
}

// HandlerConfig leaves the database and redis hooks nil when those
// dependencies are not configured.
type HandlerConfig struct {
	Cache       StackCache
	Verify      Verification
	Regenerator Regenerator
	DBStats     func() sql.DBStats
	RedisStats  func() *redis.PoolStats
	DBPing      func(ctx context.Context) error
	RedisPing   func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		cache:       cfg.Cache,
		verify:      cfg.Verify,
		regenerator: cfg.Regenerator,
		dbStats:     cfg.DBStats,
		redisStats:  cfg.RedisStats,
		dbPing:      cfg.DBPing,
		redisPing:   cfg.RedisPing,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	middlewares ...func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middlewares...)

		r.Get("/stacks", h.ListStacks)
		r.Get("/stacks/{archetypeID}", h.GetStack)
		r.Delete("/stacks/{archetypeID}", h.DeleteStack)
		r.Post("/stacks/{archetypeID}/regenerate", h.RegenerateStack)

		r.Post("/verify", h.TriggerVerification)
		r.Get("/verify/last", h.LastVerification)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
	})
}

func (h *Handler) ListStacks(w http.ResponseWriter, r *http.Request) {
	stacks, err := h.cache.All(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	summaries := make([]StackSummary, 0, len(stacks))
	for i := range stacks {
		summaries = append(summaries, ToStackSummary(&stacks[i]))
	}

	core.OK(w, summaries)
}

func (h *Handler) GetStack(w http.ResponseWriter, r *http.Request) {
	archetypeID := chi.URLParam(r, "archetypeID")

	s, ok, err := h.cache.Get(r.Context(), archetypeID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if !ok {
		core.NotFound(w, "stack")
		return
	}

	core.OK(w, s)
}

func (h *Handler) DeleteStack(w http.ResponseWriter, r *http.Request) {
	archetypeID := chi.URLParam(r, "archetypeID")

	_, ok, err := h.cache.Get(r.Context(), archetypeID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if !ok {
		core.NotFound(w, "stack")
		return
	}

	if err := h.cache.Delete(r.Context(), archetypeID); err != nil {
		core.InternalServerError(w, err)
		return
	}

	slog.Info("cached stack deleted",
		"archetype_id", archetypeID,
		"subject", middleware.GetSubject(r.Context()),
	)

	core.NoContent(w)
}

func (h *Handler) RegenerateStack(w http.ResponseWriter, r *http.Request) {
	archetypeID := chi.URLParam(r, "archetypeID")

	s, err := h.regenerator.Regenerate(r.Context(), archetypeID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "archetype")
		case errors.Is(err, core.ErrCollaboratorUnavailable):
			core.ServiceUnavailable(w, "product catalog is unavailable")
		case errors.Is(err, stack.ErrInsufficientBudget),
			errors.Is(err, stack.ErrNoCandidates):
			core.JSONError(w, core.UnprocessableError(
				"BUILD_FAILED",
				"no stack could be built for the archetype",
				err,
			))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	slog.Info("cached stack regenerated",
		"archetype_id", archetypeID,
		"stack_id", s.ID,
		"subject", middleware.GetSubject(r.Context()),
	)
	core.OK(w, s)
}

func (h *Handler) TriggerVerification(w http.ResponseWriter, r *http.Request) {
	if err := h.verify.Trigger(r.Context()); err != nil {
		if errors.Is(err, verifier.ErrPassInProgress) {
			core.Conflict(w, "a verification pass is already running")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	slog.Info("verification pass triggered",
		"subject", middleware.GetSubject(r.Context()),
	)
	core.Accepted(w, map[string]string{"status": "started"})
}

func (h *Handler) LastVerification(w http.ResponseWriter, r *http.Request) {
	report, ok := h.verify.LastReport()
	if !ok {
		core.NotFound(w, "verification report")
		return
	}

	if report.BrokenURLs == nil {
		report.BrokenURLs = []verifier.BrokenURL{}
	}
	core.OK(w, report)
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := SystemStatsResponse{
		Cache:   h.cacheStats(ctx),
		Runtime: runtimeStats(),
	}

	if h.dbPing != nil {
		response.Database = &DatabaseStatus{
			Healthy: h.dbPing(ctx) == nil,
			Stats:   h.getDBStats(),
		}
	}

	if h.redisPing != nil {
		response.Redis = &RedisStatus{
			Healthy: h.redisPing(ctx) == nil,
			Stats:   h.getRedisStats(),
		}
	}

	core.OK(w, response)
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, runtimeStats())
}

func (h *Handler) cacheStats(ctx context.Context) CacheStats {
	stats := CacheStats{ByStatus: map[string]int{}}

	stacks, err := h.cache.All(ctx)
	if err != nil {
		return stats
	}

	stats.Healthy = true
	stats.Stacks = len(stacks)
	for _, s := range stacks {
		stats.ByStatus[string(s.Status)]++
	}
	return stats
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func runtimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}
