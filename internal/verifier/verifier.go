// AngelaMos | 2026
// verifier.go

package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/catalog"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/metrics"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

var ErrPassInProgress = errors.New("verification pass already running")

// StackCache is the slice of the stack cache the verifier writes through.
type StackCache interface {
	Get(ctx context.Context, archetypeID string) (stack.Stack, bool, error)
	Put(ctx context.Context, s stack.Stack) error
	All(ctx context.Context) ([]stack.Stack, error)
}

type Config struct {
	Workers         int
	Retry           core.RetryPolicy
	PassTimeout     time.Duration
	MaxEntries      int
	MarkUnavailable bool
}

type Verifier struct {
	cache      StackCache
	catalog    catalog.Provider
	builder    *stack.Builder
	archetypes *archetype.Table
	checker    Checker
	cfg        Config
	now        func() time.Time
	tracer     trace.Tracer
}

type Option func(*Verifier)

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

func New(
	cache StackCache,
	provider catalog.Provider,
	builder *stack.Builder,
	archetypes *archetype.Table,
	checker Checker,
	cfg Config,
	opts ...Option,
) *Verifier {
	if cfg.Workers <= 0 {
		cfg.Workers = 12
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry.Attempts = 1
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = stack.DefaultMaxEntries
	}

	v := &Verifier{
		cache:      cache,
		catalog:    provider,
		builder:    builder,
		archetypes: archetypes,
		checker:    checker,
		cfg:        cfg,
		now:        time.Now,
		tracer:     otel.Tracer("stackrec/verifier"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type target struct {
	url  string
	kind string
}

type result struct {
	ok     bool
	status int
}

// VerifyAll checks every URL referenced by the cached stacks and writes
// each stack back with its new status. Stacks are never deleted. When ctx
// ends mid-pass no new checks start, and whatever was learned is still
// persisted. A returned error wrapping core.ErrCollaboratorUnavailable
// means at least one repair could not reach the catalog; the report is
// complete in that case.
func (v *Verifier) VerifyAll(ctx context.Context) (Report, error) {
	report := Report{StartedAt: v.now().UTC(), BrokenURLs: []BrokenURL{}}
	start := time.Now()

	if v.cfg.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.PassTimeout)
		defer cancel()
	}

	ctx, span := v.tracer.Start(ctx, "verifier.pass")
	defer span.End()

	stacks, err := v.cache.All(ctx)
	if err != nil {
		metrics.VerifierPasses.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "load cached stacks")
		return report, fmt.Errorf("load cached stacks: %w", err)
	}

	results := v.checkAll(ctx, collectTargets(stacks))
	report.Checked = len(results)
	report.Cancelled = ctx.Err() != nil

	persistCtx := context.WithoutCancel(ctx)
	brokenProducts := brokenProductIDs(stacks, results)

	var repairErr error
	for i := range stacks {
		updated, outcome, err := v.evaluate(ctx, stacks[i], results, brokenProducts, &report)
		if err != nil && errors.Is(err, core.ErrCollaboratorUnavailable) {
			repairErr = err
		}

		switch updated.Status {
		case stack.StatusVerified:
			report.Verified++
		case stack.StatusPartial:
			report.Partial++
		case stack.StatusStale:
			report.Stale++
		}
		if outcome.repaired {
			report.Repaired++
		}
		if outcome.incomplete {
			report.Incomplete++
		}

		if err := v.cache.Put(persistCtx, updated); err != nil {
			report.PersistFailures++
			metrics.CachePersistenceFailures.Inc()
			slog.Error("persist verified stack",
				"archetype_id", updated.ArchetypeID,
				"status", updated.Status,
				"error", err,
			)
		}
	}

	if v.cfg.MarkUnavailable && len(brokenProducts) > 0 {
		v.markUnavailable(persistCtx, brokenProducts)
	}

	report.Duration = time.Since(start)
	v.record(&report)

	span.SetAttributes(
		attribute.Int("verifier.checked", report.Checked),
		attribute.Int("verifier.stale", report.Stale),
		attribute.Bool("verifier.cancelled", report.Cancelled),
	)

	slog.Info("verification pass finished",
		"verified", report.Verified,
		"partial", report.Partial,
		"stale", report.Stale,
		"repaired", report.Repaired,
		"checked_urls", report.Checked,
		"broken_urls", len(report.BrokenURLs),
		"persist_failures", report.PersistFailures,
		"cancelled", report.Cancelled,
		"duration", report.Duration,
	)

	if repairErr != nil {
		span.RecordError(repairErr)
		return report, fmt.Errorf("verification pass: %w", repairErr)
	}
	return report, nil
}

func (v *Verifier) checkAll(ctx context.Context, targets []target) map[string]result {
	results := make(map[string]result, len(targets))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(v.cfg.Workers)

	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := v.checkURL(ctx, t.url)
			if !res.ok && ctx.Err() != nil {
				return nil
			}

			label := "ok"
			if !res.ok {
				label = "broken"
			}
			metrics.URLChecks.WithLabelValues(t.kind, label).Inc()

			mu.Lock()
			results[t.url] = res
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors
	return results
}

var errUnreachable = errors.New("url unreachable")

func (v *Verifier) checkURL(ctx context.Context, rawURL string) result {
	var res result

	_ = core.Retry(ctx, v.cfg.Retry, func(ctx context.Context) error { //nolint:errcheck // res carries the outcome
		ok, status := v.checker.Check(ctx, rawURL)
		res = result{ok: ok, status: status}
		if ok {
			return nil
		}
		if status >= 400 && status < 500 {
			return core.Permanent(errUnreachable)
		}
		return errUnreachable
	})

	return res
}

type outcome struct {
	repaired   bool
	incomplete bool
}

func (v *Verifier) evaluate(
	ctx context.Context,
	s stack.Stack,
	results map[string]result,
	brokenProducts []string,
	report *Report,
) (stack.Stack, outcome, error) {
	updated := s.Clone()
	var out outcome

	if len(updated.Entries) == 0 {
		return updated, out, nil
	}

	broken := 0
	for i := range updated.Entries {
		e := &updated.Entries[i]

		checked := true
		entryBroken := false
		for _, t := range entryTargets(e) {
			res, ok := results[t.url]
			if !ok {
				checked = false
				continue
			}
			if !res.ok {
				entryBroken = true
				report.BrokenURLs = append(report.BrokenURLs, BrokenURL{
					StackID:     s.ID,
					ArchetypeID: s.ArchetypeID,
					ProductID:   e.ProductID,
					URL:         t.url,
					Kind:        t.kind,
					StatusCode:  res.status,
				})
			}
		}

		if !checked {
			out.incomplete = true
			e.Broken = e.Broken || entryBroken
		} else {
			e.Broken = entryBroken
		}
		if e.Broken {
			broken++
		}
	}

	now := v.now().UTC()

	switch {
	case broken*2 >= len(updated.Entries):
		updated.Status = stack.StatusStale
		if ctx.Err() != nil {
			return updated, out, nil
		}
		repaired, err := v.repair(ctx, s, brokenProducts)
		if err != nil {
			updated.Status = stack.StatusPartial
			slog.Warn("stack repair failed",
				"archetype_id", s.ArchetypeID,
				"broken", broken,
				"entries", len(updated.Entries),
				"error", err,
			)
			return updated, out, err
		}
		repaired.RepairedAt = &now
		out.repaired = true
		return repaired, out, nil

	case broken > 0:
		updated.Status = stack.StatusPartial
	case out.incomplete:
		return updated, out, nil
	default:
		updated.Status = stack.StatusVerified
	}

	if !out.incomplete {
		updated.VerifiedAt = &now
	}
	return updated, out, nil
}

// repair rebuilds the archetype's stack from the current catalog without
// the products found broken in this pass. The result stays stale until a
// later pass checks its links.
func (v *Verifier) repair(
	ctx context.Context,
	s stack.Stack,
	brokenProducts []string,
) (stack.Stack, error) {
	arch, ok := v.archetypes.Get(s.ArchetypeID)
	if !ok {
		return stack.Stack{}, fmt.Errorf("archetype %s: %w", s.ArchetypeID, core.ErrNotFound)
	}

	products, err := v.catalog.ListProducts(ctx, catalog.Filter{
		AvailableOnly: true,
		ExcludeIDs:    brokenProducts,
	})
	if err != nil {
		return stack.Stack{}, fmt.Errorf("repair %s: %w", s.ArchetypeID, err)
	}

	rebuilt, err := v.builder.Build(arch.Profile(), products, v.cfg.MaxEntries)
	if err != nil {
		return stack.Stack{}, fmt.Errorf("repair %s: %w", s.ArchetypeID, err)
	}

	rebuilt.ArchetypeID = s.ArchetypeID
	rebuilt.Status = stack.StatusStale
	return rebuilt, nil
}

func (v *Verifier) markUnavailable(ctx context.Context, ids []string) {
	marker, ok := v.catalog.(catalog.AvailabilityMarker)
	if !ok {
		return
	}
	if err := marker.MarkUnavailable(ctx, ids); err != nil {
		slog.Warn("mark products unavailable", "count", len(ids), "error", err)
	}
}

func (v *Verifier) record(report *Report) {
	label := "completed"
	if report.Cancelled {
		label = "cancelled"
	}
	metrics.VerifierPasses.WithLabelValues(label).Inc()
	metrics.VerifierPassDuration.Observe(report.Duration.Seconds())
	metrics.VerifierStacks.WithLabelValues(string(stack.StatusVerified)).Set(float64(report.Verified))
	metrics.VerifierStacks.WithLabelValues(string(stack.StatusPartial)).Set(float64(report.Partial))
	metrics.VerifierStacks.WithLabelValues(string(stack.StatusStale)).Set(float64(report.Stale))
}

func entryTargets(e *stack.Entry) []target {
	out := make([]target, 0, 2)
	if e.URL != "" {
		out = append(out, target{url: e.URL, kind: KindLink})
	}
	if e.ImageURL != "" {
		out = append(out, target{url: e.ImageURL, kind: KindImage})
	}
	return out
}

func collectTargets(stacks []stack.Stack) []target {
	seen := make(map[string]struct{})
	var out []target
	for i := range stacks {
		for j := range stacks[i].Entries {
			for _, t := range entryTargets(&stacks[i].Entries[j]) {
				if _, dup := seen[t.url]; dup {
					continue
				}
				seen[t.url] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}

func brokenProductIDs(stacks []stack.Stack, results map[string]result) []string {
	set := make(map[string]struct{})
	for i := range stacks {
		for j := range stacks[i].Entries {
			e := &stacks[i].Entries[j]
			for _, t := range entryTargets(e) {
				if res, ok := results[t.url]; ok && !res.ok {
					set[e.ProductID] = struct{}{}
				}
			}
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
