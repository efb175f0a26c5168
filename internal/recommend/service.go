// AngelaMos | 2026
// service.go

package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/catalog"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/metrics"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

type Source string

const (
	SourceCached    Source = "cached"
	SourceGenerated Source = "generated"
)

type Result struct {
	Stack       stack.Stack
	Source      Source
	ArchetypeID string
	Confidence  float64
}

type StackCache interface {
	Get(ctx context.Context, archetypeID string) (stack.Stack, bool, error)
}

// Annotator attaches evidence notes to generated stacks.
type Annotator interface {
	Notes(ctx context.Context, s stack.Stack) ([]string, error)
}

type Config struct {
	ConfidenceThreshold float64
	MaxEntries          int
}

type Service struct {
	matcher    *archetype.Matcher
	archetypes *archetype.Table
	cache      StackCache
	catalog    catalog.Provider
	builder    *stack.Builder
	annotator  Annotator
	cfg        Config
	tracer     trace.Tracer
}

func NewService(
	matcher *archetype.Matcher,
	archetypes *archetype.Table,
	cache StackCache,
	provider catalog.Provider,
	builder *stack.Builder,
	annotator Annotator,
	cfg Config,
) *Service {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.6
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = stack.DefaultMaxEntries
	}

	return &Service{
		matcher:    matcher,
		archetypes: archetypes,
		cache:      cache,
		catalog:    provider,
		builder:    builder,
		annotator:  annotator,
		cfg:        cfg,
		tracer:     otel.Tracer("stackrec/recommend"),
	}
}

// Recommend serves the matched archetype's cached stack when the match is
// confident and the stack is usable for this caller, and builds a fresh
// stack from the catalog otherwise. Generated stacks are not cached.
func (s *Service) Recommend(ctx context.Context, profile stack.UserProfile) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "recommend")
	defer span.End()

	if err := profile.Validate(); err != nil {
		metrics.RecommendationErrors.WithLabelValues("invalid_profile").Inc()
		return Result{}, err
	}

	archetypeID, confidence := s.matcher.Match(profile, s.archetypes.All())
	metrics.MatchConfidence.Observe(confidence)
	span.SetAttributes(
		attribute.String("archetype.id", archetypeID),
		attribute.Float64("match.confidence", confidence),
	)

	if confidence >= s.cfg.ConfidenceThreshold {
		if cached, ok := s.cached(ctx, archetypeID, profile); ok {
			metrics.RecommendationsTotal.WithLabelValues(string(SourceCached)).Inc()
			span.SetAttributes(attribute.String("recommend.source", string(SourceCached)))
			return Result{
				Stack:       cached,
				Source:      SourceCached,
				ArchetypeID: archetypeID,
				Confidence:  confidence,
			}, nil
		}
	}

	generated, err := s.generate(ctx, profile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate stack")
		return Result{}, err
	}

	metrics.RecommendationsTotal.WithLabelValues(string(SourceGenerated)).Inc()
	span.SetAttributes(attribute.String("recommend.source", string(SourceGenerated)))
	return Result{
		Stack:       generated,
		Source:      SourceGenerated,
		ArchetypeID: archetypeID,
		Confidence:  confidence,
	}, nil
}

func (s *Service) cached(
	ctx context.Context,
	archetypeID string,
	profile stack.UserProfile,
) (stack.Stack, bool) {
	if slices.ContainsFunc(profile.DietaryRestrictions, catalog.Enforceable) {
		return stack.Stack{}, false
	}

	cached, ok, err := s.cache.Get(ctx, archetypeID)
	if err != nil {
		slog.Warn("stack cache unavailable, generating instead",
			"archetype_id", archetypeID,
			"error", err,
		)
		return stack.Stack{}, false
	}
	if !ok || !cached.Servable() {
		return stack.Stack{}, false
	}
	if cached.TotalCostCents > profile.BudgetCents {
		return stack.Stack{}, false
	}
	return cached, true
}

func (s *Service) generate(ctx context.Context, profile stack.UserProfile) (stack.Stack, error) {
	products, err := s.catalog.ListProducts(ctx, catalog.Filter{AvailableOnly: true})
	if err != nil {
		metrics.RecommendationErrors.WithLabelValues("catalog_unavailable").Inc()
		return stack.Stack{}, fmt.Errorf("%w: %w", core.ErrServiceUnavailable, err)
	}

	start := time.Now()
	built, err := s.builder.Build(profile, products, s.cfg.MaxEntries)
	metrics.BuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, stack.ErrInsufficientBudget):
			metrics.RecommendationErrors.WithLabelValues("insufficient_budget").Inc()
		case errors.Is(err, stack.ErrNoCandidates):
			metrics.RecommendationErrors.WithLabelValues("no_candidates").Inc()
		}
		return stack.Stack{}, err
	}

	if s.annotator != nil {
		notes, err := s.annotator.Notes(ctx, built)
		if err != nil {
			slog.Debug("evidence lookup failed", "error", err)
		} else {
			built.EvidenceNotes = notes
		}
	}

	return built, nil
}
