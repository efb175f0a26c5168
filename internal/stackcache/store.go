// AngelaMos | 2026
// store.go

package stackcache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/metrics"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

const keyPrefix = "stack:"

// Store persists one stack per archetype ID. Get returns an error wrapping
// core.ErrNotFound on a miss.
type Store interface {
	Get(ctx context.Context, archetypeID string) (stack.Stack, error)
	Put(ctx context.Context, s stack.Stack) error
	Delete(ctx context.Context, archetypeID string) error
	List(ctx context.Context) ([]stack.Stack, error)
	Ping(ctx context.Context) error
}

// Cache is the archetype stack cache. Entries never expire; the verifier
// downgrades them instead.
type Cache struct {
	store  Store
	tracer trace.Tracer
}

func New(store Store) *Cache {
	return &Cache{
		store:  store,
		tracer: otel.Tracer("stackrec/stackcache"),
	}
}

func (c *Cache) Get(
	ctx context.Context,
	archetypeID string,
) (stack.Stack, bool, error) {
	ctx, span := c.tracer.Start(ctx, "stackcache.get",
		trace.WithAttributes(attribute.String("archetype.id", archetypeID)))
	defer span.End()

	s, err := c.store.Get(ctx, archetypeID)
	switch {
	case err == nil:
		record("get", "hit")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return s, true, nil
	case errors.Is(err, core.ErrNotFound):
		record("get", "miss")
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return stack.Stack{}, false, nil
	default:
		record("get", "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache get failed")
		return stack.Stack{}, false, fmt.Errorf("cache get %s: %w", archetypeID, err)
	}
}

func (c *Cache) Put(ctx context.Context, s stack.Stack) error {
	ctx, span := c.tracer.Start(ctx, "stackcache.put",
		trace.WithAttributes(
			attribute.String("archetype.id", s.ArchetypeID),
			attribute.String("stack.status", string(s.Status)),
		))
	defer span.End()

	if strings.TrimSpace(s.ArchetypeID) == "" {
		record("put", "error")
		return fmt.Errorf("cache put: archetype id required: %w", core.ErrInvalidInput)
	}

	if err := c.store.Put(ctx, s); err != nil {
		record("put", "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache put failed")
		return fmt.Errorf("cache put %s: %w", s.ArchetypeID, err)
	}

	record("put", "ok")
	return nil
}

func (c *Cache) Delete(ctx context.Context, archetypeID string) error {
	ctx, span := c.tracer.Start(ctx, "stackcache.delete",
		trace.WithAttributes(attribute.String("archetype.id", archetypeID)))
	defer span.End()

	if err := c.store.Delete(ctx, archetypeID); err != nil {
		record("delete", "error")
		span.RecordError(err)
		return fmt.Errorf("cache delete %s: %w", archetypeID, err)
	}

	record("delete", "ok")
	return nil
}

// All returns every cached stack ordered by archetype ID.
func (c *Cache) All(ctx context.Context) ([]stack.Stack, error) {
	ctx, span := c.tracer.Start(ctx, "stackcache.all")
	defer span.End()

	stacks, err := c.store.List(ctx)
	if err != nil {
		record("list", "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache list failed")
		return nil, fmt.Errorf("cache list: %w", err)
	}

	slices.SortFunc(stacks, func(a, b stack.Stack) int {
		return strings.Compare(a.ArchetypeID, b.ArchetypeID)
	})

	record("list", "ok")
	span.SetAttributes(attribute.Int("stack.count", len(stacks)))
	return stacks, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func record(operation, result string) {
	metrics.CacheOperations.WithLabelValues(operation, result).Inc()
}

func notFound(archetypeID string) error {
	return fmt.Errorf("stack %s: %w", archetypeID, core.ErrNotFound)
}
