// AngelaMos | 2026
// regenerate.go

package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/stackrec/internal/catalog"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

// Regenerate rebuilds one archetype's stack from the current catalog and
// replaces the cached copy. The new stack starts unverified.
func (v *Verifier) Regenerate(ctx context.Context, archetypeID string) (stack.Stack, error) {
	ctx, span := v.tracer.Start(ctx, "verifier.regenerate")
	defer span.End()

	products, err := v.catalog.ListProducts(ctx, catalog.Filter{AvailableOnly: true})
	if err != nil {
		return stack.Stack{}, fmt.Errorf("regenerate %s: %w", archetypeID, err)
	}

	s, err := v.build(archetypeID, products)
	if err != nil {
		return stack.Stack{}, err
	}

	if err := v.cache.Put(ctx, s); err != nil {
		return stack.Stack{}, fmt.Errorf("regenerate %s: %w", archetypeID, err)
	}

	slog.Info("stack regenerated",
		"archetype_id", archetypeID,
		"entries", len(s.Entries),
		"total_cost_cents", s.TotalCostCents,
	)
	return s, nil
}

// Warm precomputes stacks for archetypes that have nothing cached and
// returns how many it wrote. Failures for one archetype do not stop the
// others; they are joined into the returned error.
func (v *Verifier) Warm(ctx context.Context) (int, error) {
	ctx, span := v.tracer.Start(ctx, "verifier.warm")
	defer span.End()

	var missing []string
	for _, a := range v.archetypes.All() {
		_, ok, err := v.cache.Get(ctx, a.ID)
		if err != nil {
			return 0, fmt.Errorf("warm: %w", err)
		}
		if !ok {
			missing = append(missing, a.ID)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	products, err := v.catalog.ListProducts(ctx, catalog.Filter{AvailableOnly: true})
	if err != nil {
		return 0, fmt.Errorf("warm: %w", err)
	}

	var errs []error
	warmed := 0
	for _, id := range missing {
		s, err := v.build(id, products)
		if err != nil {
			slog.Warn("warm archetype", "archetype_id", id, "error", err)
			errs = append(errs, err)
			continue
		}
		if err := v.cache.Put(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", id, err))
			continue
		}
		warmed++
	}

	slog.Info("stack cache warmed", "written", warmed, "missing", len(missing))
	return warmed, errors.Join(errs...)
}

func (v *Verifier) build(archetypeID string, products []catalog.Product) (stack.Stack, error) {
	arch, ok := v.archetypes.Get(archetypeID)
	if !ok {
		return stack.Stack{}, fmt.Errorf("archetype %s: %w", archetypeID, core.ErrNotFound)
	}

	s, err := v.builder.Build(arch.Profile(), products, v.cfg.MaxEntries)
	if err != nil {
		return stack.Stack{}, fmt.Errorf("build %s: %w", archetypeID, err)
	}

	s.ArchetypeID = archetypeID
	s.Status = stack.StatusUnverified
	return s, nil
}
