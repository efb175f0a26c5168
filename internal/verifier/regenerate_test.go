// AngelaMos | 2026
// regenerate_test.go

package verifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

func TestRegenerateReplacesCachedStack(t *testing.T) {
	old := cachedStack(t, "lifter", "whey")
	old.Status = stack.StatusStale
	f := newFixture(t, nil, nil, old)

	s, err := f.verifier.Regenerate(context.Background(), "lifter")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if s.ArchetypeID != "lifter" || s.Status != stack.StatusUnverified {
		t.Errorf("regenerated = %+v", s)
	}
	if s.TotalCostCents > 10000 {
		t.Errorf("total %d exceeds archetype budget", s.TotalCostCents)
	}

	cached := f.get(t, "lifter")
	if cached.ID != s.ID || cached.Status != stack.StatusUnverified {
		t.Errorf("cache holds %s/%s, want %s/unverified", cached.ID, cached.Status, s.ID)
	}
}

func TestRegenerateUnknownArchetype(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.verifier.Regenerate(context.Background(), "nobody")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRegenerateCatalogUnavailable(t *testing.T) {
	f := newFixture(t, nil, failingProvider{})

	_, err := f.verifier.Regenerate(context.Background(), "lifter")
	if !errors.Is(err, core.ErrCollaboratorUnavailable) {
		t.Errorf("err = %v, want ErrCollaboratorUnavailable", err)
	}
}

func TestWarmFillsOnlyMissingArchetypes(t *testing.T) {
	existing := cachedStack(t, "lifter", "whey")
	f := newFixture(t, nil, nil, existing)

	n, err := f.verifier.Warm(context.Background())
	if err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if n != 1 {
		t.Errorf("warmed = %d, want 1", n)
	}

	if got := f.get(t, "lifter"); got.ID != existing.ID {
		t.Errorf("existing stack replaced: %s", got.ID)
	}
	sleeper := f.get(t, "sleeper")
	if sleeper.Status != stack.StatusUnverified || len(sleeper.Entries) == 0 {
		t.Errorf("sleeper = %+v", sleeper)
	}

	n, err = f.verifier.Warm(context.Background())
	if err != nil || n != 0 {
		t.Errorf("second Warm = (%d, %v), want (0, nil)", n, err)
	}
}
