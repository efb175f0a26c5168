// AngelaMos | 2026
// provider.go

package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/carterperez-dev/stackrec/internal/core"
)

// Provider returns the current product snapshot. Callers must not assume
// real-time freshness.
type Provider interface {
	ListProducts(ctx context.Context, filter Filter) ([]Product, error)
}

// AvailabilityMarker is implemented by providers that accept soft
// unavailability flags from the verifier.
type AvailabilityMarker interface {
	MarkUnavailable(ctx context.Context, ids []string) error
}

// Snapshot is an immutable, validated set of products keyed by ID.
type Snapshot struct {
	products []Product
	index    map[string]int
}

func NewSnapshot(products []Product) (*Snapshot, error) {
	s := &Snapshot{
		products: make([]Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
	}

	for i := range products {
		p := products[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.index[p.ID]; dup {
			return nil, fmt.Errorf(
				"duplicate product id %q: %w",
				p.ID,
				core.ErrInvalidInput,
			)
		}
		s.index[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}

	return s, nil
}

func (s *Snapshot) Len() int {
	return len(s.products)
}

func (s *Snapshot) ByID(id string) (Product, bool) {
	i, ok := s.index[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

func (s *Snapshot) Products() []Product {
	return slices.Clone(s.products)
}

// Static serves a fixed snapshot from memory. Unavailability flags set by
// the verifier are kept in memory and applied on read.
type Static struct {
	snapshot    *Snapshot
	mu          sync.RWMutex
	unavailable map[string]struct{}
}

func NewStatic(snapshot *Snapshot) *Static {
	return &Static{
		snapshot:    snapshot,
		unavailable: make(map[string]struct{}),
	}
}

func (s *Static) ListProducts(
	ctx context.Context,
	filter Filter,
) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, s.snapshot.Len())
	for _, p := range s.snapshot.products {
		if _, off := s.unavailable[p.ID]; off {
			p.Available = false
		}
		if filter.Matches(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Static) MarkUnavailable(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.snapshot.index[id]; ok {
			s.unavailable[id] = struct{}{}
		}
	}
	return nil
}

var (
	_ Provider           = (*Static)(nil)
	_ AvailabilityMarker = (*Static)(nil)
)
