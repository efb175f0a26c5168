// AngelaMos | 2026
// provider_test.go

package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carterperez-dev/stackrec/internal/catalog"
	"github.com/carterperez-dev/stackrec/internal/catalog/catalogtest"
	"github.com/carterperez-dev/stackrec/internal/core"
)

func TestNewSnapshotRejectsDuplicates(t *testing.T) {
	products := catalogtest.Muscle()
	products = append(products, products[0])

	_, err := catalog.NewSnapshot(products)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("NewSnapshot() error = %v, want ErrInvalidInput", err)
	}
}

func TestSnapshotByID(t *testing.T) {
	snap, err := catalog.NewSnapshot(catalogtest.Muscle())
	if err != nil {
		t.Fatalf("NewSnapshot() error: %v", err)
	}

	p, ok := snap.ByID("creatine")
	if !ok || p.PriceCents != 2500 {
		t.Fatalf("ByID(creatine) = %+v, %v", p, ok)
	}
	if _, ok := snap.ByID("missing"); ok {
		t.Fatal("ByID(missing) should not be found")
	}
}

func TestStaticListAndMarkUnavailable(t *testing.T) {
	snap, err := catalog.NewSnapshot(catalogtest.Muscle())
	if err != nil {
		t.Fatalf("NewSnapshot() error: %v", err)
	}
	static := catalog.NewStatic(snap)
	ctx := context.Background()

	all, err := static.ListProducts(ctx, catalog.Filter{AvailableOnly: true})
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("ListProducts() returned %d products, want 5", len(all))
	}

	if err := static.MarkUnavailable(ctx, []string{"omega", "unknown"}); err != nil {
		t.Fatalf("MarkUnavailable() error: %v", err)
	}

	avail, err := static.ListProducts(ctx, catalog.Filter{AvailableOnly: true})
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}
	if len(avail) != 4 {
		t.Fatalf("available products = %d, want 4", len(avail))
	}
	for _, p := range avail {
		if p.ID == "omega" {
			t.Fatal("omega should be filtered out after MarkUnavailable")
		}
	}

	everything, _ := static.ListProducts(ctx, catalog.Filter{})
	if len(everything) != 5 {
		t.Fatalf("soft flag must not delete products, got %d", len(everything))
	}
}

func TestLoadSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `{"products":[{"id":"zinc","name":"Zinc","category":"zinc",
		"price_cents":699,"rating":4.5,"evidence_level":"moderate",
		"available":true,"goal_tags":["immune-support"],"vegan":true}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	snap, err := catalog.LoadSnapshotFile(path)
	if err != nil {
		t.Fatalf("LoadSnapshotFile() error: %v", err)
	}

	p, ok := snap.ByID("zinc")
	if !ok {
		t.Fatal("zinc not loaded")
	}
	if !p.Vegan || !p.HasTag("immune-support") {
		t.Fatalf("decoded product = %+v", p)
	}
}
