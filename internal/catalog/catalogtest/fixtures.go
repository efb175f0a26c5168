// AngelaMos | 2026
// fixtures.go

// Package catalogtest holds product fixtures shared by package tests.
package catalogtest

import (
	"fmt"

	"github.com/carterperez-dev/stackrec/internal/catalog"
)

func Product(
	id, category string,
	priceCents int64,
	rating float64,
	evidence catalog.EvidenceLevel,
	tags ...string,
) catalog.Product {
	return catalog.Product{
		ID:          id,
		Name:        id,
		Brand:       "Acme",
		Category:    category,
		PriceCents:  priceCents,
		Rating:      rating,
		ReviewCount: 100,
		URL:         fmt.Sprintf("https://shop.example/dp/%s", id),
		ImageURL:    fmt.Sprintf("https://img.example/%s.jpg", id),
		GoalTags:    tags,
		Evidence:    evidence,
		Available:   true,
	}
}

// Muscle is the five-product catalog used by the muscle-building scenario:
// $45 protein, $25 creatine, $13 vitamin D3, $33 omega-3, $43 multivitamin.
func Muscle() []catalog.Product {
	return []catalog.Product{
		Product("protein", "protein", 4500, 4.6, catalog.EvidenceHigh, "muscle-building"),
		Product("creatine", "creatine", 2500, 4.7, catalog.EvidenceHigh, "muscle-building"),
		Product("d3", "vitamin-d3", 1300, 4.5, catalog.EvidenceModerate, "immune-support"),
		Product("omega", "omega-3", 3300, 4.4, catalog.EvidenceHigh, "heart-health"),
		Product("multi", "multivitamin", 4300, 4.2, catalog.EvidenceModerate),
	}
}

// Broad is a larger catalog with several candidates per goal and category.
func Broad() []catalog.Product {
	return []catalog.Product{
		Product("multi-basic", "multivitamin", 899, 4.0, catalog.EvidenceModerate),
		Product("multi-premium", "multivitamin", 2999, 4.8, catalog.EvidenceModerate),
		Product("omega-fish", "omega-3", 1999, 4.5, catalog.EvidenceHigh, "heart-health"),
		Product("omega-algae", "omega-3", 2899, 4.3, catalog.EvidenceHigh, "heart-health"),
		Product("d3-1000", "vitamin-d3", 999, 4.6, catalog.EvidenceModerate, "immune-support"),
		Product("mag-glycinate", "magnesium", 1599, 4.7, catalog.EvidenceModerate, "sleep", "stress"),
		Product("whey", "protein", 4500, 4.6, catalog.EvidenceHigh, "muscle-building"),
		Product("creatine-mono", "creatine", 2500, 4.7, catalog.EvidenceHigh, "muscle-building", "energy"),
		Product("ashwagandha", "adaptogen", 1899, 4.2, catalog.EvidenceModerate, "stress", "sleep"),
		Product("melatonin", "sleep-aid", 799, 4.1, catalog.EvidenceModerate, "sleep"),
		Product("collagen", "collagen", 3499, 4.3, catalog.EvidenceLimited, "joint-health", "skin-health"),
		Product("turmeric", "turmeric", 2199, 4.4, catalog.EvidenceLimited, "joint-health", "inflammation"),
		Product("zinc", "zinc", 699, 4.5, catalog.EvidenceModerate, "immune-support"),
		Product("b12", "vitamin-b12", 899, 4.6, catalog.EvidenceHigh, "energy"),
	}
}
