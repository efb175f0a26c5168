// AngelaMos | 2026
// builder.go

package stack

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/stackrec/internal/catalog"
)

// DefaultCoreCategories are the general-health classes always considered,
// in priority order.
var DefaultCoreCategories = []string{"multivitamin", "omega-3", "vitamin-d3"}

const DefaultGoalDepth = 2

var stackNamespace = uuid.MustParse("5b6f1c2e-8f1e-4c3a-9d55-2f6c1a7e9b10")

// Builder turns a profile and a candidate set into a budget-bounded stack.
// It is the single implementation behind archetype precomputation and
// on-demand generation. Build has no side effects; the clock is injected
// so identical inputs produce identical stacks.
type Builder struct {
	now               func() time.Time
	coreCategories    []string
	goalDepth         int
	defaultCommission float64
}

type BuilderOption func(*Builder)

func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

func WithCoreCategories(categories ...string) BuilderOption {
	return func(b *Builder) { b.coreCategories = slices.Clone(categories) }
}

// WithGoalDepth caps how many products a single goal may pull in.
func WithGoalDepth(depth int) BuilderOption {
	return func(b *Builder) {
		if depth > 0 {
			b.goalDepth = depth
		}
	}
}

func WithDefaultCommissionRate(rate float64) BuilderOption {
	return func(b *Builder) { b.defaultCommission = rate }
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		now:            time.Now,
		coreCategories: slices.Clone(DefaultCoreCategories),
		goalDepth:      DefaultGoalDepth,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type pick struct {
	product *catalog.Product
	goals   []string
	core    bool
}

type selection struct {
	budget     int64
	maxEntries int
	running    int64
	picks      []*pick
	taken      map[string]*pick
	coverage   map[string]int
	goals      []string
}

func (s *selection) fits(p *catalog.Product) bool {
	return s.running+p.PriceCents <= s.budget && len(s.picks) < s.maxEntries
}

func (s *selection) add(p *catalog.Product, core bool) {
	pk := &pick{product: p, core: core}
	for _, g := range s.goals {
		if p.HasTag(g) {
			pk.goals = append(pk.goals, g)
			s.coverage[g]++
		}
	}
	s.picks = append(s.picks, pk)
	s.taken[p.ID] = pk
	s.running += p.PriceCents
}

func (b *Builder) Build(
	profile UserProfile,
	candidates []catalog.Product,
	maxEntries int,
) (Stack, error) {
	if err := profile.Validate(); err != nil {
		return Stack{}, err
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	pool := eligible(candidates, profile.DietaryRestrictions)
	core := b.coreCandidates(pool)

	if cheapest, ok := cheapestOf(core); ok && cheapest.PriceCents > profile.BudgetCents {
		return Stack{}, fmt.Errorf(
			"%w: cheapest core item %q costs %d cents, budget is %d cents",
			ErrInsufficientBudget,
			cheapest.ID,
			cheapest.PriceCents,
			profile.BudgetCents,
		)
	}

	sel := &selection{
		budget:     profile.BudgetCents,
		maxEntries: maxEntries,
		taken:      make(map[string]*pick),
		coverage:   make(map[string]int),
		goals:      orderedGoals(profile),
	}

	b.selectGoals(sel, pool)
	b.fillCore(sel, core)

	if len(sel.picks) == 0 {
		return Stack{}, ErrNoCandidates
	}

	return b.assemble(profile, sel), nil
}

func (b *Builder) selectGoals(sel *selection, pool []catalog.Product) {
	maxPrice := int64(1)
	for i := range pool {
		maxPrice = max(maxPrice, pool[i].PriceCents)
	}

	for round := 1; round <= b.goalDepth; round++ {
		for _, goal := range sel.goals {
			if sel.coverage[goal] >= round {
				continue
			}
			if best := bestForGoal(sel, pool, goal, maxPrice); best != nil {
				sel.add(best, false)
			}
		}
	}
}

func bestForGoal(
	sel *selection,
	pool []catalog.Product,
	goal string,
	maxPrice int64,
) *catalog.Product {
	var best *catalog.Product
	bestScore := math.Inf(-1)

	for i := range pool {
		p := &pool[i]
		if _, taken := sel.taken[p.ID]; taken || !p.HasTag(goal) || !sel.fits(p) {
			continue
		}
		score := Score(p, maxPrice)
		if best == nil || score > bestScore ||
			(score == bestScore && cheaperOrBetter(p, best) < 0) {
			best, bestScore = p, score
		}
	}

	return best
}

func (b *Builder) fillCore(sel *selection, core map[string][]*catalog.Product) {
	for _, category := range b.coreCategories {
		if sel.coversCategory(category) {
			continue
		}
		for _, p := range core[category] {
			if sel.fits(p) {
				sel.add(p, true)
				break
			}
		}
	}
}

func (s *selection) coversCategory(category string) bool {
	for _, pk := range s.picks {
		if pk.product.Category == category {
			return true
		}
	}
	return false
}

func (b *Builder) assemble(profile UserProfile, sel *selection) Stack {
	ordered := make([]*pick, 0, len(sel.picks))
	for _, category := range b.coreCategories {
		for _, pk := range sel.picks {
			if pk.core && pk.product.Category == category {
				ordered = append(ordered, pk)
			}
		}
	}
	for _, pk := range sel.picks {
		if !pk.core {
			ordered = append(ordered, pk)
		}
	}

	st := Stack{
		Entries: make([]Entry, 0, len(ordered)),
		Status:  StatusUnverified,
	}

	categories := make([]string, 0, len(ordered))
	weightSum := 0
	for _, pk := range ordered {
		p := pk.product
		g := guidanceFor(p.Category)
		commission := p.CommissionRate
		if commission == 0 {
			commission = b.defaultCommission
		}

		st.Entries = append(st.Entries, Entry{
			ProductID:      p.ID,
			Name:           p.Name,
			Brand:          p.Brand,
			Category:       p.Category,
			PriceCents:     p.PriceCents,
			URL:            p.URL,
			ImageURL:       p.ImageURL,
			Evidence:       p.Evidence,
			Dosage:         g.Dosage,
			Timing:         g.Timing,
			CommissionRate: commission,
			Goals:          pk.goals,
			Core:           pk.core,
		})
		st.TotalCostCents += p.PriceCents
		weightSum += p.Evidence.Weight()
		categories = append(categories, p.Category)
	}

	st.EvidenceScore = evidenceScore(weightSum, len(ordered))
	st.SynergyNotes = notesFor(synergyTable, categories)
	st.ContraindicationNotes = notesFor(contraindicationTable, categories)
	st.GeneratedAt = b.now().UTC()
	st.ID = uuid.NewSHA1(
		stackNamespace,
		[]byte(profile.Key()+"#"+strings.Join(st.ProductIDs(), ",")),
	).String()

	return st
}

// Score ranks goal candidates: evidence weight times normalized rating,
// minus price normalized against the most expensive candidate.
func Score(p *catalog.Product, maxPrice int64) float64 {
	if maxPrice <= 0 {
		maxPrice = 1
	}
	rating := p.Rating / 5
	price := float64(p.PriceCents) / float64(maxPrice)
	return float64(p.Evidence.Weight())*rating - price
}

func evidenceScore(weightSum, n int) float64 {
	if n == 0 {
		return 0
	}
	mean := float64(weightSum) / float64(n)
	return math.Round(mean/catalog.MaxEvidenceWeight*1000) / 10
}

func eligible(candidates []catalog.Product, restrictions []string) []catalog.Product {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]catalog.Product, 0, len(candidates))
	for _, p := range candidates {
		if !p.Available || !p.SatisfiesRestrictions(restrictions) {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (b *Builder) coreCandidates(pool []catalog.Product) map[string][]*catalog.Product {
	core := make(map[string][]*catalog.Product, len(b.coreCategories))
	for i := range pool {
		p := &pool[i]
		if slices.Contains(b.coreCategories, p.Category) {
			core[p.Category] = append(core[p.Category], p)
		}
	}
	for _, list := range core {
		slices.SortFunc(list, cheaperOrBetter)
	}
	return core
}

func cheapestOf(core map[string][]*catalog.Product) (*catalog.Product, bool) {
	var cheapest *catalog.Product
	for _, list := range core {
		if len(list) == 0 {
			continue
		}
		if cheapest == nil || cheaperOrBetter(list[0], cheapest) < 0 {
			cheapest = list[0]
		}
	}
	return cheapest, cheapest != nil
}

// cheaperOrBetter orders by price ascending, then rating descending, then
// ID so that ties never depend on input order.
func cheaperOrBetter(a, b *catalog.Product) int {
	if c := cmp.Compare(a.PriceCents, b.PriceCents); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func orderedGoals(profile UserProfile) []string {
	goals := make([]string, 0, len(profile.PrimaryGoals)+len(profile.HealthConcerns))
	seen := make(map[string]struct{})
	for _, list := range [][]string{profile.PrimaryGoals, profile.HealthConcerns} {
		for _, g := range list {
			key := strings.ToLower(strings.TrimSpace(g))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			goals = append(goals, key)
		}
	}
	return goals
}
