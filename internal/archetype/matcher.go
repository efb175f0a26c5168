// AngelaMos | 2026
// matcher.go

package archetype

import (
	"math"
	"strings"

	"github.com/carterperez-dev/stackrec/internal/stack"
)

type Weights struct {
	AgePenalty      float64
	GoalPenalty     float64
	ActivityPenalty float64
	BudgetPenalty   float64
	BudgetTolerance float64
}

func DefaultWeights() Weights {
	return Weights{
		AgePenalty:      0.3,
		GoalPenalty:     0.4,
		ActivityPenalty: 0.05,
		BudgetPenalty:   0.05,
		BudgetTolerance: 0.2,
	}
}

type Matcher struct {
	weights Weights
}

func NewMatcher(weights Weights) *Matcher {
	return &Matcher{weights: weights}
}

// Match returns the best-scoring archetype and its confidence in [0,1].
// Ties keep the archetype declared first. An empty table yields ("", 0).
func (m *Matcher) Match(
	profile stack.UserProfile,
	archetypes []Archetype,
) (string, float64) {
	bestID := ""
	best := -1.0

	for i := range archetypes {
		score := m.Score(profile, &archetypes[i])
		if score > best {
			bestID, best = archetypes[i].ID, score
		}
	}

	if bestID == "" {
		return "", 0
	}
	return bestID, best
}

func (m *Matcher) Score(profile stack.UserProfile, a *Archetype) float64 {
	if !a.Gender.Matches(profile.Gender) {
		return 0
	}
	// A goalless profile gets core items only, which a goal-driven
	// archetype stack never is.
	if !hasGoals(profile.PrimaryGoals) && len(a.Goals) > 0 {
		return 0
	}

	score := 1.0

	if !a.AgeRange.Contains(profile.Age) {
		score -= m.weights.AgePenalty
	}

	score -= m.weights.GoalPenalty * missingGoalFraction(profile.PrimaryGoals, a.Goals)

	if profile.Activity != "" && a.Activity != "" && profile.Activity != a.Activity {
		score -= m.weights.ActivityPenalty
	}

	score -= m.budgetPenalty(profile.BudgetCents, a.DefaultBudgetCents)

	return clamp(score)
}

func (m *Matcher) budgetPenalty(budget, reference int64) float64 {
	if reference <= 0 {
		return 0
	}
	distance := math.Abs(float64(budget-reference)) / float64(reference)
	excess := distance - m.weights.BudgetTolerance
	if excess <= 0 {
		return 0
	}
	return math.Min(m.weights.BudgetPenalty, excess*m.weights.BudgetPenalty)
}

func missingGoalFraction(goals, archetypeGoals []string) float64 {
	have := make(map[string]struct{}, len(archetypeGoals))
	for _, g := range archetypeGoals {
		have[normalize(g)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(goals))
	total, missing := 0, 0
	for _, g := range goals {
		key := normalize(g)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		total++
		if _, ok := have[key]; !ok {
			missing++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(missing) / float64(total)
}

func hasGoals(goals []string) bool {
	for _, g := range goals {
		if normalize(g) != "" {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
