// AngelaMos | 2026
// matcher_test.go

package archetype_test

import (
	"testing"

	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

func TestMatchExactProfile(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())

	profile := stack.UserProfile{
		Age:          24,
		Gender:       stack.GenderMale,
		Activity:     stack.ActivityActive,
		PrimaryGoals: []string{"muscle-building"},
		BudgetCents:  7500,
	}

	id, conf := m.Match(profile, archetype.Defaults())
	if id != "young-male-muscle" {
		t.Fatalf("id = %q, want young-male-muscle", id)
	}
	if conf < 0.9 {
		t.Errorf("confidence = %v, want >= 0.9", conf)
	}
}

func TestMatchUnrelatedProfile(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())

	profile := stack.UserProfile{
		Age:          12,
		Gender:       stack.GenderFemale,
		Activity:     stack.ActivitySedentary,
		PrimaryGoals: []string{"cognitive-focus"},
		BudgetCents:  50000,
	}

	_, conf := m.Match(profile, archetype.Defaults())
	if conf > 0.3 {
		t.Errorf("confidence = %v, want <= 0.3", conf)
	}
}

func TestScoreGenderMismatchIsZero(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())
	a := archetype.Defaults()[0]

	profile := a.Profile()
	profile.Gender = stack.GenderFemale

	if got := m.Score(profile, &a); got != 0 {
		t.Errorf("Score = %v, want 0", got)
	}
}

func TestScorePenalties(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())
	a := archetype.Archetype{
		ID:                 "a",
		Label:              "A",
		AgeRange:           archetype.AgeRange{Min: 20, Max: 30},
		Gender:             stack.GenderAny,
		Activity:           stack.ActivityActive,
		Goals:              []string{"sleep", "stress"},
		DefaultBudgetCents: 10000,
	}
	base := stack.UserProfile{
		Age:          25,
		Gender:       stack.GenderMale,
		Activity:     stack.ActivityActive,
		PrimaryGoals: []string{"sleep", "stress"},
		BudgetCents:  10000,
	}

	tests := []struct {
		name   string
		mutate func(p *stack.UserProfile)
		want   float64
	}{
		{"exact", func(p *stack.UserProfile) {}, 1.0},
		{"age outside", func(p *stack.UserProfile) { p.Age = 40 }, 0.7},
		{"half goals missing", func(p *stack.UserProfile) { p.PrimaryGoals = []string{"sleep", "energy"} }, 0.8},
		{"goals case insensitive", func(p *stack.UserProfile) { p.PrimaryGoals = []string{"Sleep", " STRESS "} }, 1.0},
		{"activity mismatch", func(p *stack.UserProfile) { p.Activity = stack.ActivityLight }, 0.95},
		{"activity unset", func(p *stack.UserProfile) { p.Activity = "" }, 1.0},
		{"budget inside band", func(p *stack.UserProfile) { p.BudgetCents = 12000 }, 1.0},
		{"budget far outside band", func(p *stack.UserProfile) { p.BudgetCents = 100000 }, 0.95},
		{"no goals", func(p *stack.UserProfile) { p.PrimaryGoals = nil }, 0},
		{"blank goals", func(p *stack.UserProfile) { p.PrimaryGoals = []string{" "} }, 0},
		{"everything off", func(p *stack.UserProfile) {
			p.Age = 60
			p.Activity = stack.ActivitySedentary
			p.PrimaryGoals = []string{"energy"}
			p.BudgetCents = 100000
		}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.PrimaryGoals = append([]string(nil), base.PrimaryGoals...)
			tt.mutate(&p)

			got := m.Score(p, &a)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchGoallessProfile(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())
	profile := stack.UserProfile{Age: 70, Gender: stack.GenderMale, BudgetCents: 4000}

	_, conf := m.Match(profile, archetype.Defaults())
	if conf != 0 {
		t.Errorf("confidence = %v, want 0 against goal-driven archetypes", conf)
	}

	basics := archetype.Archetype{
		ID:                 "basics",
		Label:              "Basics",
		AgeRange:           archetype.AgeRange{Min: 18, Max: 99},
		Gender:             stack.GenderAny,
		DefaultBudgetCents: 4000,
	}
	id, conf := m.Match(profile, []archetype.Archetype{basics})
	if id != "basics" || conf != 1 {
		t.Errorf("Match = (%q, %v), want (basics, 1)", id, conf)
	}
}

func TestScoreMonotonicInGoalOverlap(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())
	goals := []string{"sleep", "stress", "energy", "immune-support"}

	profile := stack.UserProfile{
		Age:          30,
		Gender:       stack.GenderAny,
		PrimaryGoals: goals,
		BudgetCents:  5000,
	}

	prev := -1.0
	for n := 0; n <= len(goals); n++ {
		a := archetype.Archetype{
			ID:                 "grow",
			Label:              "Grow",
			AgeRange:           archetype.AgeRange{Min: 18, Max: 60},
			Gender:             stack.GenderAny,
			Goals:              goals[:n],
			DefaultBudgetCents: 5000,
		}
		score := m.Score(profile, &a)
		if score < prev {
			t.Fatalf("overlap %d: score %v decreased from %v", n, score, prev)
		}
		prev = score
	}
}

func TestMatchTieKeepsDeclarationOrder(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())
	twin := archetype.Archetype{
		Label:              "Twin",
		AgeRange:           archetype.AgeRange{Min: 18, Max: 40},
		Gender:             stack.GenderAny,
		Goals:              []string{"sleep"},
		DefaultBudgetCents: 4000,
	}
	first, second := twin, twin
	first.ID, second.ID = "first", "second"

	profile := stack.UserProfile{Age: 25, PrimaryGoals: []string{"sleep"}, BudgetCents: 4000}

	id, _ := m.Match(profile, []archetype.Archetype{first, second})
	if id != "first" {
		t.Errorf("id = %q, want first", id)
	}
}

func TestMatchEmptyTable(t *testing.T) {
	m := archetype.NewMatcher(archetype.DefaultWeights())

	id, conf := m.Match(stack.UserProfile{Age: 30}, nil)
	if id != "" || conf != 0 {
		t.Errorf("Match = (%q, %v), want (\"\", 0)", id, conf)
	}
}
