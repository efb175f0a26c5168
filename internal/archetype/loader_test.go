// AngelaMos | 2026
// loader_test.go

package archetype_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archetypes.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
archetypes:
  - id: night-owl
    label: Poor sleepers
    age_range: {min: 25, max: 55}
    gender: any
    activity_level: light
    goals: [sleep, stress]
    default_budget_cents: 4000
  - id: lifter
    label: Lifters
    age_range: {min: 18, max: 35}
    gender: male
    goals: [muscle-building]
    default_budget_cents: 8000
`)

	table, err := archetype.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2", table.Len())
	}

	all := table.All()
	if all[0].ID != "night-owl" || all[1].ID != "lifter" {
		t.Errorf("order = [%s %s], want declaration order", all[0].ID, all[1].ID)
	}

	owl, ok := table.Get("night-owl")
	if !ok {
		t.Fatal("night-owl missing")
	}
	if owl.AgeRange.Max != 55 || owl.Activity != stack.ActivityLight || owl.DefaultBudgetCents != 4000 {
		t.Errorf("night-owl = %+v", owl)
	}
	if len(owl.Goals) != 2 || owl.Goals[1] != "stress" {
		t.Errorf("goals = %v", owl.Goals)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"duplicate id", `
archetypes:
  - {id: a, label: A, age_range: {min: 1, max: 2}, default_budget_cents: 100}
  - {id: a, label: B, age_range: {min: 1, max: 2}, default_budget_cents: 100}
`},
		{"inverted age range", `
archetypes:
  - {id: a, label: A, age_range: {min: 40, max: 20}, default_budget_cents: 100}
`},
		{"bad gender", `
archetypes:
  - {id: a, label: A, gender: robot, age_range: {min: 1, max: 2}, default_budget_cents: 100}
`},
		{"missing budget", `
archetypes:
  - {id: a, label: A, age_range: {min: 1, max: 2}}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := archetype.LoadFile(writeFile(t, tt.body))
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	table, err := archetype.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := table.Get("young-male-muscle"); !ok {
		t.Error("young-male-muscle missing from defaults")
	}
}

func TestProfileUsesMidpointAndBudget(t *testing.T) {
	a := archetype.Defaults()[0]
	p := a.Profile()

	if p.Age != 24 || p.BudgetCents != a.DefaultBudgetCents || p.Gender != a.Gender {
		t.Errorf("Profile = %+v", p)
	}
	p.PrimaryGoals[0] = "mutated"
	if a.Goals[0] == "mutated" {
		t.Error("Profile shares goal slice with archetype")
	}
}
