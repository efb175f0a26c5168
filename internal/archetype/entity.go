// AngelaMos | 2026
// entity.go

package archetype

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

type AgeRange struct {
	Min int `koanf:"min" json:"min" validate:"gte=0"`
	Max int `koanf:"max" json:"max" validate:"gtefield=Min"`
}

func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

func (r AgeRange) Midpoint() int {
	return (r.Min + r.Max) / 2
}

// Archetype is a curated user segment. It is immutable once loaded.
type Archetype struct {
	ID                 string              `koanf:"id"                   json:"id"                   validate:"required,max=64"`
	Label              string              `koanf:"label"                json:"label"                validate:"required"`
	AgeRange           AgeRange            `koanf:"age_range"            json:"age_range"`
	Gender             stack.Gender        `koanf:"gender"               json:"gender"               validate:"omitempty,oneof=male female any"`
	Activity           stack.ActivityLevel `koanf:"activity_level"       json:"activity_level"       validate:"omitempty,oneof=sedentary light moderate active athlete"`
	Goals              []string            `koanf:"goals"                json:"goals"`
	HealthConcerns     []string            `koanf:"health_concerns"      json:"health_concerns"`
	DefaultBudgetCents int64               `koanf:"default_budget_cents" json:"default_budget_cents" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (a *Archetype) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("archetype %q: %w: %w", a.ID, core.ErrInvalidInput, err)
	}
	return nil
}

// Profile is the representative user the archetype stack is generated for.
func (a *Archetype) Profile() stack.UserProfile {
	return stack.UserProfile{
		Age:            a.AgeRange.Midpoint(),
		Gender:         a.Gender,
		Activity:       a.Activity,
		PrimaryGoals:   append([]string(nil), a.Goals...),
		HealthConcerns: append([]string(nil), a.HealthConcerns...),
		BudgetCents:    a.DefaultBudgetCents,
	}
}

// Table is the ordered archetype set. Declaration order breaks match ties.
type Table struct {
	list  []Archetype
	index map[string]int
}

func NewTable(archetypes []Archetype) (*Table, error) {
	t := &Table{
		list:  make([]Archetype, 0, len(archetypes)),
		index: make(map[string]int, len(archetypes)),
	}

	for i := range archetypes {
		a := archetypes[i]
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.index[a.ID]; dup {
			return nil, fmt.Errorf("duplicate archetype id %q: %w", a.ID, core.ErrInvalidInput)
		}
		t.index[a.ID] = len(t.list)
		t.list = append(t.list, a)
	}

	return t, nil
}

func (t *Table) All() []Archetype {
	return append([]Archetype(nil), t.list...)
}

func (t *Table) Get(id string) (Archetype, bool) {
	i, ok := t.index[id]
	if !ok {
		return Archetype{}, false
	}
	return t.list[i], true
}

func (t *Table) Len() int {
	return len(t.list)
}
