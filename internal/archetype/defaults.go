// AngelaMos | 2026
// defaults.go

package archetype

import (
	"github.com/carterperez-dev/stackrec/internal/stack"
)

func Defaults() []Archetype {
	return []Archetype{
		{
			ID:                 "young-male-muscle",
			Label:              "Young men building muscle",
			AgeRange:           AgeRange{Min: 18, Max: 30},
			Gender:             stack.GenderMale,
			Activity:           stack.ActivityActive,
			Goals:              []string{"muscle-building", "energy"},
			DefaultBudgetCents: 7500,
		},
		{
			ID:                 "young-female-fitness",
			Label:              "Young women training for fitness",
			AgeRange:           AgeRange{Min: 18, Max: 30},
			Gender:             stack.GenderFemale,
			Activity:           stack.ActivityActive,
			Goals:              []string{"muscle-building", "energy", "skin-health"},
			DefaultBudgetCents: 6500,
		},
		{
			ID:                 "endurance-athlete",
			Label:              "Endurance athletes",
			AgeRange:           AgeRange{Min: 20, Max: 45},
			Gender:             stack.GenderAny,
			Activity:           stack.ActivityAthlete,
			Goals:              []string{"energy", "muscle-building"},
			HealthConcerns:     []string{"immune-support"},
			DefaultBudgetCents: 9000,
		},
		{
			ID:                 "busy-professional-stress",
			Label:              "Busy professionals managing stress and sleep",
			AgeRange:           AgeRange{Min: 25, Max: 50},
			Gender:             stack.GenderAny,
			Activity:           stack.ActivityLight,
			Goals:              []string{"stress", "sleep", "energy"},
			DefaultBudgetCents: 5000,
		},
		{
			ID:                 "midlife-heart-health",
			Label:              "Midlife adults focused on heart health",
			AgeRange:           AgeRange{Min: 45, Max: 65},
			Gender:             stack.GenderAny,
			Activity:           stack.ActivityModerate,
			Goals:              []string{"heart-health", "joint-health"},
			HealthConcerns:     []string{"inflammation"},
			DefaultBudgetCents: 6000,
		},
		{
			ID:                 "senior-mobility",
			Label:              "Seniors maintaining mobility and immunity",
			AgeRange:           AgeRange{Min: 60, Max: 95},
			Gender:             stack.GenderAny,
			Activity:           stack.ActivitySedentary,
			Goals:              []string{"joint-health", "immune-support"},
			HealthConcerns:     []string{"inflammation"},
			DefaultBudgetCents: 5000,
		},
		{
			ID:                 "general-wellness",
			Label:              "General wellness on a budget",
			AgeRange:           AgeRange{Min: 18, Max: 99},
			Gender:             stack.GenderAny,
			Goals:              []string{"immune-support"},
			DefaultBudgetCents: 3000,
		},
	}
}
