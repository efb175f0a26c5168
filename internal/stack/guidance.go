// AngelaMos | 2026
// guidance.go

package stack

import (
	"slices"
)

type guidance struct {
	Dosage string
	Timing string
}

var defaultGuidance = guidance{
	Dosage: "Follow label directions",
	Timing: "With a meal",
}

var categoryGuidance = map[string]guidance{
	"multivitamin": {"1 serving daily", "Morning with breakfast"},
	"omega-3":      {"1000 mg combined EPA and DHA daily", "With a meal"},
	"vitamin-d3":   {"1000-2000 IU daily", "With the largest meal of the day"},
	"magnesium":    {"200-400 mg daily", "Evening"},
	"protein":      {"1 scoop (20-30 g protein)", "Within an hour after training"},
	"creatine":     {"3-5 g daily", "Same time every day"},
	"adaptogen":    {"300-600 mg daily", "Evening"},
	"sleep-aid":    {"0.5-3 mg", "30-60 minutes before bed"},
	"collagen":     {"10 g daily", "Morning"},
	"turmeric":     {"500-1000 mg curcumin daily", "With a meal containing fat"},
	"zinc":         {"15-30 mg daily", "With food, apart from iron or calcium"},
	"vitamin-b12":  {"500-1000 mcg daily", "Morning"},
	"iron":         {"18 mg daily", "Empty stomach, with vitamin C"},
	"calcium":      {"500 mg per dose", "With food, apart from iron"},
	"vitamin-c":    {"500 mg daily", "With a meal"},
	"probiotic":    {"1 capsule daily", "Before breakfast"},
	"electrolytes": {"1 serving per hour of exercise", "During training"},
	"pre-workout":  {"1 scoop", "20-30 minutes before training"},
}

func guidanceFor(category string) guidance {
	if g, ok := categoryGuidance[category]; ok {
		return g
	}
	return defaultGuidance
}

type pairNote struct {
	A, B string
	Text string
}

// Pair tables are ordered; notes appear in declaration order so that the
// same category set always yields the same notes.
var synergyTable = []pairNote{
	{"vitamin-d3", "magnesium", "Magnesium is required to convert vitamin D3 into its active form."},
	{"vitamin-d3", "omega-3", "Vitamin D3 is fat-soluble and absorbs better alongside omega-3 oils."},
	{"protein", "creatine", "Protein and creatine together support lean mass gains from resistance training."},
	{"iron", "vitamin-c", "Vitamin C increases absorption of non-heme iron."},
	{"turmeric", "omega-3", "Curcumin and omega-3 fatty acids have complementary anti-inflammatory effects."},
	{"adaptogen", "magnesium", "Ashwagandha and magnesium are commonly paired for stress and sleep support."},
	{"collagen", "vitamin-c", "Vitamin C is a cofactor for collagen synthesis."},
	{"multivitamin", "omega-3", "A multivitamin and omega-3 together cover the most common dietary gaps."},
}

var contraindicationTable = []pairNote{
	{"calcium", "iron", "Calcium reduces iron absorption; take them at least two hours apart."},
	{"zinc", "iron", "Zinc and iron compete for absorption; separate the doses."},
	{"zinc", "calcium", "High-dose calcium can reduce zinc absorption; take them at different meals."},
	{"turmeric", "omega-3", "Both have mild blood-thinning effects; consult a physician if taking anticoagulants."},
	{"sleep-aid", "adaptogen", "Sedative effects can add up; start with the lowest dose of each."},
	{"pre-workout", "sleep-aid", "Stimulants in pre-workout formulas counteract sleep aids taken the same evening."},
	{"multivitamin", "iron", "Many multivitamins already contain iron; check the combined daily amount."},
}

func notesFor(table []pairNote, categories []string) []string {
	notes := make([]string, 0)
	for _, n := range table {
		if slices.Contains(categories, n.A) && slices.Contains(categories, n.B) {
			notes = append(notes, n.Text)
		}
	}
	return notes
}
