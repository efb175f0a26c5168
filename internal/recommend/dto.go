// AngelaMos | 2026
// dto.go

package recommend

import (
	"time"

	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

type RecommendRequest struct {
	Age                 int      `json:"age"                  validate:"required,gte=13,lte=120"`
	Gender              string   `json:"gender"               validate:"omitempty,oneof=male female any"`
	ActivityLevel       string   `json:"activity_level"       validate:"omitempty,oneof=sedentary light moderate active athlete"`
	PrimaryGoals        []string `json:"primary_goals"        validate:"max=10,dive,required,max=64"`
	HealthConcerns      []string `json:"health_concerns"      validate:"max=10,dive,required,max=64"`
	BudgetCents         int64    `json:"budget_cents"         validate:"gte=0,lte=10000000"`
	DietaryRestrictions []string `json:"dietary_restrictions" validate:"max=10,dive,required,max=64"`
	ExperienceLevel     string   `json:"experience_level"     validate:"omitempty,oneof=beginner intermediate advanced"`
}

func (r RecommendRequest) Profile() stack.UserProfile {
	return stack.UserProfile{
		Age:                 r.Age,
		Gender:              stack.Gender(r.Gender),
		Activity:            stack.ActivityLevel(r.ActivityLevel),
		PrimaryGoals:        r.PrimaryGoals,
		HealthConcerns:      r.HealthConcerns,
		BudgetCents:         r.BudgetCents,
		DietaryRestrictions: r.DietaryRestrictions,
		Experience:          stack.ExperienceLevel(r.ExperienceLevel),
	}
}

type EntryResponse struct {
	ProductID      string   `json:"product_id"`
	Name           string   `json:"name"`
	Brand          string   `json:"brand"`
	Category       string   `json:"category"`
	PriceCents     int64    `json:"price_cents"`
	URL            string   `json:"url"`
	ImageURL       string   `json:"image_url"`
	EvidenceLevel  string   `json:"evidence_level"`
	Dosage         string   `json:"dosage"`
	Timing         string   `json:"timing"`
	CommissionRate float64  `json:"commission_rate"`
	Goals          []string `json:"goals"`
	Core           bool     `json:"core"`
	Broken         bool     `json:"broken"`
}

type StackResponse struct {
	ID                    string          `json:"id"`
	ArchetypeID           string          `json:"archetype_id,omitempty"`
	Status                string          `json:"status"`
	Entries               []EntryResponse `json:"entries"`
	TotalCostCents        int64           `json:"total_cost_cents"`
	EvidenceScore         float64         `json:"evidence_score"`
	GeneratedAt           time.Time       `json:"generated_at"`
	VerifiedAt            *time.Time      `json:"verified_at,omitempty"`
	SynergyNotes          []string        `json:"synergy_notes"`
	ContraindicationNotes []string        `json:"contraindication_notes"`
	EvidenceNotes         []string        `json:"evidence_notes,omitempty"`
}

type RecommendResponse struct {
	Source      string        `json:"source"`
	ArchetypeID string        `json:"archetype_id,omitempty"`
	Confidence  float64       `json:"confidence"`
	Stack       StackResponse `json:"stack"`
}

func ToStackResponse(s stack.Stack) StackResponse {
	entries := make([]EntryResponse, 0, len(s.Entries))
	for _, e := range s.Entries {
		goals := e.Goals
		if goals == nil {
			goals = []string{}
		}
		entries = append(entries, EntryResponse{
			ProductID:      e.ProductID,
			Name:           e.Name,
			Brand:          e.Brand,
			Category:       e.Category,
			PriceCents:     e.PriceCents,
			URL:            e.URL,
			ImageURL:       e.ImageURL,
			EvidenceLevel:  string(e.Evidence),
			Dosage:         e.Dosage,
			Timing:         e.Timing,
			CommissionRate: e.CommissionRate,
			Goals:          goals,
			Core:           e.Core,
			Broken:         e.Broken,
		})
	}

	return StackResponse{
		ID:                    s.ID,
		ArchetypeID:           s.ArchetypeID,
		Status:                string(s.Status),
		Entries:               entries,
		TotalCostCents:        s.TotalCostCents,
		EvidenceScore:         s.EvidenceScore,
		GeneratedAt:           s.GeneratedAt,
		VerifiedAt:            s.VerifiedAt,
		SynergyNotes:          nonNil(s.SynergyNotes),
		ContraindicationNotes: nonNil(s.ContraindicationNotes),
		EvidenceNotes:         s.EvidenceNotes,
	}
}

func ToRecommendResponse(r Result) RecommendResponse {
	return RecommendResponse{
		Source:      string(r.Source),
		ArchetypeID: r.ArchetypeID,
		Confidence:  r.Confidence,
		Stack:       ToStackResponse(r.Stack),
	}
}

type ArchetypeResponse struct {
	ID                 string   `json:"id"`
	Label              string   `json:"label"`
	AgeMin             int      `json:"age_min"`
	AgeMax             int      `json:"age_max"`
	Gender             string   `json:"gender"`
	ActivityLevel      string   `json:"activity_level,omitempty"`
	Goals              []string `json:"goals"`
	HealthConcerns     []string `json:"health_concerns"`
	DefaultBudgetCents int64    `json:"default_budget_cents"`
}

func ToArchetypeResponses(list []archetype.Archetype) []ArchetypeResponse {
	out := make([]ArchetypeResponse, 0, len(list))
	for _, a := range list {
		out = append(out, ArchetypeResponse{
			ID:                 a.ID,
			Label:              a.Label,
			AgeMin:             a.AgeRange.Min,
			AgeMax:             a.AgeRange.Max,
			Gender:             string(a.Gender),
			ActivityLevel:      string(a.Activity),
			Goals:              nonNil(a.Goals),
			HealthConcerns:     nonNil(a.HealthConcerns),
			DefaultBudgetCents: a.DefaultBudgetCents,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
