// AngelaMos | 2026
// entity.go

package stack

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/stackrec/internal/catalog"
	"github.com/carterperez-dev/stackrec/internal/core"
)

var (
	ErrInsufficientBudget = errors.New("budget too low for any core item")
	ErrNoCandidates       = errors.New("no candidate products for profile")
)

const DefaultMaxEntries = 8

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderAny    Gender = "any"
)

// Matches treats an empty or "any" gender on either side as a wildcard.
func (g Gender) Matches(other Gender) bool {
	if g == "" || g == GenderAny || other == "" || other == GenderAny {
		return true
	}
	return g == other
}

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
	ActivityAthlete   ActivityLevel = "athlete"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

type UserProfile struct {
	Age                 int             `json:"age"                  validate:"gte=0,lte=130"`
	Gender              Gender          `json:"gender"               validate:"omitempty,oneof=male female any"`
	Activity            ActivityLevel   `json:"activity_level"       validate:"omitempty,oneof=sedentary light moderate active athlete"`
	PrimaryGoals        []string        `json:"primary_goals"`
	HealthConcerns      []string        `json:"health_concerns"`
	BudgetCents         int64           `json:"budget_cents"         validate:"gte=0"`
	DietaryRestrictions []string        `json:"dietary_restrictions"`
	Experience          ExperienceLevel `json:"experience_level"     validate:"omitempty,oneof=beginner intermediate advanced"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (p *UserProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("user profile: %w: %w", core.ErrInvalidInput, err)
	}
	return nil
}

// Key is a canonical, order-preserving rendering of the profile used to
// derive deterministic stack identifiers.
func (p *UserProfile) Key() string {
	restrictions := slices.Clone(p.DietaryRestrictions)
	slices.Sort(restrictions)

	return strings.Join([]string{
		strconv.Itoa(p.Age),
		string(p.Gender),
		string(p.Activity),
		strings.Join(p.PrimaryGoals, ","),
		strings.Join(p.HealthConcerns, ","),
		strconv.FormatInt(p.BudgetCents, 10),
		strings.Join(restrictions, ","),
		string(p.Experience),
	}, "|")
}

type Status string

const (
	StatusUnverified Status = "unverified"
	StatusVerified   Status = "verified"
	StatusPartial    Status = "partial"
	StatusStale      Status = "stale"
)

// Entry references a catalog product by ID and snapshots the display
// fields needed to serve the stack without a catalog round trip.
type Entry struct {
	ProductID      string                `json:"product_id"`
	Name           string                `json:"name"`
	Brand          string                `json:"brand"`
	Category       string                `json:"category"`
	PriceCents     int64                 `json:"price_cents"`
	URL            string                `json:"url"`
	ImageURL       string                `json:"image_url"`
	Evidence       catalog.EvidenceLevel `json:"evidence_level"`
	Dosage         string                `json:"dosage"`
	Timing         string                `json:"timing"`
	CommissionRate float64               `json:"commission_rate"`
	Goals          []string              `json:"goals,omitempty"`
	Core           bool                  `json:"core"`
	Broken         bool                  `json:"broken,omitempty"`
}

type Stack struct {
	ID                    string     `json:"id"`
	ArchetypeID           string     `json:"archetype_id,omitempty"`
	Entries               []Entry    `json:"entries"`
	TotalCostCents        int64      `json:"total_cost_cents"`
	EvidenceScore         float64    `json:"evidence_score"`
	GeneratedAt           time.Time  `json:"generated_at"`
	VerifiedAt            *time.Time `json:"verified_at,omitempty"`
	RepairedAt            *time.Time `json:"repaired_at,omitempty"`
	Status                Status     `json:"status"`
	SynergyNotes          []string   `json:"synergy_notes"`
	ContraindicationNotes []string   `json:"contraindication_notes"`
	EvidenceNotes         []string   `json:"evidence_notes,omitempty"`
}

// Clone returns a deep copy so cache backends never share entry slices
// with callers.
func (s *Stack) Clone() Stack {
	out := *s
	out.Entries = make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		e.Goals = slices.Clone(e.Goals)
		out.Entries[i] = e
	}
	out.SynergyNotes = slices.Clone(s.SynergyNotes)
	out.ContraindicationNotes = slices.Clone(s.ContraindicationNotes)
	out.EvidenceNotes = slices.Clone(s.EvidenceNotes)
	if s.VerifiedAt != nil {
		t := *s.VerifiedAt
		out.VerifiedAt = &t
	}
	if s.RepairedAt != nil {
		t := *s.RepairedAt
		out.RepairedAt = &t
	}
	return out
}

func (s *Stack) ProductIDs() []string {
	ids := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		ids[i] = e.ProductID
	}
	return ids
}

func (s *Stack) BrokenCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Broken {
			n++
		}
	}
	return n
}

// Servable reports whether a cached stack may be returned to a caller.
func (s *Stack) Servable() bool {
	return s.Status != StatusStale && len(s.Entries) > 0
}
