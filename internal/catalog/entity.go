// AngelaMos | 2026
// entity.go

package catalog

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/carterperez-dev/stackrec/internal/core"
)

type EvidenceLevel string

const (
	EvidenceLimited  EvidenceLevel = "limited"
	EvidenceModerate EvidenceLevel = "moderate"
	EvidenceHigh     EvidenceLevel = "high"
)

// Weight is the multiplier used by stack scoring: high=3, moderate=2,
// limited=1. Unknown levels weigh nothing.
func (l EvidenceLevel) Weight() int {
	switch l {
	case EvidenceHigh:
		return 3
	case EvidenceModerate:
		return 2
	case EvidenceLimited:
		return 1
	default:
		return 0
	}
}

const MaxEvidenceWeight = 3

type QualityFlags struct {
	ThirdPartyTested bool `db:"third_party_tested" json:"third_party_tested"`
	AllergenFree     bool `db:"allergen_free"      json:"allergen_free"`
	Vegan            bool `db:"vegan"              json:"vegan"`
	GlutenFree       bool `db:"gluten_free"        json:"gluten_free"`
	NonGMO           bool `db:"non_gmo"            json:"non_gmo"`
}

type Product struct {
	ID             string        `db:"id"              json:"id"              validate:"required,max=128"`
	Name           string        `db:"name"            json:"name"            validate:"required,max=512"`
	Brand          string        `db:"brand"           json:"brand"`
	Category       string        `db:"category"        json:"category"        validate:"required"`
	PriceCents     int64         `db:"price_cents"     json:"price_cents"     validate:"gte=0"`
	Rating         float64       `db:"rating"          json:"rating"          validate:"gte=0,lte=5"`
	ReviewCount    int           `db:"review_count"    json:"review_count"    validate:"gte=0"`
	URL            string        `db:"url"             json:"url"`
	ImageURL       string        `db:"image_url"       json:"image_url"`
	GoalTags       Tags          `db:"goal_tags"       json:"goal_tags"`
	HealthTags     Tags          `db:"health_tags"     json:"health_tags"`
	Evidence       EvidenceLevel `db:"evidence_level"  json:"evidence_level"  validate:"oneof=limited moderate high"`
	Available      bool          `db:"available"       json:"available"`
	CommissionRate float64       `db:"commission_rate" json:"commission_rate" validate:"gte=0,lte=1"`
	UpdatedAt      time.Time     `db:"updated_at"      json:"updated_at"`
	QualityFlags
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (p *Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("product %q: %w: %w", p.ID, core.ErrInvalidInput, err)
	}
	return nil
}

// HasTag reports whether the product is tagged for the goal or health
// concern. Tags compare case-insensitively.
func (p *Product) HasTag(tag string) bool {
	return p.GoalTags.Contains(tag) || p.HealthTags.Contains(tag)
}

// restrictionFlags maps dietary restrictions to the quality flag that
// satisfies them. Restrictions not listed here are not enforced.
var restrictionFlags = map[string]func(QualityFlags) bool{
	"vegan":         func(q QualityFlags) bool { return q.Vegan },
	"gluten-free":   func(q QualityFlags) bool { return q.GlutenFree },
	"allergen-free": func(q QualityFlags) bool { return q.AllergenFree },
	"non-gmo":       func(q QualityFlags) bool { return q.NonGMO },
}

// Enforceable reports whether a dietary restriction maps to a product flag.
func Enforceable(restriction string) bool {
	_, ok := restrictionFlags[normalizeTag(restriction)]
	return ok
}

func (p *Product) SatisfiesRestrictions(restrictions []string) bool {
	for _, r := range restrictions {
		check, ok := restrictionFlags[normalizeTag(r)]
		if ok && !check(p.QualityFlags) {
			return false
		}
	}
	return true
}

// Tags is a tag list stored as a JSONB array.
type Tags []string

func (t Tags) Contains(tag string) bool {
	want := normalizeTag(tag)
	return slices.ContainsFunc(t, func(s string) bool {
		return normalizeTag(s) == want
	})
}

func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	*t = out
	return nil
}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Filter narrows a catalog listing. Zero value lists everything.
type Filter struct {
	AvailableOnly bool
	Categories    []string
	ExcludeIDs    []string
}

func (f Filter) Matches(p *Product) bool {
	if f.AvailableOnly && !p.Available {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if slices.Contains(f.ExcludeIDs, p.ID) {
		return false
	}
	return true
}
