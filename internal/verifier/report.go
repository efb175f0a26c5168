// AngelaMos | 2026
// report.go

package verifier

import (
	"time"
)

const (
	KindLink  = "link"
	KindImage = "image"
)

type BrokenURL struct {
	StackID     string `json:"stack_id"`
	ArchetypeID string `json:"archetype_id"`
	ProductID   string `json:"product_id"`
	URL         string `json:"url"`
	Kind        string `json:"kind"`
	StatusCode  int    `json:"status_code"`
}

// Report summarizes one verification pass. Stale includes the stacks that
// were repaired; Repaired counts only those.
type Report struct {
	Verified        int           `json:"verified"`
	Partial         int           `json:"partial"`
	Stale           int           `json:"stale"`
	Repaired        int           `json:"repaired"`
	Incomplete      int           `json:"incomplete"`
	PersistFailures int           `json:"persist_failures"`
	Checked         int           `json:"checked_urls"`
	BrokenURLs      []BrokenURL   `json:"broken_urls"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
	Cancelled       bool          `json:"cancelled"`
}
