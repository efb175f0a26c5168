// AngelaMos | 2026
// evidence.go

package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/stackrec/internal/stack"
)

type Snippet struct {
	ID      int64   `db:"id"      json:"id"`
	Topic   string  `db:"topic"   json:"topic"`
	Title   string  `db:"title"   json:"title"`
	Summary string  `db:"summary" json:"summary"`
	Source  string  `db:"source"  json:"source"`
	Rank    float64 `db:"rank"    json:"rank"`
}

type Lookup interface {
	Search(ctx context.Context, query string, limit int) ([]Snippet, error)
}

// Annotator turns lookup results into the free-text notes attached to
// generated stacks.
type Annotator struct {
	lookup Lookup
	limit  int
}

func NewAnnotator(lookup Lookup, limit int) *Annotator {
	if limit <= 0 {
		limit = 2
	}
	return &Annotator{lookup: lookup, limit: limit}
}

// Notes searches once per distinct entry category. Snippets returned for
// more than one category are listed once.
func (a *Annotator) Notes(ctx context.Context, s stack.Stack) ([]string, error) {
	seenCategory := make(map[string]struct{})
	seenSnippet := make(map[int64]struct{})
	notes := []string{}

	for _, e := range s.Entries {
		category := strings.ToLower(e.Category)
		if category == "" {
			continue
		}
		if _, dup := seenCategory[category]; dup {
			continue
		}
		seenCategory[category] = struct{}{}

		snippets, err := a.lookup.Search(ctx, queryFor(e), a.limit)
		if err != nil {
			return nil, fmt.Errorf("evidence for %s: %w", category, err)
		}

		for _, sn := range snippets {
			if _, dup := seenSnippet[sn.ID]; dup {
				continue
			}
			seenSnippet[sn.ID] = struct{}{}
			notes = append(notes, format(e.Name, sn))
		}
	}

	return notes, nil
}

func queryFor(e stack.Entry) string {
	terms := append([]string{strings.ReplaceAll(e.Category, "-", " ")}, e.Goals...)
	return strings.Join(terms, " ")
}

func format(product string, sn Snippet) string {
	if sn.Source == "" {
		return fmt.Sprintf("%s: %s. %s", product, sn.Title, sn.Summary)
	}
	return fmt.Sprintf("%s: %s. %s (%s)", product, sn.Title, sn.Summary, sn.Source)
}
