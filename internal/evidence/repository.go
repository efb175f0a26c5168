// AngelaMos | 2026
// repository.go

package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/stackrec/internal/core"
)

// Repository searches the evidence_snippets table with Postgres full-text
// search. search_vector is a generated tsvector over title and summary.
type Repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Snippet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Snippet{}, nil
	}
	if limit <= 0 {
		limit = 2
	}

	const q = `
		SELECT id, topic, title, summary, source,
			ts_rank(search_vector, websearch_to_tsquery('english', $1)) AS rank
		FROM evidence_snippets
		WHERE search_vector @@ websearch_to_tsquery('english', $1)
		ORDER BY rank DESC, id
		LIMIT $2`

	var snippets []Snippet
	if err := r.db.SelectContext(ctx, &snippets, q, orTerms(query), limit); err != nil {
		return nil, fmt.Errorf("search evidence: %w", err)
	}
	return snippets, nil
}

// orTerms makes any term sufficient for a match; ts_rank still favors
// snippets that hit more of them.
func orTerms(query string) string {
	return strings.Join(strings.Fields(query), " or ")
}

var _ Lookup = (*Repository)(nil)
