// AngelaMos | 2026
// file.go

package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

type snapshotFile struct {
	Products []Product `json:"products"`
}

// LoadSnapshotFile reads a JSON export of the form {"products": [...]}.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog snapshot: %w", err)
	}

	var f snapshotFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}

	snapshot, err := NewSnapshot(f.Products)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	return snapshot, nil
}
