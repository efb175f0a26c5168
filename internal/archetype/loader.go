// AngelaMos | 2026
// loader.go

package archetype

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadFile reads a curated table from YAML:
//
//	archetypes:
//	  - id: young-male-muscle
//	    label: Young men building muscle
//	    age_range: {min: 18, max: 30}
//	    ...
func LoadFile(path string) (*Table, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load archetypes file: %w", err)
	}

	var list []Archetype
	if err := k.Unmarshal("archetypes", &list); err != nil {
		return nil, fmt.Errorf("unmarshal archetypes: %w", err)
	}

	table, err := NewTable(list)
	if err != nil {
		return nil, fmt.Errorf("load archetypes: %w", err)
	}

	return table, nil
}

// Load returns the table at path, or the built-in table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return NewTable(Defaults())
	}
	return LoadFile(path)
}
