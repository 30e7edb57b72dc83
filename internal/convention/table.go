package convention

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/settlement-data/internal/model"
)

//go:embed conventions.yaml
var defaultTableYAML []byte

// Table is a read-only product code -> convention lookup.
// It is safe for concurrent use once built.
type Table struct {
	codes map[string]model.Convention
}

// New builds a table from explicit entries.
func New(entries map[string]model.Convention) *Table {
	t := &Table{codes: make(map[string]model.Convention, len(entries))}
	for code, c := range entries {
		t.codes[code] = c
	}
	return t
}

// Default returns the embedded table.
func Default() *Table {
	t, err := Parse(defaultTableYAML)
	if err != nil {
		// The embedded document is covered by tests.
		panic(fmt.Sprintf("convention: embedded table: %v", err))
	}
	return t
}

// Load reads a table file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read convention table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse convention table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML document of family name -> product code list.
func Parse(data []byte) (*Table, error) {
	var doc map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	t := &Table{codes: make(map[string]model.Convention)}
	for family, codes := range doc {
		c, ok := model.ParseConvention(family)
		if !ok {
			return nil, fmt.Errorf("unknown convention family %q", family)
		}
		for _, code := range codes {
			if prev, dup := t.codes[code]; dup {
				return nil, fmt.Errorf("product %q listed under both %s and %s", code, prev, c)
			}
			t.codes[code] = c
		}
	}
	return t, nil
}

// Merge returns a new table with other's entries layered over t's.
func (t *Table) Merge(other *Table) *Table {
	merged := New(t.codes)
	if other != nil {
		for code, c := range other.codes {
			merged.codes[code] = c
		}
	}
	return merged
}

// Resolve returns the convention for a product code, Straight when unlisted.
func (t *Table) Resolve(code string) model.Convention {
	if t == nil {
		return model.Straight
	}
	if c, ok := t.codes[code]; ok {
		return c
	}
	return model.Straight
}

// Knows reports whether the code is listed.
func (t *Table) Knows(code string) bool {
	if t == nil {
		return false
	}
	_, ok := t.codes[code]
	return ok
}

// Codes returns every listed product code, sorted.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.codes))
	for code := range t.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of listed codes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.codes)
}
