// Package catalog holds the ordered training curriculum. The catalog is loaded
// once at start-up and never mutated, so a *Catalog is safe to share.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed modules.toml
var defaultCatalog string

type FieldKind string

const (
	SingleLine FieldKind = "single-line"
	MultiLine  FieldKind = "multi-line"
)

type Field struct {
	Key         string    `toml:"key" json:"key"`
	Label       string    `toml:"label" json:"label"`
	Kind        FieldKind `toml:"kind" json:"kind"`
	Placeholder string    `toml:"placeholder" json:"placeholder"`
}

type Module struct {
	ID          string   `toml:"id" json:"id"`
	Order       int      `toml:"order" json:"order"`
	Title       string   `toml:"title" json:"title"`
	Description string   `toml:"description" json:"description"`
	Lessons     []string `toml:"lessons" json:"lessons"`
	Inputs      []Field  `toml:"inputs" json:"inputs"`
}

// HasField reports whether key is one of the module's input fields.
func (m Module) HasField(key string) bool {
	for _, field := range m.Inputs {
		if field.Key == key {
			return true
		}
	}
	return false
}

type Catalog struct {
	modules []Module
	byID    map[string]int
	byOrder map[int]int
}

type document struct {
	Modules []Module `toml:"modules"`
}

// Default returns the embedded reference curriculum.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(string(raw))
}

func Parse(raw string) (*Catalog, error) {
	var doc document
	if _, err := toml.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Modules)
}

// New validates modules and builds a catalog sorted by order. Orders must be
// contiguous starting at 1 and ids unique.
func New(modules []Module) (*Catalog, error) {
	if len(modules) == 0 {
		return nil, fmt.Errorf("catalog: no modules")
	}
	sorted := make([]Module, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	c := &Catalog{
		modules: sorted,
		byID:    make(map[string]int, len(sorted)),
		byOrder: make(map[int]int, len(sorted)),
	}
	for i, mod := range sorted {
		if strings.TrimSpace(mod.ID) == "" {
			return nil, fmt.Errorf("catalog: module at order %d has no id", mod.Order)
		}
		if _, dup := c.byID[mod.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate module id %q", mod.ID)
		}
		if mod.Order != i+1 {
			return nil, fmt.Errorf("catalog: module %q has order %d, want %d", mod.ID, mod.Order, i+1)
		}
		for j, field := range mod.Inputs {
			if field.Key == "" {
				return nil, fmt.Errorf("catalog: module %q has a field without key", mod.ID)
			}
			if (Module{Inputs: mod.Inputs[:j]}).HasField(field.Key) {
				return nil, fmt.Errorf("catalog: module %q repeats field %q", mod.ID, field.Key)
			}
			if field.Kind != SingleLine && field.Kind != MultiLine {
				return nil, fmt.Errorf("catalog: field %q in %q has kind %q", field.Key, mod.ID, field.Kind)
			}
		}
		c.byID[mod.ID] = i
		c.byOrder[mod.Order] = i
	}
	return c, nil
}

// All returns the modules in ascending order. The slice is a copy.
func (c *Catalog) All() []Module {
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

func (c *Catalog) Len() int {
	return len(c.modules)
}

func (c *Catalog) ByID(id string) (Module, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Module{}, false
	}
	return c.modules[idx], true
}

func (c *Catalog) ByOrder(order int) (Module, bool) {
	idx, ok := c.byOrder[order]
	if !ok {
		return Module{}, false
	}
	return c.modules[idx], true
}
