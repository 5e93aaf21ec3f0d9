// Package catalog is the registry of API symbols known to exist in the target
// version. The renderer only asks one question of it: does this class exist,
// and do we know where it is defined?
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Symbol is a class-like API element discovered in the target version.
type Symbol struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`
	File string `yaml:"file,omitempty" json:"file,omitempty"`
	Line int    `yaml:"line,omitempty" json:"line,omitempty"`
}

// HasSource reports whether the symbol has a known source location.
// Symbols without one come from third-party code and are never linked.
func (s Symbol) HasSource() bool {
	return s.File != ""
}

// Catalog answers existence queries for fully-qualified names.
type Catalog interface {
	Lookup(name string) (Symbol, bool)
}

// Memory is an immutable in-memory catalog.
type Memory struct {
	symbols map[string]Symbol
}

// NewMemory builds a catalog from symbols. Later duplicates win.
func NewMemory(symbols ...Symbol) *Memory {
	m := &Memory{symbols: make(map[string]Symbol, len(symbols))}
	for _, s := range symbols {
		m.symbols[normalize(s.Name)] = s
	}
	return m
}

// Lookup finds a symbol by fully-qualified name. Class names are matched
// case-insensitively and a leading namespace separator is ignored.
func (m *Memory) Lookup(name string) (Symbol, bool) {
	if m == nil {
		return Symbol{}, false
	}
	s, ok := m.symbols[normalize(name)]
	return s, ok
}

// Len returns the number of symbols.
func (m *Memory) Len() int {
	return len(m.symbols)
}

// Symbols returns all symbols sorted by name.
func (m *Memory) Symbols() []Symbol {
	out := make([]Symbol, 0, len(m.symbols))
	for _, s := range m.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, `\`))
}

// symbolFile is the on-disk symbol list format.
type symbolFile struct {
	Symbols []Symbol `yaml:"symbols"`
}

// LoadSymbols reads a YAML or JSON symbol list.
func LoadSymbols(path string) ([]Symbol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol list: %w", err)
	}

	var sf symbolFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse symbol list: %w", err)
	}
	for i, s := range sf.Symbols {
		if s.Name == "" {
			return nil, fmt.Errorf("symbol list entry %d has no name", i)
		}
	}
	return sf.Symbols, nil
}

// IsDatabase reports whether path names a SQLite catalog rather than a symbol list.
func IsDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Open loads a catalog snapshot from either a symbol list or a SQLite store.
// An empty path yields an empty catalog, so nothing gets linked.
func Open(path string) (*Memory, error) {
	if path == "" {
		return NewMemory(), nil
	}
	if IsDatabase(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		store, err := OpenStore(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Snapshot()
	}
	symbols, err := LoadSymbols(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(symbols...), nil
}
