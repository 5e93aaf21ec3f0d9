// Package changes holds the breaking-change records emitted by the diff producer.
// A ChangeSet is nested module -> category -> kind -> API name -> Record and is
// treated as an immutable snapshot by everything downstream.
package changes

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownCategory is returned for a change category outside the closed set.
	ErrUnknownCategory = errors.New("unknown change category")
	// ErrUnknownKind is returned for an API kind outside the closed set.
	ErrUnknownKind = errors.New("unknown API kind")
)

// Category is the kind of difference detected between two versions.
type Category string

const (
	CategoryRemoved     Category = "removed"
	CategoryInternal    Category = "internal"
	CategoryVisibility  Category = "visibility"
	CategoryReturnType  Category = "returnType"
	CategoryType        Category = "type"
	CategoryAbstract    Category = "abstract"
	CategoryFinal       Category = "final"
	CategoryNew         Category = "new"
	CategoryReturnByRef Category = "returnByRef"
	CategoryPassByRef   Category = "passByRef"
	CategoryReadonly    Category = "readonly"
	CategoryVariadic    Category = "variadic"
	CategoryDefault     Category = "default"
)

// CategoryOrder is the display priority of change categories.
// It is deliberately not alphabetical.
var CategoryOrder = []Category{
	CategoryRemoved,
	CategoryInternal,
	CategoryVisibility,
	CategoryReturnType,
	CategoryType,
	CategoryAbstract,
	CategoryFinal,
	CategoryNew,
	CategoryReturnByRef,
	CategoryPassByRef,
	CategoryReadonly,
	CategoryVariadic,
	CategoryDefault,
}

// Kind is the syntactic category of an API element.
type Kind string

const (
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindConfig   Kind = "config"
	KindProperty Kind = "property"
	KindConst    Kind = "const"
	KindFunction Kind = "function"
	KindParam    Kind = "param"
)

// KindOrder is the display priority of API kinds within a category.
var KindOrder = []Kind{
	KindClass,
	KindMethod,
	KindConfig,
	KindProperty,
	KindConst,
	KindFunction,
	KindParam,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range CategoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range KindOrder {
		if k == known {
			return true
		}
	}
	return false
}

// Record describes a single change to a single API element.
type Record struct {
	// APIType is the word used for the element in messages, e.g. "method"
	// or "`has_one` relation". It may be more specific than the Kind.
	APIType string `yaml:"apiType" json:"apiType"`

	From string `yaml:"from,omitempty" json:"from,omitempty"`
	To   string `yaml:"to,omitempty" json:"to,omitempty"`

	// Message is the deprecation notice attached to removed or internal API.
	Message string `yaml:"message,omitempty" json:"message,omitempty"`

	// IsNow is the direction of a toggle (by-ref, read-only, variadic).
	IsNow bool `yaml:"isNow,omitempty" json:"isNow,omitempty"`

	// Identity context used to build references.
	Class    string `yaml:"class,omitempty" json:"class,omitempty"`
	Method   string `yaml:"method,omitempty" json:"method,omitempty"`
	Function string `yaml:"function,omitempty" json:"function,omitempty"`
}

// KindChanges maps API name to its record.
type KindChanges map[string]Record

// CategoryChanges maps API kind to the changes of that kind.
type CategoryChanges map[Kind]KindChanges

// ModuleChanges maps change category to the changes in that category.
type ModuleChanges map[Category]CategoryChanges

// ChangeSet maps module name to everything that changed in it.
type ChangeSet map[string]ModuleChanges

// Version is the metadata for one side of the comparison.
type Version struct {
	Branch string `yaml:"branch" json:"branch"`
}

// Label returns the display label for the version.
func (v Version) Label() string {
	return v.Branch
}

// Modules returns the module names sorted ascending.
func (cs ChangeSet) Modules() []string {
	modules := make([]string, 0, len(cs))
	for module := range cs {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Validate checks every category and kind key against the closed sets.
// Modules are checked in sorted order so the reported coordinate is stable.
func (cs ChangeSet) Validate() error {
	for _, module := range cs.Modules() {
		for category, byKind := range cs[module] {
			if !category.Valid() {
				return fmt.Errorf("module %q: %w %q", module, ErrUnknownCategory, category)
			}
			for kind := range byKind {
				if !kind.Valid() {
					return fmt.Errorf("module %q, category %q: %w %q", module, category, ErrUnknownKind, kind)
				}
			}
		}
	}
	return nil
}

// Count returns the total number of records.
func (cs ChangeSet) Count() int {
	n := 0
	for _, byCategory := range cs {
		for _, byKind := range byCategory {
			for _, byName := range byKind {
				n += len(byName)
			}
		}
	}
	return n
}

// Names returns the API names of a leaf sorted ascending.
func (kc KindChanges) Names() []string {
	names := make([]string, 0, len(kc))
	for name := range kc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
