package changes

import (
	"sort"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
)

// FactPredicate is the predicate name used for exported change facts.
const FactPredicate = "breaking_change"

// Facts converts a change set into Mangle atoms of the form
//
//	breaking_change(Module, /category, /kind, Name, APIType).
//
// Atoms are emitted in display order: module, category order, kind order, name.
func Facts(cs ChangeSet) []ast.Atom {
	atoms := make([]ast.Atom, 0, cs.Count())
	for _, module := range cs.Modules() {
		byCategory := cs[module]
		for _, category := range CategoryOrder {
			byKind, ok := byCategory[category]
			if !ok {
				continue
			}
			for _, kind := range KindOrder {
				byName, ok := byKind[kind]
				if !ok {
					continue
				}
				for _, name := range byName.Names() {
					atoms = append(atoms, ast.NewAtom(FactPredicate,
						ast.String(module),
						nameTerm(string(category)),
						nameTerm(string(kind)),
						ast.String(name),
						ast.String(byName[name].APIType),
					))
				}
			}
		}
	}
	return atoms
}

// FactStore loads the facts of cs into an in-memory Mangle store.
func FactStore(cs ChangeSet) factstore.FactStore {
	store := factstore.NewSimpleInMemoryStore()
	for _, atom := range Facts(cs) {
		store.Add(atom)
	}
	return store
}

// CategoryQuery matches every change fact in the given category.
func CategoryQuery(category Category) ast.Atom {
	return ast.NewAtom(FactPredicate,
		ast.Variable{Symbol: "Module"},
		nameTerm(string(category)),
		ast.Variable{Symbol: "Kind"},
		ast.Variable{Symbol: "Name"},
		ast.Variable{Symbol: "APIType"},
	)
}

// SelectFacts returns the facts in store matching query, sorted by their
// source text so output is stable.
func SelectFacts(store factstore.FactStore, query ast.Atom) ([]ast.Atom, error) {
	var atoms []ast.Atom
	err := store.GetFacts(query, func(atom ast.Atom) error {
		atoms = append(atoms, atom)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(atoms, func(i, j int) bool {
		return atoms[i].String() < atoms[j].String()
	})
	return atoms, nil
}

// FactsSource renders atoms as Mangle source, one fact per line.
func FactsSource(atoms []ast.Atom) string {
	var sb strings.Builder
	for _, atom := range atoms {
		sb.WriteString(atom.String())
		sb.WriteString(".\n")
	}
	return sb.String()
}

// nameTerm returns a name constant for enum values, falling back to a string
// constant when the value is not a valid Mangle name.
func nameTerm(v string) ast.BaseTerm {
	c, err := ast.Name("/" + v)
	if err != nil {
		return ast.String(v)
	}
	return c
}
