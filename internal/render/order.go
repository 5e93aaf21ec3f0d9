package render

import (
	"fmt"
	"sort"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"

	"go.uber.org/zap"
)

// ModuleMessages is the flattened, ordered list of messages for one module.
type ModuleMessages struct {
	Module   string
	Messages []string
}

// Order formats every record and arranges the messages for display.
//
// Modules are sorted by name. Within a module, categories and kinds follow
// changes.CategoryOrder and changes.KindOrder; each (category, kind) group is
// sorted by the formatted message so members sort under their owning class.
// Modules that end up with no messages are omitted.
func (r *Renderer) Order(cs changes.ChangeSet) ([]ModuleMessages, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	ordered := make([]ModuleMessages, 0, len(cs))
	for _, module := range cs.Modules() {
		byCategory := cs[module]

		var messages []string
		for _, category := range changes.CategoryOrder {
			byKind := byCategory[category]
			for _, kind := range changes.KindOrder {
				leaf, err := r.formatLeaf(category, kind, byKind[kind])
				if err != nil {
					return nil, fmt.Errorf("module %q, %s %s: %w", module, category, kind, err)
				}
				messages = append(messages, leaf...)
			}
		}

		if len(messages) == 0 {
			continue
		}
		r.logger.Debug("Ordered module changes",
			zap.String("module", module),
			zap.Int("messages", len(messages)))
		ordered = append(ordered, ModuleMessages{Module: module, Messages: messages})
	}
	return ordered, nil
}

func (r *Renderer) formatLeaf(category changes.Category, kind changes.Kind, byName changes.KindChanges) ([]string, error) {
	if len(byName) == 0 {
		return nil, nil
	}
	leaf := make([]string, 0, len(byName))
	for _, name := range byName.Names() {
		msg, err := r.Message(category, kind, name, byName[name])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		leaf = append(leaf, msg)
	}
	sort.Strings(leaf)
	return leaf, nil
}
