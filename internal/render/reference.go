package render

import (
	"fmt"
	"strings"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/catalog"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"

	"go.uber.org/zap"
)

// namespaceSeparator splits a fully-qualified class name into segments.
const namespaceSeparator = `\`

// Context carries the identity needed to reference a member or parameter.
type Context struct {
	Class    string
	Method   string
	Function string
}

func contextOf(rec changes.Record) Context {
	return Context{Class: rec.Class, Method: rec.Method, Function: rec.Function}
}

// Resolver turns API identities into markdown code spans, linking only to
// API that exists in the target version's catalog. It holds no mutable state.
type Resolver struct {
	catalog catalog.Catalog
	logger  *zap.Logger
}

// NewResolver creates a resolver over a target-version catalog.
// A nil catalog links nothing.
func NewResolver(cat catalog.Catalog, logger *zap.Logger) *Resolver {
	if cat == nil {
		cat = catalog.NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{catalog: cat, logger: logger}
}

// Reference builds the markdown fragment for one API element. References for
// removed API are always plain code spans.
func (r *Resolver) Reference(kind changes.Kind, name string, ctx Context, category changes.Category) (string, error) {
	removed := category == changes.CategoryRemoved

	switch kind {
	case changes.KindClass:
		if removed || !r.exists(name) {
			return code(name), nil
		}
		return link(shortName(name), name), nil

	case changes.KindMethod:
		return r.member(kind, ctx.Class, "::"+name+"()", "::"+name+"()", removed)

	case changes.KindProperty:
		return r.member(kind, ctx.Class, "->"+name, "->"+name, removed)

	case changes.KindConfig:
		// Config is displayed with dot notation but the API docs address it as a property.
		return r.member(kind, ctx.Class, "."+name, "->"+name, removed)

	case changes.KindConst:
		return r.member(kind, ctx.Class, "::"+name, "::"+name, removed)

	case changes.KindFunction:
		if removed {
			return code(name + "()"), nil
		}
		return link(name+"()", name+"()"), nil

	case changes.KindParam:
		var (
			parent string
			err    error
		)
		switch {
		case ctx.Function != "":
			parent, err = r.Reference(changes.KindFunction, ctx.Function, Context{}, "")
		case ctx.Method != "":
			parent, err = r.Reference(changes.KindMethod, ctx.Method, Context{Class: ctx.Class}, "")
		default:
			return "", fmt.Errorf("%w: param %q has neither function nor method", ErrMissingContext, name)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s in %s", code(name), parent), nil
	}

	return "", fmt.Errorf("%w %q", changes.ErrUnknownKind, kind)
}

// member references something owned by a class. display is appended to the
// class name in the label, target in the link.
func (r *Resolver) member(kind changes.Kind, class, display, target string, removed bool) (string, error) {
	if class == "" {
		return "", fmt.Errorf("%w: %s %q has no class", ErrMissingContext, kind, strings.TrimLeft(display, ":.->"))
	}
	if removed || !r.exists(class) {
		return code(class + display), nil
	}
	return link(shortName(class)+display, class+target), nil
}

// exists reports whether class is present in the target catalog with a known
// source location.
func (r *Resolver) exists(class string) bool {
	sym, ok := r.catalog.Lookup(class)
	if !ok || !sym.HasSource() {
		r.logger.Debug("Unlinked reference", zap.String("class", class), zap.Bool("found", ok))
		return false
	}
	return true
}

func shortName(class string) string {
	if i := strings.LastIndex(class, namespaceSeparator); i >= 0 {
		return class[i+len(namespaceSeparator):]
	}
	return class
}

func code(s string) string {
	return "`" + s + "`"
}

func link(label, target string) string {
	return "[`" + label + "`](api:" + target + ")"
}
