package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"
)

// apiPattern matches a namespaced class name, optionally followed by a
// member access. Identifier characters follow PHP's rules: ASCII letters,
// digits, underscore and any non-ASCII character.
//
// The member group is deliberately broader than what Rewrite accepts so that
// shapes like "->method()" are reported instead of silently half-matched.
var apiPattern = regexp.MustCompile(
	`(?P<class>\\?[A-Za-z_\x{80}-\x{10FFFF}][A-Za-z0-9_\x{80}-\x{10FFFF}]*(?:\\[A-Za-z0-9_\x{80}-\x{10FFFF}]+)+)` +
		`(?P<rest>(?:\.|::|->)[A-Za-z0-9_-]+(?:\(\))?)?`,
)

var (
	classGroup = apiPattern.SubexpIndex("class")
	restGroup  = apiPattern.SubexpIndex("rest")
)

// Rewrite replaces API mentions in a free-text deprecation notice with
// reference fragments. Mentions of classes missing from the catalog are
// wrapped in a code span verbatim. Text without mentions is returned as is.
func (r *Resolver) Rewrite(text string) (string, error) {
	matches := apiPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m[0]])

		whole := text[m[0]:m[1]]
		class := strings.TrimPrefix(text[m[2*classGroup]:m[2*classGroup+1]], namespaceSeparator)
		rest := ""
		if m[2*restGroup] >= 0 {
			rest = text[m[2*restGroup]:m[2*restGroup+1]]
		}

		ref, err := r.rewriteMention(whole, class, rest)
		if err != nil {
			return "", err
		}
		sb.WriteString(ref)
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

func (r *Resolver) rewriteMention(whole, class, rest string) (string, error) {
	if !r.exists(class) {
		return code(whole), nil
	}

	ctx := Context{Class: class}
	call := strings.HasSuffix(rest, "()")
	switch {
	case rest == "":
		return r.Reference(changes.KindClass, class, Context{}, "")
	case strings.HasPrefix(rest, "::") && call:
		return r.Reference(changes.KindMethod, strings.TrimSuffix(rest[2:], "()"), ctx, "")
	case strings.HasPrefix(rest, "::"):
		return r.Reference(changes.KindConst, rest[2:], ctx, "")
	case strings.HasPrefix(rest, "->") && !call:
		return r.Reference(changes.KindProperty, rest[2:], ctx, "")
	case strings.HasPrefix(rest, ".") && !call:
		return r.Reference(changes.KindConfig, rest[1:], ctx, "")
	}
	return "", fmt.Errorf("%w: %q", ErrMalformedReference, whole)
}
