package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"
)

var willBePrefix = regexp.MustCompile(`(?i)^will be`)

// Message formats a single change record as one sentence.
func (r *Renderer) Message(category changes.Category, kind changes.Kind, name string, rec changes.Record) (string, error) {
	if !category.Valid() {
		return "", fmt.Errorf("%w %q", changes.ErrUnknownCategory, category)
	}

	ref, err := r.resolver.Reference(kind, name, contextOf(rec), category)
	if err != nil {
		return "", err
	}

	label := rec.APIType
	if label == "" {
		label = string(kind)
	}
	from := normalizeValue(rec.From, category)
	to := normalizeValue(rec.To, category)

	var msg string
	switch category {
	case changes.CategoryAbstract:
		msg = fmt.Sprintf("%s %s is now abstract", upperFirst(label), ref)
	case changes.CategoryInternal:
		msg = fmt.Sprintf("%s %s is now internal and should not be used", upperFirst(label), ref)
	case changes.CategoryDefault:
		msg = fmt.Sprintf("Changed default value for %s %s from %s to %s", label, ref, from, to)
	case changes.CategoryFinal:
		cannot := "overridden"
		if kind == changes.KindClass {
			cannot = "subclassed"
		}
		msg = fmt.Sprintf("%s %s is now final and cannot be %s", upperFirst(label), ref, cannot)
	case changes.CategoryNew:
		msg = fmt.Sprintf("Added new %s %s", label, ref)
	case changes.CategoryPassByRef:
		msg = fmt.Sprintf("%s %s is %s passed by reference", upperFirst(label), ref, nowOrNoLonger(rec.IsNow))
	case changes.CategoryReadonly:
		msg = fmt.Sprintf("%s %s is %s read-only", upperFirst(label), ref, nowOrNoLonger(rec.IsNow))
	case changes.CategoryRemoved:
		msg = fmt.Sprintf("Removed deprecated %s %s", label, ref)
	case changes.CategoryReturnByRef:
		msg = fmt.Sprintf("%s %s %s returns its value by reference", upperFirst(label), ref, nowOrNoLonger(rec.IsNow))
	case changes.CategoryReturnType:
		msg = fmt.Sprintf("Changed return type for %s %s from %s to %s", label, ref, from, to)
	case changes.CategoryType:
		msg = fmt.Sprintf("Changed type of %s %s from %s to %s", label, ref, from, to)
	case changes.CategoryVariadic:
		msg = fmt.Sprintf("%s %s is %s variadic", upperFirst(label), ref, nowOrNoLonger(rec.IsNow))
	case changes.CategoryVisibility:
		msg = fmt.Sprintf("Changed visibility for %s %s from %s to %s", label, ref, from, to)
	}

	if (category == changes.CategoryRemoved || category == changes.CategoryInternal) && rec.Message != "" {
		note, err := r.deprecationNote(rec.Message)
		if err != nil {
			return "", err
		}
		if note != "" {
			msg += " - " + note
		}
	}

	return msg, nil
}

// deprecationNote tidies a deprecation notice so it reads as a continuation
// of the sentence, then rewrites API mentions inside it.
func (r *Renderer) deprecationNote(message string) (string, error) {
	note := willBePrefix.ReplaceAllString(message, "")
	note = lowerFirst(strings.TrimSpace(note))
	return r.resolver.Rewrite(note)
}

// normalizeValue renders a before/after value. Missing values get a word
// that depends on what kind of value is missing.
func normalizeValue(value string, category changes.Category) string {
	if value != "" {
		return code(value)
	}
	switch category {
	case changes.CategoryType, changes.CategoryReturnType:
		return "dynamic"
	case changes.CategoryVisibility:
		return "undefined"
	case changes.CategoryDefault:
		return "none"
	}
	return ""
}

func nowOrNoLonger(isNow bool) string {
	if isNow {
		return "now"
	}
	return "no longer"
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
