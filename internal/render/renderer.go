// Package render turns a change set into the "removed and changed API"
// section of a release changelog.
//
// The pipeline is: Order (fixed category/kind priority, messages sorted within
// each group) -> Message (one sentence per record, with references resolved
// against the target version's catalog) -> Render (the document template).
// A Renderer is safe to reuse; it never mutates the change set it is given.
package render

import (
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/catalog"

	"go.uber.org/zap"
)

//go:embed templates/changelog.md.tmpl
var defaultTemplate string

// Renderer renders change sets against one target-version catalog.
type Renderer struct {
	resolver     *Resolver
	logger       *zap.Logger
	templateText string
	templateName string
	tmpl         *template.Template
}

// Option configures a Renderer.
type Option func(*Renderer) error

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// WithTemplateFile replaces the built-in document template. The template
// receives FromVersion, ToVersion and APIChanges.
func WithTemplateFile(path string) Option {
	return func(r *Renderer) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		r.templateText = string(data)
		r.templateName = path
		return nil
	}
}

// New creates a Renderer. cat is the catalog of the version being upgraded
// to; only API found there (with a source location) is linked.
func New(cat catalog.Catalog, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		logger:       zap.NewNop(),
		templateText: defaultTemplate,
		templateName: "changelog.md",
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	tmpl, err := template.New(r.templateName).Parse(r.templateText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", r.templateName, err)
	}
	r.tmpl = tmpl
	r.resolver = NewResolver(cat, r.logger)
	return r, nil
}
