package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"

	"go.uber.org/zap"
)

// templateData is everything the document template gets to see.
type templateData struct {
	FromVersion string
	ToVersion   string
	APIChanges  []ModuleMessages
}

// Render writes the changelog section for cs to w. Nothing is written if
// ordering or templating fails.
func (r *Renderer) Render(w io.Writer, from, to changes.Version, cs changes.ChangeSet) error {
	content, err := r.RenderBytes(from, to, cs)
	if err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}
	return nil
}

// RenderBytes renders the changelog section into memory.
func (r *Renderer) RenderBytes(from, to changes.Version, cs changes.ChangeSet) ([]byte, error) {
	ordered, err := r.Order(cs)
	if err != nil {
		return nil, err
	}

	data := templateData{
		FromVersion: from.Label(),
		ToVersion:   to.Label(),
		APIChanges:  ordered,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	r.logger.Debug("Rendered changelog",
		zap.String("from", data.FromVersion),
		zap.String("to", data.ToVersion),
		zap.Int("modules", len(ordered)),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// RenderFile renders the changelog section and writes it verbatim to path,
// creating parent directories as needed.
func (r *Renderer) RenderFile(path string, from, to changes.Version, cs changes.ChangeSet) error {
	content, err := r.RenderBytes(from, to, cs)
	if err != nil {
		return err
	}
	return WriteFile(path, content)
}

// WriteFile writes rendered content to path, creating parent directories.
// Close errors are reported.
func WriteFile(path string, content []byte) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
