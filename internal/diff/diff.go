// Package diff compares a changelog on disk with a freshly rendered one using
// the sergi/go-diff line diff, grouped into unified-style hunks.
package diff

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Only in the rendered document
	LineRemoved                 // Only in the existing document
)

// Line is one line of a hunk. OldLine and NewLine are 1-based; zero means
// the line does not exist on that side.
type Line struct {
	OldLine int
	NewLine int
	Content string
	Type    LineType
}

// Hunk represents a group of changes with surrounding context
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Report is the result of comparing an existing changelog with a render.
type Report struct {
	Path    string
	Missing bool // existing file was absent
	Hunks   []Hunk
}

// Clean reports whether the existing document matches the render.
func (r *Report) Clean() bool {
	return !r.Missing && len(r.Hunks) == 0
}

// Stats counts added and removed lines across all hunks.
func (r *Report) Stats() (added, removed int) {
	for _, h := range r.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			}
		}
	}
	return added, removed
}

// Entries returns the changelog bullet entries that the render adds and the
// ones it drops, without their "- " prefix.
func (r *Report) Entries() (added, removed []string) {
	for _, h := range r.Hunks {
		for _, l := range h.Lines {
			entry, ok := strings.CutPrefix(l.Content, "- ")
			if !ok {
				continue
			}
			switch l.Type {
			case LineAdded:
				added = append(added, entry)
			case LineRemoved:
				removed = append(removed, entry)
			}
		}
	}
	return added, removed
}

// Unified renders the report in unified diff format. A clean report renders
// as the empty string.
func (r *Report) Unified() string {
	if len(r.Hunks) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", r.Path, r.Path)
	for _, h := range r.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			sb.WriteString(l.Type.prefix())
			sb.WriteString(l.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (t LineType) prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// Engine computes line diffs.
type Engine struct {
	dmp          *diffmatchpatch.DiffMatchPatch
	contextLines int
}

// NewEngine creates an engine that keeps contextLines unchanged lines around
// each change.
func NewEngine(contextLines int) *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // exact diffs; changelogs are small
	if contextLines < 0 {
		contextLines = 0
	}
	return &Engine{dmp: dmp, contextLines: contextLines}
}

// DefaultEngine uses three lines of context.
var DefaultEngine = NewEngine(3)

// Compare diffs existing against rendered. path only labels the report.
func (e *Engine) Compare(path, existing, rendered string) *Report {
	a, b, lineArray := e.dmp.DiffLinesToChars(existing, rendered)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	return &Report{
		Path:  path,
		Hunks: e.group(toOperations(diffs)),
	}
}

// CompareFile diffs the file at path against rendered. A missing file is
// reported as Missing with every rendered line added.
func (e *Engine) CompareFile(path, rendered string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			report := e.Compare(path, "", rendered)
			report.Missing = true
			return report, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.Compare(path, string(data), rendered), nil
}

// Compare uses the default engine.
func Compare(path, existing, rendered string) *Report {
	return DefaultEngine.Compare(path, existing, rendered)
}

// CompareFile uses the default engine.
func CompareFile(path, rendered string) (*Report, error) {
	return DefaultEngine.CompareFile(path, rendered)
}

// operation is one line with its 0-based position on each side before it is
// applied.
type operation struct {
	typ     LineType
	oldPos  int
	newPos  int
	content string
}

func toOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldPos, newPos := 0, 0

	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			op := operation{oldPos: oldPos, newPos: newPos, content: line}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				op.typ = LineContext
				oldPos++
				newPos++
			case diffmatchpatch.DiffDelete:
				op.typ = LineRemoved
				oldPos++
			case diffmatchpatch.DiffInsert:
				op.typ = LineAdded
				newPos++
			}
			ops = append(ops, op)
		}
	}
	return ops
}

// group merges changes separated by at most 2*contextLines unchanged lines
// into one hunk.
func (e *Engine) group(ops []operation) []Hunk {
	var hunks []Hunk
	ctx := e.contextLines

	for i := 0; i < len(ops); {
		if ops[i].typ == LineContext {
			i++
			continue
		}

		start := max(0, i-ctx)
		last := i
		for j := i + 1; j < len(ops); j++ {
			if ops[j].typ != LineContext {
				last = j
				continue
			}
			if j-last > 2*ctx {
				break
			}
		}
		end := min(len(ops), last+ctx+1)

		hunks = append(hunks, newHunk(ops[start:end]))
		i = end
	}
	return hunks
}

func newHunk(ops []operation) Hunk {
	h := Hunk{
		OldStart: ops[0].oldPos + 1,
		NewStart: ops[0].newPos + 1,
		Lines:    make([]Line, 0, len(ops)),
	}
	for _, op := range ops {
		line := Line{Content: op.content, Type: op.typ}
		if op.typ != LineAdded {
			h.OldCount++
			line.OldLine = op.oldPos + 1
		}
		if op.typ != LineRemoved {
			h.NewCount++
			line.NewLine = op.newPos + 1
		}
		h.Lines = append(h.Lines, line)
	}
	// Unified format points at the line before an empty range.
	if h.OldCount == 0 {
		h.OldStart--
	}
	if h.NewCount == 0 {
		h.NewStart--
	}
	return h
}
