package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/diff"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errDrift is returned when the changelog on disk differs from a fresh render.
var errDrift = errors.New("changelog is out of date")

var quietCheck bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the changelog on disk matches a fresh render",
	Long: `Render the changelog in memory and compare it with the file at --out.
Exits non-zero when they differ, printing the difference as a unified diff
followed by the entries that would be added or dropped.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := outputOrDefault(outputPath)

	outcome, err := renderDocument(commandContext(cmd))
	if err != nil {
		return err
	}

	report, err := diff.CompareFile(path, string(outcome.content))
	if err != nil {
		return err
	}

	added, removed := report.Stats()
	logs.Get(logging.CategoryRender).Debug("Compared changelog",
		zap.String("path", path),
		zap.Bool("missing", report.Missing),
		zap.Int("hunks", len(report.Hunks)),
		zap.Int("added", added),
		zap.Int("removed", removed))

	if report.Clean() {
		fmt.Fprintln(out, successStyle.Render("✓ "+path+" is up to date"))
		return nil
	}

	switch {
	case report.Missing:
		fmt.Fprintln(out, warningStyle.Render("✗ "+path+" does not exist"))
	default:
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("✗ %s is out of date (+%d -%d)", path, added, removed)))
	}
	if !quietCheck {
		printReport(out, report)
	}
	return errDrift
}

// printReport writes the colored unified diff and the entry summary.
func printReport(out io.Writer, report *diff.Report) {
	if !report.Missing {
		fmt.Fprintln(out)
		for _, line := range strings.Split(strings.TrimSuffix(report.Unified(), "\n"), "\n") {
			fmt.Fprintln(out, styleDiffLine(line))
		}
	}

	added, removed := report.Entries()
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("Entries"))
	for _, e := range added {
		fmt.Fprintln(out, addedStyle.Render("  + "+e))
	}
	for _, e := range removed {
		fmt.Fprintln(out, removedStyle.Render("  - "+e))
	}
}

// styleDiffLine colors one line of unified diff output.
func styleDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
		return mutedStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return hunkStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return addedStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return removedStyle.Render(line)
	}
	return line
}
