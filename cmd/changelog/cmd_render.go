package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var outputPath string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the changelog section to a file",
	Long: `Render the "Full list of removed and changed API" section and write it
to --out (or render.output from the config). Each run is recorded in the
history database when history is enabled.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	return performRender(commandContext(cmd), cmd.OutOrStdout(), "render")
}

// performRender writes the changelog and reports the outcome on out.
func performRender(ctx context.Context, out io.Writer, trigger string) error {
	path := outputOrDefault(outputPath)

	run, err := writeChangelog(ctx, path, trigger)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗ render failed: "+path))
		return err
	}

	fmt.Fprint(out, successStyle.Render("✓ wrote "+path))
	if run != nil {
		fmt.Fprint(out, mutedStyle.Render(fmt.Sprintf(" (%d modules, %d changes, run %s)",
			run.Modules, run.Messages, shortID(run.ID))))
	}
	fmt.Fprintln(out)
	return nil
}

// commandContext returns the command's context, or Background when the
// command was invoked without Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
