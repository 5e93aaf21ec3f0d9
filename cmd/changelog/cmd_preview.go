package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	previewWidth int
	previewRaw   bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the changelog and display it in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	outcome, err := renderDocument(commandContext(cmd))
	if err != nil {
		return err
	}

	if previewRaw {
		_, err := cmd.OutOrStdout().Write(outcome.content)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	styled, err := renderer.Render(string(outcome.content))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), styled)
	return nil
}
