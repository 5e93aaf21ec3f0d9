package main

import (
	"fmt"
	"io"
	"time"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/history"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded render runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded render run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(cfg.History.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no recorded runs"))
		return nil
	}
	for _, run := range runs {
		status := successStyle.Render("ok    ")
		if run.Status != history.StatusOK {
			status = errorStyle.Render("failed")
		}
		fmt.Fprintf(out, "%s  %s  %s  %-6s %s -> %s  %d changes  %s\n",
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			status,
			run.Trigger,
			orDash(run.FromVersion),
			orDash(run.ToVersion),
			run.Messages,
			run.OutputPath)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := history.Open(cfg.History.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(args[0])
	if err != nil {
		return err
	}
	printRun(cmd.OutOrStdout(), run)
	return nil
}

func printRun(out io.Writer, run *history.Run) {
	fmt.Fprintln(out, headerStyle.Render("Run "+run.ID))
	fmt.Fprintf(out, "  started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "  trigger:  %s\n", run.Trigger)
	fmt.Fprintf(out, "  status:   %s\n", run.Status)
	fmt.Fprintf(out, "  versions: %s -> %s\n", orDash(run.FromVersion), orDash(run.ToVersion))
	fmt.Fprintf(out, "  changes:  %s\n", run.ChangesPath)
	fmt.Fprintf(out, "  output:   %s\n", run.OutputPath)
	fmt.Fprintf(out, "  modules:  %d\n", run.Modules)
	fmt.Fprintf(out, "  messages: %d\n", run.Messages)
	fmt.Fprintf(out, "  duration: %s\n", run.Duration)
	if run.Digest != "" {
		fmt.Fprintf(out, "  digest:   %s\n", run.Digest)
	}
	if run.Error != "" {
		fmt.Fprintln(out, errorStyle.Render("  error:    "+run.Error))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
