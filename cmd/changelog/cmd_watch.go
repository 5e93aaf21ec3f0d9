package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/logging"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the changelog whenever its inputs change",
	Long: `Render once, then watch the change set, the catalog and the template
(when configured) and re-render after each burst of edits settles.
Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchAndRender(ctx, cmd)
}

// watchAndRender blocks until ctx is done.
func watchAndRender(ctx context.Context, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	log := logs.Get(logging.CategoryWatch)

	// A failed first render is reported but the watch keeps going so the
	// inputs can be fixed in place.
	if err := performRender(ctx, out, "watch"); err != nil {
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
	}

	w, err := watch.New(watchedFiles(), cfg.GetDebounce(), func(ctx context.Context, paths []string) {
		log.Info("Inputs changed", zap.Strings("paths", paths))
		if err := performRender(ctx, out, "watch"); err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
	}, log)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("watching %d files, press Ctrl+C to stop", len(w.Files()))))

	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	log.Info("Watch stopped", zap.Int("events", stats.Events), zap.Int("renders", stats.Triggers))
	return nil
}

// watchedFiles lists every input that affects the rendered output.
func watchedFiles() []string {
	files := []string{cfg.Project.Changes}
	if cfg.Catalog.Path != "" {
		files = append(files, cfg.Catalog.Path)
	}
	if cfg.Render.Template != "" {
		files = append(files, cfg.Render.Template)
	}
	return files
}
