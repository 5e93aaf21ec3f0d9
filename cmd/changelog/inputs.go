package main

import (
	"context"
	"fmt"
	"time"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/catalog"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/history"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/logging"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/render"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// inputs is everything one render needs.
type inputs struct {
	changes  changes.ChangeSet
	catalog  *catalog.Memory
	from, to changes.Version
}

// loadInputs reads the change set and the catalog concurrently. A loader
// does not start once ctx is done or the other loader has failed.
func loadInputs(ctx context.Context) (*inputs, error) {
	var (
		doc *changes.Document
		cat *catalog.Memory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		loaded, err := changes.LoadDocument(cfg.Project.Changes)
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.Project.Changes, err)
		}
		doc = loaded
		logs.Get(logging.CategoryLoad).Debug("Loaded change set",
			zap.String("path", cfg.Project.Changes),
			zap.Int("modules", len(loaded.Changes)),
			zap.Int("records", loaded.Changes.Count()))
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		loaded, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		cat = loaded
		logs.Get(logging.CategoryCatalog).Debug("Loaded catalog",
			zap.String("path", cfg.Catalog.Path),
			zap.Int("symbols", loaded.Len()))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &inputs{
		changes: doc.Changes,
		catalog: cat,
		from:    resolveVersion(cfg.Project.FromVersion, doc.From),
		to:      resolveVersion(cfg.Project.ToVersion, doc.To),
	}, nil
}

// resolveVersion prefers an explicit label over the one carried by the
// change set document.
func resolveVersion(label string, fallback changes.Version) changes.Version {
	if label != "" {
		return changes.Version{Branch: label}
	}
	return fallback
}

func newRenderer(cat catalog.Catalog) (*render.Renderer, error) {
	return render.New(cat,
		render.WithLogger(logs.Get(logging.CategoryRender)),
		render.WithTemplateFile(cfg.Render.Template))
}

// renderOutcome is a rendered document plus what went into it.
type renderOutcome struct {
	content []byte
	in      *inputs
}

// renderDocument loads inputs and renders them in memory.
func renderDocument(ctx context.Context) (*renderOutcome, error) {
	in, err := loadInputs(ctx)
	if err != nil {
		return nil, err
	}
	r, err := newRenderer(in.catalog)
	if err != nil {
		return nil, err
	}
	content, err := r.RenderBytes(in.from, in.to, in.changes)
	if err != nil {
		return nil, err
	}
	return &renderOutcome{content: content, in: in}, nil
}

// writeChangelog renders to path and records the run. It returns the run
// that was recorded, or nil when history is disabled.
func writeChangelog(ctx context.Context, path, trigger string) (*history.Run, error) {
	start := time.Now()
	run := &history.Run{
		StartedAt:   start,
		Trigger:     trigger,
		ChangesPath: cfg.Project.Changes,
		OutputPath:  path,
	}

	outcome, err := renderDocument(ctx)
	if err == nil {
		err = render.WriteFile(path, outcome.content)
	}
	run.Duration = time.Since(start)
	if err != nil {
		run.Error = err.Error()
	} else {
		run.FromVersion = outcome.in.from.Label()
		run.ToVersion = outcome.in.to.Label()
		run.Modules = activeModules(outcome.in.changes)
		run.Messages = outcome.in.changes.Count()
		run.Digest = history.Digest(outcome.content)
	}

	recorded := recordRun(run)
	if err != nil {
		return recorded, err
	}
	logs.Get(logging.CategoryRender).Info("Rendered changelog",
		zap.String("output", path),
		zap.Int("modules", run.Modules),
		zap.Int("messages", run.Messages),
		zap.Duration("duration", run.Duration))
	return recorded, nil
}

// recordRun stores run in the history database. Failures are logged and
// never fail the render.
func recordRun(run *history.Run) *history.Run {
	if !cfg.History.Enabled {
		return nil
	}
	log := logs.Get(logging.CategoryHistory)

	store, err := history.Open(cfg.History.DatabasePath)
	if err != nil {
		log.Warn("Failed to open history", zap.Error(err))
		return nil
	}
	defer store.Close()

	if run.Error == "" && run.Digest != "" {
		if last, ok, err := store.LastSuccessful(run.OutputPath); err == nil && ok && last.Digest == run.Digest {
			log.Info("Output unchanged since previous run", zap.String("run", last.ID))
		}
	}
	if err := store.Record(run); err != nil {
		log.Warn("Failed to record run", zap.Error(err))
		return nil
	}
	log.Debug("Recorded run", zap.String("id", run.ID), zap.String("status", run.Status))
	return run
}

// activeModules counts modules that produce at least one message.
func activeModules(cs changes.ChangeSet) int {
	n := 0
	for _, module := range cs.Modules() {
		if (changes.ChangeSet{module: cs[module]}).Count() > 0 {
			n++
		}
	}
	return n
}

// outputOrDefault returns the --out flag or the configured output path.
func outputOrDefault(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Render.Output
}
