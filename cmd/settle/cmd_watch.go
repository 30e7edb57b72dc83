package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/rickgao/settlement-data/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest settlement reports as they arrive",
	Long: `Ingests the files already present in input.dir, then watches the
directory and ingests each matching file once writes to it have been quiet
for watch.debounce. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.close()
	a.startHealth()

	if err := ingestExisting(ctx, a); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	w, err := watch.New(watch.Config{
		Dir:      cfg.Input.Dir,
		Patterns: cfg.Input.Patterns,
		Debounce: cfg.Watch.Debounce,
	}, func(ctx context.Context, path string) {
		if _, err := a.runner.ProcessFile(ctx, path); err != nil {
			a.logger.Warn("failed to ingest file",
				"path", path,
				"error", err,
			)
		}
	}, a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}

	a.logger.Info("settle watching",
		"instance_id", cfg.Instance.ID,
		"dir", cfg.Input.Dir,
	)

	<-ctx.Done()

	a.logger.Info("shutting down...")
	w.Stop()
	a.logger.Info("settle stopped")
	return nil
}
