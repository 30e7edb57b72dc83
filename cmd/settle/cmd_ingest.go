package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rickgao/settlement-data/internal/config"
	"github.com/rickgao/settlement-data/internal/files"
	"github.com/rickgao/settlement-data/internal/ingest"
)

var ingestFailFast bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [FILE...]",
	Short: "Decode, store and export settlement reports",
	Long: `Processes the given files, or every file in input.dir matching
input.patterns when none are given. Files whose checksum is already loaded
are skipped. The command exits non-zero if any file failed.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestFailFast, "fail-fast", false, "stop at the first failed file")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, ingestFailFast)
	if err != nil {
		return err
	}
	defer a.close()
	a.startHealth()

	paths := args
	if len(paths) == 0 {
		if paths, err = discover(cfg); err != nil {
			return err
		}
	}

	sum, err := a.runner.Run(ctx, paths)
	printIngestSummary(cmd.OutOrStdout(), sum)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Files)
	}
	return nil
}

// discover lists input files in processing order.
func discover(cfg *config.Config) ([]string, error) {
	infos, err := files.Discover(cfg.Input.Dir, cfg.Input.Patterns)
	if err != nil {
		return nil, err
	}
	return files.Paths(infos), nil
}

func printIngestSummary(w io.Writer, sum ingest.Summary) {
	for _, res := range sum.Results {
		if res.Err != nil {
			fmt.Fprintf(w, "%-8s %s: %v\n", res.Status, res.Path, res.Err)
			continue
		}
		fmt.Fprintf(w, "%-8s %s (%d sections, %d rows)\n", res.Status, res.Path, res.Sections, res.Rows)
	}
	fmt.Fprintf(w, "files=%d loaded=%d skipped=%d failed=%d rows=%d duration=%s\n",
		sum.Files, sum.Loaded, sum.Skipped, sum.Failed, sum.Rows, sum.Duration)
}

// ingestExisting runs one batch over the input directory.
func ingestExisting(ctx context.Context, a *app) error {
	paths, err := discover(a.cfg)
	if err != nil {
		return err
	}
	_, err = a.runner.Run(ctx, paths)
	return err
}
