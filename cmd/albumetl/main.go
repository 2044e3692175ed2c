// Command albumetl extracts album records from a file, cleans and filters
// them, loads the result into SQLite and writes score and genre charts for
// the original and the cleaned table.
//
// It takes no flags. Settings come from albumetl.yaml in the working
// directory when present and from ALBUMETL__ environment variables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/albumetl"
	"github.com/nao1215/albumetl/config"
	"github.com/nao1215/albumetl/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logging.L().Error("albumetl failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return err
	}
	logging.Configure(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	builder := albumetl.NewPipelineBuilder().
		SetInput(cfg.Input.Path).
		SetDatabase(cfg.Database.Path, cfg.Database.Table).
		SetThresholds(cfg.Transform.ScoreThreshold, cfg.Transform.YearThreshold).
		SetPreviewRows(cfg.Transform.PreviewRows).
		SetReport(cfg.Report.Dir, cfg.Report.Format).
		SetHistogram(cfg.Report.Bins, cfg.Report.TopGenres).
		SetMetricsTextfile(cfg.Metrics.Textfile).
		SetOutput(os.Stdout).
		SetLogger(logging.L())

	if cfg.Export.Enabled() {
		opts, err := cfg.Export.DumpOptions()
		if err != nil {
			return err
		}
		builder.EnableExport(cfg.Export.Dir, opts)
	}

	pipeline, err := builder.Build()
	if err != nil {
		return err
	}
	_, err = pipeline.Run(ctx)
	return err
}
