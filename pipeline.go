package albumetl

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/albumetl/domain/model"
	"github.com/nao1215/albumetl/logging"
	"github.com/nao1215/albumetl/metrics"
)

const stageExtract = "extract"

// Report labels
const (
	LabelOriginal    = "original"
	LabelTransformed = "transformed"
)

// PipelineBuilder configures a Pipeline.
// Use NewPipelineBuilder, chain the setters, then call Build.
//
//	p, err := albumetl.NewPipelineBuilder().
//		SetInput("aoty.csv").
//		SetDatabase("aoty_data.db", "albums").
//		Build()
//	if err != nil {
//		return err
//	}
//	result, err := p.Run(ctx)
type PipelineBuilder struct {
	inputPath string
	inputFS   fs.FS

	dbPath    string
	tableName string

	scoreThreshold float64
	yearThreshold  int
	previewRows    int

	reportDir   string
	chartFormat string
	bins        int
	topGenres   int

	exportDir     string
	exportOptions DumpOptions

	metricsTextfile string

	out    io.Writer
	logger *slog.Logger
}

// NewPipelineBuilder returns a builder holding the default settings: input
// aoty.csv, database aoty_data.db, table albums, charts in reports/ and no
// export, metrics textfile or console output.
func NewPipelineBuilder() *PipelineBuilder {
	return &PipelineBuilder{
		inputPath:      DefaultInputPath,
		dbPath:         DefaultDatabasePath,
		tableName:      DefaultTableName,
		scoreThreshold: DefaultScoreThreshold,
		yearThreshold:  DefaultYearThreshold,
		previewRows:    DefaultPreviewRows,
		reportDir:      DefaultReportDir,
		chartFormat:    "png",
		bins:           DefaultHistogramBins,
		topGenres:      DefaultTopGenres,
		exportOptions:  NewDumpOptions(),
	}
}

// SetInput sets the file to extract.
func (b *PipelineBuilder) SetInput(path string) *PipelineBuilder {
	b.inputPath = path
	b.inputFS = nil
	return b
}

// SetInputFS extracts name from fsys instead of the local file system.
func (b *PipelineBuilder) SetInputFS(fsys fs.FS, name string) *PipelineBuilder {
	b.inputFS = fsys
	b.inputPath = name
	return b
}

// SetDatabase sets the SQLite file and the table the transformed albums replace.
func (b *PipelineBuilder) SetDatabase(path, table string) *PipelineBuilder {
	b.dbPath = path
	b.tableName = table
	return b
}

// SetThresholds sets the exclusive lower bounds of kept scores and release years.
func (b *PipelineBuilder) SetThresholds(score float64, year int) *PipelineBuilder {
	b.scoreThreshold = score
	b.yearThreshold = year
	return b
}

// SetPreviewRows sets how many transformed rows are printed. Zero prints only the row count.
func (b *PipelineBuilder) SetPreviewRows(n int) *PipelineBuilder {
	b.previewRows = n
	return b
}

// SetReport sets the chart directory and image format (png, svg or pdf).
func (b *PipelineBuilder) SetReport(dir, format string) *PipelineBuilder {
	b.reportDir = dir
	b.chartFormat = format
	return b
}

// SetHistogram sets the score histogram bin count and the number of charted genres.
func (b *PipelineBuilder) SetHistogram(bins, topGenres int) *PipelineBuilder {
	b.bins = bins
	b.topGenres = topGenres
	return b
}

// EnableExport writes a snapshot of the transformed table into dir after the load.
func (b *PipelineBuilder) EnableExport(dir string, options ...DumpOptions) *PipelineBuilder {
	b.exportDir = dir
	b.exportOptions = NewDumpOptions()
	if len(options) > 0 {
		b.exportOptions = options[0]
	}
	return b
}

// SetMetricsTextfile writes the run metrics to path when the run ends.
func (b *PipelineBuilder) SetMetricsTextfile(path string) *PipelineBuilder {
	b.metricsTextfile = path
	return b
}

// SetOutput sets where progress messages, the transform preview and the
// genre summaries are printed. Nil silences them.
func (b *PipelineBuilder) SetOutput(w io.Writer) *PipelineBuilder {
	b.out = w
	return b
}

// SetLogger sets the logger. The default is logging.L().
func (b *PipelineBuilder) SetLogger(l *slog.Logger) *PipelineBuilder {
	b.logger = l
	return b
}

// Build validates the settings and returns a Pipeline. Invalid settings fail
// with ErrInvalidPipeline. The input file is not opened, so a missing input
// surfaces as ErrNotFound from Run.
func (b *PipelineBuilder) Build() (*Pipeline, error) {
	ec := NewErrorContext("build pipeline", b.inputPath)
	v := newValidator()

	checks := []func() error{
		func() error { return v.validateInput(b.inputPath, b.inputFS != nil) },
		func() error { return v.validateDatabase(b.dbPath, b.tableName) },
		func() error { return v.validateThresholds(b.scoreThreshold, b.yearThreshold, b.previewRows) },
		func() error { return v.validateOutputDirectory(b.reportDir) },
		func() error { return v.validateOutputDirectory(b.exportDir) },
		func() error { return v.validateExportOptions(b.exportDir, b.exportOptions) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return nil, ec.Error(ErrInvalidPipeline, err)
		}
	}

	reporter := NewReporter(b.reportDir)
	reporter.Format = b.chartFormat
	reporter.Bins = b.bins
	reporter.TopGenres = b.topGenres
	if err := reporter.validate(); err != nil {
		return nil, ec.Error(ErrInvalidPipeline, err)
	}

	logger := b.logger
	if logger == nil {
		logger = logging.L()
	}

	return &Pipeline{
		inputPath:       b.inputPath,
		inputFS:         b.inputFS,
		dbPath:          b.dbPath,
		tableName:       b.tableName,
		scoreThreshold:  b.scoreThreshold,
		yearThreshold:   b.yearThreshold,
		previewRows:     b.previewRows,
		reporter:        reporter,
		exportDir:       b.exportDir,
		exportOptions:   b.exportOptions,
		metricsTextfile: b.metricsTextfile,
		out:             b.out,
		logger:          logger,
	}, nil
}

// Pipeline runs extract, transform, load and report once per Run.
type Pipeline struct {
	inputPath string
	inputFS   fs.FS

	dbPath    string
	tableName string

	scoreThreshold float64
	yearThreshold  int
	previewRows    int

	reporter *Reporter

	exportDir     string
	exportOptions DumpOptions

	metricsTextfile string

	out    io.Writer
	logger *slog.Logger
}

// RunResult describes a finished run.
type RunResult struct {
	// RunID identifies the run in logs.
	RunID string
	// Original is the extracted table, unmodified.
	Original *Table
	// Transformed is the table that was loaded.
	Transformed *Table
	// ExportPath is the snapshot file, empty when the export is disabled.
	ExportPath string
	// Reports holds the original report followed by the transformed report.
	Reports []*Report
	// Metrics is the registry-backed recorder of the run.
	Metrics *metrics.Recorder
}

// Run executes the stages in order and stops at the first failure, returning
// its error unchanged. Each stage is reported as it starts. When a metrics
// textfile is configured it is written whether or not the run succeeded.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	recorder, err := metrics.NewRecorder()
	if err != nil {
		return nil, err
	}
	result := &RunResult{RunID: uuid.NewString(), Metrics: recorder}
	logger := p.logger.With("run_id", result.RunID)
	defer func() {
		if werr := recorder.WriteTextfile(p.metricsTextfile); werr != nil {
			logger.Warn("failed to write metrics textfile", "path", p.metricsTextfile, "error", werr)
		}
	}()

	start := time.Now()
	logger.Info("run started", "input", p.inputPath, "database", p.dbPath, "table", p.tableName)

	p.progress("Extracting data...")
	err = recorder.Time(stageExtract, func() error {
		var xerr error
		result.Original, xerr = p.extract(ctx)
		return xerr
	})
	if err != nil {
		return nil, err
	}
	recorder.AddRows(stageExtract, metrics.KindRead, result.Original.Len())
	logger.Info("data extracted", "table", result.Original.Name(), "rows", result.Original.Len(),
		"columns", len(result.Original.Columns()))

	p.progress("Transforming data...")
	transformer := NewTransformer(
		WithScoreThreshold(p.scoreThreshold),
		WithYearThreshold(p.yearThreshold),
		WithPreview(p.out, p.previewRows),
		WithLogger(logger),
		WithRecorder(recorder),
	)
	err = recorder.Time(stageTransform, func() error {
		var terr error
		result.Transformed, terr = transformer.Transform(ctx, result.Original)
		return terr
	})
	if err != nil {
		return nil, err
	}

	p.progress("Loading data into the database...")
	loader := &Loader{Logger: logger, Recorder: recorder}
	if err := loader.Load(ctx, result.Transformed, p.dbPath, p.tableName); err != nil {
		return nil, err
	}
	p.progress(fmt.Sprintf("Data successfully loaded into %s, table: %s", p.dbPath, p.tableName))

	if p.exportDir != "" {
		exporter := &Exporter{Recorder: recorder}
		// the snapshot is named after the database table
		snapshot := model.NewTable(p.tableName, result.Transformed.Columns(), result.Transformed.Rows())
		path, err := exporter.Dump(ctx, snapshot, p.exportDir, p.exportOptions)
		if err != nil {
			return nil, err
		}
		result.ExportPath = path
		logger.Info("snapshot exported", "path", path, "format", p.exportOptions.Format.String())
	}

	reporter := *p.reporter
	reporter.Logger = logger
	reporter.Recorder = recorder
	reporter.Summary = p.out
	for _, target := range []struct {
		label string
		table *Table
	}{
		{LabelOriginal, result.Original},
		{LabelTransformed, result.Transformed},
	} {
		report, err := reporter.Report(ctx, target.label, target.table)
		if err != nil {
			return nil, err
		}
		result.Reports = append(result.Reports, report)
	}

	logger.Info("run finished",
		"rows_in", result.Original.Len(),
		"rows_out", result.Transformed.Len(),
		"elapsed", time.Since(start))
	return result, nil
}

func (p *Pipeline) extract(ctx context.Context) (*Table, error) {
	if p.inputFS != nil {
		return ExtractFS(ctx, p.inputFS, p.inputPath)
	}
	return Extract(ctx, p.inputPath)
}

// progress prints a stage message to the console output.
func (p *Pipeline) progress(msg string) {
	if p.out == nil {
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}
