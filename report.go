package albumetl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nao1215/albumetl/chart"
	"github.com/nao1215/albumetl/logging"
	"github.com/nao1215/albumetl/metrics"
	"github.com/olekukonko/tablewriter"
)

const stageReport = "report"

// Chart titles and axis labels
const (
	scoreChartTitle = "Distribution of User Scores"
	scoreChartX     = "User Score"
	scoreChartY     = "Frequency"
	genreChartTitle = "Top 10 Most Common Genres"
	genreChartX     = "Number of Albums"
	genreChartY     = "Genre"
)

// Report is the outcome of reporting on one table.
type Report struct {
	// Label names the table, e.g. "original" or "transformed".
	Label string
	// Scores is the user score distribution.
	Scores *ScoreDistribution
	// Genres holds the most common genres.
	Genres []GenreCount
	// Files lists the chart files written, in the order they were written.
	Files []string
}

// Reporter computes the descriptive statistics of a table and renders them
// as chart files.
type Reporter struct {
	// Dir is the directory chart files are written to. It is created when absent.
	Dir string
	// Format is the chart image format (png, svg or pdf).
	Format string
	// Bins is the number of score histogram bins.
	Bins int
	// TopGenres is the number of genres in the genre chart.
	TopGenres int
	// Summary receives a text table of the top genres. Nil disables it.
	Summary  io.Writer
	Logger   *slog.Logger
	Recorder *metrics.Recorder
}

// NewReporter returns a Reporter writing PNG charts into dir with 20 histogram
// bins and the top 10 genres.
func NewReporter(dir string) *Reporter {
	return &Reporter{
		Dir:       dir,
		Format:    "png",
		Bins:      DefaultHistogramBins,
		TopGenres: DefaultTopGenres,
	}
}

func (r *Reporter) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.L()
}

// Report renders the score histogram and the top genre chart of t, naming the
// files after label: <label>_user_scores.<format> and <label>_top_genres.<format>.
// A table without genres gets no genre chart. Failures to compute fail with
// ErrColumnNotFound or ErrFormat; failures to draw or write fail with ErrRender.
func (r *Reporter) Report(ctx context.Context, label string, t *Table) (report *Report, err error) {
	ec := NewErrorContext(stageReport, r.Dir).WithTable(t.Name()).WithDetails(label)
	start := time.Now()
	defer func() {
		r.Recorder.ObserveStage(stageReport, err, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return nil, ec.Error(err, nil)
	}
	if err := r.validate(); err != nil {
		return nil, ec.Error(ErrInvalidPipeline, err)
	}

	scores, err := ScoreHistogram(t, r.Bins)
	if err != nil {
		return nil, err
	}
	genres, err := TopGenres(t, r.TopGenres)
	if err != nil {
		return nil, err
	}
	report = &Report{Label: label, Scores: scores, Genres: genres}

	if err := os.MkdirAll(r.Dir, 0750); err != nil {
		return nil, ec.Error(ErrRender, err)
	}

	scorePath := filepath.Join(r.Dir, label+"_user_scores."+r.Format)
	if err := chart.Histogram(scorePath, chart.Labels{Title: scoreChartTitle, X: scoreChartX, Y: scoreChartY},
		histogramBars(scores), densityCurve(scores)); err != nil {
		return nil, ec.Error(ErrRender, err)
	}
	report.Files = append(report.Files, scorePath)

	if len(genres) > 0 {
		genrePath := filepath.Join(r.Dir, label+"_top_genres."+r.Format)
		if err := chart.HorizontalBars(genrePath, chart.Labels{Title: genreChartTitle, X: genreChartX, Y: genreChartY},
			genreBars(genres)); err != nil {
			return nil, ec.Error(ErrRender, err)
		}
		report.Files = append(report.Files, genrePath)
	} else {
		r.logger().Warn("no genres to chart", "label", label, "table", t.Name())
	}

	if err := r.writeSummary(report); err != nil {
		r.logger().Warn("failed to write genre summary", "label", label, "error", err)
	}

	attrs := []any{"label", label, "scores", scores.N, "genres", len(genres), "files", report.Files}
	if scores.N > 0 {
		attrs = append(attrs, "mean_score", scores.Mean)
	}
	r.logger().Info("report written", attrs...)
	return report, nil
}

// validate checks the Reporter settings.
func (r *Reporter) validate() error {
	if r.Dir == "" {
		return errors.New("report directory cannot be empty")
	}
	if r.Bins <= 0 {
		return fmt.Errorf("histogram bins must be positive, got %d", r.Bins)
	}
	if r.TopGenres <= 0 {
		return fmt.Errorf("top genres must be positive, got %d", r.TopGenres)
	}
	if _, err := chart.Format("chart." + r.Format); err != nil {
		return err
	}
	return nil
}

// writeSummary prints the top genres of report as a text table.
func (r *Reporter) writeSummary(report *Report) error {
	if r.Summary == nil {
		return nil
	}
	if _, err := fmt.Fprintf(r.Summary, "%s (%s)\n", genreChartTitle, report.Label); err != nil {
		return err
	}

	table := tablewriter.NewWriter(r.Summary)
	table.SetHeader([]string{"#", genreChartY, genreChartX})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, g := range report.Genres {
		table.Append([]string{strconv.Itoa(i + 1), g.Genre, strconv.Itoa(g.Count)})
	}
	table.Render()
	return nil
}

func histogramBars(d *ScoreDistribution) []chart.Bin {
	bins := make([]chart.Bin, len(d.Bins))
	for i, b := range d.Bins {
		bins[i] = chart.Bin{Min: b.Lower, Max: b.Upper, Count: float64(b.Count)}
	}
	return bins
}

func densityCurve(d *ScoreDistribution) []chart.Point {
	if len(d.Density) == 0 {
		return nil
	}
	pts := make([]chart.Point, len(d.Density))
	for i, p := range d.Density {
		pts[i] = chart.Point{X: p.X, Y: p.Y}
	}
	return pts
}

func genreBars(genres []GenreCount) []chart.Bar {
	bars := make([]chart.Bar, len(genres))
	for i, g := range genres {
		bars[i] = chart.Bar{Label: g.Genre, Value: float64(g.Count)}
	}
	return bars
}
