package albumetl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nao1215/albumetl/domain/model"
	"github.com/nao1215/albumetl/logging"
	"github.com/nao1215/albumetl/metrics"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"
)

const stageTransform = "transform"

// Transformer cleans and filters album tables.
//
// Transform applies, in order: mean imputation of missing scores, release
// date coercion, removal of rows without a release date, the score filter and
// the release year filter. Both filters are strict comparisons.
type Transformer struct {
	scoreColumn    string
	dateColumn     string
	scoreThreshold float64
	yearThreshold  int
	preview        io.Writer
	previewRows    int
	logger         *slog.Logger
	recorder       *metrics.Recorder
}

// TransformOption configures a Transformer.
type TransformOption func(*Transformer)

// WithScoreThreshold sets the exclusive lower bound for kept scores.
func WithScoreThreshold(threshold float64) TransformOption {
	return func(tr *Transformer) {
		tr.scoreThreshold = threshold
	}
}

// WithYearThreshold sets the exclusive lower bound for kept release years.
func WithYearThreshold(year int) TransformOption {
	return func(tr *Transformer) {
		tr.yearThreshold = year
	}
}

// WithColumns overrides the score and release date column names.
func WithColumns(scoreColumn, dateColumn string) TransformOption {
	return func(tr *Transformer) {
		tr.scoreColumn = scoreColumn
		tr.dateColumn = dateColumn
	}
}

// WithPreview writes a completion message and the first rows of the result to w.
// A nil writer disables the preview.
func WithPreview(w io.Writer, rows int) TransformOption {
	return func(tr *Transformer) {
		tr.preview = w
		tr.previewRows = rows
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) TransformOption {
	return func(tr *Transformer) {
		if l != nil {
			tr.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r *metrics.Recorder) TransformOption {
	return func(tr *Transformer) {
		tr.recorder = r
	}
}

// NewTransformer returns a Transformer with the default thresholds
// (score > 75, year > 2013) and no preview output.
func NewTransformer(opts ...TransformOption) *Transformer {
	tr := &Transformer{
		scoreColumn:    ColumnUserScore,
		dateColumn:     ColumnReleaseDate,
		scoreThreshold: DefaultScoreThreshold,
		yearThreshold:  DefaultYearThreshold,
		previewRows:    DefaultPreviewRows,
		logger:         logging.L(),
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

// Transform returns a cleaned copy of t. The input table is not modified.
// A table without the score or release date column fails with ErrColumnNotFound.
// A score column holding non-numeric text fails with ErrFormat.
func (tr *Transformer) Transform(ctx context.Context, t *Table) (*Table, error) {
	ec := NewErrorContext(stageTransform, "").WithTable(t.Name())
	if err := ctx.Err(); err != nil {
		return nil, ec.Error(err, nil)
	}

	out := t.Clone()
	for _, name := range []string{tr.scoreColumn, tr.dateColumn} {
		if _, err := out.ColumnIndex(name); err != nil {
			return nil, ec.Error(ErrColumnNotFound, err)
		}
	}
	tr.recorder.AddRows(stageTransform, metrics.KindRead, out.Len())

	imputed, mean, err := tr.imputeScores(out)
	if err != nil {
		return nil, ec.WithDetails("score imputation").Error(ErrFormat, err)
	}
	tr.recorder.AddRows(stageTransform, metrics.KindImputed, imputed)
	tr.logger.Debug("imputed missing scores", "column", tr.scoreColumn, "rows", imputed, "mean", mean)

	failed := tr.coerceDates(out)
	tr.recorder.AddRows(stageTransform, metrics.KindCoerceFailed, failed)

	scoreIdx, _ := out.ColumnIndex(tr.scoreColumn)
	dateIdx, _ := out.ColumnIndex(tr.dateColumn)

	steps := []struct {
		name string
		keep func(model.Row) bool
	}{
		{"missing_date", func(r model.Row) bool {
			return !r[dateIdx].IsMissing()
		}},
		{"score", func(r model.Row) bool {
			f, ok := r[scoreIdx].Float()
			return ok && f > tr.scoreThreshold
		}},
		{"year", func(r model.Row) bool {
			ts, ok := r[dateIdx].Time()
			return ok && ts.Year() > tr.yearThreshold
		}},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, ec.Error(err, nil)
		}
		before := out.Len()
		out.Filter(step.keep)
		dropped := before - out.Len()
		tr.recorder.AddRows(stageTransform+"_"+step.name, metrics.KindDropped, dropped)
		tr.logger.Debug("filtered rows", "step", step.name, "dropped", dropped, "remaining", out.Len())
	}
	tr.recorder.AddRows(stageTransform, metrics.KindKept, out.Len())

	tr.logger.Info("data transformed", "table", t.Name(), "rows_in", t.Len(), "rows_out", out.Len())
	if err := tr.writePreview(out); err != nil {
		tr.logger.Warn("failed to write preview", "error", err)
	}
	return out, nil
}

// imputeScores replaces missing scores with the mean of the present ones,
// computed over the whole column before any filtering. With no present
// scores the column is left missing. It returns the number of filled cells.
func (tr *Transformer) imputeScores(t *Table) (int, float64, error) {
	values, err := t.Column(tr.scoreColumn)
	if err != nil {
		return 0, 0, err
	}

	present := make([]float64, 0, len(values))
	numeric := make([]model.Value, len(values))
	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		f, err := numericValue(v)
		if err != nil {
			return 0, 0, fmt.Errorf("column %s: %w", tr.scoreColumn, err)
		}
		numeric[i] = model.Real(f)
		present = append(present, f)
	}

	if len(present) == 0 {
		return 0, 0, t.MapColumn(tr.scoreColumn, model.ColumnTypeReal, func(v model.Value) model.Value {
			return model.Missing()
		})
	}

	mean := stat.Mean(present, nil)
	imputed := 0
	i := 0
	err = t.MapColumn(tr.scoreColumn, model.ColumnTypeReal, func(model.Value) model.Value {
		v := numeric[i]
		i++
		if v.IsMissing() {
			imputed++
			return model.Real(mean)
		}
		return v
	})
	return imputed, mean, err
}

// numericValue returns the number held by a present cell. Text cells are
// accepted when they hold a number.
func numericValue(v model.Value) (float64, error) {
	if f, ok := v.Float(); ok {
		return f, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", v.String())
	}
	return f, nil
}

// coerceDates parses the release date column into timestamps. Cells that are
// not calendar dates become missing. It returns how many present cells failed.
func (tr *Transformer) coerceDates(t *Table) int {
	failed := 0
	_ = t.MapColumn(tr.dateColumn, model.ColumnTypeTimestamp, func(v model.Value) model.Value {
		switch v.Kind() {
		case model.KindTimestamp:
			return v
		case model.KindMissing:
			return v
		}
		// numbers are read through their text form, so 2015 means the year 2015
		if ts, ok := model.ParseDate(v.String()); ok {
			return model.Timestamp(ts)
		}
		failed++
		return model.Missing()
	})
	return failed
}

// writePreview prints a completion line and the leading rows of t.
func (tr *Transformer) writePreview(t *Table) error {
	if tr.preview == nil {
		return nil
	}
	if _, err := fmt.Fprintf(tr.preview, "Data transformed: %d rows\n", t.Len()); err != nil {
		return err
	}
	if tr.previewRows <= 0 || t.Len() == 0 {
		return nil
	}

	table := tablewriter.NewWriter(tr.preview)
	table.SetHeader(t.Header())
	table.SetAutoFormatHeaders(false)
	for _, row := range t.Head(tr.previewRows) {
		cells := make([]string, len(row))
		for i, v := range row {
			if v.IsMissing() {
				cells[i] = "NaN"
				continue
			}
			cells[i] = v.String()
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}
