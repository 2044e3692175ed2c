package albumetl

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/albumetl/domain/model"
	"github.com/nao1215/albumetl/metrics"
	"github.com/xuri/excelize/v2"
)

const stageExport = "export"

// Exporter writes table snapshots to files.
// The zero Exporter records no metrics.
type Exporter struct {
	Recorder *metrics.Recorder
}

// Dump writes t into outputDir using a zero Exporter and returns the written path.
func Dump(ctx context.Context, t *Table, outputDir string, opts ...DumpOptions) (string, error) {
	return (&Exporter{}).Dump(ctx, t, outputDir, opts...)
}

// Dump writes t into outputDir as <table name><extension>. The directory is
// created when absent. Without options the table is written as uncompressed CSV.
// Missing cells are written as empty fields (or nulls) and timestamps in
// TimestampLayout. Parquet and XLSX output is never compressed.
// Any failure yields an error matching ErrExport.
func (e *Exporter) Dump(ctx context.Context, t *Table, outputDir string, opts ...DumpOptions) (path string, err error) {
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	ec := NewErrorContext(stageExport, outputDir).WithTable(t.Name())
	start := time.Now()
	defer func() {
		e.Recorder.ObserveStage(stageExport, err, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return "", ec.Error(err, nil)
	}
	if t.Name() == "" {
		return "", ec.WithDetails("table name cannot be empty").Error(ErrExport, nil)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", ec.Error(ErrExport, fmt.Errorf("failed to create output directory: %w", err))
	}

	path = filepath.Join(outputDir, t.Name()+options.FileExtension())
	ec.FilePath = path

	switch options.Format {
	case OutputFormatCSV:
		err = writeCompressed(path, options.Compression, func(w io.Writer) error {
			return writeDelimited(w, t, csvDelimiter)
		})
	case OutputFormatTSV:
		err = writeCompressed(path, options.Compression, func(w io.Writer) error {
			return writeDelimited(w, t, tsvDelimiter)
		})
	case OutputFormatLTSV:
		err = writeCompressed(path, options.Compression, func(w io.Writer) error {
			return writeLTSV(w, t)
		})
	case OutputFormatXLSX:
		err = writeXLSX(path, t)
	case OutputFormatParquet:
		err = writeCompressed(path, CompressionNone, func(w io.Writer) error {
			return writeParquet(w, t)
		})
	default:
		err = fmt.Errorf("unsupported output format: %v", options.Format)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", ec.Error(ErrExport, err)
	}

	e.Recorder.AddRows(stageExport, metrics.KindExported, t.Len())
	return path, nil
}

// writeCompressed creates path, hands a (possibly compressing) writer to fn and
// flushes everything on return.
func writeCompressed(path string, compression CompressionType, fn func(io.Writer) error) error {
	w, err := createFile(path, compression)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// cellText returns the text written to text formats for v.
func cellText(v model.Value) string {
	if v.IsMissing() {
		return ""
	}
	return v.String()
}

// writeDelimited writes t as CSV or TSV with a header row.
func writeDelimited(w io.Writer, t *Table, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(t.Columns()))
	for _, row := range t.Rows() {
		for i, v := range row {
			record[i] = cellText(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ltsvEscaper replaces the characters that would split an LTSV record.
var ltsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// writeLTSV writes t as LTSV. Missing cells are omitted from their record.
func writeLTSV(w io.Writer, t *Table) error {
	header := t.Header()
	var sb strings.Builder
	for _, row := range t.Rows() {
		sb.Reset()
		first := true
		for i, v := range row {
			if v.IsMissing() {
				continue
			}
			if !first {
				sb.WriteByte('\t')
			}
			first = false
			sb.WriteString(header[i])
			sb.WriteByte(':')
			sb.WriteString(ltsvEscaper.Replace(v.String()))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// writeXLSX writes t to the first sheet of a new workbook at path.
func writeXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close() // Ignore close error
	}()

	sheet := f.GetSheetName(0)
	if err := setXLSXRow(f, sheet, 1, headerCells(t)); err != nil {
		return err
	}
	for i, row := range t.Rows() {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxCell(v)
		}
		if err := setXLSXRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func headerCells(t *Table) []any {
	cells := make([]any, 0, len(t.Columns()))
	for _, name := range t.Header() {
		cells = append(cells, name)
	}
	return cells
}

func setXLSXRow(f *excelize.File, sheet string, rowNum int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// xlsxCell converts v into a value excelize stores with a matching cell type.
// Timestamps are written as text so reading the sheet back yields the same layout.
func xlsxCell(v model.Value) any {
	switch v.Kind() {
	case model.KindMissing:
		return nil
	case model.KindInteger:
		f, _ := v.Float()
		return int64(f)
	case model.KindReal:
		f, _ := v.Float()
		return f
	default:
		return v.String()
	}
}

// parquetTimestampType is the arrow type used for timestamp columns.
var parquetTimestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// parquetSchema maps the table columns to a nullable arrow schema.
func parquetSchema(t *Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns()))
	for i, col := range t.Columns() {
		var dt arrow.DataType
		switch col.Type {
		case model.ColumnTypeInteger:
			dt = arrow.PrimitiveTypes.Int64
		case model.ColumnTypeReal:
			dt = arrow.PrimitiveTypes.Float64
		case model.ColumnTypeTimestamp:
			dt = parquetTimestampType
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: col.Name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// nopCloser hides Close from the parquet writer, which would otherwise close
// the file before the compression cleanup syncs it.
type nopCloser struct {
	io.Writer
}

// writeParquet writes t as a single Parquet row group.
func writeParquet(w io.Writer, t *Table) error {
	schema := parquetSchema(t)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, row := range t.Rows() {
		for j, v := range row {
			if err := appendParquetValue(builder.Field(j), v); err != nil {
				return fmt.Errorf("column %s: %w", schema.Field(j).Name, err)
			}
		}
	}
	rec := builder.NewRecord()
	defer rec.Release()

	fw, err := pqarrow.NewFileWriter(schema, nopCloser{w}, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	return fw.Close()
}

func appendParquetValue(b array.Builder, v model.Value) error {
	if v.IsMissing() {
		b.AppendNull()
		return nil
	}
	switch fb := b.(type) {
	case *array.Int64Builder:
		f, ok := v.Float()
		if !ok {
			return fmt.Errorf("non-numeric value %q", v.String())
		}
		fb.Append(int64(f))
	case *array.Float64Builder:
		f, ok := v.Float()
		if !ok {
			return fmt.Errorf("non-numeric value %q", v.String())
		}
		fb.Append(f)
	case *array.TimestampBuilder:
		ts, ok := v.Time()
		if !ok {
			return fmt.Errorf("non-timestamp value %q", v.String())
		}
		fb.Append(arrow.Timestamp(ts.UTC().UnixMicro()))
	case *array.StringBuilder:
		fb.Append(v.String())
	default:
		return errors.New("unsupported arrow builder")
	}
	return nil
}
