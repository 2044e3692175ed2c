package albumetl

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/albumetl/domain/model"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// ctxCheckInterval is how many records are read between context checks.
const ctxCheckInterval = 1024

// Extract reads the file at path into a table. The file format is chosen by
// extension (.csv, .tsv, .ltsv, .xlsx, .parquet), optionally followed by a
// compression extension (.gz, .bz2, .xz, .zst). Column types are inferred
// from the data; no rows are filtered or changed.
//
// A missing file yields an error matching ErrNotFound. Content that cannot be
// read as a table (empty file, rows longer than the header, bad quoting,
// duplicate column names, unsupported extension) yields ErrFormat.
func Extract(ctx context.Context, path string) (*Table, error) {
	ec := NewErrorContext("extract", path)
	if err := ctx.Err(); err != nil {
		return nil, ec.Error(err, nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ec.Error(ErrNotFound, err)
		}
		return nil, ec.Error(ErrFormat, err)
	}
	if info.IsDir() {
		return nil, ec.WithDetails("path is a directory").Error(ErrFormat, nil)
	}
	if !model.IsSupportedFile(path) {
		return nil, ec.WithDetails("unsupported file type").Error(ErrFormat, nil)
	}

	file := model.NewFile(path)
	reader, err := openFile(file)
	if err != nil {
		return nil, ec.Error(ErrFormat, err)
	}
	defer reader.Close()

	return extract(ctx, reader, file, ec)
}

// ExtractReader reads a table from r. fileName selects the format, the
// compression and the table name the same way a path does for Extract.
func ExtractReader(ctx context.Context, r io.Reader, fileName string) (*Table, error) {
	ec := NewErrorContext("extract", fileName)
	if r == nil {
		return nil, ec.WithDetails("reader cannot be nil").Error(ErrFormat, nil)
	}
	file := model.NewFile(fileName)
	if file.Type() == FileTypeUnsupported {
		return nil, ec.WithDetails("unsupported file type").Error(ErrFormat, nil)
	}

	reader, err := decodeFile(r, file)
	if err != nil {
		return nil, ec.Error(ErrFormat, err)
	}
	defer reader.Close()

	return extract(ctx, reader, file, ec)
}

// ExtractFS reads the named file from fsys. It is the fs.FS counterpart of Extract.
func ExtractFS(ctx context.Context, fsys fs.FS, name string) (*Table, error) {
	f, err := fsys.Open(name)
	if err != nil {
		ec := NewErrorContext("extract", name)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ec.Error(ErrNotFound, err)
		}
		return nil, ec.Error(ErrFormat, err)
	}
	defer f.Close()

	return ExtractReader(ctx, f, name)
}

func extract(ctx context.Context, r io.Reader, file *model.File, ec *ErrorContext) (*Table, error) {
	name := file.TableName()
	ec = ec.WithTable(name)

	var (
		table *Table
		err   error
	)
	switch file.Type() {
	case FileTypeCSV:
		table, err = parseDelimited(ctx, r, name, csvDelimiter)
	case FileTypeTSV:
		table, err = parseDelimited(ctx, r, name, tsvDelimiter)
	case FileTypeLTSV:
		table, err = parseLTSV(ctx, r, name)
	case FileTypeXLSX:
		table, err = parseXLSX(r, name)
	case FileTypeParquet:
		table, err = parseParquet(ctx, r, name)
	default:
		err = fmt.Errorf("unsupported file type: %s", file.Path())
	}
	if err != nil {
		return nil, ec.Error(ErrFormat, err)
	}
	return table, nil
}

// stripBOM removes a leading byte order mark. UTF-16 input with a BOM is
// decoded to UTF-8; anything else passes through unchanged.
func stripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// parseDelimited parses CSV or TSV data with the specified delimiter
func parseDelimited(ctx context.Context, r io.Reader, name string, delimiter rune) (*Table, error) {
	csvReader := csv.NewReader(stripBOM(r))
	csvReader.Comma = delimiter
	// Short rows are padded below; long rows are rejected
	csvReader.FieldsPerRecord = -1

	var header model.Header
	var records [][]string
	for line := 0; ; line++ {
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if header == nil {
			header = model.NewHeader(record)
			continue
		}
		if len(record) > len(header) {
			row, _ := csvReader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", row, len(header), len(record))
		}
		records = append(records, record)
	}

	if header == nil {
		return nil, errors.New("empty file")
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}
	return model.NewTableFromRecords(name, header, records), nil
}

// parseLTSV parses LTSV data. Columns appear in the order their labels are
// first seen; records lacking a label get a missing value.
func parseLTSV(ctx context.Context, r io.Reader, name string) (*Table, error) {
	content, err := io.ReadAll(stripBOM(r))
	if err != nil {
		return nil, err
	}

	var header model.Header
	seen := make(map[string]int)
	var records []map[string]string

	for i, line := range strings.Split(string(content), "\n") {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		record := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			record[key] = strings.TrimSpace(kv[1])
			if _, ok := seen[key]; !ok {
				seen[key] = len(header)
				header = append(header, key)
			}
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return nil, errors.New("no valid records found")
	}

	rows := make([][]string, 0, len(records))
	for _, recordMap := range records {
		row := make([]string, len(header))
		for key, val := range recordMap {
			row[seen[key]] = val
		}
		rows = append(rows, row)
	}
	return model.NewTableFromRecords(name, header, rows), nil
}

// parseXLSX parses the first sheet of an Excel workbook. The first row is the header.
func parseXLSX(r io.Reader, name string) (*Table, error) {
	xlsxFile, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, errors.New("no sheets found in Excel file")
	}

	sheetName := sheetNames[0]
	rows, err := xlsxFile.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheetName)
	}

	header := model.NewHeader(append([]string(nil), rows[0]...))
	if err := header.Validate(); err != nil {
		return nil, err
	}
	return model.NewTableFromRecords(name, header, rows[1:]), nil
}

// parseParquet parses Parquet data. Arrow column types decide the table
// column types; string columns are inferred from their contents.
func parseParquet(ctx context.Context, r io.Reader, name string) (*Table, error) {
	// Read all data into memory (Parquet requires random access)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty parquet file")
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader from bytes: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	arrowTable, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer arrowTable.Release()

	schema := arrowTable.Schema()
	header := make(model.Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	// raw[i][j] is the text of column j in row i; nulls[i][j] marks null cells
	var raw [][]string
	var nulls [][]bool
	tableReader := array.NewTableReader(arrowTable, 0)
	defer tableReader.Release()
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := 0; i < int(batch.NumRows()); i++ {
			row := make([]string, batch.NumCols())
			nullRow := make([]bool, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(i) {
					nullRow[j] = true
					continue
				}
				row[j] = col.ValueStr(i)
			}
			raw = append(raw, row)
			nulls = append(nulls, nullRow)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, fmt.Errorf("error reading table records: %w", err)
	}

	columns := make([]model.Column, len(header))
	for j, field := range schema.Fields() {
		columns[j] = model.NewColumn(field.Name, parquetColumnType(field.Type, raw, nulls, j))
	}

	rows := make([]model.Row, 0, len(raw))
	for i, rec := range raw {
		row := make(model.Row, len(columns))
		for j, col := range columns {
			if nulls[i][j] {
				continue
			}
			row[j] = model.ParseValue(rec[j], col.Type)
		}
		rows = append(rows, row)
	}
	return model.NewTable(name, columns, rows), nil
}

// parquetColumnType maps an arrow data type to a column type.
func parquetColumnType(dt arrow.DataType, raw [][]string, nulls [][]bool, j int) model.ColumnType {
	hasNull := false
	var values []string
	for i := range raw {
		if nulls[i][j] {
			hasNull = true
			continue
		}
		values = append(values, raw[i][j])
	}

	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		if hasNull {
			return model.ColumnTypeReal
		}
		return model.ColumnTypeInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return model.ColumnTypeReal
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return model.ColumnTypeTimestamp
	case arrow.STRING, arrow.LARGE_STRING:
		typ := model.InferColumnType(values)
		if hasNull && typ == model.ColumnTypeInteger {
			return model.ColumnTypeReal
		}
		return typ
	default:
		return model.ColumnTypeText
	}
}
