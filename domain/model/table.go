package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

// Row is one table record. Cells are positionally aligned with the table columns.
type Row []Value

// Equal compare Row.
func (r Row) Equal(r2 Row) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if !v.Equal(r2[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	return append(Row(nil), r...)
}

// Table is a named, ordered collection of columns and rows.
// Every row has exactly len(Columns()) cells.
type Table struct {
	name    string
	columns []Column
	rows    []Row
}

// NewTable create new Table. Rows shorter than the column list are padded with
// missing values and longer rows are truncated.
func NewTable(name string, columns []Column, rows []Row) *Table {
	cols := append([]Column(nil), columns...)
	normalized := make([]Row, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, fitRow(row, len(cols)))
	}
	return &Table{
		name:    name,
		columns: cols,
		rows:    normalized,
	}
}

// NewTableFromRecords builds a table from a header and raw text records.
// Column types are inferred from the records and each cell is parsed
// into a typed value.
func NewTableFromRecords(name string, header Header, records [][]string) *Table {
	columns := InferColumns(header, records)
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[i] = ParseValue(record[i], col.Type)
			}
		}
		rows = append(rows, row)
	}
	return &Table{
		name:    name,
		columns: columns,
		rows:    rows,
	}
}

func fitRow(row Row, width int) Row {
	if len(row) == width {
		return row.Clone()
	}
	fitted := make(Row, width)
	copy(fitted, row)
	return fitted
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Columns returns the column list.
func (t *Table) Columns() []Column {
	return t.columns
}

// Header return table header.
func (t *Table) Header() Header {
	header := make(Header, 0, len(t.columns))
	for _, col := range t.columns {
		header = append(header, col.Name)
	}
	return header
}

// Rows return table rows.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, col := range t.columns {
		if col.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	values := make([]Value, 0, len(t.rows))
	for _, row := range t.rows {
		values = append(values, row[idx])
	}
	return values, nil
}

// MapColumn replaces every cell of the named column with fn(cell) and sets the
// column type to typ. The table is modified in place.
func (t *Table) MapColumn(name string, typ ColumnType, fn func(Value) Value) error {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return err
	}
	for _, row := range t.rows {
		row[idx] = fn(row[idx])
	}
	t.columns[idx].Type = typ
	return nil
}

// Filter keeps only the rows for which keep returns true. Row order is preserved.
func (t *Table) Filter(keep func(Row) bool) {
	kept := t.rows[:0]
	for _, row := range t.rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	// release references held past the new length
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	rows := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, row.Clone())
	}
	return &Table{
		name:    t.name,
		columns: append([]Column(nil), t.columns...),
		rows:    rows,
	}
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.rows[:n]
}

// Equal reports whether two tables hold the same columns, column storage
// types and cells in the same order. Table names are not compared.
func (t *Table) Equal(t2 *Table) bool {
	if t2 == nil {
		return false
	}
	if len(t.columns) != len(t2.columns) {
		return false
	}
	for i, col := range t.columns {
		if col.Name != t2.columns[i].Name || col.Type.SQLType() != t2.columns[i].Type.SQLType() {
			return false
		}
	}
	if len(t.rows) != len(t2.rows) {
		return false
	}
	for i, row := range t.rows {
		if !row.Equal(t2.rows[i]) {
			return false
		}
	}
	return true
}

// Fingerprint returns a content hash over column names, storage types and cells.
// Tables that are Equal have the same fingerprint.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(s)
	}
	for _, col := range t.columns {
		writeString(col.Name)
		writeString(col.Type.SQLType())
	}
	for _, row := range t.rows {
		for _, v := range row {
			_, _ = h.Write([]byte{byte(v.Kind())})
			switch v.Kind() {
			case KindReal:
				f, _ := v.Float()
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
				_, _ = h.Write(buf[:])
			case KindTimestamp:
				ts, _ := v.Time()
				binary.LittleEndian.PutUint64(buf[:], uint64(ts.UnixNano()))
				_, _ = h.Write(buf[:])
			default:
				writeString(v.String())
			}
		}
	}
	return h.Sum64()
}

// TableFromFilePath creates table name from file path
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(fileName, ext) {
			fileName = strings.TrimSuffix(fileName, ext)
			break
		}
	}
	// Then remove the file type extension
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
