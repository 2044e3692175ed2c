package model

import (
	"fmt"
	"strings"
)

// Header is table header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Validate checks for duplicate column names.
// Column name comparison is case-sensitive after trimming whitespace.
func (h Header) Validate() error {
	seen := make(map[string]bool, len(h))
	for _, col := range h {
		trimmed := strings.TrimSpace(col)
		if seen[trimmed] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, col)
		}
		seen[trimmed] = true
	}
	return nil
}

// ColumnType represents the semantic type of a column
type ColumnType int

const (
	// ColumnTypeText represents TEXT column type
	ColumnTypeText ColumnType = iota
	// ColumnTypeInteger represents INTEGER column type
	ColumnTypeInteger
	// ColumnTypeReal represents REAL column type
	ColumnTypeReal
	// ColumnTypeDatetime represents date-like text stored as TEXT
	ColumnTypeDatetime
	// ColumnTypeTimestamp represents parsed calendar dates stored as TIMESTAMP
	ColumnTypeTimestamp
)

const (
	sqlTypeText      = "TEXT"
	sqlTypeInteger   = "INTEGER"
	sqlTypeReal      = "REAL"
	sqlTypeTimestamp = "TIMESTAMP"
)

// SQLType returns the SQLite declared type for the column type
func (ct ColumnType) SQLType() string {
	switch ct {
	case ColumnTypeInteger:
		return sqlTypeInteger
	case ColumnTypeReal:
		return sqlTypeReal
	case ColumnTypeTimestamp:
		return sqlTypeTimestamp
	case ColumnTypeText, ColumnTypeDatetime:
		return sqlTypeText // raw date-like text is kept verbatim
	default:
		return sqlTypeText
	}
}

// String returns the SQL column type string
func (ct ColumnType) String() string {
	return ct.SQLType()
}

// IsNumeric reports whether values of this column type are numbers.
func (ct ColumnType) IsNumeric() bool {
	return ct == ColumnTypeInteger || ct == ColumnTypeReal
}

// ColumnTypeFromSQL maps a declared SQLite column type back to a ColumnType.
// The mapping follows SQLite's affinity rules.
func ColumnTypeFromSQL(decl string) ColumnType {
	decl = strings.ToUpper(strings.TrimSpace(decl))
	switch {
	case decl == sqlTypeTimestamp || decl == "DATETIME" || decl == "DATE":
		return ColumnTypeTimestamp
	case strings.Contains(decl, "INT"):
		return ColumnTypeInteger
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "CLOB"), strings.Contains(decl, "TEXT"):
		return ColumnTypeText
	case strings.Contains(decl, "REAL"), strings.Contains(decl, "FLOA"), strings.Contains(decl, "DOUB"):
		return ColumnTypeReal
	default:
		return ColumnTypeText
	}
}

// Column represents column information with name and type
type Column struct {
	Name string
	Type ColumnType
}

// NewColumn creates a new Column.
func NewColumn(name string, typ ColumnType) Column {
	return Column{Name: name, Type: typ}
}
