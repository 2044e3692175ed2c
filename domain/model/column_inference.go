package model

import (
	"strconv"
	"strings"
)

// InferColumnType infers the column type from a slice of raw cell values.
// Missing markers are skipped. Priority: TEXT > DATETIME > REAL > INTEGER.
// An integer column with missing cells becomes REAL, as a float column is the
// only numeric type that can hold a missing value.
func InferColumnType(values []string) ColumnType {
	if len(values) == 0 {
		return ColumnTypeText
	}

	hasDatetime := false
	hasReal := false
	hasInteger := false
	hasMissing := false

	for _, value := range values {
		if IsMissingMarker(value) {
			hasMissing = true
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			// whitespace-only text is not a number or a date
			return ColumnTypeText
		}

		// Check if it's a datetime first (before checking numbers)
		if isDatetime(value) {
			hasDatetime = true
			continue
		}

		// Try to parse as integer
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}

		// Try to parse as float
		if isFloat(value) {
			hasReal = true
			continue
		}

		// If any value is text, the whole column is text
		return ColumnTypeText
	}

	if hasDatetime {
		if hasReal || hasInteger {
			return ColumnTypeText
		}
		return ColumnTypeDatetime
	}
	if hasReal {
		return ColumnTypeReal
	}
	if hasInteger {
		if hasMissing {
			return ColumnTypeReal
		}
		return ColumnTypeInteger
	}

	// Default to TEXT if no values were found
	return ColumnTypeText
}

// isFloat checks if a value is a float. Spellings without digits such as
// "inf" stay text.
func isFloat(value string) bool {
	hasDigit := false
	for _, r := range value {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}

	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// InferColumns infers column information from header and raw records
func InferColumns(header Header, records [][]string) []Column {
	columnCount := len(header)
	if columnCount == 0 {
		return nil
	}

	columns := make([]Column, columnCount)
	for i, name := range header {
		var values []string
		for _, record := range records {
			if i < len(record) {
				values = append(values, record[i])
			}
		}
		columns[i] = NewColumn(name, InferColumnType(values))
	}
	return columns
}
