// Package model provides the domain model for albumetl
package model

import "errors"

var (
	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrColumnNotFound is returned when a table does not have a requested column
	ErrColumnNotFound = errors.New("column not found")
)
