package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the text form used when a timestamp is written to storage or files.
// Fractional seconds are written only when present.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// ValueKind is the kind of data held by a Value.
type ValueKind int

const (
	// KindMissing marks an absent value. It is the zero ValueKind.
	KindMissing ValueKind = iota
	// KindText is a string value
	KindText
	// KindInteger is a 64-bit integer value
	KindInteger
	// KindReal is a 64-bit floating point value
	KindReal
	// KindTimestamp is a calendar date with optional time of day
	KindTimestamp
)

// Value is a single table cell. The zero Value is missing, so tables never
// confuse an absent score with 0 or an absent date with the zero time.
type Value struct {
	kind ValueKind
	text string
	num  float64
	i64  int64
	when time.Time
}

// Missing returns a missing value.
func Missing() Value {
	return Value{}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Integer returns an integer value.
func Integer(i int64) Value {
	return Value{kind: KindInteger, i64: i}
}

// Real returns a real value. NaN is treated as missing.
func Real(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{kind: KindReal, num: f}
}

// Timestamp returns a timestamp value.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, when: t}
}

// Kind returns the kind of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Float returns the numeric value for integer and real values.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindReal:
		return v.num, true
	case KindInteger:
		return float64(v.i64), true
	default:
		return 0, false
	}
}

// Time returns the timestamp held by the value.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTimestamp {
		return time.Time{}, false
	}
	return v.when, true
}

// String returns the text form of the value. Missing values render as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.i64, 10)
	case KindReal:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTimestamp:
		return v.when.Format(TimestampLayout)
	default:
		return ""
	}
}

// Equal compares two values by kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindInteger:
		return v.i64 == o.i64
	case KindReal:
		return v.num == o.num
	case KindTimestamp:
		return v.when.Equal(o.when)
	default:
		return true
	}
}

// DriverValue converts the value into a database/sql argument.
func (v Value) DriverValue() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return v.i64
	case KindReal:
		return v.num
	case KindTimestamp:
		return v.when.Format(TimestampLayout)
	default:
		return nil
	}
}

// missingMarkers are the cell contents read as missing values, the same set
// pandas recognises by default.
var missingMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingMarker reports whether raw cell text denotes a missing value.
func IsMissingMarker(raw string) bool {
	_, ok := missingMarkers[raw]
	return ok
}

// ParseValue converts raw cell text into a Value of the given column type.
// Text that cannot be converted is kept as text, except for timestamps where
// unparseable dates become missing.
func ParseValue(raw string, typ ColumnType) Value {
	if IsMissingMarker(raw) {
		return Missing()
	}

	switch typ {
	case ColumnTypeInteger:
		if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return Integer(i)
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return Real(f)
		}
	case ColumnTypeReal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return Real(f)
		}
	case ColumnTypeTimestamp:
		if t, ok := ParseDate(raw); ok {
			return Timestamp(t)
		}
		return Missing()
	}
	return Text(raw)
}
