package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Parallel()

	t.Run("zero value is missing", func(t *testing.T) {
		t.Parallel()

		var v Value
		assert.True(t, v.IsMissing())
		assert.Equal(t, "", v.String())
		assert.Nil(t, v.DriverValue())
		_, ok := v.Float()
		assert.False(t, ok)
	})

	t.Run("NaN real is missing", func(t *testing.T) {
		t.Parallel()

		assert.True(t, Real(math.NaN()).IsMissing())
	})

	t.Run("integer converts to float", func(t *testing.T) {
		t.Parallel()

		f, ok := Integer(42).Float()
		require.True(t, ok)
		assert.Equal(t, 42.0, f)
		assert.Equal(t, "42", Integer(42).String())
	})

	t.Run("real string form", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "80.5", Real(80.5).String())
		assert.Equal(t, "80", Real(80).String())
	})

	t.Run("timestamp text form", func(t *testing.T) {
		t.Parallel()

		v := Timestamp(time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, "2015-03-01 00:00:00", v.String())
		assert.Equal(t, "2015-03-01 00:00:00", v.DriverValue())
		ts, ok := v.Time()
		require.True(t, ok)
		assert.Equal(t, 2015, ts.Year())

		frac := Timestamp(time.Date(2015, 3, 1, 10, 0, 0, 500_000_000, time.UTC))
		assert.Equal(t, "2015-03-01 10:00:00.5", frac.String())
		assert.Equal(t, "2015-03-01 10:00:00.5", frac.DriverValue())

		parsed, ok := ParseDate(frac.String())
		require.True(t, ok)
		assert.True(t, Timestamp(parsed).Equal(frac))
	})

	t.Run("equality depends on kind", func(t *testing.T) {
		t.Parallel()

		assert.True(t, Integer(1).Equal(Integer(1)))
		assert.False(t, Integer(1).Equal(Real(1)))
		assert.False(t, Text("1").Equal(Integer(1)))
		assert.True(t, Missing().Equal(Missing()))
		assert.False(t, Missing().Equal(Text("")))
	})
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		typ  ColumnType
		want Value
	}{
		{"missing marker", "NA", ColumnTypeReal, Missing()},
		{"empty text is missing", "", ColumnTypeText, Missing()},
		{"integer", "2015", ColumnTypeInteger, Integer(2015)},
		{"integer column with float text", "1.5", ColumnTypeInteger, Real(1.5)},
		{"real", "80.5", ColumnTypeReal, Real(80.5)},
		{"real from integer text", "80", ColumnTypeReal, Real(80)},
		{"text", "Rock, Pop", ColumnTypeText, Text("Rock, Pop")},
		{"datetime text stays verbatim", "2015-03-01", ColumnTypeDatetime, Text("2015-03-01")},
		{"timestamp", "2015-03-01", ColumnTypeTimestamp, Timestamp(time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC))},
		{"unparseable timestamp is missing", "someday", ColumnTypeTimestamp, Missing()},
		{"unparseable real stays text", "n.a.", ColumnTypeReal, Text("n.a.")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseValue(tt.raw, tt.typ)
			assert.True(t, tt.want.Equal(got), "want %v (%d), got %v (%d)", tt.want, tt.want.Kind(), got, got.Kind())
		})
	}
}

func TestIsMissingMarker(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "None", "<NA>", "#N/A"} {
		assert.True(t, IsMissingMarker(s), s)
	}
	for _, s := range []string{" ", "0", "none", "missing", "na"} {
		assert.False(t, IsMissingMarker(s), s)
	}
}
