package albumetl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/nao1215/albumetl/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile writes content to name inside a fresh temporary directory.
func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func date(y int, m time.Month, d int) model.Value {
	return model.Timestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// sampleAlbums is a small table shaped like cleaned album data.
func sampleAlbums() *Table {
	return model.NewTable("albums",
		[]model.Column{
			model.NewColumn("title", model.ColumnTypeText),
			model.NewColumn(ColumnUserScore, model.ColumnTypeReal),
			model.NewColumn(ColumnReleaseDate, model.ColumnTypeTimestamp),
			model.NewColumn(ColumnGenres, model.ColumnTypeText),
		},
		[]model.Row{
			{model.Text("Blue Hour"), model.Real(81.5), date(2015, time.March, 1), model.Text("Rock,Indie")},
			{model.Text("Night Drive"), model.Real(90), date(2018, time.June, 12), model.Text("Synthpop")},
			{model.Text("Quiet Rooms"), model.Real(77), date(2020, time.January, 31), model.Missing()},
		})
}

func TestExtractCSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "aoty.csv", []byte(
		"title,user_score,release_date,genres\n"+
			"A,80,2015-03-01,\"Rock,Indie\"\n"+
			"B,,2016-01-01,Pop\n"+
			"C,72.5,not a date,\n"))

	table, err := Extract(t.Context(), path)
	require.NoError(t, err)

	assert.Equal(t, "aoty", table.Name())
	assert.Equal(t, model.Header{"title", ColumnUserScore, ColumnReleaseDate, ColumnGenres}, table.Header())
	assert.Equal(t, 3, table.Len())

	types := make([]model.ColumnType, 0, 4)
	for _, col := range table.Columns() {
		types = append(types, col.Type)
	}
	assert.Equal(t, []model.ColumnType{
		model.ColumnTypeText, model.ColumnTypeReal, model.ColumnTypeText, model.ColumnTypeText,
	}, types)

	scores, err := table.Column(ColumnUserScore)
	require.NoError(t, err)
	assert.True(t, scores[0].Equal(model.Real(80)))
	assert.True(t, scores[1].IsMissing())
	assert.True(t, scores[2].Equal(model.Real(72.5)))

	genres, err := table.Column(ColumnGenres)
	require.NoError(t, err)
	assert.Equal(t, "Rock,Indie", genres[0].String())
	assert.True(t, genres[2].IsMissing())
}

func TestExtractIntegerColumn(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "scores.csv", []byte("user_score\n80\n75\n"))
	table, err := Extract(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, model.ColumnTypeInteger, table.Columns()[0].Type)
}

func TestExtractShortRowsArePadded(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "aoty.csv", []byte("title,user_score,genres\nA,80\n"))
	table, err := Extract(t.Context(), path)
	require.NoError(t, err)

	require.Equal(t, 1, table.Len())
	assert.True(t, table.Rows()[0][2].IsMissing())
}

func TestExtractFormats(t *testing.T) {
	t.Parallel()

	plain, err := Extract(t.Context(), writeFile(t, "aoty.csv", []byte(albumCSV)))
	require.NoError(t, err)

	tests := []struct {
		name    string
		content []byte
	}{
		{"aoty.tsv", []byte("title\tuser_score\trelease_date\tgenres\nA\t80\t2015-03-01\tRock,Indie\nB\t60\t2016-01-01\tPop\n")},
		{"aoty.ltsv", []byte("title:A\tuser_score:80\trelease_date:2015-03-01\tgenres:Rock,Indie\ntitle:B\tuser_score:60\trelease_date:2016-01-01\tgenres:Pop\n")},
		{"aoty.csv.gz", compress(t, CompressionGZ, []byte(albumCSV))},
		{"aoty.csv.xz", compress(t, CompressionXZ, []byte(albumCSV))},
		{"aoty.csv.zst", compress(t, CompressionZSTD, []byte(albumCSV))},
		{"aoty.csv", append([]byte("\xEF\xBB\xBF"), albumCSV...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := Extract(t.Context(), writeFile(t, tt.name, tt.content))
			require.NoError(t, err)
			assert.Equal(t, "aoty", table.Name())
			assert.True(t, plain.Equal(table), "got header %v", table.Header())
		})
	}
}

func TestExtractSnapshotFormats(t *testing.T) {
	t.Parallel()

	want := sampleAlbums()

	t.Run("parquet keeps column types", func(t *testing.T) {
		t.Parallel()

		path, err := Dump(t.Context(), want, t.TempDir(), NewDumpOptions().WithFormat(OutputFormatParquet))
		require.NoError(t, err)

		got, err := Extract(t.Context(), path)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "parquet round trip changed the table: %v", got.Rows())
	})

	t.Run("xlsx", func(t *testing.T) {
		t.Parallel()

		path, err := Dump(t.Context(), want, t.TempDir(), NewDumpOptions().WithFormat(OutputFormatXLSX))
		require.NoError(t, err)

		got, err := Extract(t.Context(), path)
		require.NoError(t, err)
		assert.Equal(t, want.Header(), got.Header())
		require.Equal(t, want.Len(), got.Len())

		scores, err := got.Column(ColumnUserScore)
		require.NoError(t, err)
		f, ok := scores[0].Float()
		require.True(t, ok)
		assert.InDelta(t, 81.5, f, 1e-9)

		dates, err := got.Column(ColumnReleaseDate)
		require.NoError(t, err)
		ts, ok := model.ParseDate(dates[1].String())
		require.True(t, ok)
		assert.Equal(t, 2018, ts.Year())
	})
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path func(t *testing.T) string
		want error
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "aoty.csv") },
			want: ErrNotFound,
		},
		{
			name: "empty file",
			path: func(t *testing.T) string { return writeFile(t, "aoty.csv", nil) },
			want: ErrFormat,
		},
		{
			name: "row longer than header",
			path: func(t *testing.T) string { return writeFile(t, "aoty.csv", []byte("a,b\n1,2,3\n")) },
			want: ErrFormat,
		},
		{
			name: "unterminated quote",
			path: func(t *testing.T) string { return writeFile(t, "aoty.csv", []byte("a,b\n\"1,2\n")) },
			want: ErrFormat,
		},
		{
			name: "duplicate column",
			path: func(t *testing.T) string { return writeFile(t, "aoty.csv", []byte("a,a\n1,2\n")) },
			want: model.ErrDuplicateColumnName,
		},
		{
			name: "unsupported extension",
			path: func(t *testing.T) string { return writeFile(t, "aoty.json", []byte("{}")) },
			want: ErrFormat,
		},
		{
			name: "directory",
			path: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "aoty.csv")
				require.NoError(t, os.Mkdir(dir, 0o750))
				return dir
			},
			want: ErrFormat,
		},
		{
			name: "corrupt gzip",
			path: func(t *testing.T) string { return writeFile(t, "aoty.csv.gz", []byte("plain text")) },
			want: ErrFormat,
		},
		{
			name: "ltsv without pairs",
			path: func(t *testing.T) string { return writeFile(t, "aoty.ltsv", []byte("no pairs here\n")) },
			want: ErrFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(t.Context(), tt.path(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractDuplicateColumnIsFormatError(t *testing.T) {
	t.Parallel()

	_, err := Extract(t.Context(), writeFile(t, "aoty.csv", []byte("a, a\n1,2\n")))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestExtractCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := Extract(ctx, writeFile(t, "aoty.csv", []byte(albumCSV)))
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrFormat)

	// noticed by the row parser
	_, err = ExtractReader(ctx, bytes.NewReader([]byte(albumCSV)), "aoty.csv")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrFormat)
}

func TestExtractReader(t *testing.T) {
	t.Parallel()

	table, err := ExtractReader(t.Context(), bytes.NewReader(compress(t, CompressionGZ, []byte(albumCSV))), "upload.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, "upload", table.Name())
	assert.Equal(t, 2, table.Len())

	_, err = ExtractReader(t.Context(), nil, "upload.csv")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = ExtractReader(t.Context(), bytes.NewReader(nil), "upload.txt")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestExtractFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"data/aoty.csv": &fstest.MapFile{Data: []byte(albumCSV)},
	}

	table, err := ExtractFS(t.Context(), fsys, "data/aoty.csv")
	require.NoError(t, err)
	assert.Equal(t, "aoty", table.Name())
	assert.Equal(t, 2, table.Len())

	_, err = ExtractFS(t.Context(), fsys, "data/missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}
