package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpOptions_FileExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		options  DumpOptions
		expected string
	}{
		{"default", NewDumpOptions(), ".csv"},
		{"tsv gzip", NewDumpOptions().WithFormat(OutputFormatTSV).WithCompression(CompressionGZ), ".tsv.gz"},
		{"ltsv zstd", NewDumpOptions().WithFormat(OutputFormatLTSV).WithCompression(CompressionZSTD), ".ltsv.zst"},
		{"csv xz", NewDumpOptions().WithCompression(CompressionXZ), ".csv.xz"},
		{"xlsx ignores compression", NewDumpOptions().WithFormat(OutputFormatXLSX).WithCompression(CompressionGZ), ".xlsx"},
		{"parquet ignores compression", NewDumpOptions().WithFormat(OutputFormatParquet).WithCompression(CompressionBZ2), ".parquet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.options.FileExtension())
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]OutputFormat{
		"":        OutputFormatCSV,
		"csv":     OutputFormatCSV,
		"TSV":     OutputFormatTSV,
		"ltsv":    OutputFormatLTSV,
		"xlsx":    OutputFormatXLSX,
		"parquet": OutputFormatParquet,
	} {
		got, err := ParseOutputFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
		if name != "" {
			assert.Equal(t, want.String(), got.String())
		}
	}

	_, err := ParseOutputFormat("json")
	assert.Error(t, err)
}

func TestParseCompressionType(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]CompressionType{
		"":      CompressionNone,
		"none":  CompressionNone,
		"gz":    CompressionGZ,
		"gzip":  CompressionGZ,
		"bz2":   CompressionBZ2,
		"xz":    CompressionXZ,
		"zstd":  CompressionZSTD,
		"zst":   CompressionZSTD,
		" GZ  ": CompressionGZ,
	} {
		got, err := ParseCompressionType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseCompressionType("lz4")
	assert.Error(t, err)
}
