// Package config loads albumetl settings.
//
// Settings start from built-in defaults, are overridden by an optional YAML
// file and then by environment variables prefixed with ALBUMETL__, where a
// double underscore separates nesting levels (ALBUMETL__DATABASE__TABLE).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/nao1215/albumetl/domain/model"
)

const (
	// DefaultFile is the configuration file read from the working directory.
	DefaultFile = "albumetl.yaml"
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "ALBUMETL__"

	envDelim = "__"
)

// ErrInvalidConfig indicates a configuration that cannot be loaded or fails validation.
var ErrInvalidConfig = errors.New("albumetl: invalid configuration")

// InputConfig locates the album file to extract.
type InputConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// DatabaseConfig names the SQLite file and the table that is replaced on load.
type DatabaseConfig struct {
	Path  string `koanf:"path" validate:"required"`
	Table string `koanf:"table" validate:"required"`
}

// TransformConfig holds the filter thresholds and the preview size.
type TransformConfig struct {
	ScoreThreshold float64 `koanf:"score_threshold" validate:"gte=0,lte=100"`
	YearThreshold  int     `koanf:"year_threshold" validate:"gte=0"`
	PreviewRows    int     `koanf:"preview_rows" validate:"gte=0"`
}

// ReportConfig controls where charts go and how they are drawn.
type ReportConfig struct {
	Dir       string `koanf:"dir" validate:"required"`
	Format    string `koanf:"format" validate:"oneof=png svg pdf"`
	Bins      int    `koanf:"bins" validate:"min=1"`
	TopGenres int    `koanf:"top_genres" validate:"min=1"`
}

// ExportConfig controls the optional snapshot of the transformed table.
// An empty Dir disables the export.
type ExportConfig struct {
	Dir         string `koanf:"dir"`
	Format      string `koanf:"format" validate:"omitempty,oneof=csv tsv ltsv xlsx parquet"`
	Compression string `koanf:"compression" validate:"omitempty,oneof=none gz gzip xz zst zstd"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `koanf:"json"`
}

// MetricsConfig controls the Prometheus textfile. An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// Config holds every albumetl setting.
type Config struct {
	Input     InputConfig     `koanf:"input"`
	Database  DatabaseConfig  `koanf:"database"`
	Transform TransformConfig `koanf:"transform"`
	Report    ReportConfig    `koanf:"report"`
	Export    ExportConfig    `koanf:"export"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Input:    InputConfig{Path: "aoty.csv"},
		Database: DatabaseConfig{Path: "aoty_data.db", Table: "albums"},
		Transform: TransformConfig{
			ScoreThreshold: 75,
			YearThreshold:  2013,
			PreviewRows:    5,
		},
		Report: ReportConfig{
			Dir:       "reports",
			Format:    "png",
			Bins:      20,
			TopGenres: 10,
		},
		Export: ExportConfig{Format: "csv", Compression: "none"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load merges the YAML file at path (if present) and the ALBUMETL__
// environment variables over Default, then validates the result.
// An empty path skips the file.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, envDelim, envKey), nil); err != nil {
		return Config{}, fmt.Errorf("%w: read environment: %w", ErrInvalidConfig, err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps ALBUMETL__DATABASE__TABLE to database__table.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// DumpOptions converts the export settings into dump options.
func (e ExportConfig) DumpOptions() (model.DumpOptions, error) {
	format, err := model.ParseOutputFormat(e.Format)
	if err != nil {
		return model.DumpOptions{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	compression, err := model.ParseCompressionType(e.Compression)
	if err != nil {
		return model.DumpOptions{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return model.NewDumpOptions().WithFormat(format).WithCompression(compression), nil
}

// Enabled reports whether a snapshot should be written.
func (e ExportConfig) Enabled() bool {
	return e.Dir != ""
}
