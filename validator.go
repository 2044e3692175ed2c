package albumetl

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/nao1215/albumetl/domain/model"
)

// validator handles validation logic for PipelineBuilder
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validateInput validates the input path. Existence is not checked so that a
// missing file is reported by the extract stage.
func (v *validator) validateInput(path string, fromFS bool) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("input path cannot be empty")
	}
	if !model.IsSupportedFile(path) {
		return fmt.Errorf("unsupported file type: %s", path)
	}
	if fromFS {
		return nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("input path is a directory: %s", path)
	}
	return nil
}

// validateDatabase validates the SQLite file and table name
func (v *validator) validateDatabase(dbPath, tableName string) error {
	if strings.TrimSpace(dbPath) == "" {
		return errors.New("database path cannot be empty")
	}
	if strings.TrimSpace(tableName) == "" {
		return errors.New("table name cannot be empty")
	}
	if info, err := os.Stat(dbPath); err == nil && info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", dbPath)
	}
	return nil
}

// validateThresholds validates the transform settings
func (v *validator) validateThresholds(score float64, year, previewRows int) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("score threshold must be finite, got %v", score)
	}
	if year < 0 {
		return fmt.Errorf("year threshold cannot be negative, got %d", year)
	}
	if previewRows < 0 {
		return fmt.Errorf("preview rows cannot be negative, got %d", previewRows)
	}
	return nil
}

// validateOutputDirectory validates that the output directory can be created/accessed
func (v *validator) validateOutputDirectory(outputDir string) error {
	// An empty directory means the output is disabled
	if outputDir == "" {
		return nil
	}

	// Check if directory already exists
	if info, err := os.Stat(outputDir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("output path exists but is not a directory: %s", outputDir)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check output directory: %w", err)
	}

	// Directory doesn't exist, that's fine - it will be created later
	return nil
}

// validateExportOptions rejects combinations Dump cannot write
func (v *validator) validateExportOptions(outputDir string, opts DumpOptions) error {
	if outputDir == "" {
		return nil
	}
	if opts.Format.SupportsCompression() && opts.Compression == CompressionBZ2 {
		return errors.New("bzip2 compression is not supported for writing")
	}
	return nil
}
