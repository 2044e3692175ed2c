package albumetl

import "github.com/nao1215/albumetl/domain/model"

// Column names the pipeline works on.
const (
	// ColumnUserScore holds the 0-100 listener score
	ColumnUserScore = "user_score"
	// ColumnReleaseDate holds the album release date
	ColumnReleaseDate = "release_date"
	// ColumnGenres holds comma separated genre names
	ColumnGenres = "genres"
)

// Default pipeline parameters.
const (
	// DefaultInputPath is the file read when no input is configured
	DefaultInputPath = "aoty.csv"
	// DefaultDatabasePath is the SQLite file written when none is configured
	DefaultDatabasePath = "aoty_data.db"
	// DefaultTableName is the table the transformed albums are stored in
	DefaultTableName = "albums"
	// DefaultReportDir is the directory chart files are written to
	DefaultReportDir = "reports"
	// DefaultScoreThreshold is the exclusive lower bound for kept user scores
	DefaultScoreThreshold = 75.0
	// DefaultYearThreshold is the exclusive lower bound for kept release years
	DefaultYearThreshold = 2013
	// DefaultPreviewRows is the number of rows printed after the transform
	DefaultPreviewRows = 5
	// DefaultHistogramBins is the number of score histogram bins
	DefaultHistogramBins = 20
	// DefaultTopGenres is the number of genres shown in the genre chart
	DefaultTopGenres = 10
)

type (
	// Table is an in-memory table of album records
	Table = model.Table
	// Row is one table record
	Row = model.Row
	// Value is one table cell
	Value = model.Value
	// Column is a named, typed column
	Column = model.Column
	// ColumnType is the semantic type of a column
	ColumnType = model.ColumnType
	// FileType is a supported input file format
	FileType = model.FileType
	// OutputFormat represents the output file format
	OutputFormat = model.OutputFormat
	// CompressionType represents the compression type
	CompressionType = model.CompressionType
	// DumpOptions represents options for exporting a table to a file
	DumpOptions = model.DumpOptions
)

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV = model.FileTypeCSV
	// FileTypeTSV represents TSV file type
	FileTypeTSV = model.FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV = model.FileTypeLTSV
	// FileTypeXLSX represents Excel workbook file type
	FileTypeXLSX = model.FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet = model.FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported = model.FileTypeUnsupported
)

const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV = model.OutputFormatCSV
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV = model.OutputFormatTSV
	// OutputFormatLTSV represents LTSV output format
	OutputFormatLTSV = model.OutputFormatLTSV
	// OutputFormatXLSX represents Excel workbook output format
	OutputFormatXLSX = model.OutputFormatXLSX
	// OutputFormatParquet represents Parquet output format
	OutputFormatParquet = model.OutputFormatParquet
)

const (
	// CompressionNone represents no compression
	CompressionNone = model.CompressionNone
	// CompressionGZ represents gzip compression
	CompressionGZ = model.CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2 = model.CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ = model.CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD = model.CompressionZSTD
)

// NewDumpOptions creates new DumpOptions with default values (CSV format, no compression)
var NewDumpOptions = model.NewDumpOptions
