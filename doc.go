// Package albumetl is a single-pass ETL for album review data: it reads
// album records from a file, cleans and filters them, stores the result in
// a SQLite table and renders descriptive charts of the data before and after
// cleaning.
//
// # Stages
//
// A run executes four stages once, in order, and stops at the first failure:
//
//   - Extract reads a CSV, TSV, LTSV, XLSX or Parquet file (optionally
//     compressed with gzip, bzip2, xz or zstandard) into a Table with
//     inferred column types.
//   - Transformer.Transform fills missing user scores with the mean score,
//     parses release dates, drops rows without a release date and keeps
//     albums scored above 75 and released after 2013.
//   - Load replaces a table of a SQLite file with the transformed rows.
//   - Reporter.Report writes a 20-bin score histogram with a density curve
//     and a chart of the 10 most common genres.
//
// # Basic Usage
//
//	p, err := albumetl.NewPipelineBuilder().
//	    SetInput("aoty.csv").
//	    SetDatabase("aoty_data.db", "albums").
//	    SetReport("reports", "png").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := p.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Transformed.Len())
//
// The stages are also usable on their own:
//
//	original, err := albumetl.Extract(ctx, "aoty.csv")
//	cleaned, err := albumetl.NewTransformer().Transform(ctx, original)
//	err = albumetl.Load(ctx, cleaned, "aoty_data.db", "albums")
//
// # Missing Values
//
// Cells holding the usual missing-value markers ("", "NA", "N/A", "NaN",
// "null", "None", ...) are missing. A column of whole numbers that contains a
// missing cell is read as REAL. Missing cells are stored as NULL.
//
// # Errors
//
// Errors match one of ErrNotFound, ErrFormat, ErrStorage, ErrRender,
// ErrExport, ErrInvalidPipeline or ErrColumnNotFound with errors.Is and carry
// the operation, file and table they occurred in.
package albumetl
