package albumetl_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/albumetl"
)

const albums = `title,user_score,release_date,genres
Blue Hour,80,2015-03-01,"Rock,Indie"
Night Drive,60,2016-01-01,Pop
Quiet Rooms,,2020-01-01,Rock
Old Tapes,91,2009-07-21,"Jazz,Rock"
`

// ExampleTransformer_Transform fills the missing score with the mean score
// (77), drops albums scored 75 or lower and albums released in 2013 or earlier.
func ExampleTransformer_Transform() {
	ctx := context.Background()

	original, err := albumetl.ExtractReader(ctx, strings.NewReader(albums), "aoty.csv")
	if err != nil {
		log.Fatal(err)
	}

	cleaned, err := albumetl.NewTransformer().Transform(ctx, original)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d of %d albums kept\n", cleaned.Len(), original.Len())
	for _, row := range cleaned.Rows() {
		fmt.Println(row[0], row[1], row[2])
	}
	// Output:
	// 2 of 4 albums kept
	// Blue Hour 80 2015-03-01 00:00:00
	// Quiet Rooms 77 2020-01-01 00:00:00
}

// ExampleTopGenres counts every comma separated genre once per album.
func ExampleTopGenres() {
	table, err := albumetl.ExtractReader(context.Background(), strings.NewReader(albums), "aoty.csv")
	if err != nil {
		log.Fatal(err)
	}

	top, err := albumetl.TopGenres(table, 2)
	if err != nil {
		log.Fatal(err)
	}
	for _, g := range top {
		fmt.Printf("%s: %d\n", g.Genre, g.Count)
	}
	// Output:
	// Rock: 3
	// Indie: 1
}

// ExampleScoreHistogram bins the present scores over their observed range.
func ExampleScoreHistogram() {
	table, err := albumetl.ExtractReader(context.Background(), strings.NewReader(albums), "aoty.csv")
	if err != nil {
		log.Fatal(err)
	}

	dist, err := albumetl.ScoreHistogram(table, 3)
	if err != nil {
		log.Fatal(err)
	}
	for _, b := range dist.Bins {
		fmt.Printf("%.1f-%.1f: %d\n", b.Lower, b.Upper, b.Count)
	}
	fmt.Printf("mean of %d scores: %.1f\n", dist.N, dist.Mean)
	// Output:
	// 60.0-70.3: 1
	// 70.3-80.7: 1
	// 80.7-91.0: 1
	// mean of 3 scores: 77.0
}

// ExampleLoad stores a cleaned table in SQLite and reads it back.
func ExampleLoad() {
	tmpDir, err := os.MkdirTemp("", "albumetl_example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	original, err := albumetl.ExtractReader(ctx, strings.NewReader(albums), "aoty.csv")
	if err != nil {
		log.Fatal(err)
	}
	cleaned, err := albumetl.NewTransformer().Transform(ctx, original)
	if err != nil {
		log.Fatal(err)
	}

	dbPath := filepath.Join(tmpDir, "aoty_data.db")
	if err := albumetl.Load(ctx, cleaned, dbPath, "albums"); err != nil {
		log.Fatal(err)
	}

	stored, err := albumetl.LoadTable(ctx, dbPath, "albums")
	if err != nil {
		log.Fatal(err)
	}
	for _, col := range stored.Columns() {
		fmt.Println(col.Name, col.Type)
	}
	fmt.Println(stored.Len(), "rows")
	// Output:
	// title TEXT
	// user_score REAL
	// release_date TIMESTAMP
	// genres TEXT
	// 2 rows
}

// ExampleDump writes a gzip compressed TSV snapshot named after the table.
func ExampleDump() {
	tmpDir, err := os.MkdirTemp("", "albumetl_example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	table, err := albumetl.ExtractReader(context.Background(), strings.NewReader(albums), "aoty.csv")
	if err != nil {
		log.Fatal(err)
	}

	opts := albumetl.NewDumpOptions().
		WithFormat(albumetl.OutputFormatTSV).
		WithCompression(albumetl.CompressionGZ)
	path, err := albumetl.Dump(context.Background(), table, tmpDir, opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(filepath.Base(path))
	// Output:
	// aoty.tsv.gz
}
