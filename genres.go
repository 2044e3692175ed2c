package albumetl

import (
	"slices"
	"strings"
)

// GenreCount is the number of albums tagged with one genre.
type GenreCount struct {
	Genre string
	Count int
}

// GenreCounts splits every present genres cell of t on commas and counts each
// token once per occurrence. Tokens are kept verbatim, so " Indie" and "Indie"
// are different genres and an empty token is counted as the empty genre.
// The result is ordered by descending count; ties keep the order in which the
// genres were first seen.
func GenreCounts(t *Table) ([]GenreCount, error) {
	values, err := t.Column(ColumnGenres)
	if err != nil {
		return nil, NewErrorContext("genre counts", "").WithTable(t.Name()).Error(ErrColumnNotFound, err)
	}

	index := make(map[string]int)
	var counts []GenreCount
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		for _, genre := range strings.Split(v.String(), ",") {
			i, ok := index[genre]
			if !ok {
				i = len(counts)
				index[genre] = i
				counts = append(counts, GenreCount{Genre: genre})
			}
			counts[i].Count++
		}
	}

	slices.SortStableFunc(counts, func(a, b GenreCount) int {
		return b.Count - a.Count
	})
	return counts, nil
}

// TopGenres returns at most n of the most common genres of t, ordered as GenreCounts.
func TopGenres(t *Table, n int) ([]GenreCount, error) {
	counts, err := GenreCounts(t)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts, nil
}
