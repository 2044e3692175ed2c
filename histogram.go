package albumetl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// densityPoints is the number of points the density curve is evaluated at.
const densityPoints = 200

// HistogramBin is one equal-width bin of a histogram.
// Every bin is half-open [Lower, Upper) except the last, which is closed.
type HistogramBin struct {
	Lower float64
	Upper float64
	Count int
}

// DensityPoint is one point of a kernel density curve.
type DensityPoint struct {
	X float64
	Y float64
}

// ScoreDistribution describes the distribution of the present user scores
// of a table.
type ScoreDistribution struct {
	// Bins span the observed score range in ascending order.
	Bins []HistogramBin
	// Density is a Gaussian kernel density estimate scaled to bin counts.
	// It is empty when fewer than two distinct scores are present.
	Density []DensityPoint
	// N is the number of present scores.
	N int
	// Mean is the mean of the present scores, NaN when N is zero.
	Mean float64
}

// ScoreHistogram bins the present user scores of t into bins equal-width bins
// spanning the observed minimum and maximum. A single distinct score widens
// the range by 0.5 on each side; no scores at all yields empty bins over [0, 1].
// Missing scores are skipped. The density curve uses Scott's bandwidth and is
// evaluated over the observed range only.
func ScoreHistogram(t *Table, bins int) (*ScoreDistribution, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bin count must be positive, got %d", ErrRender, bins)
	}
	scores, err := presentScores(t, ColumnUserScore)
	if err != nil {
		return nil, err
	}

	dist := &ScoreDistribution{
		Bins: histogramBins(scores, bins),
		N:    len(scores),
		Mean: math.NaN(),
	}
	if len(scores) > 0 {
		dist.Mean = stat.Mean(scores, nil)
	}
	if distinctCount(scores) >= 2 {
		width := dist.Bins[0].Upper - dist.Bins[0].Lower
		dist.Density = scottDensity(scores, width)
	}
	return dist, nil
}

// presentScores returns the non-missing values of the named column as numbers.
func presentScores(t *Table, column string) ([]float64, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, NewErrorContext("score histogram", "").WithTable(t.Name()).Error(ErrColumnNotFound, err)
	}
	scores := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		f, err := numericValue(v)
		if err != nil {
			return nil, NewErrorContext("score histogram", "").WithTable(t.Name()).Error(ErrFormat, err)
		}
		scores = append(scores, f)
	}
	return scores, nil
}

// histogramBins counts xs into n equal-width bins.
func histogramBins(xs []float64, n int) []HistogramBin {
	lo, hi := 0.0, 1.0
	if len(xs) > 0 {
		lo, hi = floats.Min(xs), floats.Max(xs)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := floats.Span(make([]float64, n+1), lo, hi)
	out := make([]HistogramBin, n)
	for i := range out {
		out[i] = HistogramBin{Lower: edges[i], Upper: edges[i+1]}
	}

	for _, x := range xs {
		i := int((x - lo) / (hi - lo) * float64(n))
		// correct rounding against the actual edges
		if i >= n {
			i = n - 1
		}
		if i > 0 && x < edges[i] {
			i--
		}
		if i < n-1 && x >= edges[i+1] {
			i++
		}
		out[i].Count++
	}
	return out
}

// scottDensity evaluates a Gaussian KDE of xs on densityPoints points between
// the minimum and maximum of xs. The density is multiplied by len(xs) and
// binWidth so it is comparable to histogram counts.
func scottDensity(xs []float64, binWidth float64) []DensityPoint {
	n := float64(len(xs))
	bandwidth := stat.StdDev(xs, nil) * math.Pow(n, -1.0/5)
	if bandwidth == 0 || math.IsNaN(bandwidth) {
		return nil
	}

	grid := floats.Span(make([]float64, densityPoints), floats.Min(xs), floats.Max(xs))
	out := make([]DensityPoint, len(grid))
	for i, g := range grid {
		var sum float64
		for _, x := range xs {
			sum += distuv.UnitNormal.Prob((g - x) / bandwidth)
		}
		// sum/(n*h) is the density; scaling by n*binWidth leaves sum*binWidth/h
		out[i] = DensityPoint{X: g, Y: sum * binWidth / bandwidth}
	}
	return out
}

func distinctCount(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
