package insights

import (
	"math"
	"sort"
)

// Stats holds descriptive statistics for one metric over a sample.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	N      int     `json:"n"`
}

// ComputeStats computes mean and nearest-rank percentiles over values. The
// percentile at p is the element at floor(p/100*n), clamped to n-1; it is
// always drawn from the input set, never interpolated. Downstream consumers
// depend on this exact tie-break, so it must not be "fixed" to a standard
// interpolating definition. An empty sample yields all-zero stats.
func ComputeStats(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, v := range sorted {
		d := v - mean
		sqDiff += d * d
	}
	stdDev := math.Sqrt(sqDiff / float64(n))

	return Stats{
		Mean:   mean,
		Median: percentile(sorted, 50),
		StdDev: stdDev,
		P25:    percentile(sorted, 25),
		P50:    percentile(sorted, 50),
		P75:    percentile(sorted, 75),
		P90:    percentile(sorted, 90),
		N:      n,
	}
}

// percentile expects sorted ascending input.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(p / 100 * float64(len(sorted))))
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// PercentileOf reports the percentile rank of score within values: the share
// of the sample strictly below it, as a 0-100 value. An empty sample yields 0.
func PercentileOf(values []float64, score float64) float64 {
	if len(values) == 0 {
		return 0
	}
	below := 0
	for _, v := range values {
		if v < score {
			below++
		}
	}
	return math.Floor(float64(below) / float64(len(values)) * 100)
}
