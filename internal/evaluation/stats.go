package evaluation

import (
	"math"
	"slices"
)

// Describe computes population statistics of values. An empty input yields
// all zeros.
func Describe(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean := Mean(sorted)
	var ss float64
	for _, v := range sorted {
		d := v - mean
		ss += d * d
	}

	median := Quantile(sorted, 0.5)
	return Statistics{
		Mean:      mean,
		Median:    median,
		StdDev:    math.Sqrt(ss / float64(len(sorted))),
		Min:       sorted[0],
		Max:       sorted[len(sorted)-1],
		Quartiles: [3]float64{Quantile(sorted, 0.25), median, Quantile(sorted, 0.75)},
	}
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Quantile returns the p-quantile of an ascending slice by linear
// interpolation between closest ranks (position p*(n-1)).
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// DenseRank ranks values 1..k with ties sharing a rank and no gaps.
// Ascending ranks the smallest value first.
func DenseRank(values []float64, ascending bool) []int {
	distinct := slices.Clone(values)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)
	if !ascending {
		slices.Reverse(distinct)
	}
	ranks := make([]int, len(values))
	for i, v := range values {
		if ascending {
			ranks[i], _ = slices.BinarySearch(distinct, v)
		} else {
			ranks[i], _ = slices.BinarySearchFunc(distinct, v, func(e, t float64) int {
				switch {
				case e > t:
					return -1
				case e < t:
					return 1
				}
				return 0
			})
		}
		ranks[i]++
	}
	return ranks
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
