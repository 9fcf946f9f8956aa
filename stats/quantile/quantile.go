package quantile

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Errors returned by order-statistic functions.
var (
	ErrEmptyInput      = errors.New("quantile: empty input")
	ErrInvalidQuantile = errors.New("quantile: percentile must be in [0, 100]")
)

// madScale converts a median absolute deviation into a standard deviation
// estimate for normally distributed data.
const madScale = 1.4826

// Percentile returns the p-th percentile (0..100) of x using linear
// interpolation between the two closest ranks:
//
//	rank = p/100 * (n-1)
//	q    = s[floor(rank)] + (rank-floor(rank)) * (s[ceil(rank)] - s[floor(rank)])
func Percentile(x []float64, p float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantile, p)
	}

	s := slices.Clone(x)
	slices.Sort(s)
	return sortedPercentile(s, p), nil
}

// Median returns the 50th percentile of x.
func Median(x []float64) (float64, error) {
	return Percentile(x, 50)
}

// Min returns the smallest value in x.
func Min(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	return slices.Min(x), nil
}

// MAD returns the median absolute deviation from the median.
func MAD(x []float64) (float64, error) {
	med, err := Median(x)
	if err != nil {
		return 0, err
	}

	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}
	slices.Sort(dev)
	return sortedPercentile(dev, 50), nil
}

// RobustSigma returns MAD scaled to estimate the standard deviation of
// Gaussian noise.
func RobustSigma(x []float64) (float64, error) {
	mad, err := MAD(x)
	if err != nil {
		return 0, err
	}
	return madScale * mad, nil
}

func sortedPercentile(s []float64, p float64) float64 {
	rank := p / 100 * float64(len(s)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return s[lo]
	}
	frac := rank - float64(lo)
	return s[lo] + frac*(s[hi]-s[lo])
}
