package peak

import (
	"fmt"

	"github.com/cwbudde/algo-peak/dsp/diff"
	"github.com/cwbudde/algo-peak/stats/quantile"
)

// baselinePercentile is the flank percentile taken as the local baseline.
const baselinePercentile = 20

// Boundary delimits a peak for integration.
type Boundary struct {
	LeftTime  float64
	RightTime float64

	LeftIndex  int
	RightIndex int
	// SeedLeft and SeedRight are the inflection seeds the extension
	// started from.
	SeedLeft  int
	SeedRight int

	Baseline  float64
	Threshold float64
	// ApexIntensity is the re-smoothed intensity at the apex index.
	ApexIntensity float64
}

// ExtendBoundaries finds the left and right boundary times of the peak at
// apexIndex.
//
// intensities is re-smoothed with a fixed window of BoundaryWindow samples
// and cubic order, independent of the window Smooth picked. The detection
// pipeline passes the output of Smooth here, so the boundary stage sees a
// twice smoothed trace; boundary positions depend on that smoothing
// strength.
//
// The seeds are the nearest sign changes of the second derivative on each
// side of the apex (0 and n-1 when there are none). Each side then walks
// outward while the smoothed intensity exceeds
//
//	baseline + fractionOfApex*(apex-baseline)
//
// moving at most maxExtension samples past its seed.
func ExtendBoundaries(times, intensities []float64, apexIndex int, fractionOfApex float64, maxExtension int) (Boundary, error) {
	n := len(times)
	if len(intensities) != n {
		return Boundary{}, fmt.Errorf("%w: times/intensities length mismatch (%d vs %d)",
			ErrInvalidInput, n, len(intensities))
	}
	if n < BoundaryWindow {
		return Boundary{}, fmt.Errorf("%w: boundary detection needs at least %d samples, got %d",
			ErrInvalidInput, BoundaryWindow, n)
	}
	if apexIndex < 0 || apexIndex >= n {
		return Boundary{}, fmt.Errorf("%w: apex index %d out of range [0, %d)", ErrInvalidInput, apexIndex, n)
	}
	if err := validateFraction(fractionOfApex); err != nil {
		return Boundary{}, err
	}
	if err := validateMaxExtension(maxExtension); err != nil {
		return Boundary{}, err
	}

	f, err := filterFor(BoundaryWindow, PolyOrder)
	if err != nil {
		return Boundary{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	sm, err := f.Apply(intensities)
	if err != nil {
		return Boundary{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	second, err := diff.SecondDerivative(sm, times)
	if err != nil {
		return Boundary{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	seedLeft, seedRight := InflectionSeeds(diff.SignChanges(second), apexIndex, n)

	baseline := Baseline(sm, seedLeft, seedRight, maxExtension)
	threshold := Threshold(baseline, sm[apexIndex], fractionOfApex)

	left := ExtendLeft(sm, seedLeft, threshold, maxExtension)
	right := ExtendRight(sm, seedRight, threshold, maxExtension)

	return Boundary{
		LeftTime:      times[left],
		RightTime:     times[right],
		LeftIndex:     left,
		RightIndex:    right,
		SeedLeft:      seedLeft,
		SeedRight:     seedRight,
		Baseline:      baseline,
		Threshold:     threshold,
		ApexIntensity: sm[apexIndex],
	}, nil
}

// InflectionSeeds picks the closest inflection index strictly below and
// strictly above apexIndex from an ascending list. Missing sides default
// to 0 and n-1.
func InflectionSeeds(inflections []int, apexIndex, n int) (left, right int) {
	left, right = 0, n-1
	for _, idx := range inflections {
		if idx < apexIndex {
			left = idx
			continue
		}
		if idx > apexIndex {
			right = idx
			break
		}
	}
	return left, right
}

// Baseline estimates the background level from the flanks outside the
// seeds: smoothed[max(0, seedLeft-maxExtension):seedLeft] and
// smoothed[seedRight:min(n, seedRight+maxExtension)]. It returns the smaller
// 20th percentile of the non-empty flanks, or the global minimum of
// smoothed when both are empty.
func Baseline(smoothed []float64, seedLeft, seedRight, maxExtension int) float64 {
	n := len(smoothed)
	leftFlank := smoothed[max(0, seedLeft-maxExtension):seedLeft]
	rightFlank := smoothed[seedRight:min(n, seedRight+maxExtension)]

	left, okLeft := flankLevel(leftFlank)
	right, okRight := flankLevel(rightFlank)

	switch {
	case okLeft && okRight:
		return min(left, right)
	case okLeft:
		return left
	case okRight:
		return right
	}

	lowest, err := quantile.Min(smoothed)
	if err != nil {
		return 0
	}
	return lowest
}

// Threshold returns baseline + fraction*(apex-baseline).
func Threshold(baseline, apex, fraction float64) float64 {
	return baseline + fraction*(apex-baseline)
}

// ExtendLeft walks down from seed while smoothed stays above threshold,
// stopping at index 0 or maxExtension samples below seed.
func ExtendLeft(smoothed []float64, seed int, threshold float64, maxExtension int) int {
	idx := seed
	for idx > 0 && smoothed[idx] > threshold && idx > seed-maxExtension {
		idx--
	}
	return idx
}

// ExtendRight walks up from seed while smoothed stays above threshold,
// stopping at the last index or maxExtension samples above seed.
func ExtendRight(smoothed []float64, seed int, threshold float64, maxExtension int) int {
	last := len(smoothed) - 1
	idx := seed
	for idx < last && smoothed[idx] > threshold && idx < seed+maxExtension {
		idx++
	}
	return idx
}

func flankLevel(flank []float64) (float64, bool) {
	if len(flank) == 0 {
		return 0, false
	}
	v, err := quantile.Percentile(flank, baselinePercentile)
	if err != nil {
		return 0, false
	}
	return v, true
}
