package peak

import (
	"fmt"

	"github.com/cwbudde/algo-peak/dsp/core"
)

// Trace is one chromatogram: intensities sampled at non-decreasing times.
type Trace struct {
	Times       []float64
	Intensities []float64
}

// NewTrace validates and wraps parallel time and intensity slices. The
// slices are not copied.
func NewTrace(times, intensities []float64) (Trace, error) {
	if len(times) == 0 {
		return Trace{}, fmt.Errorf("%w: empty trace", ErrInvalidInput)
	}
	if len(times) != len(intensities) {
		return Trace{}, fmt.Errorf("%w: times/intensities length mismatch (%d vs %d)",
			ErrInvalidInput, len(times), len(intensities))
	}
	if i := core.FirstNonFinite(times); i >= 0 {
		return Trace{}, fmt.Errorf("%w: non-finite time at index %d", ErrInvalidInput, i)
	}
	if i := core.FirstNonFinite(intensities); i >= 0 {
		return Trace{}, fmt.Errorf("%w: non-finite intensity at index %d", ErrInvalidInput, i)
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return Trace{}, fmt.Errorf("%w: times decrease at index %d", ErrInvalidInput, i)
		}
	}

	return Trace{Times: times, Intensities: intensities}, nil
}

// Len returns the number of samples.
func (t Trace) Len() int {
	return len(t.Times)
}
