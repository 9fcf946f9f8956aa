package peak

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-peak/dsp/core"
	"github.com/cwbudde/algo-peak/dsp/filter/savgol"
)

// Smoothing constants.
const (
	PolyOrder          = 3
	MinSmoothingWindow = 3
	MaxSmoothingWindow = 11
	// MinSmoothLength is the shortest trace Smooth accepts.
	MinSmoothLength = PolyOrder + 1
	// BoundaryWindow is the fixed re-smoothing window of the boundary stage.
	BoundaryWindow = 11
)

type filterKey struct {
	window, order int
}

var filters sync.Map // filterKey -> *savgol.Filter

// filterFor returns a shared, immutable filter for the given design.
func filterFor(window, order int) (*savgol.Filter, error) {
	key := filterKey{window, order}
	if f, ok := filters.Load(key); ok {
		return f.(*savgol.Filter), nil
	}
	f, err := savgol.New(window, order)
	if err != nil {
		return nil, err
	}
	actual, _ := filters.LoadOrStore(key, f)
	return actual.(*savgol.Filter), nil
}

// SmoothingWindow returns the window Smooth uses for a trace of n samples:
// the largest odd length <= min(11, n), never below 3.
func SmoothingWindow(n int) int {
	return core.ClampInt(n-(n+1)%2, MinSmoothingWindow, MaxSmoothingWindow)
}

// Smooth returns a Savitzky–Golay smoothed copy of intensities using a cubic
// fit over [SmoothingWindow] samples. A 4-sample trace gets a 3-sample
// window, which cannot carry a cubic; the order drops to 2 there and the
// fit interpolates the samples exactly, where a strict cubic filter would
// reject the input.
func Smooth(intensities []float64) ([]float64, error) {
	n := len(intensities)
	if n < MinSmoothLength {
		return nil, fmt.Errorf("%w: smoothing needs at least %d samples, got %d",
			ErrInvalidInput, MinSmoothLength, n)
	}
	if i := core.FirstNonFinite(intensities); i >= 0 {
		return nil, fmt.Errorf("%w: non-finite intensity at index %d", ErrInvalidInput, i)
	}

	window := SmoothingWindow(n)
	f, err := filterFor(window, min(PolyOrder, window-1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return f.Apply(intensities)
}
