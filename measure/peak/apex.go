package peak

import "fmt"

// SearchWindow is the closed interval [Center-HalfWidth, Center+HalfWidth].
type SearchWindow struct {
	Center    float64
	HalfWidth float64
}

// Lo returns the lower bound of the window.
func (w SearchWindow) Lo() float64 { return w.Center - w.HalfWidth }

// Hi returns the upper bound of the window.
func (w SearchWindow) Hi() float64 { return w.Center + w.HalfWidth }

// Contains reports whether t lies inside the closed window.
func (w SearchWindow) Contains(t float64) bool {
	return t >= w.Lo() && t <= w.Hi()
}

// Apex is the selected peak maximum.
type Apex struct {
	// Index into the full trace.
	Index int
	Time  float64
	// Intensity is the smoothed intensity at Index.
	Intensity    float64
	RawIntensity float64
	// Fallback is set when the search window held no samples and the whole
	// trace was searched instead.
	Fallback bool
}

// LocateApex returns the highest strict local maximum of smoothed among the
// samples whose time lies in the search window around expectedRT. When the
// window holds no samples the whole trace is searched and Apex.Fallback is
// set. Equal maxima resolve to the lowest index.
//
// A local maximum at i satisfies v[i-1] < v[i] > v[i+1] over the searched
// samples, so the first and last searched sample never qualify. A search
// region without one yields ErrNoPeakFound.
func LocateApex(times, raw, smoothed []float64, expectedRT, halfWindow float64) (Apex, error) {
	n := len(times)
	if n == 0 {
		return Apex{}, fmt.Errorf("%w: empty trace", ErrInvalidInput)
	}
	if len(raw) != n || len(smoothed) != n {
		return Apex{}, fmt.Errorf("%w: length mismatch (times=%d raw=%d smoothed=%d)",
			ErrInvalidInput, n, len(raw), len(smoothed))
	}
	if err := validateHalfWindow(halfWindow); err != nil {
		return Apex{}, err
	}

	window := SearchWindow{Center: expectedRT, HalfWidth: halfWindow}
	candidates := make([]int, 0, n)
	for i, t := range times {
		if window.Contains(t) {
			candidates = append(candidates, i)
		}
	}

	fallback := len(candidates) == 0
	if fallback {
		for i := range n {
			candidates = append(candidates, i)
		}
	}

	best := -1
	for k := 1; k < len(candidates)-1; k++ {
		v := smoothed[candidates[k]]
		if !(smoothed[candidates[k-1]] < v && v > smoothed[candidates[k+1]]) {
			continue
		}
		if best < 0 || v > smoothed[best] {
			best = candidates[k]
		}
	}

	if best < 0 {
		return Apex{}, fmt.Errorf("%w: window [%.4f, %.4f], %d samples searched (fallback=%t)",
			ErrNoPeakFound, window.Lo(), window.Hi(), len(candidates), fallback)
	}

	return Apex{
		Index:        best,
		Time:         times[best],
		Intensity:    smoothed[best],
		RawIntensity: raw[best],
		Fallback:     fallback,
	}, nil
}
