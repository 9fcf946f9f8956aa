package peak

import (
	"github.com/cwbudde/algo-peak/stats/quantile"
)

// Result is the outcome of a full detection on one trace.
type Result struct {
	Apex     Apex
	Boundary Boundary
	Window   SearchWindow
	// Smoothed is the stage-one smoothed trace.
	Smoothed []float64
	// SignalToNoise is the apex height above baseline divided by a robust
	// noise estimate of the smoothing residual. Zero when the residual is
	// noise free.
	SignalToNoise float64
}

// Detect runs Smooth, LocateApex and ExtendBoundaries on one trace.
func Detect(tr Trace, expectedRT float64, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	smoothed, err := Smooth(tr.Intensities)
	if err != nil {
		return Result{}, err
	}

	apex, err := LocateApex(tr.Times, tr.Intensities, smoothed, expectedRT, p.HalfWindow)
	if err != nil {
		return Result{}, err
	}

	bnd, err := ExtendBoundaries(tr.Times, smoothed, apex.Index, p.FractionOfApex, p.MaxExtension)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Apex:          apex,
		Boundary:      bnd,
		Window:        SearchWindow{Center: expectedRT, HalfWidth: p.HalfWindow},
		Smoothed:      smoothed,
		SignalToNoise: signalToNoise(tr.Intensities, smoothed, apex.Intensity-bnd.Baseline),
	}, nil
}

func signalToNoise(raw, smoothed []float64, height float64) float64 {
	residual := make([]float64, len(raw))
	for i := range raw {
		residual[i] = raw[i] - smoothed[i]
	}

	sigma, err := quantile.RobustSigma(residual)
	if err != nil || sigma == 0 {
		return 0
	}
	return height / sigma
}
