package testutil

import "testing"

func TestRequireSliceNearlyEqualPasses(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2, 3}, []float64{1, 2 + 1e-13, 3}, 1e-12)
}

func TestRequireNearlyEqualPasses(t *testing.T) {
	RequireNearlyEqual(t, "value", 0.1+0.2, 0.3, 1e-12)
}

func TestRequireFinitePasses(t *testing.T) {
	RequireFinite(t, []float64{0, -1, 1e300})
}
