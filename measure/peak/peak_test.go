package peak

import (
	"testing"

	"github.com/cwbudde/algo-peak/internal/testutil"
)

// gaussianTrace is the reference scenario: t = 0..10 step 0.1 and a unit
// Gaussian centered at 5.
func gaussianTrace(t *testing.T) Trace {
	t.Helper()
	times := testutil.Linspace(0, 10, 101)
	tr, err := NewTrace(times, testutil.Gaussian(times, 5, 1, 1))
	if err != nil {
		t.Fatalf("NewTrace error = %v", err)
	}
	return tr
}

func noisyGaussianTrace(t *testing.T, seed int64) Trace {
	t.Helper()
	times := testutil.Linspace(0, 10, 101)
	y := testutil.Add(testutil.Gaussian(times, 5, 1, 1), testutil.DeterministicNoise(seed, 0.05, len(times)))
	tr, err := NewTrace(times, y)
	if err != nil {
		t.Fatalf("NewTrace error = %v", err)
	}
	return tr
}
