package diff

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by derivative functions.
var (
	ErrTooShort       = errors.New("diff: at least two samples required")
	ErrLengthMismatch = errors.New("diff: values and positions differ in length")
)

// Gradient returns dy/dx at every sample.
//
// Interior points use the second-order accurate central difference for
// non-uniform spacing
//
//	y'[i] = -h2/(h1(h1+h2)) y[i-1] + (h2-h1)/(h1 h2) y[i] + h1/(h2(h1+h2)) y[i+1]
//
// with h1 = x[i]-x[i-1] and h2 = x[i+1]-x[i], which reduces to
// (y[i+1]-y[i-1])/(2h) when all spacings are equal. The end points use
// one-sided first differences.
func Gradient(y, x []float64) ([]float64, error) {
	n := len(y)
	if len(x) != n {
		return nil, fmt.Errorf("%w: y=%d x=%d", ErrLengthMismatch, n, len(x))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooShort, n)
	}

	out := make([]float64, n)
	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])

	if h, ok := uniformStep(x); ok {
		for i := 1; i < n-1; i++ {
			out[i] = (y[i+1] - y[i-1]) / (2 * h)
		}
		return out, nil
	}

	for i := 1; i < n-1; i++ {
		h1 := x[i] - x[i-1]
		h2 := x[i+1] - x[i]
		a := -h2 / (h1 * (h1 + h2))
		b := (h2 - h1) / (h1 * h2)
		c := h1 / (h2 * (h1 + h2))
		out[i] = a*y[i-1] + b*y[i] + c*y[i+1]
	}
	return out, nil
}

// SecondDerivative applies [Gradient] twice.
func SecondDerivative(y, x []float64) ([]float64, error) {
	d1, err := Gradient(y, x)
	if err != nil {
		return nil, err
	}
	return Gradient(d1, x)
}

// SignChanges returns every index i for which sign(y[i]) != sign(y[i+1]),
// with sign in {-1, 0, +1}. Touching zero counts as a change, and NaN never
// equals any sign.
func SignChanges(y []float64) []int {
	if len(y) < 2 {
		return nil
	}

	var out []int
	prev := sign(y[0])
	for i := 1; i < len(y); i++ {
		cur := sign(y[i])
		if cur != prev {
			out = append(out, i-1)
		}
		prev = cur
	}
	return out
}

// uniformStep reports the common spacing of x when every step is exactly equal.
func uniformStep(x []float64) (float64, bool) {
	h := x[1] - x[0]
	for i := 2; i < len(x); i++ {
		if x[i]-x[i-1] != h {
			return 0, false
		}
	}
	return h, true
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	case v == 0:
		return 0
	default:
		return math.NaN()
	}
}
