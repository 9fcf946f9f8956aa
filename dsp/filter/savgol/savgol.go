package savgol

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by filter construction and application.
var (
	ErrInvalidWindow  = errors.New("savgol: window length must be odd and positive")
	ErrInvalidOrder   = errors.New("savgol: polynomial order must be >= 0 and < window length")
	ErrInputTooShort  = errors.New("savgol: input shorter than window")
	ErrLengthMismatch = errors.New("savgol: buffer length mismatch")

	errSingularDesign = errors.New("savgol: singular design matrix")
)

// Filter is an immutable Savitzky–Golay smoother. It is safe for concurrent use.
type Filter struct {
	window int
	order  int

	// proj[r] evaluates the window's least-squares polynomial at window
	// position r. Row window/2 is the classic smoothing kernel.
	proj [][]float64
}

// New designs a filter with the given odd window length and polynomial order.
func New(window, order int) (*Filter, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("%w: order=%d window=%d", ErrInvalidOrder, order, window)
	}

	proj, err := projection(window, order)
	if err != nil {
		return nil, err
	}

	return &Filter{window: window, order: order, proj: proj}, nil
}

// Smooth is a one-shot helper: New(window, order) followed by Apply(x).
func Smooth(x []float64, window, order int) ([]float64, error) {
	f, err := New(window, order)
	if err != nil {
		return nil, err
	}
	return f.Apply(x)
}

// Window returns the window length.
func (f *Filter) Window() int { return f.window }

// Order returns the polynomial order.
func (f *Filter) Order() int { return f.order }

// Coefficients returns a copy of the centered smoothing kernel.
func (f *Filter) Coefficients() []float64 {
	c := make([]float64, f.window)
	copy(c, f.proj[f.window/2])
	return c
}

// Apply smooths x into a newly allocated slice.
func (f *Filter) Apply(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	if err := f.ApplyTo(out, x); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTo smooths x into dst. dst must have len(x) and must not alias x.
func (f *Filter) ApplyTo(dst, x []float64) error {
	n := len(x)
	if len(dst) != n {
		return fmt.Errorf("%w: dst=%d src=%d", ErrLengthMismatch, len(dst), n)
	}
	if n < f.window {
		return fmt.Errorf("%w: len=%d window=%d", ErrInputTooShort, n, f.window)
	}

	half := f.window / 2

	center := f.proj[half]
	for i := half; i < n-half; i++ {
		dst[i] = vecmath.DotProduct(center, x[i-half:i+half+1])
	}

	head := x[:f.window]
	tail := x[n-f.window:]
	for r := range half {
		dst[r] = vecmath.DotProduct(f.proj[r], head)
		dst[n-half+r] = vecmath.DotProduct(f.proj[half+1+r], tail)
	}

	return nil
}

// projection returns the window x window hat matrix A (AᵀA)⁻¹ Aᵀ of the
// Vandermonde design A[i][j] = z_i^j with z_i = i - window/2.
func projection(window, order int) ([][]float64, error) {
	m := order + 1
	half := window / 2

	z := make([]float64, window)
	for i := range z {
		z[i] = float64(i - half)
	}

	// Augmented system [AᵀA | Aᵀ], solved in place by Gauss–Jordan.
	aug := make([][]float64, m)
	for j := range aug {
		row := make([]float64, m+window)
		for k := range m {
			var s float64
			for _, zi := range z {
				s += ipow(zi, j+k)
			}
			row[k] = s
		}
		for i, zi := range z {
			row[m+i] = ipow(zi, j)
		}
		aug[j] = row
	}

	if err := gaussJordan(aug, m); err != nil {
		return nil, err
	}

	proj := make([][]float64, window)
	for r := range proj {
		row := make([]float64, window)
		for i := range row {
			var s float64
			for j := range m {
				s += ipow(z[r], j) * aug[j][m+i]
			}
			row[i] = s
		}
		proj[r] = row
	}

	return proj, nil
}

// gaussJordan reduces the left m x m block of aug to the identity using
// partial pivoting, leaving the solution in the right-hand columns.
func gaussJordan(aug [][]float64, m int) error {
	for col := range m {
		pivot := col
		for r := col + 1; r < m; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-300 {
			return errSingularDesign
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		inv := 1 / aug[col][col]
		for k := range aug[col] {
			aug[col][k] *= inv
		}

		for r := range m {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for k := range aug[r] {
				aug[r][k] -= factor * aug[col][k]
			}
		}
	}
	return nil
}

func ipow(x float64, p int) float64 {
	out := 1.0
	for range p {
		out *= x
	}
	return out
}
