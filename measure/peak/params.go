package peak

import (
	"fmt"
	"math"
)

// Default detection parameters.
const (
	DefaultHalfWindow     = 1.0
	DefaultFractionOfApex = 0.05
	DefaultMaxExtension   = 50
)

// Params holds the batch-wide tuning parameters.
type Params struct {
	// HalfWindow is the half width of the apex search window in time units.
	HalfWindow float64
	// FractionOfApex sets the extension threshold relative to the apex
	// height above baseline. Must be in (0, 1).
	FractionOfApex float64
	// MaxExtension caps how many samples a boundary may move past its seed.
	MaxExtension int
}

// Option mutates Params.
type Option func(*Params)

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		HalfWindow:     DefaultHalfWindow,
		FractionOfApex: DefaultFractionOfApex,
		MaxExtension:   DefaultMaxExtension,
	}
}

// WithHalfWindow sets the apex search half window.
func WithHalfWindow(half float64) Option {
	return func(p *Params) {
		p.HalfWindow = half
	}
}

// WithFractionOfApex sets the boundary threshold fraction.
func WithFractionOfApex(fraction float64) Option {
	return func(p *Params) {
		p.FractionOfApex = fraction
	}
}

// WithMaxExtension sets the per-side extension cap in samples.
func WithMaxExtension(n int) Option {
	return func(p *Params) {
		p.MaxExtension = n
	}
}

// NewParams applies zero or more options to the defaults.
func NewParams(opts ...Option) Params {
	p := DefaultParams()
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

// Validate checks the parameter domains.
func (p Params) Validate() error {
	if err := validateHalfWindow(p.HalfWindow); err != nil {
		return err
	}
	if err := validateFraction(p.FractionOfApex); err != nil {
		return err
	}
	return validateMaxExtension(p.MaxExtension)
}

func validateHalfWindow(half float64) error {
	if math.IsNaN(half) || half < 0 {
		return fmt.Errorf("%w: half window must be >= 0, got %v", ErrInvalidInput, half)
	}
	return nil
}

func validateFraction(f float64) error {
	if !(f > 0 && f < 1) {
		return fmt.Errorf("%w: fraction of apex must be in (0, 1), got %v", ErrInvalidInput, f)
	}
	return nil
}

func validateMaxExtension(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: max extension must be >= 0, got %d", ErrInvalidInput, n)
	}
	return nil
}
