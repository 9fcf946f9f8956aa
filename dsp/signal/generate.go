package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-peak/dsp/core"
)

var (
	// ErrInvalidShape indicates a non-positive width or tailing parameter.
	ErrInvalidShape = errors.New("signal: invalid peak shape")
	// ErrLengthMismatch is returned by Sum when parts differ in length.
	ErrLengthMismatch = errors.New("signal: length mismatch")
)

// Generator creates deterministic chromatogram traces on a shared time grid.
type Generator struct {
	cfg  core.TraceConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator on the grid described by opts.
func NewGenerator(opts ...core.TraceOption) *Generator {
	return &Generator{
		cfg:  core.ApplyTraceOptions(opts...),
		seed: 1,
	}
}

// NewGeneratorWithOptions creates a configured generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.TraceOption, opts ...Option) *Generator {
	g := NewGenerator(coreOpts...)
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator grid configuration.
func (g *Generator) Config() core.TraceConfig {
	return g.cfg
}

// SetSeed replaces the noise seed.
func (g *Generator) SetSeed(seed int64) {
	g.seed = seed
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// TimeAxis returns n sample times starting at the configured start time.
func (g *Generator) TimeAxis(samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("time axis samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	for i := range out {
		out[i] = g.cfg.StartTime + float64(i)*g.cfg.SampleInterval
	}
	return out, nil
}

// Gaussian generates a symmetric peak of the given height centered at center.
func (g *Generator) Gaussian(center, sigma, height float64, samples int) ([]float64, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: sigma must be > 0: %f", ErrInvalidShape, sigma)
	}
	times, err := g.TimeAxis(samples)
	if err != nil {
		return nil, err
	}
	out := make([]float64, samples)
	for i, t := range times {
		d := (t - center) / sigma
		out[i] = height * math.Exp(-0.5*d*d)
	}
	return out, nil
}

// EMG generates an exponentially modified Gaussian, the usual model of a
// tailing chromatographic peak. height is the height of the underlying
// Gaussian; tau is the exponential decay constant. tau == 0 yields Gaussian.
func (g *Generator) EMG(center, sigma, tau, height float64, samples int) ([]float64, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: sigma must be > 0: %f", ErrInvalidShape, sigma)
	}
	if tau < 0 {
		return nil, fmt.Errorf("%w: tau must be >= 0: %f", ErrInvalidShape, tau)
	}
	if tau == 0 {
		return g.Gaussian(center, sigma, height, samples)
	}
	times, err := g.TimeAxis(samples)
	if err != nil {
		return nil, err
	}

	r := sigma / tau
	out := make([]float64, samples)
	for i, t := range times {
		out[i] = height * emg(t-center, sigma, tau, r)
	}
	return out, nil
}

// emg evaluates the unit-height EMG at offset x from the Gaussian center.
func emg(x, sigma, tau, r float64) float64 {
	z := (r - x/sigma) / math.Sqrt2
	if z < 5 {
		return r * math.Sqrt(math.Pi/2) * math.Exp(0.5*r*r-x/tau) * math.Erfc(z)
	}
	// Asymptotic erfc; the exponentials cancel to the Gaussian term.
	return r / (z * math.Sqrt2) * math.Exp(-0.5*x*x/(sigma*sigma)) * (1 - 1/(2*z*z))
}

// Baseline generates a linear drift offset + slope*t.
func (g *Generator) Baseline(offset, slope float64, samples int) ([]float64, error) {
	times, err := g.TimeAxis(samples)
	if err != nil {
		return nil, err
	}
	out := make([]float64, samples)
	for i, t := range times {
		out[i] = offset + slope*t
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Sum adds equally long parts sample by sample into a new slice.
func Sum(parts ...[]float64) ([]float64, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("sum needs at least one part")
	}
	n := len(parts[0])
	out := make([]float64, n)
	for k, p := range parts {
		if len(p) != n {
			return nil, fmt.Errorf("%w: part %d has %d samples, want %d", ErrLengthMismatch, k, len(p), n)
		}
		for i, v := range p {
			out[i] += v
		}
	}
	return out, nil
}
