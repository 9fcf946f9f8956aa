package peak

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-peak/dsp/filter/savgol"
	"github.com/cwbudde/algo-peak/internal/testutil"
)

func smoothedGaussian(t *testing.T) (Trace, []float64) {
	t.Helper()
	tr := gaussianTrace(t)
	sm, err := Smooth(tr.Intensities)
	if err != nil {
		t.Fatalf("Smooth error = %v", err)
	}
	return tr, sm
}

func TestExtendBoundariesGaussian(t *testing.T) {
	tr, sm := smoothedGaussian(t)

	b, err := ExtendBoundaries(tr.Times, sm, 50, 0.05, 50)
	if err != nil {
		t.Fatalf("ExtendBoundaries error = %v", err)
	}

	// Inflections of a unit Gaussian sit at 4 and 6.
	if b.SeedLeft != 39 || b.SeedRight != 60 {
		t.Fatalf("seeds = (%d, %d), want (39, 60)", b.SeedLeft, b.SeedRight)
	}
	// 5% of the apex is reached at 5 ± sqrt(2 ln 20) ≈ 5 ± 2.45.
	if b.LeftIndex < 24 || b.LeftIndex > 26 || b.RightIndex < 74 || b.RightIndex > 76 {
		t.Fatalf("indices = (%d, %d), want ≈ (25, 75)", b.LeftIndex, b.RightIndex)
	}
	if !(b.LeftTime < 5 && 5 < b.RightTime) {
		t.Fatalf("boundary = [%v, %v], want to bracket 5", b.LeftTime, b.RightTime)
	}
	if b.Baseline < -1e-3 || b.Baseline > 1e-3 {
		t.Fatalf("baseline = %v, want ≈ 0", b.Baseline)
	}
	testutil.RequireNearlyEqual(t, "threshold", b.Threshold, Threshold(b.Baseline, b.ApexIntensity, 0.05), 1e-15)
}

func TestExtendBoundariesResmoothsWithFixedWindow(t *testing.T) {
	tr := noisyGaussianTrace(t, 7)
	sm, err := Smooth(tr.Intensities)
	if err != nil {
		t.Fatalf("Smooth error = %v", err)
	}
	apex, err := LocateApex(tr.Times, tr.Intensities, sm, 5, 1)
	if err != nil {
		t.Fatalf("LocateApex error = %v", err)
	}

	b, err := ExtendBoundaries(tr.Times, sm, apex.Index, 0.05, 50)
	if err != nil {
		t.Fatalf("ExtendBoundaries error = %v", err)
	}

	resmoothed, err := savgol.Smooth(sm, BoundaryWindow, PolyOrder)
	if err != nil {
		t.Fatalf("savgol.Smooth error = %v", err)
	}
	testutil.RequireNearlyEqual(t, "apex intensity", b.ApexIntensity, resmoothed[apex.Index], 1e-12)
	testutil.RequireNearlyEqual(t, "apex intensity", b.ApexIntensity, 0.99719, 5e-5)
	if math.Abs(b.ApexIntensity-sm[apex.Index]) < 1e-4 {
		t.Fatalf("apex intensity %v matches the input trace, want the re-smoothed value", b.ApexIntensity)
	}

	if b.SeedLeft != 39 || b.SeedRight != 59 {
		t.Fatalf("seeds = (%d, %d), want (39, 59)", b.SeedLeft, b.SeedRight)
	}
	if b.LeftIndex != 24 || b.RightIndex != 76 {
		t.Fatalf("indices = (%d, %d), want (24, 76)", b.LeftIndex, b.RightIndex)
	}
}

func TestExtendBoundariesBracketApex(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		tr := noisyGaussianTrace(t, seed)
		sm, err := Smooth(tr.Intensities)
		if err != nil {
			t.Fatalf("Smooth error = %v", err)
		}
		apex, err := LocateApex(tr.Times, tr.Intensities, sm, 5, 1)
		if err != nil {
			t.Fatalf("seed=%d: LocateApex error = %v", seed, err)
		}

		b, err := ExtendBoundaries(tr.Times, sm, apex.Index, 0.05, 50)
		if err != nil {
			t.Fatalf("seed=%d: ExtendBoundaries error = %v", seed, err)
		}
		if !(b.LeftTime <= apex.Time && apex.Time <= b.RightTime) {
			t.Fatalf("seed=%d: [%v, %v] does not contain apex %v", seed, b.LeftTime, b.RightTime, apex.Time)
		}
	}
}

func TestExtendBoundariesMonotonicInFraction(t *testing.T) {
	fractions := []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 0.75, 0.9, 0.99}

	for seed := int64(0); seed <= 10; seed++ {
		var tr Trace
		if seed == 0 {
			tr = gaussianTrace(t)
		} else {
			tr = noisyGaussianTrace(t, seed)
		}
		sm, err := Smooth(tr.Intensities)
		if err != nil {
			t.Fatalf("Smooth error = %v", err)
		}
		apex, err := LocateApex(tr.Times, tr.Intensities, sm, 5, 1)
		if err != nil {
			t.Fatalf("LocateApex error = %v", err)
		}

		prevLeft, prevRight := -1, len(sm)
		for _, f := range fractions {
			b, err := ExtendBoundaries(tr.Times, sm, apex.Index, f, 50)
			if err != nil {
				t.Fatalf("ExtendBoundaries error = %v", err)
			}
			if b.LeftIndex < prevLeft || b.RightIndex > prevRight {
				t.Fatalf("seed=%d fraction=%v: [%d, %d] wider than previous [%d, %d]",
					seed, f, b.LeftIndex, b.RightIndex, prevLeft, prevRight)
			}
			prevLeft, prevRight = b.LeftIndex, b.RightIndex
		}
	}
}

func TestExtendBoundariesRespectsMaxExtension(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := range 50 {
		n := 11 + rng.Intn(150)
		times := testutil.Linspace(0, float64(n)/10, n)
		center := times[rng.Intn(n)]
		y := testutil.Add(
			testutil.Gaussian(times, center, 0.2+rng.Float64(), 1+rng.Float64()*10),
			testutil.DeterministicNoise(int64(trial), rng.Float64(), n),
		)
		apexIndex := rng.Intn(n)
		maxExt := rng.Intn(30)

		b, err := ExtendBoundaries(times, y, apexIndex, 0.01+0.98*rng.Float64(), maxExt)
		if err != nil {
			t.Fatalf("trial %d: ExtendBoundaries error = %v", trial, err)
		}
		if b.SeedLeft-b.LeftIndex > maxExt || b.RightIndex-b.SeedRight > maxExt {
			t.Fatalf("trial %d: extension beyond cap %d: %+v", trial, maxExt, b)
		}
		if b.LeftIndex < 0 || b.RightIndex >= n || b.LeftIndex > b.RightIndex {
			t.Fatalf("trial %d: invalid indices %+v", trial, b)
		}
		if b.LeftIndex > apexIndex || b.RightIndex < apexIndex {
			t.Fatalf("trial %d: boundary [%d, %d] excludes apex %d", trial, b.LeftIndex, b.RightIndex, apexIndex)
		}
	}
}

func TestExtendBoundariesZeroExtension(t *testing.T) {
	tr, sm := smoothedGaussian(t)

	b, err := ExtendBoundaries(tr.Times, sm, 50, 0.05, 0)
	if err != nil {
		t.Fatalf("ExtendBoundaries error = %v", err)
	}
	if b.LeftIndex != b.SeedLeft || b.RightIndex != b.SeedRight {
		t.Fatalf("indices = (%d, %d), want seeds (%d, %d)", b.LeftIndex, b.RightIndex, b.SeedLeft, b.SeedRight)
	}
}

func TestExtendBoundariesUnevenSpacing(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	times := make([]float64, 101)
	for i := range times {
		times[i] = float64(i)*0.1 + (rng.Float64()-0.5)*0.04
	}
	y := testutil.Gaussian(times, 5, 1, 1)
	sm, err := Smooth(y)
	if err != nil {
		t.Fatalf("Smooth error = %v", err)
	}
	apex, err := LocateApex(times, y, sm, 5, 1)
	if err != nil {
		t.Fatalf("LocateApex error = %v", err)
	}

	b, err := ExtendBoundaries(times, sm, apex.Index, 0.05, 50)
	if err != nil {
		t.Fatalf("ExtendBoundaries error = %v", err)
	}
	if math.Abs(b.LeftTime-2.55) > 0.15 || math.Abs(b.RightTime-7.45) > 0.15 {
		t.Fatalf("boundary = [%v, %v], want ≈ [2.55, 7.45]", b.LeftTime, b.RightTime)
	}
}

func TestExtendBoundariesInvalidInput(t *testing.T) {
	tr, sm := smoothedGaussian(t)

	tests := []struct {
		name     string
		times    []float64
		ints     []float64
		apex     int
		fraction float64
		maxExt   int
	}{
		{name: "too short", times: tr.Times[:10], ints: sm[:10], apex: 5, fraction: 0.05, maxExt: 5},
		{name: "length mismatch", times: tr.Times, ints: sm[:50], apex: 10, fraction: 0.05, maxExt: 5},
		{name: "apex below range", times: tr.Times, ints: sm, apex: -1, fraction: 0.05, maxExt: 5},
		{name: "apex above range", times: tr.Times, ints: sm, apex: 101, fraction: 0.05, maxExt: 5},
		{name: "fraction zero", times: tr.Times, ints: sm, apex: 50, fraction: 0, maxExt: 5},
		{name: "fraction one", times: tr.Times, ints: sm, apex: 50, fraction: 1, maxExt: 5},
		{name: "negative extension", times: tr.Times, ints: sm, apex: 50, fraction: 0.05, maxExt: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtendBoundaries(tt.times, tt.ints, tt.apex, tt.fraction, tt.maxExt)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestInflectionSeeds(t *testing.T) {
	tests := []struct {
		name        string
		inflections []int
		apex, n     int
		left, right int
	}{
		{name: "none", inflections: nil, apex: 5, n: 20, left: 0, right: 19},
		{name: "both sides", inflections: []int{1, 3, 8, 12}, apex: 5, n: 20, left: 3, right: 8},
		{name: "only left", inflections: []int{1, 3}, apex: 5, n: 20, left: 3, right: 19},
		{name: "only right", inflections: []int{9, 15}, apex: 5, n: 20, left: 0, right: 9},
		{name: "at apex skipped", inflections: []int{2, 5, 7}, apex: 5, n: 20, left: 2, right: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := InflectionSeeds(tt.inflections, tt.apex, tt.n)
			if left != tt.left || right != tt.right {
				t.Fatalf("InflectionSeeds = (%d, %d), want (%d, %d)", left, right, tt.left, tt.right)
			}
		})
	}
}

func TestBaseline(t *testing.T) {
	sm := []float64{5, 1, 2, 3, 9, 9, 9, 4, 0.5, 6, 7}

	tests := []struct {
		name      string
		seedLeft  int
		seedRight int
		maxExt    int
		want      float64
	}{
		// left flank sm[0:4] = {5,1,2,3} -> p20 1.6; right sm[7:11] = {4,0.5,6,7} -> p20 2.6
		{name: "both flanks", seedLeft: 4, seedRight: 7, maxExt: 10, want: 1.6},
		// left flank empty; right sm[7:9] = {4,0.5} -> 0.5 + 0.2*3.5
		{name: "right only", seedLeft: 0, seedRight: 7, maxExt: 2, want: 1.2},
		// right flank sm[10:11] = {7}; left sm[2:4] = {2,3} -> 2.2
		{name: "capped left", seedLeft: 4, seedRight: 10, maxExt: 2, want: 2.2},
		{name: "no flanks", seedLeft: 4, seedRight: 7, maxExt: 0, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Baseline(sm, tt.seedLeft, tt.seedRight, tt.maxExt)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("Baseline = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtendLeftRight(t *testing.T) {
	sm := []float64{0, 0.1, 0.5, 0.8, 1, 0.8, 0.5, 0.1, 0}

	if got := ExtendLeft(sm, 3, 0.2, 10); got != 1 {
		t.Fatalf("ExtendLeft = %d, want 1", got)
	}
	if got := ExtendRight(sm, 5, 0.2, 10); got != 7 {
		t.Fatalf("ExtendRight = %d, want 7", got)
	}
	if got := ExtendLeft(sm, 3, 0.2, 1); got != 2 {
		t.Fatalf("ExtendLeft capped = %d, want 2", got)
	}
	if got := ExtendRight(sm, 5, -1, 100); got != 8 {
		t.Fatalf("ExtendRight to end = %d, want 8", got)
	}
	if got := ExtendLeft(sm, 3, -1, 100); got != 0 {
		t.Fatalf("ExtendLeft to start = %d, want 0", got)
	}
}
