package behavior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDominantPeriodPureCycle(t *testing.T) {
	// Period of 16 samples at dt=0.5: exactly bin 8 of a 128-point
	// transform, so no spectral leakage.
	s := make([]float64, 128)
	for i := range s {
		s[i] = 42 + 5*math.Sin(2*math.Pi*float64(i)/16)
	}
	period, ok := DominantPeriod(s, 0.5)
	assert.True(t, ok)
	assert.InDelta(t, 8.0, period, 1e-9)
}

func TestDominantPeriodRejectsTrends(t *testing.T) {
	ramp := make([]float64, 128)
	for i := range ramp {
		ramp[i] = 3 * float64(i)
	}
	_, ok := DominantPeriod(ramp, 1)
	assert.False(t, ok)

	growth := make([]float64, 128)
	for i := range growth {
		growth[i] = math.Exp(0.05 * float64(i))
	}
	_, ok = DominantPeriod(growth, 1)
	assert.False(t, ok)
}

func TestDominantPeriodShortOrDegenerate(t *testing.T) {
	_, ok := DominantPeriod([]float64{1, 2, 3}, 1)
	assert.False(t, ok)

	_, ok = DominantPeriod(make([]float64, 64), 1)
	assert.False(t, ok)

	s := make([]float64, 64)
	for i := range s {
		s[i] = math.Sin(float64(i))
	}
	_, ok = DominantPeriod(s, 0)
	assert.False(t, ok)
}

func TestPowerSpectrumPadsToPowerOfTwo(t *testing.T) {
	s := make([]float64, 100)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * float64(i) / 10)
	}
	ps := PowerSpectrum(s)
	// 100 samples pad to 128; single-sided spectrum has 64 bins.
	assert.Len(t, ps, 64)
	assert.Nil(t, PowerSpectrum(nil))
}
