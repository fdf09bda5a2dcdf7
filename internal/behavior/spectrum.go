package behavior

import (
	"math"
	"math/cmplx"
)

// fft is a radix-2 Cooley-Tukey transform; callers pad to a power of
// two before reaching it.
func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum returns the single-sided magnitude spectrum of a
// series, mean-removed and zero-padded to a power of two.
func PowerSpectrum(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}

	var mean float64
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	n := 1
	for n < len(series) {
		n *= 2
	}
	padded := make([]float64, n)
	for i, v := range series {
		padded[i] = v - mean
	}

	spectrum := fft(padded)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of an oscillating series, in the
// same unit as dt. The second return is false when no frequency clearly
// dominates, which is the usual answer for non-oscillating series.
func DominantPeriod(series []float64, dt float64) (float64, bool) {
	if len(series) < 8 || dt <= 0 {
		return 0, false
	}
	ps := PowerSpectrum(series)
	if len(ps) < 2 {
		return 0, false
	}

	// Bin 0 is residual DC. A peak in bin 1 is a trend, not a cycle:
	// monotone series concentrate their energy there.
	peak := 1
	var total float64
	for i := 1; i < len(ps); i++ {
		total += ps[i]
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak == 1 || total == 0 || ps[peak] < 0.2*total {
		return 0, false
	}

	n := len(ps) * 2
	freq := float64(peak) / (float64(n) * dt)
	return 1 / freq, true
}
