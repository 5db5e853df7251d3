package analysis

import (
	"errors"
	"math"
	"math/bits"
	"math/cmplx"
)

var ErrShortSeries = errors.New("analysis: series too short")

// FFT is an iterative radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n&(n-1) != 0 {
		panic("fft requires power of 2 length")
	}
	out := make([]complex128, n)
	shift := bits.LeadingZeros(uint(n)) + 1
	for i, v := range data {
		j := i
		if n > 1 {
			j = int(bits.Reverse(uint(i)) >> shift)
		}
		out[j] = complex(v, 0)
	}

	for size := 2; size <= n; size <<= 1 {
		step := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < size/2; k++ {
				a, b := out[start+k], w*out[start+k+size/2]
				out[start+k], out[start+k+size/2] = a+b, a-b
				w *= step
			}
		}
	}
	return out
}

// PowerSpectrum removes the mean, zero pads to a power of two and returns
// the magnitudes of the positive frequencies along with the padded length.
func PowerSpectrum(data []float64) ([]float64, int) {
	n := 1
	for n < len(data) {
		n *= 2
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}
	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps, n
}

// DominantFrequency returns the strongest non-zero frequency in hertz of a
// series sampled every dt seconds.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 || dt <= 0 {
		return 0, ErrShortSeries
	}
	ps, n := PowerSpectrum(data)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(n) * dt), nil
}
