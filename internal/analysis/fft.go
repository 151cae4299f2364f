// Package analysis provides frequency analysis of run time series, used
// to inspect coordinate and population oscillations.
package analysis

import (
	"math"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform of a real series. The
// input is zero-padded to the next power-of-two length, so the returned
// slice may be longer than the input.
func FFT(data []float64) []complex128 {
	padded := PadPow2(data)
	buf := make([]complex128, len(padded))
	for i, v := range padded {
		buf[i] = complex(v, 0)
	}
	return radix2(buf)
}

// radix2 runs the Cooley-Tukey recursion. len(buf) must be a power of
// two, which PadPow2 guarantees.
func radix2(buf []complex128) []complex128 {
	n := len(buf)
	if n <= 1 {
		return buf
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = buf[2*i]
		odd[i] = buf[2*i+1]
	}
	even = radix2(even)
	odd = radix2(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = even[k] + w*odd[k]
		out[k+n/2] = even[k] - w*odd[k]
	}
	return out
}

// PadPow2 zero-pads a series to the next power-of-two length.
func PadPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// PowerSpectrum returns the magnitude spectrum of a series, one value
// per frequency bin below the Nyquist frequency.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}
