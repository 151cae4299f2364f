package analysis

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestFFTConstantSignal(t *testing.T) {
	data := []float64{1, 1, 1, 1}
	fft := FFT(data)
	if cmplx.Abs(fft[0]-complex(4, 0)) > 1e-12 {
		t.Errorf("DC bin = %v, want 4", fft[0])
	}
	for k := 1; k < len(fft); k++ {
		if cmplx.Abs(fft[k]) > 1e-12 {
			t.Errorf("bin %d = %v, want 0", k, fft[k])
		}
	}
}

func TestFFTPureSinusoid(t *testing.T) {
	const n = 64
	const cycles = 5
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * cycles * float64(i) / n)
	}

	ps := PowerSpectrum(data)
	peak := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if peak != cycles {
		t.Errorf("spectrum peaks at bin %d, want %d", peak, cycles)
	}
}

func TestFFTOddLengthInput(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7}
	fft := FFT(data)
	if len(fft) != 8 {
		t.Fatalf("transform length = %d, want 8", len(fft))
	}
	// the DC bin equals the plain sum regardless of zero padding
	if cmplx.Abs(fft[0]-complex(28, 0)) > 1e-12 {
		t.Errorf("DC bin = %v, want 28", fft[0])
	}
}

func TestPadPow2(t *testing.T) {
	padded := PadPow2(make([]float64, 5))
	if len(padded) != 8 {
		t.Errorf("padded length = %d, want 8", len(padded))
	}
	padded = PadPow2(make([]float64, 8))
	if len(padded) != 8 {
		t.Errorf("power-of-two input changed length to %d", len(padded))
	}
}

func TestPowerSpectrumPadsOddLengths(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = math.Cos(0.3 * float64(i))
	}
	ps := PowerSpectrum(data)
	if len(ps) != 64 {
		t.Errorf("spectrum length = %d, want 64", len(ps))
	}
	for k, v := range ps {
		if math.IsNaN(v) || v < 0 {
			t.Errorf("invalid magnitude at bin %d: %f", k, v)
		}
	}
}
