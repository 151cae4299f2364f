package tsh

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/ham"
	"github.com/qdynlab/hopsim/internal/models"
)

func TestKineticEnergy(t *testing.T) {
	p := mat.NewDense(1, 2, []float64{10.0, -4.0})
	iM := []float64{0.01}
	if e := kineticEnergy(p, iM, 0); math.Abs(e-0.5) > 1e-12 {
		t.Errorf("kinetic energy = %f, want 0.5", e)
	}
	if e := kineticEnergy(p, iM, 1); math.Abs(e-0.08) > 1e-12 {
		t.Errorf("kinetic energy = %f, want 0.08", e)
	}
}

func TestHopProbabilitiesNonNegativeNormalized(t *testing.T) {
	hvib := mat.NewCDense(2, 2, nil)
	hvib.Set(0, 0, complex(0.1, 0))
	hvib.Set(1, 1, complex(-0.1, 0))
	hvib.Set(0, 1, complex(0.05, -0.3))
	hvib.Set(1, 0, complex(0.05, 0.3))

	c := mat.NewCDense(2, 1, nil)
	c.Set(0, 0, complex(0.6, 0.1))
	c.Set(1, 0, complex(0.5, -0.4))

	for _, dt := range []float64{0.1, 1.0, 10.0, 100.0} {
		g := hopProbabilities(hvib, c, 0, dt)
		total := 0.0
		for j, p := range g {
			if p < 0 {
				t.Errorf("dt=%g: negative probability g[%d]=%f", dt, j, p)
			}
			total += p
		}
		if total > 1.0+1e-12 {
			t.Errorf("dt=%g: probabilities sum to %f > 1", dt, total)
		}
	}
}

func TestHopProbabilitiesRealCoupling(t *testing.T) {
	// with a purely real Hvib and real amplitudes Im(rho * Hvib) = 0
	hvib := mat.NewCDense(2, 2, nil)
	hvib.Set(0, 1, complex(0.05, 0))
	hvib.Set(1, 0, complex(0.05, 0))

	c := mat.NewCDense(2, 1, nil)
	c.Set(0, 0, complex(0.8, 0))
	c.Set(1, 0, complex(0.6, 0))

	g := hopProbabilities(hvib, c, 0, 1.0)
	if g[1] != 0 {
		t.Errorf("expected zero hop probability for real dynamics, got %f", g[1])
	}
}

func TestHopProbabilitiesEmptyState(t *testing.T) {
	hvib := mat.NewCDense(2, 2, nil)
	c := mat.NewCDense(2, 1, nil)
	c.Set(1, 0, complex(1, 0))

	g := hopProbabilities(hvib, c, 0, 1.0)
	for j, p := range g {
		if p != 0 {
			t.Errorf("depleted state should give zero probabilities, g[%d]=%f", j, p)
		}
	}
}

func TestProposeHopIntervals(t *testing.T) {
	g := []float64{0, 0.3, 0.2}
	counts := make([]int, 3)
	rnd := rand.New(rand.NewSource(7))
	const n = 100000
	for i := 0; i < n; i++ {
		counts[proposeHop(g, 0, rnd)]++
	}
	f1 := float64(counts[1]) / n
	f2 := float64(counts[2]) / n
	f0 := float64(counts[0]) / n
	if math.Abs(f1-0.3) > 0.01 || math.Abs(f2-0.2) > 0.01 || math.Abs(f0-0.5) > 0.01 {
		t.Errorf("hop frequencies (%.3f, %.3f, %.3f), want about (0.5, 0.3, 0.2)", f0, f1, f2)
	}
}

func adiabaticChild(t *testing.T, x float64) *ham.Hamiltonian {
	t.Helper()
	child := ham.New(2, 2, 1)
	prm := models.Params{X0: 1.0, K: 0.1, D: -0.1, V: 0.05}
	if err := child.SetDiabatic(models.Model1(x, prm)); err != nil {
		t.Fatalf("SetDiabatic failed: %v", err)
	}
	if err := child.ComputeAdiabatic(); err != nil {
		t.Fatalf("ComputeAdiabatic failed: %v", err)
	}
	return child
}

func TestAcceptHopRescalesMomentum(t *testing.T) {
	child := adiabaticChild(t, 0.1)
	iM := []float64{0.01}
	p := mat.NewDense(1, 1, []float64{20.0}) // Ekin = 2.0, plenty for any gap

	prms := DefaultParams()
	got := acceptHop(child, p, iM, 0, 0, 1, prms)
	if got != 1 {
		t.Fatalf("energetically allowed hop rejected")
	}

	dE := child.Eadi[1] - child.Eadi[0]
	wantP := 20.0 * math.Sqrt((2.0-dE)/2.0)
	if math.Abs(p.At(0, 0)-wantP) > 1e-10 {
		t.Errorf("rescaled momentum = %f, want %f", p.At(0, 0), wantP)
	}

	// energy is conserved across the hop
	ekinAfter := kineticEnergy(p, iM, 0)
	if math.Abs((ekinAfter+child.Eadi[1])-(2.0+child.Eadi[0])) > 1e-10 {
		t.Error("total energy not conserved by the rescale")
	}
}

func TestAcceptHopFrustratedReversal(t *testing.T) {
	child := adiabaticChild(t, 0.1)
	iM := []float64{0.01}
	p := mat.NewDense(1, 1, []float64{0.5}) // Ekin = 0.00125, below the gap

	prms := DefaultParams()
	got := acceptHop(child, p, iM, 0, 0, 1, prms)
	if got != 0 {
		t.Error("frustrated hop should keep the current state")
	}
	if p.At(0, 0) != -0.5 {
		t.Errorf("momentum = %f, want reversed -0.5", p.At(0, 0))
	}

	prms.DoReverse = false
	p.Set(0, 0, 0.5)
	got = acceptHop(child, p, iM, 0, 0, 1, prms)
	if got != 0 || p.At(0, 0) != 0.5 {
		t.Errorf("without reversal momentum should stay 0.5, got %f", p.At(0, 0))
	}
}

func TestAcceptHopBoltzmannSkipsRescale(t *testing.T) {
	child := adiabaticChild(t, 0.1)
	iM := []float64{0.01}
	p := mat.NewDense(1, 1, []float64{0.5})

	prms := DefaultParams()
	prms.UseBoltzFactor = true
	got := acceptHop(child, p, iM, 0, 0, 1, prms)
	if got != 1 {
		t.Error("thermal hop should be accepted")
	}
	if p.At(0, 0) != 0.5 {
		t.Errorf("thermal hop should not touch momenta, got %f", p.At(0, 0))
	}
}

func TestBoltzmannWeightDampsUpward(t *testing.T) {
	child := adiabaticChild(t, 0.1)
	g := []float64{0, 0.4}
	boltzmannWeight(g, child, 0, 300.0)
	if g[1] >= 0.4 {
		t.Errorf("upward probability not damped: %f", g[1])
	}

	// downward hops keep their probability
	g = []float64{0.4, 0}
	boltzmannWeight(g, child, 1, 300.0)
	if g[0] != 0.4 {
		t.Errorf("downward probability changed: %f", g[0])
	}
}
