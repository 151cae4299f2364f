package calculators

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// three levels, two electrons, no degeneracy
var (
	testEnergies = []float64{-1.0, -0.5, -0.4}
	testNel      = 2.0
	testDegen    = 1.0
	testKT       = 0.025
	testEtol     = 0.0001
)

func TestFermiPopulationLimits(t *testing.T) {
	if p := FermiPopulation(-10.0, 0.0, 1.0, 0.025); math.Abs(p-1.0) > 1e-12 {
		t.Errorf("deep level population = %f, want 1", p)
	}
	if p := FermiPopulation(10.0, 0.0, 1.0, 0.025); p != 0 {
		t.Errorf("high level population = %f, want 0", p)
	}
	if p := FermiPopulation(0.0, 0.0, 1.0, 0.025); math.Abs(p-0.5) > 1e-12 {
		t.Errorf("population at the Fermi level = %f, want 0.5", p)
	}
	if p := FermiPopulation(0.0, 0.0, 2.0, 0.025); math.Abs(p-1.0) > 1e-12 {
		t.Errorf("degenerate population at the Fermi level = %f, want 1", p)
	}
}

func TestFermiEnergyCountsElectrons(t *testing.T) {
	ef, err := FermiEnergy(testEnergies, testNel, testDegen, testKT, testEtol)
	if err != nil {
		t.Fatalf("FermiEnergy failed: %v", err)
	}
	n := FermiIntegral(testEnergies, ef, testDegen, testKT)
	if math.Abs(n-testNel) > testEtol {
		t.Errorf("Fermi integral at ef = %f, want %f", n, testNel)
	}
	// with two of three levels filled ef sits between the second and
	// third levels
	if ef < testEnergies[1] || ef > testEnergies[2] {
		t.Errorf("Fermi energy %f outside (%f, %f)", ef, testEnergies[1], testEnergies[2])
	}
}

func TestFermiEnergyEmptySpectrum(t *testing.T) {
	if _, err := FermiEnergy(nil, 2.0, 1.0, 0.025, 0.0001); err != ErrNoBands {
		t.Errorf("expected ErrNoBands, got %v", err)
	}
}

func TestFermiEnergyRejectsOverfilledSpectrum(t *testing.T) {
	// three singly degenerate levels cannot hold five electrons
	if _, err := FermiEnergy(testEnergies, 5.0, testDegen, testKT, testEtol); err != ErrBadFilling {
		t.Errorf("expected ErrBadFilling, got %v", err)
	}
}

func TestFermiEnergyRejectsNegativeFilling(t *testing.T) {
	if _, err := FermiEnergy(testEnergies, -1.0, testDegen, testKT, testEtol); err != ErrBadFilling {
		t.Errorf("expected ErrBadFilling, got %v", err)
	}
}

func TestFermiEnergyFullFilling(t *testing.T) {
	nel := testDegen * float64(len(testEnergies))
	ef, err := FermiEnergy(testEnergies, nel, testDegen, testKT, testEtol)
	if err != nil {
		t.Fatalf("FermiEnergy failed: %v", err)
	}
	if ef <= testEnergies[2] {
		t.Errorf("Fermi energy %f not above the topmost level %f", ef, testEnergies[2])
	}
}

func TestOrderBands(t *testing.T) {
	e := mat.NewDense(3, 3, nil)
	e.Set(0, 0, -0.4)
	e.Set(1, 1, -1.0)
	e.Set(2, 2, -0.5)

	bands := OrderBands(e)
	wantIdx := []int{1, 2, 0}
	wantE := []float64{-1.0, -0.5, -0.4}
	for i, b := range bands {
		if b.Index != wantIdx[i] || b.Energy != wantE[i] {
			t.Errorf("band %d = (%d, %f), want (%d, %f)", i, b.Index, b.Energy, wantIdx[i], wantE[i])
		}
	}
}

func orderedBands() []Band {
	bands := make([]Band, len(testEnergies))
	for i, e := range testEnergies {
		bands[i] = Band{Index: i, Energy: e}
	}
	return bands
}

func TestPopulateBandsAufbau(t *testing.T) {
	occ, err := PopulateBands(testNel, testDegen, testKT, testEtol, PopAufbau, orderedBands())
	if err != nil {
		t.Fatalf("PopulateBands failed: %v", err)
	}
	want := []float64{1.0, 1.0, 0.0}
	for i, o := range occ {
		if o.Pop != want[i] {
			t.Errorf("occupation %d = %f, want %f", i, o.Pop, want[i])
		}
	}
}

func TestPopulateBandsFractionalAufbau(t *testing.T) {
	occ, err := PopulateBands(1.5, testDegen, testKT, testEtol, PopAufbau, orderedBands())
	if err != nil {
		t.Fatalf("PopulateBands failed: %v", err)
	}
	if occ[0].Pop != 1.0 || occ[1].Pop != 0.5 || occ[2].Pop != 0.0 {
		t.Errorf("fractional filling = (%f, %f, %f), want (1, 0.5, 0)", occ[0].Pop, occ[1].Pop, occ[2].Pop)
	}
}

func TestPopulateBandsFermi(t *testing.T) {
	occ, err := PopulateBands(testNel, testDegen, testKT, testEtol, PopFermi, orderedBands())
	if err != nil {
		t.Fatalf("PopulateBands failed: %v", err)
	}
	total := 0.0
	for _, o := range occ {
		if o.Pop < 0 || o.Pop > testDegen {
			t.Errorf("occupation %d = %f out of [0, %f]", o.Index, o.Pop, testDegen)
		}
		total += o.Pop
	}
	if math.Abs(total-testNel) > testEtol {
		t.Errorf("total occupation = %f, want %f", total, testNel)
	}
	if occ[0].Pop < occ[1].Pop || occ[1].Pop < occ[2].Pop {
		t.Error("occupations should decrease with energy")
	}
}

func TestPopulateBandsUnknownOption(t *testing.T) {
	if _, err := PopulateBands(testNel, testDegen, testKT, testEtol, 7, orderedBands()); err == nil {
		t.Error("expected error for unknown population option")
	}
}

func TestExciteSwapsPopulations(t *testing.T) {
	occ := []Occ{{0, 1.0}, {1, 1.0}, {2, 0.0}}
	ex, err := Excite(1, 2, occ)
	if err != nil {
		t.Fatalf("Excite failed: %v", err)
	}
	if ex[1].Pop != 0.0 || ex[2].Pop != 1.0 {
		t.Errorf("excitation failed: %+v", ex)
	}
	// source list untouched
	if occ[1].Pop != 1.0 || occ[2].Pop != 0.0 {
		t.Error("Excite mutated its input")
	}

	if _, err := Excite(0, 3, occ); err == nil {
		t.Error("expected error for out-of-range excitation")
	}
}

func diagonalFock() (*mat.Dense, *mat.Dense) {
	n := len(testEnergies)
	f := mat.NewDense(n, n, nil)
	s := mat.NewDense(n, n, nil)
	for i, e := range testEnergies {
		f.Set(i, i, e)
		s.Set(i, i, 1.0)
	}
	return f, s
}

func TestFockToPDiagonalCase(t *testing.T) {
	f, s := diagonalFock()
	res, err := FockToP(f, s, testNel, testDegen, testKT, testEtol, PopAufbau)
	if err != nil {
		t.Fatalf("FockToP failed: %v", err)
	}

	for i, e := range testEnergies {
		if math.Abs(res.E.At(i, i)-e) > 1e-12 {
			t.Errorf("orbital energy %d = %f, want %f", i, res.E.At(i, i), e)
		}
	}

	// diagonal Fock with identity overlap: P has the occupations on its
	// diagonal
	want := []float64{1.0, 1.0, 0.0}
	for i := range testEnergies {
		if math.Abs(res.P.At(i, i)-want[i]) > 1e-10 {
			t.Errorf("P[%d][%d] = %f, want %f", i, i, res.P.At(i, i), want[i])
		}
	}

	if tr := mat.Trace(res.P); math.Abs(tr-testNel) > 1e-10 {
		t.Errorf("Tr(P) = %f, want %f", tr, testNel)
	}
}

func TestEnergyElecExcitationOrdering(t *testing.T) {
	f, s := diagonalFock()
	res, err := FockToP(f, s, testNel, testDegen, testKT, testEtol, PopAufbau)
	if err != nil {
		t.Fatalf("FockToP failed: %v", err)
	}

	eGS := EnergyElec(res.P, f, f)
	if math.Abs(eGS-(-1.5)) > 1e-10 {
		t.Errorf("ground-state energy = %f, want -1.5", eGS)
	}

	ex1, err := Excite(1, 2, res.Occ)
	if err != nil {
		t.Fatal(err)
	}
	e1 := EnergyElec(ComputeDensityMatrix(ex1, res.C), f, f)

	ex2, err := Excite(0, 2, res.Occ)
	if err != nil {
		t.Fatal(err)
	}
	e2 := EnergyElec(ComputeDensityMatrix(ex2, res.C), f, f)

	if !(eGS < e1 && e1 < e2) {
		t.Errorf("excitation energies out of order: %f, %f, %f", eGS, e1, e2)
	}
}

func TestComputeDensityMatrixIdempotentProjector(t *testing.T) {
	// a single fully occupied orthonormal orbital gives an idempotent P
	c := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	occ := []Occ{{0, 1.0}, {1, 0.0}}
	p := ComputeDensityMatrix(occ, c)

	var p2 mat.Dense
	p2.Mul(p, p)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(p2.At(i, j)-p.At(i, j)) > 1e-12 {
				t.Errorf("P^2 != P at [%d][%d]", i, j)
			}
		}
	}
}
