package calculators

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/linalg"
)

// ComputeDensityMatrix forms P = sum_k pop_k * c_k c_k^T over the
// occupied orbitals, where c_k is the eigenvector column named by the
// occupation entry.
func ComputeDensityMatrix(occ []Occ, c *mat.Dense) *mat.Dense {
	n, _ := c.Dims()
	p := mat.NewDense(n, n, nil)
	for _, o := range occ {
		if o.Pop == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				p.Set(i, j, p.At(i, j)+o.Pop*c.At(i, o.Index)*c.At(j, o.Index))
			}
		}
	}
	return p
}

// FockResult bundles the outputs of FockToP.
type FockResult struct {
	// E holds the orbital energies on its diagonal.
	E *mat.Dense
	// C holds the orbital coefficients as columns.
	C *mat.Dense
	// P is the density matrix for the computed occupations.
	P *mat.Dense

	Bands []Band
	Occ   []Occ
}

// FockToP solves the generalized eigenproblem F C = S C E by Lowdin
// orthogonalization, orders and populates the resulting bands, and builds
// the density matrix.
func FockToP(f, s *mat.Dense, nel, degen, kT, etol float64, popOpt int) (*FockResult, error) {
	sHalf, err := linalg.SqrtInverse(s)
	if err != nil {
		return nil, fmt.Errorf("calculators: overlap orthogonalization: %w", err)
	}

	n, _ := f.Dims()
	tmp := mat.NewDense(n, n, nil)
	tmp.Mul(sHalf, f)
	ft := mat.NewDense(n, n, nil)
	ft.Mul(tmp, sHalf)

	vals, vecs, err := linalg.EigenSym(ft)
	if err != nil {
		return nil, fmt.Errorf("calculators: Fock diagonalization: %w", err)
	}

	c := mat.NewDense(n, n, nil)
	c.Mul(sHalf, vecs)

	e := mat.NewDense(n, n, nil)
	for i, v := range vals {
		e.Set(i, i, v)
	}

	bands := OrderBands(e)
	occ, err := PopulateBands(nel, degen, kT, etol, popOpt, bands)
	if err != nil {
		return nil, err
	}

	return &FockResult{
		E:     e,
		C:     c,
		P:     ComputeDensityMatrix(occ, c),
		Bands: bands,
		Occ:   occ,
	}, nil
}

// EnergyElec evaluates the electronic energy 0.5 * Tr(P * (H + F)) for a
// density matrix, core Hamiltonian and Fock matrix.
func EnergyElec(p, h, f *mat.Dense) float64 {
	n, _ := p.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += p.At(i, j) * (h.At(j, i) + f.At(j, i))
		}
	}
	return 0.5 * sum
}
