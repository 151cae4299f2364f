// Package ham maintains the electronic Hamiltonian data for a trajectory:
// diabatic matrices filled from a model callback, the adiabatic basis
// obtained by diagonalization, nonadiabatic couplings and the vibronic
// Hamiltonian in both representations.
package ham

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/linalg"
	"github.com/qdynlab/hopsim/internal/models"
)

var (
	// ErrNotComputed indicates an accessor was called before the
	// corresponding compute step.
	ErrNotComputed = errors.New("ham: quantity not computed yet")

	// ErrDimension indicates mismatched state or dof dimensions.
	ErrDimension = errors.New("ham: dimension mismatch")
)

// Hamiltonian holds the electronic structure of a single trajectory.
type Hamiltonian struct {
	NDia  int
	NAdi  int
	NNucl int

	// Diabatic quantities, filled by SetDiabatic.
	Hdia   *mat.CDense
	Sdia   *mat.CDense
	DHdia  []*mat.CDense
	Dc1Dia []*mat.CDense

	// Adiabatic quantities, filled by ComputeAdiabatic.
	Eadi   []float64
	Hadi   *mat.CDense
	U      *mat.CDense // basis transform, U^H Sdia U = I
	DHadi  []*mat.CDense
	Dc1Adi []*mat.CDense

	// Couplings and vibronic Hamiltonians.
	NACDia  *mat.CDense
	NACAdi  *mat.CDense
	HvibDia *mat.CDense
	HvibAdi *mat.CDense
}

// New allocates a Hamiltonian for ndia diabatic states, nadi adiabatic
// states and nnucl nuclear degrees of freedom.
func New(ndia, nadi, nnucl int) *Hamiltonian {
	return &Hamiltonian{NDia: ndia, NAdi: nadi, NNucl: nnucl}
}

// SetDiabatic installs a model evaluation. The output dimensions must
// match the Hamiltonian's.
func (h *Hamiltonian) SetDiabatic(o *models.Output) error {
	if r, c := o.Hdia.Dims(); r != h.NDia || c != h.NDia {
		return fmt.Errorf("%w: model returned %dx%d Hdia, want %dx%d", ErrDimension, r, c, h.NDia, h.NDia)
	}
	if len(o.DHdia) != h.NNucl || len(o.Dc1) != h.NNucl {
		return fmt.Errorf("%w: model returned %d dof derivatives, want %d", ErrDimension, len(o.DHdia), h.NNucl)
	}
	h.Hdia = o.Hdia
	h.Sdia = o.Sdia
	h.DHdia = o.DHdia
	h.Dc1Dia = o.Dc1
	return nil
}

// ComputeAdiabatic diagonalizes the diabatic Hamiltonian in the (possibly
// non-orthogonal) diabatic basis and transforms the coordinate
// derivatives and derivative couplings into the adiabatic basis.
func (h *Hamiltonian) ComputeAdiabatic() error {
	if h.Hdia == nil {
		return ErrNotComputed
	}
	vals, u, err := linalg.EigenGeneral(h.Hdia, h.Sdia)
	if err != nil {
		return fmt.Errorf("ham: adiabatic diagonalization: %w", err)
	}
	h.Eadi = vals
	h.U = u
	h.Hadi = linalg.Zeros(h.NAdi, h.NAdi)
	for i := 0; i < h.NAdi; i++ {
		h.Hadi.Set(i, i, complex(vals[i], 0))
	}

	uh := linalg.Dagger(u)
	h.DHadi = make([]*mat.CDense, h.NNucl)
	h.Dc1Adi = make([]*mat.CDense, h.NNucl)
	for dof := 0; dof < h.NNucl; dof++ {
		h.DHadi[dof] = linalg.Mul3(uh, h.DHdia[dof], u)
		h.Dc1Adi[dof] = linalg.Mul3(uh, h.Dc1Dia[dof], u)
	}
	return nil
}

// ComputeNACDia assembles the scalar nonadiabatic coupling matrix
// sum_dof (p_dof * iM_dof) * <dia|d/dR_dof|dia> for one trajectory's
// momenta.
func (h *Hamiltonian) ComputeNACDia(p, iM []float64) error {
	if len(p) != h.NNucl || len(iM) != h.NNucl {
		return ErrDimension
	}
	nac := linalg.Zeros(h.NDia, h.NDia)
	for dof := 0; dof < h.NNucl; dof++ {
		nac = linalg.Add(nac, linalg.Scale(complex(p[dof]*iM[dof], 0), h.Dc1Dia[dof]))
	}
	h.NACDia = nac
	return nil
}

// ComputeNACAdi is the adiabatic-basis counterpart of ComputeNACDia.
func (h *Hamiltonian) ComputeNACAdi(p, iM []float64) error {
	if h.Dc1Adi == nil {
		return ErrNotComputed
	}
	if len(p) != h.NNucl || len(iM) != h.NNucl {
		return ErrDimension
	}
	nac := linalg.Zeros(h.NAdi, h.NAdi)
	for dof := 0; dof < h.NNucl; dof++ {
		nac = linalg.Add(nac, linalg.Scale(complex(p[dof]*iM[dof], 0), h.Dc1Adi[dof]))
	}
	h.NACAdi = nac
	return nil
}

// ComputeHvibDia forms the diabatic vibronic Hamiltonian H - i*NAC.
func (h *Hamiltonian) ComputeHvibDia() error {
	if h.NACDia == nil {
		return ErrNotComputed
	}
	h.HvibDia = linalg.Sub(h.Hdia, linalg.Scale(1i, h.NACDia))
	return nil
}

// ComputeHvibAdi forms the adiabatic vibronic Hamiltonian E - i*NAC.
func (h *Hamiltonian) ComputeHvibAdi() error {
	if h.NACAdi == nil || h.Hadi == nil {
		return ErrNotComputed
	}
	h.HvibAdi = linalg.Sub(h.Hadi, linalg.Scale(1i, h.NACAdi))
	return nil
}

// OvlpDia returns the diabatic overlap matrix.
func (h *Hamiltonian) OvlpDia() *mat.CDense { return h.Sdia }

// BasisTransform returns the diabatic-to-adiabatic transform.
func (h *Hamiltonian) BasisTransform() *mat.CDense { return h.U }

// EhrenfestEnergyDia evaluates <C|Hdia|C> / <C|Sdia|C> for a diabatic
// amplitude column vector.
func (h *Hamiltonian) EhrenfestEnergyDia(c *mat.CDense) complex128 {
	ch := linalg.Dagger(c)
	num := linalg.Mul3(ch, h.Hdia, c).At(0, 0)
	den := linalg.Mul3(ch, h.Sdia, c).At(0, 0)
	return num / den
}

// EhrenfestEnergyAdi evaluates <C|Hadi|C> / <C|C> for an adiabatic
// amplitude column vector.
func (h *Hamiltonian) EhrenfestEnergyAdi(c *mat.CDense) complex128 {
	ch := linalg.Dagger(c)
	num := linalg.Mul3(ch, h.Hadi, c).At(0, 0)
	den := linalg.Mul(ch, c).At(0, 0)
	return num / den
}

// DensityMatrices forms the reduced density matrices in both
// representations from one trajectory's amplitudes in the given
// representation.
func (h *Hamiltonian) DensityMatrices(c *mat.CDense, rep models.Rep) (dmDia, dmAdi *mat.CDense, err error) {
	if h.U == nil {
		return nil, nil, ErrNotComputed
	}
	switch rep {
	case models.Diabatic:
		s := h.Sdia
		raw := linalg.Mul(c, linalg.Dagger(c))
		dmDia = linalg.Mul3(s, raw, s)
		dmAdi = linalg.Mul3(linalg.Dagger(h.U), dmDia, h.U)
	case models.Adiabatic:
		dmAdi = linalg.Mul(c, linalg.Dagger(c))
		su := linalg.Mul(h.Sdia, h.U)
		dmDia = linalg.Mul3(su, dmAdi, linalg.Dagger(su))
	default:
		return nil, nil, fmt.Errorf("ham: unknown representation %v", rep)
	}
	return dmDia, dmAdi, nil
}
