package ham

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/linalg"
	"github.com/qdynlab/hopsim/internal/models"
)

// Hierarchy manages one Hamiltonian per trajectory. Phase-space matrices
// are indexed (dof, trajectory); amplitude matrices (state, trajectory).
type Hierarchy struct {
	NDia  int
	NAdi  int
	NNucl int

	Children []*Hamiltonian
}

// NewHierarchy allocates ntraj child Hamiltonians.
func NewHierarchy(ndia, nadi, nnucl, ntraj int) *Hierarchy {
	hi := &Hierarchy{NDia: ndia, NAdi: nadi, NNucl: nnucl}
	hi.Children = make([]*Hamiltonian, ntraj)
	for i := range hi.Children {
		hi.Children[i] = New(ndia, nadi, nnucl)
	}
	return hi
}

// NTraj returns the number of trajectories managed.
func (hi *Hierarchy) NTraj() int { return len(hi.Children) }

// ComputeDiabatic evaluates the model callback at each trajectory's
// coordinate (first dof; the models are one-dimensional) and installs the
// results.
func (hi *Hierarchy) ComputeDiabatic(f models.Func, q *mat.Dense) error {
	_, ntraj := q.Dims()
	if ntraj != len(hi.Children) {
		return fmt.Errorf("%w: %d trajectory columns for %d children", ErrDimension, ntraj, len(hi.Children))
	}
	for traj, child := range hi.Children {
		out, err := f(q.At(0, traj))
		if err != nil {
			return fmt.Errorf("ham: model evaluation for trajectory %d: %w", traj, err)
		}
		if err := child.SetDiabatic(out); err != nil {
			return err
		}
	}
	return nil
}

// ComputeAdiabatic diagonalizes every child.
func (hi *Hierarchy) ComputeAdiabatic() error {
	for traj, child := range hi.Children {
		if err := child.ComputeAdiabatic(); err != nil {
			return fmt.Errorf("ham: trajectory %d: %w", traj, err)
		}
	}
	return nil
}

// momentumColumn extracts trajectory traj's momenta from the (dof, traj)
// matrix.
func momentumColumn(p *mat.Dense, traj int) []float64 {
	ndof, _ := p.Dims()
	col := make([]float64, ndof)
	for dof := 0; dof < ndof; dof++ {
		col[dof] = p.At(dof, traj)
	}
	return col
}

// ComputeNAC recomputes the coupling and vibronic Hamiltonian for every
// child in the given representation.
func (hi *Hierarchy) ComputeNAC(rep models.Rep, p *mat.Dense, iM []float64) error {
	for traj, child := range hi.Children {
		pc := momentumColumn(p, traj)
		var err error
		switch rep {
		case models.Diabatic:
			if err = child.ComputeNACDia(pc, iM); err == nil {
				err = child.ComputeHvibDia()
			}
		case models.Adiabatic:
			if err = child.ComputeNACAdi(pc, iM); err == nil {
				err = child.ComputeHvibAdi()
			}
		default:
			err = fmt.Errorf("ham: unknown representation %v", rep)
		}
		if err != nil {
			return fmt.Errorf("ham: trajectory %d: %w", traj, err)
		}
	}
	return nil
}

// column copies column traj of c into a fresh n x 1 matrix.
func column(c *mat.CDense, traj int) *mat.CDense {
	n, _ := c.Dims()
	out := mat.NewCDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, c.At(i, traj))
	}
	return out
}

func setColumn(c *mat.CDense, traj int, col *mat.CDense) {
	n, _ := c.Dims()
	for i := 0; i < n; i++ {
		c.Set(i, traj, col.At(i, 0))
	}
}

// AmplDia2Adi fills Cadi from Cdia per trajectory: Cadi = U^H Sdia Cdia.
func (hi *Hierarchy) AmplDia2Adi(cdia, cadi *mat.CDense) error {
	for traj, child := range hi.Children {
		if child.U == nil {
			return ErrNotComputed
		}
		col := linalg.Mul3(linalg.Dagger(child.U), child.Sdia, column(cdia, traj))
		setColumn(cadi, traj, col)
	}
	return nil
}

// AmplAdi2Dia fills Cdia from Cadi per trajectory: Cdia = U Cadi.
func (hi *Hierarchy) AmplAdi2Dia(cdia, cadi *mat.CDense) error {
	for traj, child := range hi.Children {
		if child.U == nil {
			return ErrNotComputed
		}
		col := linalg.Mul(child.U, column(cadi, traj))
		setColumn(cdia, traj, col)
	}
	return nil
}

// EhrenfestEnergy averages the per-trajectory Ehrenfest energy in the
// given representation over the ensemble.
func (hi *Hierarchy) EhrenfestEnergy(rep models.Rep, c *mat.CDense) (float64, error) {
	if len(hi.Children) == 0 {
		return 0, ErrNotComputed
	}
	sum := 0.0
	for traj, child := range hi.Children {
		col := column(c, traj)
		switch rep {
		case models.Diabatic:
			sum += real(child.EhrenfestEnergyDia(col))
		case models.Adiabatic:
			sum += real(child.EhrenfestEnergyAdi(col))
		default:
			return 0, fmt.Errorf("ham: unknown representation %v", rep)
		}
	}
	return sum / float64(len(hi.Children)), nil
}

// DensityMatrices returns the reduced density matrices of trajectory traj.
func (hi *Hierarchy) DensityMatrices(c *mat.CDense, traj int, rep models.Rep) (dmDia, dmAdi *mat.CDense, err error) {
	return hi.Children[traj].DensityMatrices(column(c, traj), rep)
}
