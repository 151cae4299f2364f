package traj

import (
	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/ham"
	"github.com/qdynlab/hopsim/internal/models"
)

// Energies are the per-step energy diagnostics. The variance fields are
// placeholders kept at zero; they are written but never populated.
type Energies struct {
	Ekin  float64
	Epot  float64
	Etot  float64
	DEkin float64
	DEpot float64
	DEtot float64
}

// TotalEnergies evaluates the Ehrenfest potential energy in the given
// representation and the classical kinetic energy
// sum_dof 0.5 * iM_dof * p_dof^2 averaged over trajectories.
func TotalEnergies(hier *ham.Hierarchy, p *mat.Dense, c *mat.CDense, iM []float64, rep models.Rep) (Energies, error) {
	var out Energies

	epot, err := hier.EhrenfestEnergy(rep, c)
	if err != nil {
		return out, err
	}
	out.Epot = epot

	ndof, ntraj := p.Dims()
	for traj := 0; traj < ntraj; traj++ {
		for dof := 0; dof < ndof; dof++ {
			out.Ekin += 0.5 * iM[dof] * p.At(dof, traj) * p.At(dof, traj)
		}
	}
	out.Ekin /= float64(ntraj)

	out.Etot = out.Ekin + out.Epot
	out.DEtot = out.DEkin + out.DEpot
	return out, nil
}
