package tsh

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/ham"
	"github.com/qdynlab/hopsim/internal/models"
)

// force returns the active-surface force on one dof: the negative
// Hellmann-Feynman derivative of the active state's energy.
func force(child *ham.Hamiltonian, rep models.Rep, state, dof int) float64 {
	if rep == models.Adiabatic {
		return -real(child.DHadi[dof].At(state, state))
	}
	return -real(child.DHdia[dof].At(state, state))
}

func halfKick(hier *ham.Hierarchy, p *mat.Dense, states []int, rep models.Rep, dt float64) {
	ndof, _ := p.Dims()
	for traj, child := range hier.Children {
		for dof := 0; dof < ndof; dof++ {
			p.Set(dof, traj, p.At(dof, traj)+0.5*dt*force(child, rep, states[traj], dof))
		}
	}
}

func drift(q, p *mat.Dense, iM []float64, dt float64) {
	ndof, ntraj := q.Dims()
	for traj := 0; traj < ntraj; traj++ {
		for dof := 0; dof < ndof; dof++ {
			q.Set(dof, traj, q.At(dof, traj)+iM[dof]*p.At(dof, traj)*dt)
		}
	}
}

// refresh recomputes couplings and vibronic Hamiltonians in both the
// propagation and the hopping representations for the current momenta.
func refresh(hier *ham.Hierarchy, p *mat.Dense, iM []float64, prms Params) error {
	if err := hier.ComputeNAC(prms.Rep, p, iM); err != nil {
		return err
	}
	if prms.RepSH != prms.Rep {
		return hier.ComputeNAC(prms.RepSH, p, iM)
	}
	return nil
}

// shAmplitudes returns the amplitudes in the hopping representation,
// transforming a copy when it differs from the propagation one.
func shAmplitudes(hier *ham.Hierarchy, c *mat.CDense, prms Params) (*mat.CDense, error) {
	if prms.RepSH == prms.Rep {
		return c, nil
	}
	n, ntraj := c.Dims()
	out := mat.NewCDense(n, ntraj, nil)
	if prms.Rep == models.Diabatic {
		if err := hier.AmplDia2Adi(c, out); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := hier.AmplAdi2Dia(out, c); err != nil {
		return nil, err
	}
	return out, nil
}

func valid(q, p *mat.Dense, c *mat.CDense) bool {
	for _, m := range []*mat.Dense{q, p} {
		r, cc := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < cc; j++ {
				if math.IsNaN(m.At(i, j)) || math.IsInf(m.At(i, j), 0) {
					return false
				}
			}
		}
	}
	r, cc := c.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < cc; j++ {
			v := c.At(i, j)
			if math.IsNaN(real(v)) || math.IsNaN(imag(v)) ||
				math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
				return false
			}
		}
	}
	return true
}

// Step advances the coupled electron-nuclear state by one time step and
// updates the active surfaces in place. The Hamiltonian hierarchy must
// hold the evaluation at the entry geometry; on return it holds the
// evaluation at the exit geometry.
func Step(dt float64, q, p *mat.Dense, iM []float64, c *mat.CDense, states []int,
	hier *ham.Hierarchy, f models.Func, prms Params, rnd *rand.Rand) error {

	sub := prms.substeps()

	// first electronic half-step at the entry geometry
	if err := refresh(hier, p, iM, prms); err != nil {
		return err
	}
	propagateElectronic(hier, c, prms.Rep, 0.5*dt, sub)

	// nuclear velocity-Verlet around the Hamiltonian recompute
	halfKick(hier, p, states, prms.RepSH, dt)
	drift(q, p, iM, dt)

	if err := hier.ComputeDiabatic(f, q); err != nil {
		return err
	}
	if err := hier.ComputeAdiabatic(); err != nil {
		return err
	}

	halfKick(hier, p, states, prms.RepSH, dt)

	// second electronic half-step with the exit-geometry couplings
	if err := refresh(hier, p, iM, prms); err != nil {
		return err
	}
	propagateElectronic(hier, c, prms.Rep, 0.5*dt, sub)

	// stochastic surface switch
	csh, err := shAmplitudes(hier, c, prms)
	if err != nil {
		return err
	}
	n, _ := c.Dims()
	for traj, child := range hier.Children {
		col := mat.NewCDense(n, 1, nil)
		for i := 0; i < n; i++ {
			col.Set(i, 0, csh.At(i, traj))
		}
		g := hopProbabilities(hvib(child, prms.RepSH), col, states[traj], dt)
		if prms.UseBoltzFactor {
			boltzmannWeight(g, child, states[traj], prms.Temperature)
		}
		prop := proposeHop(g, states[traj], rnd)
		states[traj] = acceptHop(child, p, iM, traj, states[traj], prop, prms)
	}

	if !valid(q, p, c) {
		return ErrPropagation
	}
	return nil
}
