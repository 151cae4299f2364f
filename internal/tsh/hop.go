package tsh

import (
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/ham"
)

// hopProbabilities computes the fewest-switches probabilities out of the
// current state from the vibronic Hamiltonian and the one-trajectory
// density matrix: g(cur->j) = 2*dt*Im(rho_{cur,j} * Hvib_{j,cur}) / rho_{cur,cur}.
func hopProbabilities(hvib, c *mat.CDense, cur int, dt float64) []float64 {
	n, _ := hvib.Dims()
	g := make([]float64, n)

	pop := real(c.At(cur, 0) * cmplx.Conj(c.At(cur, 0)))
	if pop < 1e-12 {
		return g
	}

	total := 0.0
	for j := 0; j < n; j++ {
		if j == cur {
			continue
		}
		rho := c.At(cur, 0) * cmplx.Conj(c.At(j, 0))
		p := 2.0 * dt * imag(rho*hvib.At(j, cur)) / pop
		if p < 0 {
			p = 0
		}
		g[j] = p
		total += p
	}
	if total > 1 {
		for j := range g {
			g[j] /= total
		}
	}
	return g
}

// proposeHop draws a new state from the cumulative hop probabilities.
// It returns cur when no interval is hit.
func proposeHop(g []float64, cur int, rnd *rand.Rand) int {
	ksi := rnd.Float64()
	left := 0.0
	for j, p := range g {
		if j == cur || p == 0 {
			continue
		}
		if ksi >= left && ksi < left+p {
			return j
		}
		left += p
	}
	return cur
}

// kineticEnergy sums 0.5 * iM * p^2 over a trajectory's dofs.
func kineticEnergy(p *mat.Dense, iM []float64, traj int) float64 {
	ekin := 0.0
	for dof := range iM {
		ekin += 0.5 * iM[dof] * p.At(dof, traj) * p.At(dof, traj)
	}
	return ekin
}

// acceptHop decides whether the proposed surface switch conserves total
// energy, rescaling the trajectory's momenta along themselves on success.
// A frustrated hop leaves the state unchanged and optionally reverses the
// momenta. With the Boltzmann factor the probabilities were already
// thermally weighted, so hops are accepted without rescaling.
func acceptHop(child *ham.Hamiltonian, p *mat.Dense, iM []float64, traj, cur, prop int, prms Params) int {
	if prop == cur {
		return cur
	}
	if prms.UseBoltzFactor {
		return prop
	}

	dE := child.Eadi[prop] - child.Eadi[cur]
	ekin := kineticEnergy(p, iM, traj)
	if ekin-dE < 0 {
		// frustrated hop
		if prms.DoReverse {
			for dof := range iM {
				p.Set(dof, traj, -p.At(dof, traj))
			}
		}
		return cur
	}

	scale := 1.0
	if ekin > 0 {
		scale = math.Sqrt((ekin - dE) / ekin)
	}
	for dof := range iM {
		p.Set(dof, traj, scale*p.At(dof, traj))
	}
	return prop
}

// boltzmannWeight thermally damps upward transitions.
func boltzmannWeight(g []float64, child *ham.Hamiltonian, cur int, temperature float64) {
	kT := BoltzmannHa * temperature
	for j := range g {
		if j == cur || g[j] == 0 {
			continue
		}
		dE := child.Eadi[j] - child.Eadi[cur]
		if dE > 0 {
			g[j] *= math.Exp(-dE / kT)
		}
	}
}
