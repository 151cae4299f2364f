package tsh

import (
	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/ham"
	"github.com/qdynlab/hopsim/internal/linalg"
	"github.com/qdynlab/hopsim/internal/models"
)

// hvib returns the vibronic Hamiltonian of a child in the given
// representation.
func hvib(child *ham.Hamiltonian, rep models.Rep) *mat.CDense {
	if rep == models.Adiabatic {
		return child.HvibAdi
	}
	return child.HvibDia
}

// applyHvib computes -i * H * c.
func applyHvib(h *mat.CDense, c *mat.CDense) *mat.CDense {
	return linalg.Scale(-1i, linalg.Mul(h, c))
}

// rk4Electronic advances i*dc/dt = Hvib*c by dt with the vibronic
// Hamiltonian held fixed across the step.
func rk4Electronic(h *mat.CDense, c *mat.CDense, dt float64) *mat.CDense {
	half := complex(dt/2.0, 0)

	k1 := applyHvib(h, c)
	k2 := applyHvib(h, linalg.Add(c, linalg.Scale(half, k1)))
	k3 := applyHvib(h, linalg.Add(c, linalg.Scale(half, k2)))
	k4 := applyHvib(h, linalg.Add(c, linalg.Scale(complex(dt, 0), k3)))

	sum := linalg.Add(k1, linalg.Scale(2, k2))
	sum = linalg.Add(sum, linalg.Scale(2, k3))
	sum = linalg.Add(sum, k4)
	return linalg.Add(c, linalg.Scale(complex(dt/6.0, 0), sum))
}

// propagateElectronic advances all trajectory amplitude columns by dt in
// the propagation representation, split into substeps.
func propagateElectronic(hier *ham.Hierarchy, c *mat.CDense, rep models.Rep, dt float64, substeps int) {
	n, _ := c.Dims()
	sub := dt / float64(substeps)
	for traj, child := range hier.Children {
		h := hvib(child, rep)
		col := mat.NewCDense(n, 1, nil)
		for i := 0; i < n; i++ {
			col.Set(i, 0, c.At(i, traj))
		}
		for s := 0; s < substeps; s++ {
			col = rk4Electronic(h, col, sub)
		}
		for i := 0; i < n; i++ {
			c.Set(i, traj, col.At(i, 0))
		}
	}
}
