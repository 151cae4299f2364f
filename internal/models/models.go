// Package models defines the analytic 2x2 diabatic Hamiltonian models:
// closed-form potential energy surfaces, overlaps and their coordinate
// derivatives, evaluated at a single nuclear coordinate.
package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/linalg"
)

// NStates is the number of diabatic states in every model.
const NStates = 2

// Params holds the recognized model parameters. Models 1-3 use X0, K, D
// and V; model 4 uses K, Omega and V.
type Params struct {
	X0    float64 `yaml:"x0"`
	K     float64 `yaml:"k"`
	D     float64 `yaml:"d"`
	V     float64 `yaml:"v"`
	Omega float64 `yaml:"omega"`
}

// Output bundles the quantities a model evaluates at a coordinate:
// the diabatic Hamiltonian, the overlap, and per-dof coordinate
// derivatives of the Hamiltonian and the derivative couplings.
type Output struct {
	Hdia *mat.CDense
	Sdia *mat.CDense

	// DHdia[i] is d(Hdia)/dR_i, Dc1[i] is <dia| d/dR_i |dia>.
	DHdia []*mat.CDense
	Dc1   []*mat.CDense

	Rep Rep
}

func newOutput() *Output {
	return &Output{
		Hdia:  linalg.Zeros(NStates, NStates),
		Sdia:  linalg.Identity(NStates),
		DHdia: []*mat.CDense{linalg.Zeros(NStates, NStates)},
		Dc1:   []*mat.CDense{linalg.Zeros(NStates, NStates)},
	}
}

// setWells fills the shared two-shifted-wells Hamiltonian
//
//	Hdia = | k*x^2              V         |
//	       | V        k*(x-x0)^2 + D      |
//
// and its coordinate derivative.
func setWells(o *Output, x float64, p Params) {
	o.Hdia.Set(0, 0, complex(p.K*x*x, 0))
	o.Hdia.Set(0, 1, complex(p.V, 0))
	o.Hdia.Set(1, 0, complex(p.V, 0))
	o.Hdia.Set(1, 1, complex(p.K*(x-p.X0)*(x-p.X0)+p.D, 0))

	o.DHdia[0].Set(0, 0, complex(2.0*p.K*x, 0))
	o.DHdia[0].Set(1, 1, complex(2.0*p.K*(x-p.X0), 0))
}

// Model1 is two shifted harmonic wells with constant coupling V,
// orthogonal basis and zero derivative coupling.
func Model1(x float64, p Params) *Output {
	o := newOutput()
	setWells(o, x, p)
	return o
}

// Model2 has the same surfaces as Model1 but injects a constant
// antisymmetric derivative coupling while the overlap stays the identity.
// This exercises the non-Hermitian-coupling path rather than any
// physically derived coupling.
func Model2(x float64, p Params) *Output {
	o := newOutput()
	setWells(o, x, p)
	o.Dc1[0].Set(0, 1, complex(-0.1, 0))
	o.Dc1[0].Set(1, 0, complex(0.1, 0))
	return o
}

// Model3 has the same surfaces as Model1 with a coordinate-dependent
// Gaussian overlap off-diagonal; the derivative coupling is the analytic
// derivative of that term, so dS/dR stays consistent with the coupling.
func Model3(x float64, p Params) *Output {
	o := newOutput()
	setWells(o, x, p)

	ex := 0.05 * math.Exp(-(x-0.5*p.X0)*(x-0.5*p.X0))
	o.Sdia.Set(0, 1, complex(ex, 0))
	o.Sdia.Set(1, 0, complex(ex, 0))

	d := -(x - 0.5*p.X0) * ex
	o.Dc1[0].Set(0, 1, complex(d, 0))
	o.Dc1[0].Set(1, 0, complex(d, 0))
	return o
}

// Model4 is the periodic pair of surfaces
//
//	Hdia = | k*cos(omega*x)       V        |
//	       | V              k*sin(omega*x) |
//
// with orthogonal basis and zero derivative coupling.
func Model4(x float64, p Params) *Output {
	o := newOutput()
	w := p.Omega
	o.Hdia.Set(0, 0, complex(p.K*math.Cos(x*w), 0))
	o.Hdia.Set(0, 1, complex(p.V, 0))
	o.Hdia.Set(1, 0, complex(p.V, 0))
	o.Hdia.Set(1, 1, complex(p.K*math.Sin(x*w), 0))

	o.DHdia[0].Set(0, 0, complex(-w*p.K*math.Sin(x*w), 0))
	o.DHdia[0].Set(1, 1, complex(w*p.K*math.Cos(x*w), 0))
	return o
}
