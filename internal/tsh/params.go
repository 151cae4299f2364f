// Package tsh implements the trajectory surface-hopping propagation step:
// velocity-Verlet nuclear motion on the active surface interleaved with
// electronic amplitude propagation, followed by a stochastic fewest-
// switches hop decision.
package tsh

import (
	"fmt"

	"github.com/qdynlab/hopsim/internal/models"
)

// BoltzmannHa is the Boltzmann constant in Hartree per Kelvin.
const BoltzmannHa = 3.166811563e-6

// Method selects the hopping scheme.
type Method int

// FSSH is Tully's fewest-switches surface hopping.
const FSSH Method = 0

// Params are the propagation control parameters.
type Params struct {
	// Rep is the representation of the propagated amplitudes.
	Rep models.Rep
	// RepSH is the representation in which hops are decided.
	RepSH models.Rep

	Method         Method
	UseBoltzFactor bool
	Temperature    float64
	DoReverse      bool
	VelRescaleOpt  int

	// ElecSubsteps splits each electronic half-step into smaller
	// integration substeps.
	ElecSubsteps int
}

// DefaultParams mirrors the standard FSSH setup: diabatic amplitude
// propagation, hops decided in the adiabatic basis, momentum reversal on
// frustrated hops.
func DefaultParams() Params {
	return Params{
		Rep:           models.Diabatic,
		RepSH:         models.Adiabatic,
		Method:        FSSH,
		Temperature:   300.0,
		DoReverse:     true,
		VelRescaleOpt: 0,
		ElecSubsteps:  1,
	}
}

// Validate checks the parameter combination before a run.
func (p Params) Validate() error {
	if p.Method != FSSH {
		return fmt.Errorf("%w: method %d", ErrUnsupportedMethod, int(p.Method))
	}
	if p.UseBoltzFactor && p.Temperature <= 0 {
		return fmt.Errorf("tsh: temperature must be positive with the Boltzmann factor, got %g", p.Temperature)
	}
	if p.ElecSubsteps < 0 {
		return fmt.Errorf("tsh: electronic substeps must be non-negative, got %d", p.ElecSubsteps)
	}
	// only rescaling along the momentum direction is implemented
	if p.VelRescaleOpt != 0 {
		return fmt.Errorf("tsh: velocity rescale option %d not supported", p.VelRescaleOpt)
	}
	return nil
}

func (p Params) substeps() int {
	if p.ElecSubsteps < 1 {
		return 1
	}
	return p.ElecSubsteps
}
