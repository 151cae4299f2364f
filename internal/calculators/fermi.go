// Package calculators provides electronic-structure post-processing:
// Fermi-energy search, band ordering and population, and
// Fock-to-density-matrix solving.
package calculators

import (
	"errors"
	"math"
)

// ErrNoBands indicates an empty energy spectrum was supplied.
var ErrNoBands = errors.New("calculators: no band energies supplied")

// ErrBadFilling indicates an electron count the spectrum cannot hold.
var ErrBadFilling = errors.New("calculators: electron count outside spectrum capacity")

// FermiPopulation evaluates the Fermi-Dirac population of a level at
// energy e for Fermi energy ef, level degeneracy degen and thermal energy
// kT.
func FermiPopulation(e, ef, degen, kT float64) float64 {
	arg := (e - ef) / kT
	// guard the exponential for far-from-ef levels
	if arg > 50 {
		return 0
	}
	if arg < -50 {
		return degen
	}
	return degen / (1.0 + math.Exp(arg))
}

// FermiIntegral sums the Fermi-Dirac populations of all bands at a trial
// Fermi energy.
func FermiIntegral(bnds []float64, ef, degen, kT float64) float64 {
	sum := 0.0
	for _, e := range bnds {
		sum += FermiPopulation(e, ef, degen, kT)
	}
	return sum
}

// FermiEnergy searches, by bisection, for the Fermi energy at which the
// Fermi integral equals the electron count nel to within etol.
func FermiEnergy(bnds []float64, nel, degen, kT, etol float64) (float64, error) {
	if len(bnds) == 0 {
		return 0, ErrNoBands
	}
	// the integral ranges over [0, degen * len(bnds)], so counts outside
	// that interval can never be bracketed
	if nel < 0 || nel > degen*float64(len(bnds)) {
		return 0, ErrBadFilling
	}

	lo, hi := bnds[0], bnds[0]
	for _, e := range bnds {
		lo = math.Min(lo, e)
		hi = math.Max(hi, e)
	}
	// widen until the target is bracketed
	lo -= 10.0 * kT
	hi += 10.0 * kT
	for FermiIntegral(bnds, lo, degen, kT) > nel {
		lo -= 10.0 * kT
	}
	for FermiIntegral(bnds, hi, degen, kT) < nel {
		hi += 10.0 * kT
	}

	ef := 0.5 * (lo + hi)
	for i := 0; i < 200; i++ {
		n := FermiIntegral(bnds, ef, degen, kT)
		if math.Abs(n-nel) < etol {
			break
		}
		if n > nel {
			hi = ef
		} else {
			lo = ef
		}
		ef = 0.5 * (lo + hi)
	}
	return ef, nil
}
