package calculators

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Band pairs an orbital index with its energy.
type Band struct {
	Index  int
	Energy float64
}

// Occ pairs an orbital index with its population.
type Occ struct {
	Index int
	Pop   float64
}

// OrderBands reads the diagonal of an energy matrix and returns the
// (index, energy) pairs sorted by increasing energy.
func OrderBands(e *mat.Dense) []Band {
	n, _ := e.Dims()
	bands := make([]Band, n)
	for i := 0; i < n; i++ {
		bands[i] = Band{Index: i, Energy: e.At(i, i)}
	}
	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].Energy < bands[j].Energy
	})
	return bands
}

// Population options for PopulateBands.
const (
	// PopAufbau fills bands from the bottom, degen electrons per band.
	PopAufbau = 0
	// PopFermi distributes electrons with Fermi-Dirac smearing.
	PopFermi = 1
)

// PopulateBands distributes nel electrons over the ordered bands.
func PopulateBands(nel, degen, kT, etol float64, popOpt int, bands []Band) ([]Occ, error) {
	occ := make([]Occ, len(bands))

	switch popOpt {
	case PopAufbau:
		left := nel
		for i, b := range bands {
			pop := degen
			if left < degen {
				pop = left
			}
			if pop < 0 {
				pop = 0
			}
			occ[i] = Occ{Index: b.Index, Pop: pop}
			left -= pop
		}
	case PopFermi:
		energies := make([]float64, len(bands))
		for i, b := range bands {
			energies[i] = b.Energy
		}
		ef, err := FermiEnergy(energies, nel, degen, kT, etol)
		if err != nil {
			return nil, err
		}
		for i, b := range bands {
			occ[i] = Occ{Index: b.Index, Pop: FermiPopulation(b.Energy, ef, degen, kT)}
		}
	default:
		return nil, fmt.Errorf("calculators: unknown population option %d", popOpt)
	}
	return occ, nil
}

// Excite promotes between the bands at positions i and j of the ordered
// occupation list by swapping their populations.
func Excite(i, j int, occ []Occ) ([]Occ, error) {
	if i < 0 || j < 0 || i >= len(occ) || j >= len(occ) {
		return nil, fmt.Errorf("calculators: excitation %d->%d out of range for %d bands", i, j, len(occ))
	}
	out := make([]Occ, len(occ))
	copy(out, occ)
	out[i].Pop, out[j].Pop = occ[j].Pop, occ[i].Pop
	return out, nil
}
