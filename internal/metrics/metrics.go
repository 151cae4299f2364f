// Package metrics implements run-level diagnostics observed over the
// per-step records of a surface-hopping run.
package metrics

import (
	"math"

	"github.com/qdynlab/hopsim/internal/traj"
)

// EnergyDrift tracks the largest relative deviation of the total energy
// from its first observed value.
type EnergyDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(rec traj.Record) {
	if e.samples == 0 {
		e.initial = rec.Etot
	}
	e.samples++
	if e.initial != 0 {
		drift := math.Abs(rec.Etot-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// AveragePopulation averages one adiabatic population column.
type AveragePopulation struct {
	state   int
	sum     float64
	samples int
}

func NewAveragePopulation(state int) *AveragePopulation {
	return &AveragePopulation{state: state}
}

func (a *AveragePopulation) Name() string {
	if a.state == 0 {
		return "avg_pop_adi_0"
	}
	return "avg_pop_adi_1"
}

func (a *AveragePopulation) Observe(rec traj.Record) {
	if a.state == 0 {
		a.sum += rec.PopAdi0
	} else {
		a.sum += rec.PopAdi1
	}
	a.samples++
}

func (a *AveragePopulation) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *AveragePopulation) Reset() {
	a.sum = 0
	a.samples = 0
}

// HopCount counts active-surface switches of the reference trajectory.
type HopCount struct {
	last    int
	hops    int
	samples int
}

func NewHopCount() *HopCount { return &HopCount{} }

func (h *HopCount) Name() string { return "hops" }

func (h *HopCount) Observe(rec traj.Record) {
	if h.samples > 0 && rec.State != h.last {
		h.hops++
	}
	h.last = rec.State
	h.samples++
}

func (h *HopCount) Value() float64 { return float64(h.hops) }

func (h *HopCount) Reset() {
	h.hops = 0
	h.samples = 0
	h.last = 0
}
