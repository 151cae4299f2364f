// Package traj drives trajectory surface-hopping runs: it samples the
// initial phase space, steps the propagator, and serializes per-step
// diagnostics.
package traj

// Record holds the diagnostics of one propagation step for the reference
// trajectory.
type Record struct {
	Time float64
	Q    float64
	P    float64

	Ekin  float64
	Epot  float64
	Etot  float64
	DEkin float64
	DEpot float64
	DEtot float64

	// Diagonal density-matrix populations in both representations.
	PopAdi0 float64
	PopAdi1 float64
	PopDia0 float64
	PopDia1 float64

	// State is the active surface after the step.
	State int
}

// Metric accumulates a scalar over the records of a run.
type Metric interface {
	Name() string
	Observe(rec Record)
	Value() float64
	Reset()
}

// Observer is notified after every step.
type Observer interface {
	OnStep(step int, rec Record)
}
