package experiment

import (
	"github.com/qdynlab/hopsim/internal/traj"
)

// Summary aggregates the final-step outcomes of an ensemble.
type Summary struct {
	Runs int

	// Means over the ensemble of the last-step quantities.
	FinalPopAdi0 float64
	FinalPopAdi1 float64
	FinalEtot    float64

	// FracOnSurface0 is the fraction of runs ending on the lower
	// adiabatic surface.
	FracOnSurface0 float64

	// MaxEnergyDrift is the worst relative total-energy drift seen in
	// any run.
	MaxEnergyDrift float64
}

// Summarize reduces the ensemble results to their final-state statistics.
// Runs with no records are skipped.
func Summarize(results []*traj.Result) Summary {
	var s Summary
	for _, res := range results {
		if res == nil || len(res.Records) == 0 {
			continue
		}
		last := res.Records[len(res.Records)-1]
		s.Runs++
		s.FinalPopAdi0 += last.PopAdi0
		s.FinalPopAdi1 += last.PopAdi1
		s.FinalEtot += last.Etot
		if last.State == 0 {
			s.FracOnSurface0++
		}
		if drift := relativeDrift(res.Records); drift > s.MaxEnergyDrift {
			s.MaxEnergyDrift = drift
		}
	}
	if s.Runs > 0 {
		n := float64(s.Runs)
		s.FinalPopAdi0 /= n
		s.FinalPopAdi1 /= n
		s.FinalEtot /= n
		s.FracOnSurface0 /= n
	}
	return s
}

func relativeDrift(records []traj.Record) float64 {
	first := records[0].Etot
	if first == 0 {
		return 0
	}
	max := 0.0
	for _, rec := range records {
		d := (rec.Etot - first) / first
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}
