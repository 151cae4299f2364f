package traj

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/config"
	"github.com/qdynlab/hopsim/internal/ham"
	"github.com/qdynlab/hopsim/internal/models"
	"github.com/qdynlab/hopsim/internal/tsh"
)

// Result collects the per-step records and final metric values of a run.
type Result struct {
	Records []Record
	Metrics map[string]float64
}

// Runner owns one configured surface-hopping run.
type Runner struct {
	cfg       *config.Config
	rep       models.Rep
	f         models.Func
	prms      tsh.Params
	metrics   []Metric
	observers []Observer
}

// New validates the configuration and binds the model.
func New(cfg *config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rep := models.Rep(cfg.Rep)
	f, err := models.Bind(cfg.Model, cfg.Params, rep)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, rep: rep, f: f, prms: cfg.TSHParams()}, nil
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// sample fills an (ndof, ntraj) matrix with Gaussian draws around the
// per-dof means.
func sample(m *mat.Dense, mean, sigma float64, rnd *rand.Rand) {
	ndof, ntraj := m.Dims()
	for dof := 0; dof < ndof; dof++ {
		for traj := 0; traj < ntraj; traj++ {
			m.Set(dof, traj, mean+sigma*rnd.NormFloat64())
		}
	}
}

// Run propagates the ensemble for the configured number of steps,
// appending one record per step to the output file when one is set.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.cfg
	const ndof = 1
	ntraj := cfg.NTraj

	rnd := rand.New(rand.NewSource(cfg.Seed))

	q := mat.NewDense(ndof, ntraj, nil)
	p := mat.NewDense(ndof, ntraj, nil)
	sample(q, cfg.Init.MeanQ, cfg.Init.SigmaQ, rnd)
	sample(p, cfg.Init.MeanP, cfg.Init.SigmaP, rnd)
	iM := []float64{cfg.Init.InvMass}

	// equal-amplitude superposition in the adiabatic basis
	cdia := mat.NewCDense(models.NStates, ntraj, nil)
	cadi := mat.NewCDense(models.NStates, ntraj, nil)
	amp := complex(1.0/math.Sqrt(2.0), 0)
	for traj := 0; traj < ntraj; traj++ {
		for i := 0; i < models.NStates; i++ {
			cadi.Set(i, traj, amp)
		}
	}

	states := make([]int, ntraj)
	for traj := range states {
		states[traj] = cfg.Init.State
	}

	hier := ham.NewHierarchy(models.NStates, models.NStates, ndof, ntraj)
	if err := hier.ComputeDiabatic(r.f, q); err != nil {
		return nil, err
	}
	if err := hier.ComputeAdiabatic(); err != nil {
		return nil, err
	}
	if err := hier.AmplAdi2Dia(cdia, cadi); err != nil {
		return nil, err
	}
	if err := hier.ComputeNAC(r.rep, p, iM); err != nil {
		return nil, err
	}

	c := cadi
	if r.rep == models.Diabatic {
		c = cdia
	}

	var w *Writer
	if cfg.Output != "" {
		var err error
		if w, err = NewWriter(cfg.Output); err != nil {
			return nil, err
		}
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	result := &Result{
		Records: make([]Record, 0, cfg.Steps),
		Metrics: make(map[string]float64),
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := tsh.Step(cfg.Dt, q, p, iM, c, states, hier, r.f, r.prms, rnd); err != nil {
			return result, fmt.Errorf("step %d: %w", i, err)
		}

		// keep the other-representation amplitudes in sync
		var err error
		if r.rep == models.Diabatic {
			err = hier.AmplDia2Adi(cdia, cadi)
		} else {
			err = hier.AmplAdi2Dia(cdia, cadi)
		}
		if err != nil {
			return result, err
		}

		dmDia, dmAdi, err := hier.DensityMatrices(c, 0, r.rep)
		if err != nil {
			return result, err
		}

		en, err := TotalEnergies(hier, p, c, iM, r.rep)
		if err != nil {
			return result, err
		}

		rec := Record{
			Time:    float64(i) * cfg.Dt,
			Q:       q.At(0, 0),
			P:       p.At(0, 0),
			Ekin:    en.Ekin,
			Epot:    en.Epot,
			Etot:    en.Etot,
			DEkin:   en.DEkin,
			DEpot:   en.DEpot,
			DEtot:   en.DEtot,
			PopAdi0: real(dmAdi.At(0, 0)),
			PopAdi1: real(dmAdi.At(1, 1)),
			PopDia0: real(dmDia.At(0, 0)),
			PopDia1: real(dmDia.At(1, 1)),
			State:   states[0],
		}

		if w != nil {
			if err := w.Append(rec); err != nil {
				return result, err
			}
		}
		for _, m := range r.metrics {
			m.Observe(rec)
		}
		for _, obs := range r.observers {
			obs.OnStep(i, rec)
		}
		result.Records = append(result.Records, rec)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
