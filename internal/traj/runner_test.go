package traj

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/config"
	"github.com/qdynlab/hopsim/internal/ham"
	"github.com/qdynlab/hopsim/internal/models"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Steps = 20
	cfg.Seed = 42
	cfg.Output = ""
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Model = 9
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown model tag")
	}

	cfg = testConfig()
	cfg.Dt = -1
	if _, err := New(cfg); err == nil {
		t.Error("expected error for negative timestep")
	}
}

func TestRunProducesOneRecordPerStep(t *testing.T) {
	cfg := testConfig()
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Records) != cfg.Steps {
		t.Fatalf("got %d records, want %d", len(result.Records), cfg.Steps)
	}

	for i, rec := range result.Records {
		want := float64(i) * cfg.Dt
		if math.Abs(rec.Time-want) > 1e-12 {
			t.Errorf("record %d time = %f, want %f", i, rec.Time, want)
		}
		if s := rec.PopAdi0 + rec.PopAdi1; math.Abs(s-1.0) > 1e-6 {
			t.Errorf("record %d adiabatic populations sum to %f", i, s)
		}
		if rec.State != 0 && rec.State != 1 {
			t.Errorf("record %d state = %d", i, rec.State)
		}
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	run := func() []Record {
		r, err := New(testConfig())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		result, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return result.Records
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("records diverged at step %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRunHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := r.Run(ctx)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("cancelled run produced %d records", len(result.Records))
	}
}

func TestRunWritesStepTable(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Output = filepath.Join(dir, "steps.txt")

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != cfg.Steps {
		t.Fatalf("output has %d lines, want %d", len(lines), cfg.Steps)
	}
	for i, line := range lines {
		if n := len(strings.Fields(line)); n != 14 {
			t.Errorf("line %d has %d fields, want 14", i, n)
		}
	}
}

func TestWriterTruncatesOnCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "steps.txt")
	if err := os.WriteFile(path, []byte("stale contents\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.Append(Record{Time: 0.0, State: 1}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Error("writer did not truncate the existing file")
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("got %d lines, want 1", len(lines))
	}
}

type countingObserver struct{ steps int }

func (c *countingObserver) OnStep(step int, rec Record) { c.steps++ }

func TestRunNotifiesObservers(t *testing.T) {
	cfg := testConfig()
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	obs := &countingObserver{}
	r.AddObserver(obs)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if obs.steps != cfg.Steps {
		t.Errorf("observer saw %d steps, want %d", obs.steps, cfg.Steps)
	}
}

func TestTotalEnergiesSingleSurface(t *testing.T) {
	mp := models.Params{X0: 1.0, K: 0.1, D: -0.1, V: 0.05}
	f, err := models.Bind(1, mp, models.Adiabatic)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	hier := ham.NewHierarchy(2, 2, 1, 1)
	q := mat.NewDense(1, 1, []float64{0.1})
	if err := hier.ComputeDiabatic(f, q); err != nil {
		t.Fatalf("ComputeDiabatic failed: %v", err)
	}
	if err := hier.ComputeAdiabatic(); err != nil {
		t.Fatalf("ComputeAdiabatic failed: %v", err)
	}

	p := mat.NewDense(1, 1, []float64{10.0})
	iM := []float64{0.01}
	c := mat.NewCDense(2, 1, nil)
	c.Set(0, 0, complex(1, 0))

	en, err := TotalEnergies(hier, p, c, iM, models.Adiabatic)
	if err != nil {
		t.Fatalf("TotalEnergies failed: %v", err)
	}
	if math.Abs(en.Ekin-0.5) > 1e-12 {
		t.Errorf("Ekin = %f, want 0.5", en.Ekin)
	}
	if math.Abs(en.Epot-hier.Children[0].Eadi[0]) > 1e-12 {
		t.Errorf("Epot = %f, want lower surface %f", en.Epot, hier.Children[0].Eadi[0])
	}
	if math.Abs(en.Etot-(en.Ekin+en.Epot)) > 1e-15 {
		t.Error("Etot is not Ekin + Epot")
	}
	if en.DEkin != 0 || en.DEpot != 0 || en.DEtot != 0 {
		t.Error("variance fields should stay zero")
	}
}
