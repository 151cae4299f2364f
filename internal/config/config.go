package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qdynlab/hopsim/internal/models"
	"github.com/qdynlab/hopsim/internal/tsh"
)

const (
	DefaultDt    = 1.0
	DefaultSteps = 500
	DefaultNTraj = 1
	DefaultX0    = 1.0
	DefaultK     = 0.1
	DefaultD     = -0.1
	DefaultV     = 0.05
	DefaultOmega = 0.25
)

// ErrInvalid is wrapped by every configuration validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// InitConfig describes the Gaussian phase-space sampling and the initial
// electronic state of the trajectory ensemble.
type InitConfig struct {
	MeanQ   float64 `yaml:"mean_q"`
	SigmaQ  float64 `yaml:"sigma_q"`
	MeanP   float64 `yaml:"mean_p"`
	SigmaP  float64 `yaml:"sigma_p"`
	InvMass float64 `yaml:"inv_mass"`
	State   int     `yaml:"state"`
}

// HoppingConfig mirrors the propagator control parameters.
type HoppingConfig struct {
	RepSH          int     `yaml:"rep_sh"`
	Method         int     `yaml:"method"`
	UseBoltzFactor bool    `yaml:"use_boltz_factor"`
	Temperature    float64 `yaml:"temperature"`
	DoReverse      bool    `yaml:"do_reverse"`
	VelRescaleOpt  int     `yaml:"vel_rescale_opt"`
	ElecSubsteps   int     `yaml:"elec_substeps"`
}

// Config is a full run description.
type Config struct {
	Model   int           `yaml:"model"`
	Rep     int           `yaml:"rep"`
	Dt      float64       `yaml:"dt"`
	Steps   int           `yaml:"steps"`
	NTraj   int           `yaml:"ntraj"`
	Seed    int64         `yaml:"seed"`
	Output  string        `yaml:"output"`
	Params  models.Params `yaml:"params"`
	Init    InitConfig    `yaml:"init"`
	Hopping HoppingConfig `yaml:"hopping"`
}

// DefaultConfig reproduces the reference scenario: model 1 propagated in
// the diabatic representation for 500 unit steps, one trajectory sampled
// around q=0.1 with mass 100.
func DefaultConfig() *Config {
	return &Config{
		Model: 1,
		Rep:   int(models.Diabatic),
		Dt:    DefaultDt,
		Steps: DefaultSteps,
		NTraj: DefaultNTraj,
		Params: models.Params{
			X0:    DefaultX0,
			K:     DefaultK,
			D:     DefaultD,
			V:     DefaultV,
			Omega: DefaultOmega,
		},
		Init: InitConfig{
			MeanQ:   0.1,
			SigmaQ:  0.05,
			MeanP:   0.0,
			SigmaP:  0.01,
			InvMass: 1.0 / 100.0,
			State:   1,
		},
		Hopping: HoppingConfig{
			RepSH:       int(models.Adiabatic),
			Method:      int(tsh.FSSH),
			Temperature: 300.0,
			DoReverse:   true,
		},
	}
}

// Load reads a yaml config over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks tag ranges and required parameters before a run.
func (c *Config) Validate() error {
	if c.Model < models.MinTag || c.Model > models.MaxTag {
		return fmt.Errorf("%w: model tag %d out of range %d..%d", ErrInvalid, c.Model, models.MinTag, models.MaxTag)
	}
	if r := models.Rep(c.Rep); r != models.Diabatic && r != models.Adiabatic {
		return fmt.Errorf("%w: representation %d (want 0 or 1)", ErrInvalid, c.Rep)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}
	if c.NTraj <= 0 {
		return fmt.Errorf("%w: ntraj must be positive, got %d", ErrInvalid, c.NTraj)
	}
	if c.Params.K == 0 {
		return fmt.Errorf("%w: parameter k is required", ErrInvalid)
	}
	if c.Model == 4 && c.Params.Omega == 0 {
		return fmt.Errorf("%w: parameter omega is required for model 4", ErrInvalid)
	}
	if c.Init.InvMass <= 0 {
		return fmt.Errorf("%w: inverse mass must be positive, got %g", ErrInvalid, c.Init.InvMass)
	}
	if c.Init.State < 0 || c.Init.State >= models.NStates {
		return fmt.Errorf("%w: initial state %d out of range 0..%d", ErrInvalid, c.Init.State, models.NStates-1)
	}
	return c.TSHParams().Validate()
}

// TSHParams converts the hopping section into propagator parameters.
func (c *Config) TSHParams() tsh.Params {
	return tsh.Params{
		Rep:            models.Rep(c.Rep),
		RepSH:          models.Rep(c.Hopping.RepSH),
		Method:         tsh.Method(c.Hopping.Method),
		UseBoltzFactor: c.Hopping.UseBoltzFactor,
		Temperature:    c.Hopping.Temperature,
		DoReverse:      c.Hopping.DoReverse,
		VelRescaleOpt:  c.Hopping.VelRescaleOpt,
		ElecSubsteps:   c.Hopping.ElecSubsteps,
	}
}
