package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fracsim/internal/convergence"
	"github.com/san-kum/fracsim/internal/fracdyn"
	"github.com/san-kum/fracsim/internal/stability"
)

const (
	DefaultNX           = 64
	DefaultNT           = 1000
	DefaultNSteps       = 200
	DefaultDomainSize   = 1.0
	DefaultSaveInterval = 10
	DefaultSeed         = 42
)

type Config struct {
	Analysis              string             `yaml:"analysis"` // stability | convergence
	Params                fracdyn.Parameters `yaml:"params"`
	NX                    int                `yaml:"nx"`
	NT                    int                `yaml:"nt"`
	NSteps                int                `yaml:"n_steps"`
	DomainSize            float64            `yaml:"domain_size"`
	SaveInterval          int                `yaml:"save_interval"`
	Seed                  int64              `yaml:"seed"`
	Methods               []string           `yaml:"methods"`
	MeshSizes             []int              `yaml:"mesh_sizes"`
	PerturbationAmplitude float64            `yaml:"perturbation_amplitude"`
	BlowupThreshold       float64            `yaml:"blowup_threshold"`
	HoldDiffusionNumber   bool               `yaml:"hold_diffusion_number"`
}

func DefaultConfig() *Config {
	return &Config{
		Analysis:     "stability",
		Params:       fracdyn.DefaultParameters(),
		NX:           DefaultNX,
		NT:           DefaultNT,
		NSteps:       DefaultNSteps,
		DomainSize:   DefaultDomainSize,
		SaveInterval: DefaultSaveInterval,
		Seed:         DefaultSeed,
		MeshSizes:    []int{16, 32, 64, 128},
	}
}

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

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StabilityOptions translates the config into analyzer options,
// parsing the method names.
func (c *Config) StabilityOptions() (stability.Options, error) {
	opts := stability.DefaultOptions()
	if c.NX > 0 {
		opts.NX = c.NX
	}
	if c.NT > 0 {
		opts.NT = c.NT
	}
	if c.DomainSize > 0 {
		opts.DomainSize = c.DomainSize
	}
	opts.Seed = c.Seed
	if c.SaveInterval > 0 {
		opts.SaveInterval = c.SaveInterval
	}
	if c.PerturbationAmplitude > 0 {
		opts.PerturbationAmplitude = c.PerturbationAmplitude
	}
	if c.BlowupThreshold > 0 {
		opts.BlowupThreshold = c.BlowupThreshold
	}
	if len(c.Methods) > 0 {
		opts.Methods = opts.Methods[:0]
		for _, name := range c.Methods {
			m, err := stability.ParseMethod(name)
			if err != nil {
				return opts, fmt.Errorf("config: %w", err)
			}
			opts.Methods = append(opts.Methods, m)
		}
	}
	return opts, nil
}

func (c *Config) ConvergenceOptions() convergence.Options {
	opts := convergence.DefaultOptions()
	if c.NSteps > 0 {
		opts.NSteps = c.NSteps
	}
	if c.DomainSize > 0 {
		opts.DomainSize = c.DomainSize
	}
	opts.Seed = c.Seed
	if c.BlowupThreshold > 0 {
		opts.BlowupThreshold = c.BlowupThreshold
	}
	opts.HoldDiffusionNumber = c.HoldDiffusionNumber
	return opts
}
