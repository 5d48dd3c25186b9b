package qhamming

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config drives the worker pool and the probability sweep.
type Config struct {
	Workers           int           `yaml:"workers"`
	BatchSize         int           `yaml:"batch_size"`
	Seed              uint64        `yaml:"seed"`
	Sampler           SamplerKind   `yaml:"sampler"`
	SchedulingTimeout time.Duration `yaml:"scheduling_timeout"`
	SweepParallelism  int           `yaml:"sweep_parallelism"`
	Trials            int           `yaml:"trials"`
	Probabilities     []float64     `yaml:"probabilities"`
	CacheDir          string        `yaml:"cache_dir"`
}

func NewConfig() *Config {
	return &Config{
		Workers:           runtime.GOMAXPROCS(0),
		BatchSize:         250,
		Seed:              1,
		Sampler:           SamplerPerDraw,
		SchedulingTimeout: 10 * time.Second,
		SweepParallelism:  4,
		Trials:            1000,
		Probabilities:     []float64{0, 0.01, 0.02, 0.04, 0.06, 0.08, 0.1, 0.12},
	}
}

// LoadConfig overlays the YAML file at path onto the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.Workers < 1:
		return fmt.Errorf("workers %d: %w", cfg.Workers, ErrInvalidParameter)
	case cfg.BatchSize < 1:
		return fmt.Errorf("batch size %d: %w", cfg.BatchSize, ErrInvalidParameter)
	case cfg.SweepParallelism < 1:
		return fmt.Errorf("sweep parallelism %d: %w", cfg.SweepParallelism, ErrInvalidParameter)
	case cfg.Trials < 1:
		return fmt.Errorf("trials %d: %w", cfg.Trials, ErrInvalidParameter)
	}

	if cfg.Sampler != SamplerPerDraw && cfg.Sampler != SamplerConstruction {
		return fmt.Errorf("unknown sampler %q: %w", cfg.Sampler, ErrInvalidParameter)
	}

	for _, p := range cfg.Probabilities {
		if err := ValidateProbability(p); err != nil {
			return err
		}
	}

	return nil
}

func (cfg *Config) schedulingTimeout() time.Duration {
	if cfg != nil && cfg.SchedulingTimeout > 0 {
		return cfg.SchedulingTimeout
	}
	return 5 * time.Second
}
