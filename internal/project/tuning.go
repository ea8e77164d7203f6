package project

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/piwi3910/polynest/internal/engine"
)

// tuningFile holds the optional YAML overrides for the search parameters.
// Absent fields keep their defaults.
type tuningFile struct {
	Population   *int     `yaml:"population"`
	Generations  *int     `yaml:"generations"`
	Tournament   *int     `yaml:"tournament"`
	MutationRate *float64 `yaml:"mutation_rate"`
	Elite        *int     `yaml:"elite"`
	Workers      *int     `yaml:"workers"`
}

// LoadTuning returns the engine defaults, overridden by the YAML file at
// path when one is given.
func LoadTuning(path string) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading tuning %s", path)
	}
	var tf tuningFile
	if err := yaml.UnmarshalStrict(data, &tf); err != nil {
		return cfg, errors.Wrapf(err, "parsing tuning %s", path)
	}

	if tf.Population != nil {
		cfg.Population = *tf.Population
	}
	if tf.Generations != nil {
		cfg.Generations = *tf.Generations
	}
	if tf.Tournament != nil {
		cfg.TournamentSize = *tf.Tournament
	}
	if tf.MutationRate != nil {
		cfg.MutationRate = *tf.MutationRate
	}
	if tf.Elite != nil {
		cfg.EliteCount = *tf.Elite
	}
	if tf.Workers != nil {
		cfg.Workers = *tf.Workers
	}

	if cfg.Population < 2 {
		return cfg, errors.Errorf("population %d is too small", cfg.Population)
	}
	if cfg.EliteCount >= cfg.Population {
		return cfg, errors.Errorf("elite count %d must be below population %d", cfg.EliteCount, cfg.Population)
	}
	if cfg.TournamentSize < 1 {
		return cfg, errors.Errorf("tournament size %d must be positive", cfg.TournamentSize)
	}
	return cfg, nil
}
