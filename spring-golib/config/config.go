// Package config loads the YAML hyperparameter file that drives a
// training run.
package config

import (
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"

	"github.com/spring-nlp/spring/spring-golib/errors"
)

// Config mirrors the training configuration file
type Config struct {
	Model string `yaml:"model"`

	// Train and Dev are corpus glob patterns
	Train string `yaml:"train"`
	Dev   string `yaml:"dev"`

	// BatchSize is the token budget: the maximum padded token count of a
	// single batch, not an example count
	BatchSize int `yaml:"batch_size"`

	Epochs            int `yaml:"epochs"`
	AccumulationSteps int `yaml:"accum_steps"`

	LearningRate     float64 `yaml:"learning_rate"`
	WeightDecay      float64 `yaml:"weight_decay"`
	Dropout          float64 `yaml:"dropout"`
	AttentionDropout float64 `yaml:"attention_dropout"`

	Scheduler     string `yaml:"scheduler"`
	WarmupSteps   int    `yaml:"warmup_steps"`
	TrainingSteps int    `yaml:"training_steps"`

	Seed             int64 `yaml:"seed"`
	RemoveLongerThan int   `yaml:"remove_longer_than"`
}

// Load reads and validates a configuration file
func Load(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read config %s", path)
	}

	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "unable to parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks the fields the pipeline depends on
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.Errorf("batch_size must be a positive token budget, got %d", c.BatchSize)
	}
	if c.Train == "" {
		return errors.Errorf("train corpus pattern is required")
	}
	switch c.Scheduler {
	case "", "constant", "cosine":
	default:
		return errors.Errorf("unknown scheduler %q", c.Scheduler)
	}
	if c.AccumulationSteps < 0 {
		return errors.Errorf("accum_steps cannot be negative")
	}
	return nil
}
