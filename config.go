package seqtag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/seqtag/perceptron"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Epsilon       float64 `yaml:"epsilon"`
	Seed          int64   `yaml:"seed"`
	MemoryLimit   int64   `yaml:"memory_limit"`

	// HoldoutPath names a crfsuite-format file scored after every epoch.
	HoldoutPath string `yaml:"holdout"`
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() TrainConfig {
	d := perceptron.DefaultTrainerConfig()
	return TrainConfig{
		MaxIterations: d.MaxIterations,
		Epsilon:       d.Epsilon,
		Seed:          d.Seed,
		MemoryLimit:   d.MemoryLimit,
	}
}

// LoadTrainConfig reads a YAML training configuration. Keys missing from the
// file keep their defaults; unknown keys are an error.
func LoadTrainConfig(path string) (TrainConfig, error) {
	config := DefaultTrainConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("seqtag: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("seqtag: %s: %w", path, err)
	}
	return config, config.Validate()
}

// Set assigns a parameter by its configuration name, e.g. "epsilon=0.01".
func (c *TrainConfig) Set(param string) error {
	name, value, ok := strings.Cut(param, "=")
	if !ok {
		return fmt.Errorf("seqtag: parameter %q: expected name=value", param)
	}
	name = strings.TrimPrefix(strings.TrimSpace(name), "ap.")
	value = strings.TrimSpace(value)

	var err error
	switch name {
	case "max_iterations":
		c.MaxIterations, err = strconv.Atoi(value)
	case "epsilon":
		c.Epsilon, err = strconv.ParseFloat(value, 64)
	case "seed":
		c.Seed, err = strconv.ParseInt(value, 10, 64)
	case "memory_limit":
		c.MemoryLimit, err = strconv.ParseInt(value, 10, 64)
	case "holdout":
		c.HoldoutPath = value
	default:
		return fmt.Errorf("seqtag: unknown parameter %q", name)
	}
	if err != nil {
		return fmt.Errorf("seqtag: parameter %s: %w", name, err)
	}
	return nil
}

// Validate reports whether the configuration can be used for training.
func (c TrainConfig) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("seqtag: max_iterations must be non-negative, got %d", c.MaxIterations)
	}
	if err := c.trainerConfig().Validate(); err != nil {
		return fmt.Errorf("seqtag: %w", err)
	}
	return nil
}

func (c TrainConfig) trainerConfig() perceptron.TrainerConfig {
	tc := perceptron.DefaultTrainerConfig()
	tc.MaxIterations = c.MaxIterations
	tc.Epsilon = c.Epsilon
	tc.Seed = c.Seed
	tc.MemoryLimit = c.MemoryLimit
	return tc
}
