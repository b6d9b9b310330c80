package perceptron

import (
	"fmt"
	"log/slog"
	"time"
)

// TrainerConfig holds averaged perceptron hyperparameters.
type TrainerConfig struct {
	MaxIterations int     // maximum number of epochs
	Epsilon       float64 // stop when the mean per-instance loss drops below this
	Seed          int64   // seed of the shuffling generator
	MemoryLimit   int64   // byte budget for the training buffers, 0 = unlimited

	Logger  *slog.Logger
	OnEpoch func(Epoch)
}

// DefaultTrainerConfig returns the default training config matching crfsuite.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MaxIterations: 10,
		Epsilon:       0,
		Seed:          DefaultSeed,
	}
}

// DefaultSeed is the reference MT19937 initialization seed.
const DefaultSeed = 5489

// Validate reports whether the config can be used for training.
func (c TrainerConfig) Validate() error {
	if c.Epsilon < 0 {
		return fmt.Errorf("perceptron: epsilon must be non-negative, got %v", c.Epsilon)
	}
	if c.MemoryLimit < 0 {
		return fmt.Errorf("perceptron: memory limit must be non-negative, got %d", c.MemoryLimit)
	}
	return nil
}

func (c TrainerConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Epoch reports the outcome of one pass over the training data.
type Epoch struct {
	Iteration   int           // 1-based
	Loss        float64       // sum of per-instance normalized Hamming losses
	FeatureNorm float64       // L2 norm of the averaged weights
	Duration    time.Duration // wall time of the epoch
	Converged   bool

	// Weights is the averaged weight vector after this epoch. It is reused by
	// the trainer and only valid for the duration of the OnEpoch call.
	Weights []float64
}
