package seqtag

import (
	"fmt"
	"log/slog"

	"github.com/happyhackingspace/seqtag/crf"
	"github.com/happyhackingspace/seqtag/internal/dataset"
	"github.com/happyhackingspace/seqtag/perceptron"
)

// Train trains a tagger on the crfsuite-format file at dataPath. A nil config
// uses DefaultTrainConfig.
func Train(dataPath string, config *TrainConfig) (*Tagger, error) {
	cfg := DefaultTrainConfig()
	if config != nil {
		cfg = *config
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sequences, err := dataset.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("seqtag: %w", err)
	}
	if len(sequences) == 0 {
		return nil, fmt.Errorf("seqtag: no sequences found in %s", dataPath)
	}

	var holdout []crf.TrainingSequence
	if cfg.HoldoutPath != "" {
		holdout, err = dataset.ReadFile(cfg.HoldoutPath)
		if err != nil {
			return nil, fmt.Errorf("seqtag: holdout: %w", err)
		}
	}

	model := crf.NewModelFor(sequences)
	tc := cfg.trainerConfig()
	if len(holdout) > 0 {
		tc.OnEpoch = holdoutReporter(model, holdout)
	}

	if err := crf.TrainModel(model, sequences, tc); err != nil {
		return nil, fmt.Errorf("seqtag: %w", err)
	}
	return &Tagger{model: model}, nil
}

// holdoutReporter scores the averaged weights of each epoch on holdout data.
func holdoutReporter(model *crf.Model, holdout []crf.TrainingSequence) func(perceptron.Epoch) {
	return func(ep perceptron.Epoch) {
		e := crf.Evaluate(model.WithWeights(ep.Weights), holdout)
		slog.Info("Holdout evaluation",
			"iteration", ep.Iteration,
			"item_accuracy", e.ItemAccuracy(),
			"instance_accuracy", e.InstanceAccuracy(),
			"macro_f1", e.MacroF1())
		for _, s := range e.Labels {
			slog.Debug("Holdout label",
				"iteration", ep.Iteration,
				"label", s.Label,
				"precision", s.Precision,
				"recall", s.Recall,
				"f1", s.F1)
		}
	}
}
