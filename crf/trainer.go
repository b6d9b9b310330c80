package crf

import (
	"fmt"
	"log/slog"

	"github.com/happyhackingspace/seqtag/perceptron"
)

// NewModelFor returns an untrained model whose alphabets cover sequences.
func NewModelFor(sequences []TrainingSequence) *Model {
	model := NewModel()
	model.Labels = BuildLabelAlphabet(sequences)
	model.Attributes = BuildAttributeAlphabet(sequences)
	model.NumLabels = model.Labels.Size()
	return model
}

// Train builds the alphabets from sequences and trains the model weights with
// the averaged perceptron.
func Train(sequences []TrainingSequence, config perceptron.TrainerConfig) (*Model, error) {
	model := NewModelFor(sequences)
	if err := TrainModel(model, sequences, config); err != nil {
		return nil, err
	}
	return model, nil
}

// TrainModel trains the weights of model, whose alphabets must already cover
// every label in sequences. On error the model weights are left untouched.
func TrainModel(model *Model, sequences []TrainingSequence, config perceptron.TrainerConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	data, err := NewDataset(model, sequences)
	if err != nil {
		return err
	}
	slog.Debug("CRF dataset encoded",
		"sequences", data.Len(),
		"labels", model.NumLabels,
		"attributes", model.Attributes.Size(),
		"weights", data.NumFeatures())

	w, err := perceptron.Train(data, data, data, config)
	if err != nil {
		return fmt.Errorf("crf: %w", err)
	}
	model.Weights = w
	return nil
}
