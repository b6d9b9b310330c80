// Package seqtag trains and applies linear-chain sequence labeling models.
//
// Models are trained with the averaged perceptron on data in the crfsuite
// text format and stored as JSON.
//
//	tg, _ := seqtag.Train("train.txt", nil)
//	_ = tg.Save("model.json")
//	labels := tg.Tag([]map[string]float64{{"w=John": 1}, {"w=runs": 1}})
package seqtag

import (
	"fmt"

	"github.com/happyhackingspace/seqtag/crf"
	"github.com/happyhackingspace/seqtag/internal/dataset"
)

// Tagger wraps a trained sequence labeling model.
type Tagger struct {
	model *crf.Model
}

// Load loads a trained tagger from a model file.
func Load(path string) (*Tagger, error) {
	model, err := crf.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("seqtag: %w", err)
	}
	return &Tagger{model: model}, nil
}

// Save writes the tagger to a model file.
func (t *Tagger) Save(path string) error {
	if t.model == nil {
		return fmt.Errorf("seqtag: tagger not initialized")
	}
	if err := crf.SaveModel(t.model, path); err != nil {
		return fmt.Errorf("seqtag: %w", err)
	}
	return nil
}

// Labels returns the labels known to the model.
func (t *Tagger) Labels() []string {
	return t.model.Labels.ToStr
}

// Tag returns the best label sequence for per-position attribute values.
// Attributes unknown to the model are ignored.
func (t *Tagger) Tag(features []map[string]float64) []string {
	return t.model.Predict(features)
}

// TagFile tags every sequence of a crfsuite-format file. Labels present in
// the file are returned as references alongside the predictions.
func (t *Tagger) TagFile(path string) (predicted, reference [][]string, err error) {
	seqs, err := dataset.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("seqtag: %w", err)
	}
	predicted = make([][]string, len(seqs))
	reference = make([][]string, len(seqs))
	for i, seq := range seqs {
		predicted[i] = t.model.Predict(seq.Features)
		reference[i] = seq.Labels
	}
	return predicted, reference, nil
}

// Evaluate tags a crfsuite-format file and scores the result against its labels.
func (t *Tagger) Evaluate(path string) (*crf.Evaluation, error) {
	seqs, err := dataset.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seqtag: %w", err)
	}
	return crf.Evaluate(t.model, seqs), nil
}
