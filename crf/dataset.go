package crf

import (
	"fmt"

	"github.com/happyhackingspace/seqtag/perceptron"
)

// Dataset is the integer-encoded form of a training set under a model's
// alphabets. It decodes with Viterbi and enumerates state and transition
// features, which is what the perceptron trainer needs.
type Dataset struct {
	numLabels   int
	transOffset int
	numWeights  int
	maxLen      int
	seqs        []encodedSeq

	dec   *decoder
	state [][]float64
	trans [][]float64
}

type encodedSeq struct {
	items  [][]featureEntry // [T][...] (attrID, value) sorted by attrID
	labels []int            // [T] label IDs
}

var (
	_ perceptron.Data              = (*Dataset)(nil)
	_ perceptron.Tagger            = (*Dataset)(nil)
	_ perceptron.FeatureEnumerator = (*Dataset)(nil)
)

// NewDataset encodes sequences with the alphabets of model. Every label must
// be known to the model and every sequence must be non-empty with one label
// per position.
func NewDataset(model *Model, sequences []TrainingSequence) (*Dataset, error) {
	L := model.NumLabels
	ds := &Dataset{
		numLabels:   L,
		transOffset: model.TransOffset(),
		numWeights:  model.NumWeights(),
		seqs:        make([]encodedSeq, len(sequences)),
	}

	for i, seq := range sequences {
		T := len(seq.Features)
		if T == 0 {
			return nil, fmt.Errorf("crf: sequence %d is empty", i)
		}
		if len(seq.Labels) != T {
			return nil, fmt.Errorf("crf: sequence %d has %d items but %d labels", i, T, len(seq.Labels))
		}
		es := encodedSeq{
			items:  make([][]featureEntry, T),
			labels: make([]int, T),
		}
		for t := 0; t < T; t++ {
			es.items[t] = encodeItem(model.Attributes, seq.Features[t])
			id := model.Labels.Get(seq.Labels[t])
			if id < 0 || id >= L {
				return nil, fmt.Errorf("crf: sequence %d: unknown label %q", i, seq.Labels[t])
			}
			es.labels[t] = id
		}
		ds.seqs[i] = es
		ds.maxLen = max(ds.maxLen, T)
	}

	ds.dec = newDecoder(ds.maxLen, L)
	ds.state = newMatrix(ds.maxLen, L)
	ds.trans = newMatrix(L, L)
	return ds, nil
}

// Len returns the number of sequences.
func (d *Dataset) Len() int { return len(d.seqs) }

// NumFeatures returns the length of the model weight vector.
func (d *Dataset) NumFeatures() int { return d.numWeights }

// MaxLength returns the length of the longest sequence.
func (d *Dataset) MaxLength() int { return d.maxLen }

// Labels returns the gold label IDs of sequence i.
func (d *Dataset) Labels(i int) []int { return d.seqs[i].labels }

// Tag writes the Viterbi path of sequence i under weights w into path.
func (d *Dataset) Tag(w []float64, i int, path []int) float64 {
	seq := d.seqs[i]
	T := len(seq.labels)
	stateScores(d.state, seq.items, w, d.numLabels)
	transScores(d.trans, w, d.transOffset, d.numLabels)
	return d.dec.decode(d.state, d.trans, T, d.numLabels, path)
}

// EnumerateFeatures visits the state features of every position and the
// transition features between consecutive positions of sequence i under labels.
func (d *Dataset) EnumerateFeatures(i int, labels []int, visit perceptron.VisitFunc) {
	L := d.numLabels
	for t, item := range d.seqs[i].items {
		y := labels[t]
		for _, fe := range item {
			visit(fe.attrID*L+y, fe.value)
		}
		if t > 0 {
			visit(d.transOffset+labels[t-1]*L+y, 1)
		}
	}
}
