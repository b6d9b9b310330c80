// Package crf implements a linear-chain sequence labeling model whose weights
// are trained with the averaged perceptron.
package crf

import "slices"

// Alphabet maps between string labels/attributes and integer IDs.
type Alphabet struct {
	ToID  map[string]int `json:"to_id"`
	ToStr []string       `json:"to_str"`
}

// NewAlphabet creates an empty alphabet.
func NewAlphabet() *Alphabet {
	return &Alphabet{
		ToID: make(map[string]int),
	}
}

// Add adds a string to the alphabet if not already present, returns its ID.
func (a *Alphabet) Add(s string) int {
	if id, ok := a.ToID[s]; ok {
		return id
	}
	id := len(a.ToStr)
	a.ToID[s] = id
	a.ToStr = append(a.ToStr, s)
	return id
}

// Get returns the ID for a string, or -1 if not found.
func (a *Alphabet) Get(s string) int {
	if id, ok := a.ToID[s]; ok {
		return id
	}
	return -1
}

// String returns the string for an ID, or "" if out of range.
func (a *Alphabet) String(id int) string {
	if id < 0 || id >= len(a.ToStr) {
		return ""
	}
	return a.ToStr[id]
}

// Size returns the number of entries.
func (a *Alphabet) Size() int {
	return len(a.ToStr)
}

// Model holds the label and attribute alphabets and the weight vector.
type Model struct {
	Labels     *Alphabet `json:"labels"`
	Attributes *Alphabet `json:"attributes"`
	Weights    []float64 `json:"weights"`
	NumLabels  int       `json:"num_labels"`
	// Weight layout: [state_features... | transition_features...]
	// State feature index: attrID * numLabels + labelID
	// Transition feature index: transOffset + fromLabelID * numLabels + toLabelID
}

// NewModel creates a new empty model.
func NewModel() *Model {
	return &Model{
		Labels:     NewAlphabet(),
		Attributes: NewAlphabet(),
	}
}

// WithWeights returns a model sharing m's alphabets with the given weights.
func (m *Model) WithWeights(w []float64) *Model {
	mm := *m
	mm.Weights = w
	return &mm
}

// TransOffset returns the offset where transition features start in the weight vector.
func (m *Model) TransOffset() int {
	return m.Attributes.Size() * m.NumLabels
}

// NumWeights returns the total number of weights.
func (m *Model) NumWeights() int {
	return m.TransOffset() + m.NumLabels*m.NumLabels
}

// StateFeatureIndex returns the weight index for a state feature.
func (m *Model) StateFeatureIndex(attrID, labelID int) int {
	return attrID*m.NumLabels + labelID
}

// TransFeatureIndex returns the weight index for a transition feature.
func (m *Model) TransFeatureIndex(fromLabelID, toLabelID int) int {
	return m.TransOffset() + fromLabelID*m.NumLabels + toLabelID
}

// TrainingSequence represents a labeled sequence for training.
type TrainingSequence struct {
	Features []map[string]float64 // per-position attribute values
	Labels   []string             // gold labels
}

type featureEntry struct {
	attrID int
	value  float64
}

// encodeItem resolves the attributes of one position, dropping unknown ones.
// Entries are ordered by attribute ID so score sums are reproducible.
func encodeItem(attrs *Alphabet, feats map[string]float64) []featureEntry {
	items := make([]featureEntry, 0, len(feats))
	for attr, val := range feats {
		if id := attrs.Get(attr); id >= 0 {
			items = append(items, featureEntry{id, val})
		}
	}
	slices.SortFunc(items, func(a, b featureEntry) int { return a.attrID - b.attrID })
	return items
}

// stateScores fills dst[t][y] with the state score of label y at position t.
func stateScores(dst [][]float64, items [][]featureEntry, w []float64, L int) {
	for t, item := range items {
		row := dst[t][:L]
		clear(row)
		for _, fe := range item {
			base := fe.attrID * L
			for y := 0; y < L; y++ {
				row[y] += w[base+y] * fe.value
			}
		}
	}
}

// transScores fills dst[i][j] with the transition score from label i to j.
func transScores(dst [][]float64, w []float64, offset, L int) {
	for i := 0; i < L; i++ {
		copy(dst[i][:L], w[offset+i*L:offset+(i+1)*L])
	}
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// ComputeStateScores computes state feature scores for each position and label.
// Returns [T][L] matrix where T is sequence length and L is number of labels.
// Attributes missing from the model are ignored.
func (m *Model) ComputeStateScores(features []map[string]float64) [][]float64 {
	items := make([][]featureEntry, len(features))
	for t, feats := range features {
		items[t] = encodeItem(m.Attributes, feats)
	}
	scores := newMatrix(len(features), m.NumLabels)
	stateScores(scores, items, m.Weights, m.NumLabels)
	return scores
}

// ComputeTransScores returns the [L][L] transition score matrix.
func (m *Model) ComputeTransScores() [][]float64 {
	trans := newMatrix(m.NumLabels, m.NumLabels)
	transScores(trans, m.Weights, m.TransOffset(), m.NumLabels)
	return trans
}
