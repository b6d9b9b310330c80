// Package perceptron trains the weights of a linear sequence-labeling model
// with the averaged perceptron.
//
// The trainer never looks at features or scores itself. Decoding and feature
// enumeration are supplied by the caller through Tagger and FeatureEnumerator,
// so any model with a dense weight vector can be trained:
//
//	w, err := perceptron.Train(data, tagger, features, perceptron.DefaultTrainerConfig())
package perceptron

// Data describes a fixed batch of labeled training sequences.
type Data interface {
	// Len returns the number of instances.
	Len() int
	// NumFeatures returns the length of the weight vector.
	NumFeatures() int
	// MaxLength returns the length of the longest instance.
	MaxLength() int
	// Labels returns the gold label sequence of instance i.
	Labels(i int) []int
}

// Tagger decodes the best label sequence for an instance under weights w.
//
// Tag writes the predicted labels into path[:len(Labels(i))] and returns the
// score of that path. It must be deterministic for fixed w and i.
type Tagger interface {
	Tag(w []float64, i int, path []int) float64
}

// VisitFunc receives one active feature and its value.
type VisitFunc func(fid int, value float64)

// FeatureEnumerator visits every feature active on instance i under the given
// label assignment.
type FeatureEnumerator interface {
	EnumerateFeatures(i int, labels []int, visit VisitFunc)
}
