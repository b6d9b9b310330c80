package crf

import (
	"slices"
)

// BuildAttributeAlphabet builds the attribute alphabet from training sequences.
// IDs follow first appearance, with attributes of one position taken in
// lexical order, so equal inputs always give equal alphabets.
func BuildAttributeAlphabet(sequences []TrainingSequence) *Alphabet {
	alpha := NewAlphabet()
	for _, seq := range sequences {
		for _, feats := range seq.Features {
			attrs := make([]string, 0, len(feats))
			for attr := range feats {
				attrs = append(attrs, attr)
			}
			slices.Sort(attrs)
			for _, attr := range attrs {
				alpha.Add(attr)
			}
		}
	}
	return alpha
}

// BuildLabelAlphabet builds the label alphabet from training sequences.
func BuildLabelAlphabet(sequences []TrainingSequence) *Alphabet {
	alpha := NewAlphabet()
	for _, seq := range sequences {
		for _, label := range seq.Labels {
			alpha.Add(label)
		}
	}
	return alpha
}
