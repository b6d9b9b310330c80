package crf

// LabelScore holds per-label tagging counts and scores.
type LabelScore struct {
	Label     string
	Match     int // predicted and correct
	Predicted int // predicted as this label
	Reference int // gold label
	Precision float64
	Recall    float64
	F1        float64
}

// Evaluation summarizes tagging quality against gold labels.
type Evaluation struct {
	Labels          []LabelScore
	ItemCorrect     int
	ItemTotal       int
	InstanceCorrect int
	InstanceTotal   int
}

// ItemAccuracy returns the ratio of correctly labeled positions.
func (e *Evaluation) ItemAccuracy() float64 {
	return ratio(e.ItemCorrect, e.ItemTotal)
}

// InstanceAccuracy returns the ratio of sequences labeled without any error.
func (e *Evaluation) InstanceAccuracy() float64 {
	return ratio(e.InstanceCorrect, e.InstanceTotal)
}

// MacroPrecision, MacroRecall and MacroF1 average the per-label scores.
func (e *Evaluation) MacroPrecision() float64 {
	return e.macro(func(s LabelScore) float64 { return s.Precision })
}

func (e *Evaluation) MacroRecall() float64 {
	return e.macro(func(s LabelScore) float64 { return s.Recall })
}

func (e *Evaluation) MacroF1() float64 {
	return e.macro(func(s LabelScore) float64 { return s.F1 })
}

func (e *Evaluation) macro(f func(LabelScore) float64) float64 {
	if len(e.Labels) == 0 {
		return 0
	}
	var sum float64
	for _, s := range e.Labels {
		sum += f(s)
	}
	return sum / float64(len(e.Labels))
}

// Evaluate tags every sequence with the model and compares against the gold
// labels. Gold labels the model has never seen are reported after the model's
// own labels.
func Evaluate(model *Model, sequences []TrainingSequence) *Evaluation {
	e := &Evaluation{}
	index := make(map[string]int)
	labelIdx := func(label string) int {
		if i, ok := index[label]; ok {
			return i
		}
		index[label] = len(e.Labels)
		e.Labels = append(e.Labels, LabelScore{Label: label})
		return index[label]
	}
	for _, l := range model.Labels.ToStr {
		labelIdx(l)
	}

	for _, seq := range sequences {
		pred := model.Predict(seq.Features)
		allCorrect := true
		for t, gold := range seq.Labels {
			e.Labels[labelIdx(gold)].Reference++
			var p string
			if t < len(pred) {
				p = pred[t]
				e.Labels[labelIdx(p)].Predicted++
			}
			if p == gold {
				e.Labels[labelIdx(gold)].Match++
				e.ItemCorrect++
			} else {
				allCorrect = false
			}
			e.ItemTotal++
		}
		if allCorrect {
			e.InstanceCorrect++
		}
		e.InstanceTotal++
	}

	for i := range e.Labels {
		s := &e.Labels[i]
		s.Precision = ratio(s.Match, s.Predicted)
		s.Recall = ratio(s.Match, s.Reference)
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
	}
	return e
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
