package crf

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"slices"
	"testing"

	"github.com/happyhackingspace/seqtag/perceptron"
)

func quietConfig() perceptron.TrainerConfig {
	config := perceptron.DefaultTrainerConfig()
	config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return config
}

func simpleSequences() []TrainingSequence {
	return []TrainingSequence{
		{
			Features: []map[string]float64{
				{"word=hello": 1.0, "bias": 1.0},
				{"word=world": 1.0, "bias": 1.0},
			},
			Labels: []string{"A", "B"},
		},
		{
			Features: []map[string]float64{
				{"word=world": 1.0, "bias": 1.0},
				{"word=hello": 1.0, "bias": 1.0},
			},
			Labels: []string{"B", "A"},
		},
	}
}

func TestAlphabet(t *testing.T) {
	a := NewAlphabet()
	id0 := a.Add("hello")
	id1 := a.Add("world")
	id2 := a.Add("hello") // duplicate

	if id0 != 0 || id1 != 1 || id2 != 0 {
		t.Errorf("IDs: %d, %d, %d; want 0, 1, 0", id0, id1, id2)
	}
	if a.Size() != 2 {
		t.Errorf("Size = %d, want 2", a.Size())
	}
	if a.Get("missing") != -1 {
		t.Error("Get missing should return -1")
	}
	if a.String(1) != "world" || a.String(2) != "" || a.String(-1) != "" {
		t.Errorf("String: %q, %q, %q", a.String(1), a.String(2), a.String(-1))
	}
}

func TestBuildAttributeAlphabetDeterministic(t *testing.T) {
	for i := 0; i < 20; i++ {
		a := BuildAttributeAlphabet(simpleSequences())
		want := []string{"bias", "word=hello", "word=world"}
		if !slices.Equal(a.ToStr, want) {
			t.Fatalf("attributes = %v, want %v", a.ToStr, want)
		}
	}
}

func TestViterbiSimple(t *testing.T) {
	// 2 positions, 2 labels
	stateScores := [][]float64{
		{1.0, 0.5},
		{0.3, 2.0},
	}
	transScores := [][]float64{
		{0.1, 0.2},
		{0.3, 0.1},
	}

	path, score := Viterbi(stateScores, transScores)
	if len(path) != 2 {
		t.Fatalf("path length = %d, want 2", len(path))
	}

	// Best path is [0, 1]: 1.0 + 0.2 + 2.0 = 3.2
	// vs [0,0]: 1.0 + 0.1 + 0.3 = 1.4
	// vs [1,0]: 0.5 + 0.3 + 0.3 = 1.1
	// vs [1,1]: 0.5 + 0.1 + 2.0 = 2.6
	if path[0] != 0 || path[1] != 1 {
		t.Errorf("path = %v, want [0, 1]", path)
	}
	if math.Abs(score-3.2) > 1e-10 {
		t.Errorf("score = %v, want 3.2", score)
	}
}

func TestViterbiEmpty(t *testing.T) {
	path, score := Viterbi(nil, nil)
	if path != nil || !math.IsInf(score, -1) {
		t.Errorf("Viterbi(nil) = %v, %v", path, score)
	}
}

func TestViterbiTiesPreferLowerLabel(t *testing.T) {
	zeros := [][]float64{{0, 0, 0}, {0, 0, 0}}
	trans := [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
	path, _ := Viterbi(zeros, trans)
	if !slices.Equal(path, []int{0, 0}) {
		t.Errorf("path = %v, want [0 0]", path)
	}
}

func TestDatasetEnumerateFeatures(t *testing.T) {
	seqs := simpleSequences()
	model := NewModel()
	model.Labels = BuildLabelAlphabet(seqs)
	model.Attributes = BuildAttributeAlphabet(seqs)
	model.NumLabels = model.Labels.Size()

	ds, err := NewDataset(model, seqs)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 2 || ds.MaxLength() != 2 || ds.NumFeatures() != 10 {
		t.Fatalf("Len=%d MaxLength=%d NumFeatures=%d", ds.Len(), ds.MaxLength(), ds.NumFeatures())
	}

	type visit struct {
		fid   int
		value float64
	}
	var got []visit
	ds.EnumerateFeatures(0, ds.Labels(0), func(fid int, value float64) {
		got = append(got, visit{fid, value})
	})
	// bias=0, word=hello=1, word=world=2; A=0, B=1; transitions start at 6.
	want := []visit{{0, 1}, {2, 1}, {1, 1}, {5, 1}, {7, 1}}
	if !slices.Equal(got, want) {
		t.Errorf("features = %v, want %v", got, want)
	}
}

func TestDatasetTagMatchesPredict(t *testing.T) {
	seqs := simpleSequences()
	model := NewModel()
	model.Labels = BuildLabelAlphabet(seqs)
	model.Attributes = BuildAttributeAlphabet(seqs)
	model.NumLabels = model.Labels.Size()
	model.Weights = []float64{0.1, -0.2, 1.5, -1, -0.7, 0.9, 0.3, 0.4, 0.2, -0.1}

	ds, err := NewDataset(model, seqs)
	if err != nil {
		t.Fatal(err)
	}
	path := make([]int, ds.MaxLength())
	for i, seq := range seqs {
		score := ds.Tag(model.Weights, i, path)
		want, wantScore := Viterbi(model.ComputeStateScores(seq.Features), model.ComputeTransScores())
		if !slices.Equal(path[:len(want)], want) {
			t.Errorf("sequence %d: path = %v, want %v", i, path, want)
		}
		if math.Abs(score-wantScore) > 1e-12 {
			t.Errorf("sequence %d: score = %v, want %v", i, score, wantScore)
		}
	}
}

func TestNewDatasetRejectsBadSequences(t *testing.T) {
	model := NewModel()
	model.Labels.Add("A")
	model.NumLabels = 1

	tests := []TrainingSequence{
		{},
		{Features: []map[string]float64{{}}, Labels: []string{"A", "A"}},
		{Features: []map[string]float64{{}}, Labels: []string{"B"}},
	}
	for i, seq := range tests {
		if _, err := NewDataset(model, []TrainingSequence{seq}); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestTrainSimple(t *testing.T) {
	sequences := simpleSequences()

	model, err := Train(sequences, quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(model.Weights) != model.NumWeights() {
		t.Fatalf("weights = %d, want %d", len(model.Weights), model.NumWeights())
	}
	for i, seq := range sequences {
		pred := model.Predict(seq.Features)
		if !slices.Equal(pred, seq.Labels) {
			t.Errorf("sequence %d: prediction %v, want %v", i, pred, seq.Labels)
		}
	}
}

func TestTrainLearnsTransitions(t *testing.T) {
	// Only the first position carries a distinguishing attribute; the
	// alternation has to come from transition weights.
	pos := func(attrs ...string) map[string]float64 {
		m := map[string]float64{"bias": 1}
		for _, a := range attrs {
			m[a] = 1
		}
		return m
	}
	sequences := []TrainingSequence{
		{Features: []map[string]float64{pos("start"), pos(), pos(), pos()}, Labels: []string{"A", "B", "A", "B"}},
		{Features: []map[string]float64{pos("start"), pos(), pos()}, Labels: []string{"A", "B", "A"}},
	}

	model, err := Train(sequences, quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	unseen := []map[string]float64{pos("start"), pos(), pos(), pos(), pos()}
	if pred := model.Predict(unseen); !slices.Equal(pred, []string{"A", "B", "A", "B", "A"}) {
		t.Errorf("prediction = %v, want [A B A B A]", pred)
	}
}

func TestTrainOutOfMemory(t *testing.T) {
	config := quietConfig()
	config.MemoryLimit = 8
	model, err := Train(simpleSequences(), config)
	if !errors.Is(err, perceptron.ErrOutOfMemory) {
		t.Fatalf("err = %v, want ErrOutOfMemory", err)
	}
	if model != nil {
		t.Error("expected no model on failure")
	}
}

func TestTrainRejectsInvalidConfig(t *testing.T) {
	config := quietConfig()
	config.Epsilon = -0.1
	if _, err := Train(simpleSequences(), config); err == nil {
		t.Error("expected error for negative epsilon")
	}
}

func TestEvaluate(t *testing.T) {
	model, err := Train(simpleSequences(), quietConfig())
	if err != nil {
		t.Fatal(err)
	}

	test := append(simpleSequences(), TrainingSequence{
		Features: []map[string]float64{{"word=hello": 1, "bias": 1}},
		Labels:   []string{"C"},
	})
	e := Evaluate(model, test)

	if e.ItemTotal != 5 || e.ItemCorrect != 4 {
		t.Errorf("items: %d/%d, want 4/5", e.ItemCorrect, e.ItemTotal)
	}
	if e.InstanceTotal != 3 || e.InstanceCorrect != 2 {
		t.Errorf("instances: %d/%d, want 2/3", e.InstanceCorrect, e.InstanceTotal)
	}
	if math.Abs(e.ItemAccuracy()-0.8) > 1e-12 {
		t.Errorf("item accuracy = %v, want 0.8", e.ItemAccuracy())
	}

	labels := make([]string, len(e.Labels))
	for i, s := range e.Labels {
		labels[i] = s.Label
	}
	if !slices.Equal(labels, []string{"A", "B", "C"}) {
		t.Fatalf("labels = %v, want [A B C]", labels)
	}

	a := e.Labels[0]
	if a.Match != 2 || a.Predicted != 3 || a.Reference != 2 {
		t.Errorf("A counts = %+v", a)
	}
	if math.Abs(a.Precision-2.0/3.0) > 1e-12 || a.Recall != 1 {
		t.Errorf("A precision/recall = %v/%v", a.Precision, a.Recall)
	}
	c := e.Labels[2]
	if c.Reference != 1 || c.Match != 0 || c.F1 != 0 {
		t.Errorf("C counts = %+v", c)
	}
	if got := e.MacroRecall(); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("macro recall = %v, want 2/3", got)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	e := Evaluate(NewModel(), nil)
	if e.ItemAccuracy() != 0 || e.InstanceAccuracy() != 0 || e.MacroF1() != 0 {
		t.Errorf("empty evaluation = %+v", e)
	}
}

func TestModelSaveLoad(t *testing.T) {
	model := NewModel()
	model.Labels.Add("A")
	model.Labels.Add("B")
	model.Attributes.Add("bias")
	model.NumLabels = 2
	model.Weights = []float64{1.0, -0.5, 0.3, 0.1, 0.2, -0.1}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := SaveModel(model, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.NumLabels != model.NumLabels {
		t.Errorf("NumLabels mismatch: %d vs %d", loaded.NumLabels, model.NumLabels)
	}
	if !slices.Equal(loaded.Weights, model.Weights) {
		t.Errorf("Weights mismatch: %v vs %v", loaded.Weights, model.Weights)
	}
	if loaded.Labels.Get("B") != 1 || loaded.Attributes.Get("bias") != 0 {
		t.Error("alphabets not restored")
	}
}

func TestUnmarshalModelInvalid(t *testing.T) {
	model := NewModel()
	model.Labels.Add("A")
	model.NumLabels = 1
	model.Weights = []float64{1, 2, 3} // want 1

	data, err := MarshalModel(model)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalModel(data); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("err = %v, want ErrInvalidModel", err)
	}
	if _, err := UnmarshalModel([]byte(`{"num_labels": 1}`)); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("missing alphabets: err = %v, want ErrInvalidModel", err)
	}
}

func TestUnmarshalModelRebuildsIndex(t *testing.T) {
	data := []byte(`{"labels":{"to_str":["X","Y"]},"attributes":{"to_str":[]},"weights":[0,0,0,0],"num_labels":2}`)
	model, err := UnmarshalModel(data)
	if err != nil {
		t.Fatal(err)
	}
	if model.Labels.Get("Y") != 1 {
		t.Errorf("Get(Y) = %d, want 1", model.Labels.Get("Y"))
	}
}
