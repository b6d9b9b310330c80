package crf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidModel is returned when a decoded model is internally inconsistent.
var ErrInvalidModel = errors.New("invalid model")

// SaveModel serializes the model to JSON. The file is replaced atomically.
func SaveModel(model *Model, path string) error {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadModel deserializes a model from JSON.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalModel(data)
}

// MarshalModel serializes the model to JSON bytes.
func MarshalModel(model *Model) ([]byte, error) {
	return json.Marshal(model)
}

// UnmarshalModel deserializes a model from JSON bytes.
func UnmarshalModel(data []byte) (*Model, error) {
	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	return &model, nil
}

func (m *Model) validate() error {
	if m.Labels == nil || m.Attributes == nil {
		return fmt.Errorf("crf: missing alphabets: %w", ErrInvalidModel)
	}
	for _, a := range []*Alphabet{m.Labels, m.Attributes} {
		if a.ToID == nil {
			a.ToID = make(map[string]int, len(a.ToStr))
		}
		for id, s := range a.ToStr {
			a.ToID[s] = id
		}
	}
	if m.NumLabels != m.Labels.Size() {
		return fmt.Errorf("crf: %d labels declared, %d in alphabet: %w", m.NumLabels, m.Labels.Size(), ErrInvalidModel)
	}
	if len(m.Weights) != m.NumWeights() {
		return fmt.Errorf("crf: %d weights, want %d: %w", len(m.Weights), m.NumWeights(), ErrInvalidModel)
	}
	return nil
}
