package fcn

import (
	"encoding/gob"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// Model is the reconstructed layer graph together with its bound weights,
// in topological order.
type Model struct {
	Name   string
	Layers []Layer
}

// Layer returns the named layer, or nil.
func (m *Model) Layer(name string) *Layer {
	for i := range m.Layers {
		if m.Layers[i].Name == name {
			return &m.Layers[i]
		}
	}
	return nil
}

// OutputShape is the activation shape of the final layer.
func (m *Model) OutputShape() Shape {
	if len(m.Layers) == 0 {
		return Shape{}
	}
	return m.Layers[len(m.Layers)-1].Output
}

// Save writes the model to path as gob.
func (m *Model) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(m); err != nil {
		return fmt.Errorf("encoding model %s: %w", m.Name, err)
	}
	return nil
}

// LoadModel reads a model previously written by Save.
func LoadModel(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var m Model
	if err := gob.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	return &m, nil
}

// GenerateModel is the one-shot conversion entry point: load the weight
// dictionary from weightFile, reconstruct the graph and save it to
// modelFile.
func GenerateModel(weightFile, modelFile string) (*Model, error) {
	weights, err := LoadWeights(weightFile)
	if err != nil {
		return nil, err
	}
	model, err := Build(weights)
	if err != nil {
		return nil, err
	}
	if err := model.Save(modelFile); err != nil {
		return nil, err
	}
	log.Infof("Saved %s to %s", model.Name, modelFile)
	return model, nil
}
