package fcn

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tensor is a dense float32 tensor with a row-major layout.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// Elems returns the number of elements the shape implies.
func (t *Tensor) Elems() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

func (t *Tensor) validate(name string) error {
	if len(t.Shape) == 0 {
		return fmt.Errorf("tensor %s: empty shape", name)
	}
	for _, d := range t.Shape {
		if d <= 0 {
			return fmt.Errorf("tensor %s: invalid dimension %d", name, d)
		}
	}
	if len(t.Data) != t.Elems() {
		return fmt.Errorf("tensor %s: shape %v implies %d elements, have %d",
			name, t.Shape, t.Elems(), len(t.Data))
	}
	return nil
}

// LayerWeights holds the parameter tensors supplied for one layer.
type LayerWeights struct {
	Weights *Tensor `json:"weights,omitempty"`
	Bias    *Tensor `json:"bias,omitempty"`
}

// WeightDict maps layer names to their externally-supplied parameters.
type WeightDict map[string]LayerWeights

// LoadWeights reads a weight dictionary from a JSON file.
func LoadWeights(path string) (WeightDict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dict WeightDict
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parsing weight dictionary %s: %w", path, err)
	}
	return dict, nil
}
