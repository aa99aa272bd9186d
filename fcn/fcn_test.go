package fcn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildShapeInference(t *testing.T) {
	model, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	tests := []struct {
		layer string
		want  Shape
	}{
		{"input", Shape{300, 300, 3}},
		{"input_c", Shape{500, 500, 3}},
		{"conv1_1", Shape{498, 498, 64}},
		{"pool1", Shape{249, 249, 64}},
		{"pool2", Shape{125, 125, 128}},
		{"pool3", Shape{63, 63, 256}},
		{"pool4", Shape{32, 32, 512}},
		{"pool5", Shape{16, 16, 512}},
		{"fc6", Shape{10, 10, 4096}},
		{"drop7", Shape{10, 10, 4096}},
		{"upscore2_r", Shape{22, 22, 2}},
		{"score_pool4c", Shape{22, 22, 2}},
		{"fuse_pool4", Shape{22, 22, 2}},
		{"upscore_pool4_r", Shape{46, 46, 2}},
		{"score_pool3c", Shape{46, 46, 2}},
		{"upscore8_r", Shape{376, 376, 2}},
		{"score", Shape{300, 300, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.layer, func(t *testing.T) {
			layer := model.Layer(tt.layer)
			if layer == nil {
				t.Fatalf("layer %s missing", tt.layer)
			}
			if layer.Output != tt.want {
				t.Errorf("%s output = %v, want %v", tt.layer, layer.Output, tt.want)
			}
		})
	}

	if got := model.OutputShape(); got != (Shape{300, 300, 2}) {
		t.Errorf("OutputShape() = %v, want 300x300x2", got)
	}
}

func fullTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Tensor{Shape: shape, Data: make([]float32, n)}
}

func TestBuildBindsWeights(t *testing.T) {
	weights := WeightDict{
		"conv1_1":    {Weights: fullTensor(3, 3, 3, 64), Bias: fullTensor(64)},
		"score_fr_r": {Weights: fullTensor(1, 1, 4096, 2), Bias: fullTensor(2)},
		"upscore2_r": {Weights: fullTensor(4, 4, 2, 2)},
	}
	model, err := Build(weights)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, name := range []string{"conv1_1", "score_fr_r", "upscore2_r"} {
		if model.Layer(name).Weights == nil {
			t.Errorf("layer %s has no bound weights", name)
		}
	}
	if model.Layer("conv1_2").Weights != nil {
		t.Error("conv1_2 should stay unparameterized")
	}
}

func TestBuildRejectsBadTensors(t *testing.T) {
	tests := []struct {
		name    string
		weights WeightDict
		errPart string
	}{
		{
			"wrong kernel shape",
			WeightDict{"conv1_1": {Weights: fullTensor(5, 5, 3, 64)}},
			"weight shape",
		},
		{
			"wrong element count",
			WeightDict{"conv1_1": {Weights: &Tensor{Shape: []int{27}, Data: make([]float32, 27)}}},
			"elements",
		},
		{
			"shape and data disagree",
			WeightDict{"conv1_1": {Weights: &Tensor{Shape: []int{3, 3, 3, 64}, Data: make([]float32, 10)}}},
			"implies",
		},
		{
			"bias on bias-free layer",
			WeightDict{"upscore2_r": {Bias: fullTensor(2)}},
			"bias supplied",
		},
		{
			"wrong bias length",
			WeightDict{"conv1_1": {Bias: fullTensor(65)}},
			"bias has",
		},
		{
			"weights on parameterless layer",
			WeightDict{"pool1": {Weights: fullTensor(2, 2, 64, 64)}},
			"no parameters",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.weights)
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Build() error = %q, want it to mention %q", err, tt.errPart)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	model, err := Build(WeightDict{
		"conv1_1": {Weights: fullTensor(3, 3, 3, 64), Bias: fullTensor(64)},
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := model.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel() error: %v", err)
	}
	if loaded.Name != ModelName {
		t.Errorf("Name = %q, want %q", loaded.Name, ModelName)
	}
	if len(loaded.Layers) != len(model.Layers) {
		t.Fatalf("layer count = %d, want %d", len(loaded.Layers), len(model.Layers))
	}
	conv := loaded.Layer("conv1_1")
	if conv == nil || conv.Weights == nil || conv.Weights.Elems() != 3*3*3*64 {
		t.Error("conv1_1 weights lost in round trip")
	}
}

func TestGenerateModel(t *testing.T) {
	dir := t.TempDir()
	weightFile := filepath.Join(dir, "weights.json")
	modelFile := filepath.Join(dir, "model.gob")

	dict := WeightDict{
		"score_fr_r": {Weights: fullTensor(1, 1, 4096, 2), Bias: fullTensor(2)},
	}
	data, err := json.Marshal(dict)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(weightFile, data, 0666); err != nil {
		t.Fatal(err)
	}

	model, err := GenerateModel(weightFile, modelFile)
	if err != nil {
		t.Fatalf("GenerateModel() error: %v", err)
	}
	if model.Layer("score_fr_r").Weights == nil {
		t.Error("score_fr_r weights not bound")
	}
	if _, err := os.Stat(modelFile); err != nil {
		t.Errorf("model file not written: %v", err)
	}

	if _, err := GenerateModel(filepath.Join(dir, "missing.json"), modelFile); err == nil {
		t.Error("expected error for missing weight file")
	}
}
