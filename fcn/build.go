package fcn

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ModelName identifies the reconstructed graph.
const ModelName = "face_seg_fcn_vgg16"

func conv(name, input string, filters, kernel int, samePad bool, relu bool) Layer {
	activation := ""
	if relu {
		activation = "relu"
	}
	return Layer{
		Name: name, Kind: Conv, Inputs: []string{input},
		Filters: filters, KernelH: kernel, KernelW: kernel,
		StrideH: 1, StrideW: 1, SamePad: samePad, UseBias: true,
		Activation: activation,
	}
}

func deconv(name, input string, filters, kernel, stride int) Layer {
	return Layer{
		Name: name, Kind: Deconv, Inputs: []string{input},
		Filters: filters, KernelH: kernel, KernelW: kernel,
		StrideH: stride, StrideW: stride,
	}
}

func pool(name, input string) Layer {
	return Layer{
		Name: name, Kind: MaxPool, Inputs: []string{input},
		KernelH: 2, KernelW: 2, StrideH: 2, StrideW: 2, SamePad: true,
	}
}

func crop(name, input string, top, bottom, left, right int) Layer {
	return Layer{
		Name: name, Kind: Crop, Inputs: []string{input},
		Top: top, Bottom: bottom, Left: left, Right: right,
	}
}

// topology returns the fixed FCN-VGG16 graph: a VGG16 trunk over a
// zero-padded 300×300×3 input, scaled skip connections from pool3 and
// pool4, and three stages of transposed-convolution upsampling fused back
// together, cropped to a 300×300 score map.
func topology() []Layer {
	return []Layer{
		{Name: "input", Kind: Input, Output: Shape{H: 300, W: 300, C: 3}},
		{Name: "input_c", Kind: ZeroPad, Inputs: []string{"input"}, Top: 100, Bottom: 100, Left: 100, Right: 100},

		conv("conv1_1", "input_c", 64, 3, false, true),
		conv("conv1_2", "conv1_1", 64, 3, true, true),
		pool("pool1", "conv1_2"),

		conv("conv2_1", "pool1", 128, 3, true, true),
		conv("conv2_2", "conv2_1", 128, 3, true, true),
		pool("pool2", "conv2_2"),

		conv("conv3_1", "pool2", 256, 3, true, true),
		conv("conv3_2", "conv3_1", 256, 3, true, true),
		conv("conv3_3", "conv3_2", 256, 3, true, true),
		pool("pool3", "conv3_3"),

		conv("conv4_1", "pool3", 512, 3, true, true),
		conv("conv4_2", "conv4_1", 512, 3, true, true),
		conv("conv4_3", "conv4_2", 512, 3, true, true),
		pool("pool4", "conv4_3"),

		conv("conv5_1", "pool4", 512, 3, true, true),
		conv("conv5_2", "conv5_1", 512, 3, true, true),
		conv("conv5_3", "conv5_2", 512, 3, true, true),
		pool("pool5", "conv5_3"),

		conv("fc6", "pool5", 4096, 7, false, true),
		{Name: "drop6", Kind: Dropout, Inputs: []string{"fc6"}, Rate: 0.5},
		conv("fc7", "drop6", 4096, 1, false, true),
		{Name: "drop7", Kind: Dropout, Inputs: []string{"fc7"}, Rate: 0.5},

		{Name: "scale_pool3", Kind: Scale, Inputs: []string{"pool3"}, Factor: 0.0001},
		{Name: "scale_pool4", Kind: Scale, Inputs: []string{"pool4"}, Factor: 0.01},
		conv("score_pool3_r", "scale_pool3", 2, 1, false, false),
		conv("score_pool4_r", "scale_pool4", 2, 1, false, false),
		crop("score_pool3c", "score_pool3_r", 9, 8, 9, 8),
		crop("score_pool4c", "score_pool4_r", 5, 5, 5, 5),

		conv("score_fr_r", "drop7", 2, 1, false, false),
		deconv("upscore2_r", "score_fr_r", 2, 4, 2),
		{Name: "fuse_pool4", Kind: Add, Inputs: []string{"upscore2_r", "score_pool4c"}},

		deconv("upscore_pool4_r", "fuse_pool4", 2, 4, 2),
		{Name: "fuse_pool3", Kind: Add, Inputs: []string{"upscore_pool4_r", "score_pool3c"}},
		deconv("upscore8_r", "fuse_pool3", 2, 16, 8),
		crop("score", "upscore8_r", 31, 45, 31, 45),
	}
}

// Build reconstructs the graph, infers and validates every activation
// shape, and binds the supplied weight tensors to their layers. Layers
// without an entry in weights stay unparameterized; tensors that disagree
// with a layer's definition fail the build.
func Build(weights WeightDict) (*Model, error) {
	layers := topology()
	shapes := make(map[string]Shape, len(layers))
	bound := 0

	for i := range layers {
		layer := &layers[i]
		if _, ok := shapes[layer.Name]; ok {
			return nil, fmt.Errorf("duplicate layer %s", layer.Name)
		}
		inputs := make([]Shape, len(layer.Inputs))
		for j, name := range layer.Inputs {
			in, ok := shapes[name]
			if !ok {
				return nil, fmt.Errorf("layer %s: unknown input %s", layer.Name, name)
			}
			inputs[j] = in
		}
		out, err := layer.outputShape(inputs)
		if err != nil {
			return nil, err
		}
		layer.Output = out
		shapes[layer.Name] = out

		if layer.Kind == Conv || layer.Kind == Deconv {
			if err := bindWeights(layer, inputs[0].C, weights); err != nil {
				return nil, err
			}
			if layer.Weights != nil {
				bound++
			}
		} else if _, ok := weights[layer.Name]; ok {
			return nil, fmt.Errorf("layer %s: weights supplied but layer has no parameters", layer.Name)
		}
	}

	for name := range weights {
		if _, ok := shapes[name]; !ok {
			log.Warnf("Weight dictionary entry %s matches no layer", name)
		}
	}

	final := layers[len(layers)-1]
	log.WithFields(log.Fields{
		"model":  ModelName,
		"layers": len(layers),
		"bound":  bound,
		"output": fmt.Sprintf("%dx%dx%d", final.Output.H, final.Output.W, final.Output.C),
	}).Debug("Reconstructed model graph")

	return &Model{Name: ModelName, Layers: layers}, nil
}

func bindWeights(layer *Layer, inChannels int, weights WeightDict) error {
	entry, ok := weights[layer.Name]
	if !ok {
		return nil
	}
	if entry.Weights != nil {
		if err := entry.Weights.validate(layer.Name + ".weights"); err != nil {
			return err
		}
		want := []int{layer.KernelH, layer.KernelW, inChannels, layer.Filters}
		if len(entry.Weights.Shape) == 4 {
			for i, d := range want {
				if entry.Weights.Shape[i] != d {
					return fmt.Errorf("layer %s: weight shape %v, want %v",
						layer.Name, entry.Weights.Shape, want)
				}
			}
		} else if entry.Weights.Elems() != layer.KernelH*layer.KernelW*inChannels*layer.Filters {
			return fmt.Errorf("layer %s: weight tensor has %d elements, want %d",
				layer.Name, entry.Weights.Elems(), layer.KernelH*layer.KernelW*inChannels*layer.Filters)
		}
		layer.Weights = entry.Weights
	}
	if entry.Bias != nil {
		if !layer.UseBias {
			return fmt.Errorf("layer %s: bias supplied but layer has none", layer.Name)
		}
		if err := entry.Bias.validate(layer.Name + ".bias"); err != nil {
			return err
		}
		if entry.Bias.Elems() != layer.Filters {
			return fmt.Errorf("layer %s: bias has %d elements, want %d",
				layer.Name, entry.Bias.Elems(), layer.Filters)
		}
		layer.Bias = entry.Bias
	}
	return nil
}
