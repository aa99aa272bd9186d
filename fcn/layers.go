// Package fcn reconstructs the face-segmentation FCN-VGG16 layer graph from
// an externally supplied weight dictionary and persists it to disk. It
// builds and validates the graph; it is not an inference engine.
package fcn

import "fmt"

// LayerKind enumerates the layer types the FCN-VGG16 graph uses.
type LayerKind string

const (
	Input   LayerKind = "input"
	ZeroPad LayerKind = "zero_padding"
	Conv    LayerKind = "conv"
	Deconv  LayerKind = "conv_transpose"
	MaxPool LayerKind = "max_pool"
	Dropout LayerKind = "dropout"
	Crop    LayerKind = "crop"
	Scale   LayerKind = "scale"
	Add     LayerKind = "add"
)

// Shape is a height × width × channels activation shape.
type Shape struct {
	H, W, C int
}

// Layer is one node of the graph. Only the fields relevant to its kind are
// set; Weights and Bias are bound during Build for Conv and Deconv layers.
type Layer struct {
	Name   string
	Kind   LayerKind
	Inputs []string

	Filters    int
	KernelH    int
	KernelW    int
	StrideH    int
	StrideW    int
	SamePad    bool // convolutions and pools: "same" vs "valid" padding
	UseBias    bool
	Activation string

	// ZeroPad and Crop margins.
	Top, Bottom, Left, Right int

	Rate   float64 // Dropout
	Factor float64 // Scale

	Output Shape

	Weights *Tensor
	Bias    *Tensor
}

// outputShape computes the layer's activation shape from its inputs,
// reporting shape mismatches between fused branches.
func (l *Layer) outputShape(inputs []Shape) (Shape, error) {
	switch l.Kind {
	case Input:
		return l.Output, nil
	case ZeroPad:
		in := inputs[0]
		return Shape{H: in.H + l.Top + l.Bottom, W: in.W + l.Left + l.Right, C: in.C}, nil
	case Conv:
		in := inputs[0]
		if l.SamePad {
			return Shape{H: ceilDiv(in.H, l.StrideH), W: ceilDiv(in.W, l.StrideW), C: l.Filters}, nil
		}
		h := (in.H-l.KernelH)/l.StrideH + 1
		w := (in.W-l.KernelW)/l.StrideW + 1
		if h <= 0 || w <= 0 {
			return Shape{}, fmt.Errorf("layer %s: kernel %dx%d does not fit input %dx%d",
				l.Name, l.KernelH, l.KernelW, in.H, in.W)
		}
		return Shape{H: h, W: w, C: l.Filters}, nil
	case Deconv:
		in := inputs[0]
		return Shape{
			H: (in.H-1)*l.StrideH + l.KernelH,
			W: (in.W-1)*l.StrideW + l.KernelW,
			C: l.Filters,
		}, nil
	case MaxPool:
		in := inputs[0]
		if l.SamePad {
			return Shape{H: ceilDiv(in.H, l.StrideH), W: ceilDiv(in.W, l.StrideW), C: in.C}, nil
		}
		return Shape{H: (in.H-l.KernelH)/l.StrideH + 1, W: (in.W-l.KernelW)/l.StrideW + 1, C: in.C}, nil
	case Crop:
		in := inputs[0]
		h := in.H - l.Top - l.Bottom
		w := in.W - l.Left - l.Right
		if h <= 0 || w <= 0 {
			return Shape{}, fmt.Errorf("layer %s: crop (%d,%d)(%d,%d) exceeds input %dx%d",
				l.Name, l.Top, l.Bottom, l.Left, l.Right, in.H, in.W)
		}
		return Shape{H: h, W: w, C: in.C}, nil
	case Dropout, Scale:
		return inputs[0], nil
	case Add:
		first := inputs[0]
		for _, in := range inputs[1:] {
			if in != first {
				return Shape{}, fmt.Errorf("layer %s: cannot fuse mismatched shapes %v and %v",
					l.Name, first, in)
			}
		}
		return first, nil
	}
	return Shape{}, fmt.Errorf("layer %s: unknown kind %q", l.Name, l.Kind)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
