package faces

import (
	"errors"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularMatrix is returned when an affine matrix cannot be inverted.
var ErrSingularMatrix = errors.New("affine matrix is not invertible")

// Matrix is a 2×3 affine transform over image coordinates, row-major:
//
//	| A B C |
//	| D E F |
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// RotationMatrix returns the affine matrix that rotates image coordinates by
// angle degrees (counter-clockwise for positive angles, y axis pointing
// down) around center, with an optional uniform scale.
func RotationMatrix(center image.Point, angle, scale float64) Matrix {
	rad := angle * math.Pi / 180
	alpha := scale * math.Cos(rad)
	beta := scale * math.Sin(rad)
	cx, cy := float64(center.X), float64(center.Y)
	return Matrix{
		A: alpha, B: beta, C: (1-alpha)*cx - beta*cy,
		D: -beta, E: alpha, F: beta*cx + (1-alpha)*cy,
	}
}

// Invert returns the inverse transform, failing on singular matrices.
func (m Matrix) Invert() (Matrix, error) {
	var full mat.Dense
	src := mat.NewDense(3, 3, []float64{
		m.A, m.B, m.C,
		m.D, m.E, m.F,
		0, 0, 1,
	})
	if err := full.Inverse(src); err != nil {
		return Matrix{}, ErrSingularMatrix
	}
	return Matrix{
		A: full.At(0, 0), B: full.At(0, 1), C: full.At(0, 2),
		D: full.At(1, 0), E: full.At(1, 1), F: full.At(1, 2),
	}, nil
}

// Apply transforms a single point, rounding to integer pixel coordinates.
func (m Matrix) Apply(p image.Point) image.Point {
	x, y := float64(p.X), float64(p.Y)
	return image.Point{
		X: int(math.Round(m.A*x + m.B*y + m.C)),
		Y: int(math.Round(m.D*x + m.E*y + m.F)),
	}
}

// ApplyAll transforms a point set, preserving order.
func (m Matrix) ApplyAll(points []image.Point) []image.Point {
	if len(points) == 0 {
		return nil
	}
	out := make([]image.Point, len(points))
	for i, p := range points {
		out[i] = m.Apply(p)
	}
	return out
}
