// Package faces holds the face region records produced by detection and the
// geometry needed to map regions between rotated and original image frames.
package faces

import (
	"encoding/json"
	"image"
	"math"
)

// Region is the capability surface shared by every face record shape.
// Implementations without landmark support return nil from Landmarks and
// ignore SetLandmarks.
type Region interface {
	Bounds() image.Rectangle
	SetBounds(image.Rectangle)
	Rotation() float64
	SetRotation(float64)
	Landmarks() []image.Point
	SetLandmarks([]image.Point)
}

// DetectedFace is the mutable record a detector emits: a bounding box in
// pixel coordinates, the residual rotation of the frame it was found in, and
// the facial landmark points.
type DetectedFace struct {
	X, Y        int
	W, H        int
	R           float64
	LandmarksXY []image.Point
}

func (f *DetectedFace) Bounds() image.Rectangle {
	return image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H)
}

func (f *DetectedFace) SetBounds(r image.Rectangle) {
	f.X, f.Y = r.Min.X, r.Min.Y
	f.W, f.H = r.Dx(), r.Dy()
}

func (f *DetectedFace) Rotation() float64 { return f.R }

func (f *DetectedFace) SetRotation(r float64) { f.R = r }

func (f *DetectedFace) Landmarks() []image.Point { return f.LandmarksXY }

func (f *DetectedFace) SetLandmarks(points []image.Point) { f.LandmarksXY = points }

// Alignment is the serialized face record shape: loosely-typed keys "x",
// "y", "w", "h", "r" and "landmarksXY". Missing keys read as zero values.
type Alignment map[string]any

func (a Alignment) Clone() Alignment {
	out := make(Alignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// getInt reads a coordinate key, accepting the int set by SetBounds as
// well as the float64 and json.Number a JSON round trip produces.
func (a Alignment) getInt(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case float64:
		return int(math.Round(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return int(math.Round(f))
	}
	return 0
}

func (a Alignment) Bounds() image.Rectangle {
	x, y := a.getInt("x"), a.getInt("y")
	return image.Rect(x, y, x+a.getInt("w"), y+a.getInt("h"))
}

func (a Alignment) SetBounds(r image.Rectangle) {
	a["x"], a["y"] = r.Min.X, r.Min.Y
	a["w"], a["h"] = r.Dx(), r.Dy()
}

func (a Alignment) Rotation() float64 {
	switch v := a["r"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func (a Alignment) SetRotation(r float64) { a["r"] = r }

func (a Alignment) Landmarks() []image.Point {
	v, _ := a["landmarksXY"].([]image.Point)
	return v
}

func (a Alignment) SetLandmarks(points []image.Point) { a["landmarksXY"] = points }

// rectRegion adapts a bare image.Rectangle: no landmarks, no stored
// rotation.
type rectRegion struct {
	rect image.Rectangle
}

func (r *rectRegion) Bounds() image.Rectangle { return r.rect }

func (r *rectRegion) SetBounds(rect image.Rectangle) { r.rect = rect }

func (r *rectRegion) Rotation() float64 { return 0 }

func (r *rectRegion) SetRotation(float64) {}

func (r *rectRegion) Landmarks() []image.Point { return nil }

func (r *rectRegion) SetLandmarks(points []image.Point) {}
