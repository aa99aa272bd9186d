package faces

import (
	"errors"
	"image"

	log "github.com/sirupsen/logrus"
)

// ErrUnsupportedFace is returned when a face record is none of the
// recognized shapes.
var ErrUnsupportedFace = errors.New("unsupported face type")

// CorrectRotation maps face from the coordinate frame of a rotated image
// back into the original frame. m is the affine matrix that produced the
// rotated frame (original→rotated); the correction applies its inverse.
//
// The corrected bounding box is the minimal axis-aligned rectangle enclosing
// the four transformed corners, and the residual rotation is zeroed. For
// rotations that are not multiples of 90 degrees this axis-aligned collapse
// is an approximation, not an exact inverse. Landmarks, when present, are
// carried through the same transform with count and order preserved.
func CorrectRotation(face Region, m Matrix) error {
	inv, err := m.Invert()
	if err != nil {
		return err
	}

	b := face.Bounds()
	corners := inv.ApplyAll([]image.Point{
		{b.Min.X, b.Min.Y},
		{b.Max.X, b.Min.Y},
		{b.Max.X, b.Max.Y},
		{b.Min.X, b.Max.Y},
	})
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, p := range corners[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	face.SetBounds(image.Rect(minX, minY, maxX, maxY))
	face.SetRotation(0)
	if landmarks := face.Landmarks(); len(landmarks) > 0 {
		face.SetLandmarks(inv.ApplyAll(landmarks))
	}
	log.Tracef("Corrected face region: %v", face.Bounds())
	return nil
}

// RotateLandmarks is the loosely-typed entry point for callers still holding
// one of the three face record shapes: *DetectedFace is corrected in place
// and returned, Alignment is corrected on a copy, image.Rectangle yields a
// new rectangle. Anything else fails with ErrUnsupportedFace.
func RotateLandmarks(face any, m Matrix) (any, error) {
	switch f := face.(type) {
	case *DetectedFace:
		if err := CorrectRotation(f, m); err != nil {
			return nil, err
		}
		return f, nil
	case Alignment:
		clone := f.Clone()
		if err := CorrectRotation(clone, m); err != nil {
			return nil, err
		}
		return clone, nil
	case image.Rectangle:
		region := rectRegion{rect: f}
		if err := CorrectRotation(&region, m); err != nil {
			return nil, err
		}
		return region.rect, nil
	}
	return nil, ErrUnsupportedFace
}
