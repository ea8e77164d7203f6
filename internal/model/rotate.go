package model

import "math"

// Rotations are restricted to integer degrees, so sine and cosine are
// pre-computed once for every degree 0..359.
var (
	sinTable [360]float64
	cosTable [360]float64
)

func init() {
	for deg := 0; deg < 360; deg++ {
		rad := float64(deg) * math.Pi / 180.0
		sinTable[deg] = math.Sin(rad)
		cosTable[deg] = math.Cos(rad)
	}
}

// NormalizeAngle reduces an angle in degrees to the range [0, 360).
func NormalizeAngle(deg int) int {
	a := deg % 360
	if a < 0 {
		a += 360
	}
	return a
}

// Rotated returns the piece rotated by the given angle about the vertex
// centroid, with the bounding box recomputed. The vertices keep their
// post-rotation coordinates; they are not re-translated to the origin.
func (p Piece) Rotated(angleDeg int) RotatedPiece {
	a := NormalizeAngle(angleDeg)
	cosA, sinA := cosTable[a], sinTable[a]
	center := p.Outline.Centroid()

	out := make(Outline, len(p.Outline))
	for i, pt := range p.Outline {
		dx := pt.X - center.X
		dy := pt.Y - center.Y
		out[i] = Point2D{
			X: center.X + dx*cosA - dy*sinA,
			Y: center.Y + dx*sinA + dy*cosA,
		}
	}

	min, max := out.BoundingBox()
	return RotatedPiece{
		Outline: out,
		Min:     min,
		Max:     max,
		Width:   max.X - min.X,
		Height:  max.Y - min.Y,
	}
}
