package model

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRotateZeroIsIdentity(t *testing.T) {
	p := NewPiece(0, Outline{{0, 0}, {10, 0}, {10, 5}, {0, 5}}, []int{0})
	rp := p.Rotated(0)

	for i, v := range rp.Outline {
		if !almostEqual(v.X, p.Outline[i].X) || !almostEqual(v.Y, p.Outline[i].Y) {
			t.Fatalf("vertex %d moved under 0-degree rotation: %v vs %v", i, v, p.Outline[i])
		}
	}
}

func TestRotate360EqualsRotate0(t *testing.T) {
	p := NewPiece(0, Outline{{0, 0}, {7, 1}, {6, 8}, {1, 5}}, []int{0})
	a := p.Rotated(0)
	b := p.Rotated(360)

	for i := range a.Outline {
		if !almostEqual(a.Outline[i].X, b.Outline[i].X) || !almostEqual(a.Outline[i].Y, b.Outline[i].Y) {
			t.Fatalf("vertex %d differs between 0 and 360 degrees", i)
		}
	}
}

func TestRotatePreservesArea(t *testing.T) {
	p := NewPiece(0, Outline{{0, 0}, {10, 0}, {10, 4}, {5, 7}, {0, 4}}, []int{0})
	for _, angle := range []int{0, 37, 90, 180, 233, 359} {
		rp := p.Rotated(angle)
		if math.Abs(rp.Outline.Area()-p.Area) > 1e-6 {
			t.Errorf("area changed under %d-degree rotation: %g vs %g", angle, rp.Outline.Area(), p.Area)
		}
	}
}

func TestRotateAboutVertexCentroid(t *testing.T) {
	p := NewPiece(0, Outline{{0, 0}, {8, 0}, {8, 8}, {0, 8}}, []int{0})
	center := p.Outline.Centroid()

	rp := p.Rotated(45)
	if got := rp.Outline.Centroid(); !almostEqual(got.X, center.X) || !almostEqual(got.Y, center.Y) {
		t.Errorf("rotation moved the vertex centroid: %v vs %v", got, center)
	}
}

func TestRotate90SwapsRectangleDimensions(t *testing.T) {
	p := NewPiece(0, Outline{{0, 0}, {12, 0}, {12, 4}, {0, 4}}, []int{0, 90})
	rp := p.Rotated(90)

	if !almostEqual(rp.Width, 4) || !almostEqual(rp.Height, 12) {
		t.Errorf("expected 4x12 after 90 degrees, got %gx%g", rp.Width, rp.Height)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0}, {360, 0}, {450, 90}, {-90, 270}, {-360, 0}, {719, 359},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); got != tt.want {
			t.Errorf("NormalizeAngle(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
