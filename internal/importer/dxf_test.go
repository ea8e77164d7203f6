package importer

import (
	"math"
	"testing"

	"github.com/piwi3910/polynest/internal/model"
)

func seg(x1, y1, x2, y2 float64) segment {
	return segment{
		start: model.Point2D{X: x1, Y: y1},
		end:   model.Point2D{X: x2, Y: y2},
	}
}

func TestChainSegmentsClosesSquare(t *testing.T) {
	// Four loose lines in arbitrary order and direction forming a square.
	segs := []segment{
		seg(0, 0, 10, 0),
		seg(10, 10, 0, 10),
		seg(10, 0, 10, 10),
		seg(0, 0, 0, 10), // reversed relative to the chain direction
	}

	outlines := chainSegments(segs)
	if len(outlines) != 1 {
		t.Fatalf("expected 1 closed outline, got %d", len(outlines))
	}
	if got := outlines[0].Area(); math.Abs(got-100) > 1e-9 {
		t.Errorf("expected area 100, got %g", got)
	}
}

func TestChainSegmentsDropsOpenChains(t *testing.T) {
	segs := []segment{
		seg(0, 0, 10, 0),
		seg(10, 0, 10, 10),
	}
	if outlines := chainSegments(segs); len(outlines) != 0 {
		t.Errorf("expected no outlines from an open chain, got %d", len(outlines))
	}
}

func TestChainSegmentsMultipleShapesSortedByArea(t *testing.T) {
	segs := []segment{
		// Small triangle
		seg(100, 100, 105, 100),
		seg(105, 100, 100, 105),
		seg(100, 105, 100, 100),
		// Larger square
		seg(0, 0, 20, 0),
		seg(20, 0, 20, 20),
		seg(20, 20, 0, 20),
		seg(0, 20, 0, 0),
	}

	outlines := chainSegments(segs)
	if len(outlines) != 2 {
		t.Fatalf("expected 2 outlines, got %d", len(outlines))
	}
	if outlines[0].Area() < outlines[1].Area() {
		t.Error("outlines not sorted largest first")
	}
}

func TestChainSegmentsRespectsTolerance(t *testing.T) {
	// Endpoints 0.005 apart still chain; 0.5 apart do not.
	segs := []segment{
		seg(0, 0, 10, 0),
		seg(10.005, 0, 10, 10),
		seg(10, 10, 0, 10),
		seg(0, 10, 0, 0.005),
	}
	if outlines := chainSegments(segs); len(outlines) != 1 {
		t.Fatalf("expected near-coincident endpoints to chain, got %d outlines", len(outlines))
	}

	far := []segment{
		seg(0, 0, 10, 0),
		seg(10.5, 0, 10, 10),
		seg(10, 10, 0, 10),
		seg(0, 10, 0, 0),
	}
	if outlines := chainSegments(far); len(outlines) != 0 {
		t.Fatalf("expected gap beyond tolerance to stay open, got %d outlines", len(outlines))
	}
}

func TestPointsClose(t *testing.T) {
	a := model.Point2D{X: 0, Y: 0}
	if !pointsClose(a, model.Point2D{X: 0.005, Y: 0.005}) {
		t.Error("expected points within tolerance to be close")
	}
	if pointsClose(a, model.Point2D{X: 0.02, Y: 0}) {
		t.Error("expected points beyond tolerance to be far")
	}
}
