package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/polynest/internal/model"
)

func sq(x, y, size float64) model.Outline {
	return model.Outline{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
}

func TestSegmentsIntersect(t *testing.T) {
	p := func(x, y float64) model.Point2D { return model.Point2D{X: x, Y: y} }

	// Proper crossing
	assert.True(t, segmentsIntersect(p(0, 0), p(10, 10), p(0, 10), p(10, 0)))
	// Disjoint parallel
	assert.False(t, segmentsIntersect(p(0, 0), p(10, 0), p(0, 5), p(10, 5)))
	// Collinear overlapping
	assert.True(t, segmentsIntersect(p(0, 0), p(10, 0), p(5, 0), p(15, 0)))
	// Collinear disjoint
	assert.False(t, segmentsIntersect(p(0, 0), p(4, 0), p(5, 0), p(9, 0)))
	// Touching at an endpoint
	assert.True(t, segmentsIntersect(p(0, 0), p(5, 5), p(5, 5), p(10, 0)))
	// Near miss
	assert.False(t, segmentsIntersect(p(0, 0), p(5, 5), p(5.01, 5.01), p(10, 10)))
}

func TestPointInPolygon(t *testing.T) {
	square := sq(0, 0, 10)
	assert.True(t, pointInPolygon(model.Point2D{X: 5, Y: 5}, square))
	assert.False(t, pointInPolygon(model.Point2D{X: 15, Y: 5}, square))
	assert.False(t, pointInPolygon(model.Point2D{X: -1, Y: -1}, square))

	// L-shape: the notch is outside
	l := model.Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 10}, {X: 0, Y: 10}}
	assert.True(t, pointInPolygon(model.Point2D{X: 2, Y: 8}, l))
	assert.False(t, pointInPolygon(model.Point2D{X: 8, Y: 8}, l))
}

func TestPointToSegmentDistance(t *testing.T) {
	a := model.Point2D{X: 0, Y: 0}
	b := model.Point2D{X: 10, Y: 0}

	assert.InDelta(t, 5.0, pointToSegmentDistance(model.Point2D{X: 5, Y: 5}, a, b), 1e-9)
	// Projection clamps to the nearer endpoint
	assert.InDelta(t, 5.0, pointToSegmentDistance(model.Point2D{X: -3, Y: 4}, a, b), 1e-9)
	assert.InDelta(t, 13.0, pointToSegmentDistance(model.Point2D{X: 15, Y: 12}, a, b), 1e-9)
	// Degenerate segment
	assert.InDelta(t, 5.0, pointToSegmentDistance(model.Point2D{X: 3, Y: 4}, a, a), 1e-9)
}

func TestPolygonMinDistance(t *testing.T) {
	a := sq(0, 0, 10)
	b := sq(15, 0, 10)
	assert.InDelta(t, 5.0, polygonMinDistance(a, b), 1e-9)

	c := sq(13, 14, 2)
	assert.InDelta(t, 5.0, polygonMinDistance(a, c), 1e-9)
}

func TestPolygonsCollide(t *testing.T) {
	a := sq(0, 0, 10)

	// Overlapping squares collide regardless of clearance
	assert.True(t, polygonsCollide(a, sq(5, 5, 10), 0))
	// Exact abutment is not a collision: packed layouts share edges
	assert.False(t, polygonsCollide(a, sq(10, 0, 10), 0))
	// Abutment at exactly the clearance distance is admissible too
	assert.False(t, polygonsCollide(a, sq(13, 0, 10), 3))
	// One fully inside the other: no edge crossings, vertex containment catches it
	assert.True(t, polygonsCollide(a, sq(2, 2, 4), 0))
	// 5 apart: fine with clearance 4, violation with clearance 6
	b := sq(15, 0, 10)
	assert.False(t, polygonsCollide(a, b, 4))
	assert.True(t, polygonsCollide(a, b, 6))
	// Far apart: the bbox screen rejects before any exact test
	assert.False(t, polygonsCollide(a, sq(1000, 1000, 10), 6))
}

func TestFitsOnBoardEpsilon(t *testing.T) {
	board := model.NewBoard(100, 100)
	p := model.NewPiece(0, sq(0, 0, 100), []int{0})
	rp := p.Rotated(0)

	// Exact fit with zero margin
	assert.True(t, fitsOnBoard(rp, model.Point2D{X: 0, Y: 0}, board, 0))
	// Within the containment tolerance
	assert.True(t, fitsOnBoard(rp, model.Point2D{X: 1.9, Y: 0}, board, 0))
	assert.True(t, fitsOnBoard(rp, model.Point2D{X: -1.9, Y: 0}, board, 0))
	// Beyond it
	assert.False(t, fitsOnBoard(rp, model.Point2D{X: 2.1, Y: 0}, board, 0))

	// The margin shrinks the usable interior
	assert.False(t, fitsOnBoard(rp, model.Point2D{X: 0, Y: 0}, board, 10))
	small := model.NewPiece(1, sq(0, 0, 50), []int{0}).Rotated(0)
	assert.True(t, fitsOnBoard(small, model.Point2D{X: 10, Y: 10}, board, 10))
	assert.False(t, fitsOnBoard(small, model.Point2D{X: 45, Y: 10}, board, 10))
}
