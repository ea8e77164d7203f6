// Package engine implements the geometric placement engine and the genetic
// search driver for nesting simple polygons onto rectangular boards.
//
// Reproducibility: breeding (selection, crossover, mutation) runs serially on
// the master RNG; only genome evaluation, which consumes no randomness, fans
// out across workers with static partitioning. A fixed master seed therefore
// produces an identical result for any worker count.
package engine

import (
	"math"

	"github.com/piwi3910/polynest/internal/model"
)

const (
	// containEpsilon is the tolerance applied to board containment checks,
	// in world units. It is part of the feasibility contract: changing it
	// changes which genomes are feasible.
	containEpsilon = 2.0

	// crossEpsilon bounds the cross products in the orientation tests.
	crossEpsilon = 1e-10
)

// orientation classifies the turn p -> q -> r: 0 collinear, 1 clockwise,
// 2 counterclockwise.
func orientation(p, q, r model.Point2D) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	if math.Abs(val) < crossEpsilon {
		return 0
	}
	if val > 0 {
		return 1
	}
	return 2
}

// onSegment reports whether the collinear point q lies on segment pr.
func onSegment(p, q, r model.Point2D) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// segmentsIntersect reports whether segments p1p2 and q1q2 intersect,
// including collinear overlap.
func segmentsIntersect(p1, p2, q1, q2 model.Point2D) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, q1, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, p2) {
		return true
	}
	if o3 == 0 && onSegment(q1, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(q1, p2, q2) {
		return true
	}
	return false
}

// pointInPolygon runs the standard horizontal ray-cast parity test.
func pointInPolygon(pt model.Point2D, poly model.Outline) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xCross := (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if pt.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// pointToSegmentDistance returns the distance from pt to segment ab using the
// clamped projection.
func pointToSegmentDistance(pt, a, b model.Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(pt.X-a.X, pt.Y-a.Y)
	}
	t := ((pt.X-a.X)*dx + (pt.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px := a.X + t*dx
	py := a.Y + t*dy
	return math.Hypot(pt.X-px, pt.Y-py)
}

// polygonMinDistance returns the minimum vertex-to-edge distance between the
// two polygons, checked in both directions. For simple polygons at the
// precision used, vertex-to-edge suffices; edge-to-edge crossings are caught
// separately by segmentsIntersect.
func polygonMinDistance(a, b model.Outline) float64 {
	min := math.MaxFloat64
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			d := pointToSegmentDistance(a[i], b[j], b[(j+1)%nb])
			if d < min {
				min = d
			}
		}
	}
	for i := 0; i < nb; i++ {
		for j := 0; j < na; j++ {
			d := pointToSegmentDistance(b[i], a[j], a[(j+1)%na])
			if d < min {
				min = d
			}
		}
	}
	return min
}

// polygonsCollide reports whether the two world-space polygons violate the
// required clearance. The bounding box of a is inflated by the clearance as
// a cheap screen; the exact tests are vertex containment, edge crossing, and
// minimum vertex-to-edge distance. The screen requires strict overlap:
// exactly abutting pieces (inflated boxes touching) do not collide, which is
// what admits the clearance-exact contact candidates.
func polygonsCollide(a, b model.Outline, clearance float64) bool {
	aMin, aMax := a.BoundingBox()
	bMin, bMax := b.BoundingBox()
	if aMax.X+clearance <= bMin.X || bMax.X <= aMin.X-clearance ||
		aMax.Y+clearance <= bMin.Y || bMax.Y <= aMin.Y-clearance {
		return false
	}

	for _, p := range a {
		if pointInPolygon(p, b) {
			return true
		}
	}
	for _, p := range b {
		if pointInPolygon(p, a) {
			return true
		}
	}

	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			if segmentsIntersect(a[i], a[(i+1)%na], b[j], b[(j+1)%nb]) {
				return true
			}
		}
	}

	if clearance > 0 && polygonMinDistance(a, b) < clearance {
		return true
	}
	return false
}

// fitsOnBoard reports whether the rotated piece, offset by pos, lies within
// the board interior bounded by the margin, to within containEpsilon.
func fitsOnBoard(rp model.RotatedPiece, pos model.Point2D, board *model.Board, margin float64) bool {
	minX := rp.Min.X + pos.X
	minY := rp.Min.Y + pos.Y
	maxX := rp.Max.X + pos.X
	maxY := rp.Max.Y + pos.Y
	return minX >= margin-containEpsilon &&
		minY >= margin-containEpsilon &&
		maxX <= board.Width-margin+containEpsilon &&
		maxY <= board.Height-margin+containEpsilon
}
