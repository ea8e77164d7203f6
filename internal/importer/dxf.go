// Package importer reads piece outlines from DXF drawings. Each closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) becomes one piece
// outline.
package importer

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/polynest/internal/model"
)

const (
	circleSegments = 64
	arcSegments    = 32
	chainTolerance = 0.01
	minShapeSize   = 0.01
)

// segment is a loose line segment awaiting chaining into a closed outline.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXF extracts closed outlines from a DXF file. Degenerate shapes and
// LWPOLYLINEs with fewer than 3 vertices are skipped and reported through the
// warnings slice. LINE/ARC chains that do not close are dropped without a
// warning, and every LWPOLYLINE is treated as closed whatever its closed flag.
func ImportDXF(path string) ([]model.Outline, []string, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening DXF %s", path)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return nil, nil, errors.Errorf("DXF %s contains no entities", path)
	}

	var outlines []model.Outline
	var segments []segment
	var warnings []string

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			o := polylineOutline(e)
			if len(o) >= 3 {
				outlines = append(outlines, o)
			} else {
				warnings = append(warnings, "skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			outlines = append(outlines, circleOutline(e))
		case *entity.Arc:
			pts := arcPoints(e)
			for i := 0; i < len(pts)-1; i++ {
				segments = append(segments, segment{start: pts[i], end: pts[i+1]})
			}
		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		default:
			// Unsupported entity types are skipped.
		}
	}

	outlines = append(outlines, chainSegments(segments)...)

	var kept []model.Outline
	for _, o := range outlines {
		min, max := o.BoundingBox()
		if max.X-min.X < minShapeSize || max.Y-min.Y < minShapeSize {
			warnings = append(warnings, "skipped degenerate shape")
			continue
		}
		kept = append(kept, o)
	}
	if len(kept) == 0 {
		return nil, warnings, errors.Errorf("no closed shapes found in DXF %s", path)
	}
	return kept, warnings, nil
}

// polylineOutline converts an LWPOLYLINE, interpolating bulge arcs.
func polylineOutline(lw *entity.LwPolyline) model.Outline {
	var outline model.Outline
	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) > 1e-9 {
			next := lw.Vertices[(i+1)%len(lw.Vertices)]
			arc := bulgeArc(current, model.Point2D{X: next[0], Y: next[1]}, bulge)
			outline = append(outline, arc[:len(arc)-1]...)
		} else {
			outline = append(outline, current)
		}
	}
	return outline
}

// bulgeArc interpolates the arc between p1 and p2 described by a DXF bulge
// factor (tangent of a quarter of the included angle).
func bulgeArc(p1, p2 model.Point2D, bulge float64) model.Outline {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return model.Outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	perpX := -dy / chord
	perpY := dx / chord
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	dist := radius - sagitta
	cx := (p1.X+p2.X)/2 + perpX*dist
	cy := (p1.Y+p2.Y)/2 + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 && endAngle > startAngle {
		endAngle -= 2 * math.Pi
	}
	if bulge > 0 && endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make(model.Outline, arcSegments+1)
	for i := 0; i <= arcSegments; i++ {
		t := float64(i) / arcSegments
		a := startAngle + t*(endAngle-startAngle)
		pts[i] = model.Point2D{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)}
	}
	return pts
}

// circleOutline approximates a circle as a regular polygon.
func circleOutline(c *entity.Circle) model.Outline {
	outline := make(model.Outline, circleSegments)
	for i := 0; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		outline[i] = model.Point2D{
			X: c.Center[0] + c.Radius*math.Cos(a),
			Y: c.Center[1] + c.Radius*math.Sin(a),
		}
	}
	return outline
}

// arcPoints flattens a DXF ARC into a point sequence.
func arcPoints(a *entity.Arc) []model.Point2D {
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}
	pts := make([]model.Point2D, arcSegments+1)
	for i := 0; i <= arcSegments; i++ {
		t := float64(i) / arcSegments
		ang := startRad + t*(endRad-startRad)
		pts[i] = model.Point2D{
			X: a.Circle.Center[0] + a.Circle.Radius*math.Cos(ang),
			Y: a.Circle.Center[1] + a.Circle.Radius*math.Sin(ang),
		}
	}
	return pts
}

// chainSegments connects loose segments into closed outlines, largest first.
func chainSegments(segs []segment) []model.Outline {
	if len(segs) == 0 {
		return nil
	}
	used := make([]bool, len(segs))
	var outlines []model.Outline

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := model.Outline{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start) {
					chain = append(chain, seg.end)
					used[i] = true
					extended = true
					break
				}
				if pointsClose(tail, seg.end) {
					chain = append(chain, seg.start)
					used[i] = true
					extended = true
					break
				}
			}
		}

		closed := len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1])
		if closed {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].Area() > outlines[j].Area()
	})
	return outlines
}

func pointsClose(a, b model.Point2D) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= chainTolerance
}
