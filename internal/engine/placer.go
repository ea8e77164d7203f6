package engine

import (
	"math"

	"github.com/piwi3910/polynest/internal/model"
)

// Position scoring weights. The contact score biases packing toward the left
// edge with looser vertical stacking; the grid score relaxes the horizontal
// pull slightly for the coarse fallback scan.
const (
	contactWeightX = 3.0
	contactWeightY = 0.5
	gridWeightX    = 2.5
	gridWeightY    = 0.5

	gridStepMin   = 10.0
	gridStepMax   = 40.0
	gridProbeCap  = 1000
	candidatesPer = 6
)

// placer finds admissible positions on a board for rotated pieces. It is
// stateless apart from the problem's margin and clearance, so one value can
// be shared across workers.
type placer struct {
	margin    float64
	clearance float64
}

// anchorOffset converts a candidate anchor (the target location of the
// rotated piece's bbox minimum) into the vertex offset to commit. Rotated
// outlines keep their raw post-rotation coordinates, so the bbox minimum is
// generally not at the origin.
func anchorOffset(rp model.RotatedPiece, anchor model.Point2D) model.Point2D {
	return model.Point2D{X: anchor.X - rp.Min.X, Y: anchor.Y - rp.Min.Y}
}

// admissibleAt reports whether the rotated piece offset by pos is contained
// in the board and clears every neighbor. neighbors holds the world-space
// outlines of the already-placed pieces.
func (pl placer) admissibleAt(rp model.RotatedPiece, pos model.Point2D, board *model.Board, neighbors []model.Outline) bool {
	if !fitsOnBoard(rp, pos, board, pl.margin) {
		return false
	}
	world := rp.Outline.Translate(pos.X, pos.Y)
	for _, nb := range neighbors {
		if polygonsCollide(world, nb, pl.clearance) {
			return false
		}
	}
	return true
}

// findBestPosition implements the bottom-left constructive heuristic: the
// interior corner for an empty board, six contact candidates per placed
// neighbor otherwise, and a coarse grid scan as a last resort.
func (pl placer) findBestPosition(rp model.RotatedPiece, board *model.Board) (model.Point2D, bool) {
	usableW := board.Width - 2*pl.margin
	usableH := board.Height - 2*pl.margin
	if rp.Width > usableW || rp.Height > usableH {
		return model.Point2D{}, false
	}

	if len(board.Placed) == 0 {
		pos := anchorOffset(rp, model.Point2D{X: pl.margin, Y: pl.margin})
		if pl.admissibleAt(rp, pos, board, nil) {
			return pos, true
		}
		return model.Point2D{}, false
	}

	neighbors := make([]model.Outline, len(board.Placed))
	for i := range board.Placed {
		neighbors[i] = board.Placed[i].WorldOutline()
	}

	w, h := rp.Width, rp.Height
	clr := pl.clearance

	bestScore := math.MaxFloat64
	var bestPos model.Point2D
	found := false

	for i := range board.Placed {
		min, max := board.Placed[i].WorldBBox()
		left, right := min.X, max.X
		bottom, top := min.Y, max.Y

		candidates := [candidatesPer]model.Point2D{
			{X: right + clr, Y: bottom},
			{X: right + clr, Y: top - h},
			{X: left, Y: top + clr},
			{X: right - w, Y: top + clr},
			{X: left - w - clr, Y: bottom},
			{X: left, Y: bottom - h - clr},
		}

		for _, anchor := range candidates {
			score := contactWeightX*anchor.X + contactWeightY*anchor.Y
			if score >= bestScore {
				continue
			}
			pos := anchorOffset(rp, anchor)
			if pl.admissibleAt(rp, pos, board, neighbors) {
				bestScore = score
				bestPos = pos
				found = true
			}
		}
	}
	if found {
		return bestPos, true
	}

	return pl.gridScan(rp, board, neighbors)
}

// gridScan probes a coarse grid over the usable interior, capped at
// gridProbeCap admissibility checks.
func (pl placer) gridScan(rp model.RotatedPiece, board *model.Board, neighbors []model.Outline) (model.Point2D, bool) {
	step := 0.3 * math.Max(rp.Width, rp.Height)
	if step < gridStepMin {
		step = gridStepMin
	} else if step > gridStepMax {
		step = gridStepMax
	}

	maxX := board.Width - rp.Width - pl.margin
	maxY := board.Height - rp.Height - pl.margin

	bestScore := math.MaxFloat64
	var bestPos model.Point2D
	found := false
	probes := 0

	for y := pl.margin; y <= maxY; y += step {
		for x := pl.margin; x <= maxX; x += step {
			if probes >= gridProbeCap {
				return bestPos, found
			}
			score := gridWeightX*x + gridWeightY*y
			if score >= bestScore {
				continue
			}
			probes++
			pos := anchorOffset(rp, model.Point2D{X: x, Y: y})
			if pl.admissibleAt(rp, pos, board, neighbors) {
				bestScore = score
				bestPos = pos
				found = true
			}
		}
	}
	return bestPos, found
}

// placePiece rotates the piece to the requested angle, searches for a
// position, and commits the placement on success. Other rotations are never
// tried here: rotation choice belongs to the genetic search, and silent
// substitution would destroy its signal.
func (pl placer) placePiece(piece model.Piece, angle int, board *model.Board) bool {
	if len(board.Placed) >= model.MaxPieces {
		return false
	}
	rp := piece.Rotated(angle)
	pos, ok := pl.findBestPosition(rp, board)
	if !ok {
		return false
	}
	board.Placed = append(board.Placed, model.PlacedPiece{
		PieceID:  piece.ID,
		Angle:    model.NormalizeAngle(angle),
		Position: pos,
		Rotated:  rp,
		Area:     piece.Area,
	})
	board.UsedArea += piece.Area
	return true
}
