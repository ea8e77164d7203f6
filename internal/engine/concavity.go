package engine

import (
	"math"
	"sort"

	"k8s.io/klog/v2"

	"github.com/piwi3910/polynest/internal/model"
)

// Concavity refinement parameters.
const (
	gridResolution    = 40   // candidate grid over a large piece's bbox
	concavityRatioMin = 0.25 // bbox fraction not covered by the polygon
	smallAreaFraction = 0.25 // max small-piece area relative to the large piece
	subGridHalf       = 2    // 5x5 refinement grid around a failed candidate
)

// concavityRatio is the fraction of the placed piece's bounding box not
// covered by its polygon.
func concavityRatio(pp model.PlacedPiece) float64 {
	bboxArea := pp.Rotated.Width * pp.Rotated.Height
	if bboxArea == 0 {
		return 0
	}
	return 1 - pp.Area/bboxArea
}

// RefineConcavities re-seats small pieces into the concavities of larger
// placed pieces on each board of the layout. It moves pieces in place; the
// used area and efficiency never change, so the layout cannot get worse.
// Only each small piece's own allowed angles are tried. Returns the number
// of pieces moved.
func RefineConcavities(nest *model.Nesting, prob *model.Problem) int {
	pl := placer{margin: prob.Margin, clearance: prob.Clearance}
	moved := 0
	for _, board := range nest.Boards {
		moved += refineBoard(board, prob, pl)
	}
	if moved > 0 {
		klog.V(1).Infof("concavity pass moved %d piece(s)", moved)
	}
	return moved
}

func refineBoard(board *model.Board, prob *model.Problem, pl placer) int {
	type hollow struct {
		idx   int
		ratio float64
	}
	var hollows []hollow
	for i := range board.Placed {
		if r := concavityRatio(board.Placed[i]); r >= concavityRatioMin {
			hollows = append(hollows, hollow{idx: i, ratio: r})
		}
	}
	sort.SliceStable(hollows, func(a, b int) bool { return hollows[a].ratio > hollows[b].ratio })

	moved := 0
	for _, h := range hollows {
		large := board.Placed[h.idx]
		candidates := concavityPoints(large)
		if len(candidates) == 0 {
			continue
		}

		smalls := smallPieceIndexes(board, h.idx, large.Area)
		for _, sIdx := range smalls {
			if reseatPiece(board, sIdx, large, candidates, prob, pl) {
				moved++
			}
		}
	}
	return moved
}

// concavityPoints samples a gridResolution x gridResolution grid over the
// large piece's world bbox and keeps the points outside its polygon.
func concavityPoints(large model.PlacedPiece) []model.Point2D {
	min, max := large.WorldBBox()
	stepX := (max.X - min.X) / gridResolution
	stepY := (max.Y - min.Y) / gridResolution
	if stepX <= 0 || stepY <= 0 {
		return nil
	}
	world := large.WorldOutline()

	var points []model.Point2D
	for i := 0; i < gridResolution; i++ {
		for j := 0; j < gridResolution; j++ {
			pt := model.Point2D{
				X: min.X + (float64(i)+0.5)*stepX,
				Y: min.Y + (float64(j)+0.5)*stepY,
			}
			if !pointInPolygon(pt, world) {
				points = append(points, pt)
			}
		}
	}
	return points
}

// smallPieceIndexes returns the indexes of placed pieces whose original area
// is at most smallAreaFraction of largeArea, ascending by area.
func smallPieceIndexes(board *model.Board, largeIdx int, largeArea float64) []int {
	var idxs []int
	for i := range board.Placed {
		if i == largeIdx {
			continue
		}
		if board.Placed[i].Area <= smallAreaFraction*largeArea {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return board.Placed[idxs[a]].Area < board.Placed[idxs[b]].Area
	})
	return idxs
}

// reseatPiece tries every concavity candidate, under each of the small
// piece's own allowed angles, committing the first admissible position. The
// small piece is removed from the board for the admissibility test. Around a
// failed candidate a 5x5 sub-grid is probed with a step derived from the
// large piece's bbox.
func reseatPiece(board *model.Board, sIdx int, large model.PlacedPiece, candidates []model.Point2D, prob *model.Problem, pl placer) bool {
	small := board.Placed[sIdx]
	piece := prob.Pieces[small.PieceID]

	neighbors := make([]model.Outline, 0, len(board.Placed)-1)
	for i := range board.Placed {
		if i == sIdx {
			continue
		}
		neighbors = append(neighbors, board.Placed[i].WorldOutline())
	}

	subStep := math.Min(large.Rotated.Width, large.Rotated.Height) / (2 * gridResolution)

	for _, c := range candidates {
		for _, angle := range piece.Angles {
			rp := piece.Rotated(angle)
			pos := anchorOffset(rp, c)
			if pl.admissibleAt(rp, pos, board, neighbors) {
				commitReseat(board, sIdx, rp, angle, pos)
				return true
			}
			for di := -subGridHalf; di <= subGridHalf; di++ {
				for dj := -subGridHalf; dj <= subGridHalf; dj++ {
					if di == 0 && dj == 0 {
						continue
					}
					pos = anchorOffset(rp, model.Point2D{
						X: c.X + float64(di)*subStep,
						Y: c.Y + float64(dj)*subStep,
					})
					if pl.admissibleAt(rp, pos, board, neighbors) {
						commitReseat(board, sIdx, rp, angle, pos)
						return true
					}
				}
			}
		}
	}
	return false
}

// commitReseat replaces the small piece's rotated geometry, angle and
// position. The used area does not change: it is the same original piece.
func commitReseat(board *model.Board, sIdx int, rp model.RotatedPiece, angle int, pos model.Point2D) {
	board.Placed[sIdx].Rotated = rp
	board.Placed[sIdx].Angle = model.NormalizeAngle(angle)
	board.Placed[sIdx].Position = pos
}
