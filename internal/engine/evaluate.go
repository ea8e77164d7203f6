package engine

import (
	"github.com/piwi3910/polynest/internal/model"
)

// Fitness weights. The unplaced penalty dominates so that any genome failing
// to place every piece is suppressed; among feasible genomes a one-board
// reduction outweighs single-digit efficiency gains.
const (
	fitnessEfficiencyWeight = 2.0
	fitnessBoardPenalty     = 5.0
	fitnessUnplacedPenalty  = 1000.0
)

// Genome encodes one candidate solution: a placement order over piece ids
// and a rotation choice per piece. Rotation is keyed by piece id, never by
// position in the sequence.
type Genome struct {
	Sequence []int // Sequence[i] = piece id placed i-th
	Rotation []int // Rotation[pieceID] = index into that piece's angle list

	// Cached after evaluation.
	Fitness    float64
	BoardCount int
	Efficiency float64 // percent
	Unplaced   int
}

// Clone returns a deep copy of the genome including its cached scores.
func (g *Genome) Clone() *Genome {
	c := &Genome{
		Sequence:   append([]int(nil), g.Sequence...),
		Rotation:   append([]int(nil), g.Rotation...),
		Fitness:    g.Fitness,
		BoardCount: g.BoardCount,
		Efficiency: g.Efficiency,
		Unplaced:   g.Unplaced,
	}
	return c
}

// evaluator maps genomes to layouts. Each evaluation allocates its own
// scratch layout; there is no state shared between evaluations, so one
// evaluator value may be used concurrently from multiple workers.
type evaluator struct {
	prob   *model.Problem
	placer placer
}

func newEvaluator(prob *model.Problem) evaluator {
	return evaluator{
		prob:   prob,
		placer: placer{margin: prob.Margin, clearance: prob.Clearance},
	}
}

// layout walks the genome's sequence, placing each piece on the first board
// that admits it and opening a new board when none does. Pieces that fit
// nowhere, or that would require more than MaxBoards boards, are recorded as
// unplaced.
func (e evaluator) layout(g *Genome) *model.Nesting {
	nest := model.NewNesting()

	for _, id := range g.Sequence {
		piece := e.prob.Pieces[id]
		angle := piece.Angles[g.Rotation[id]]

		placed := false
		for _, b := range nest.Boards {
			if e.placer.placePiece(piece, angle, b) {
				placed = true
				break
			}
		}
		if !placed && len(nest.Boards) < model.MaxBoards {
			b := model.NewBoard(e.prob.BoardWidth, e.prob.BoardHeight)
			if e.placer.placePiece(piece, angle, b) {
				nest.Boards = append(nest.Boards, b)
				placed = true
			}
		}
		if !placed {
			nest.Unplaced = append(nest.Unplaced, id)
		}
	}
	return nest
}

// fitness derives the scalar objective from a layout.
func fitness(nest *model.Nesting) float64 {
	effPct := nest.TotalEfficiency()
	return fitnessEfficiencyWeight*effPct -
		fitnessBoardPenalty*float64(len(nest.Boards)) -
		fitnessUnplacedPenalty*float64(len(nest.Unplaced))
}

// score evaluates the genome and caches fitness, board count, efficiency and
// unplaced count on it. The scratch layout is discarded.
func (e evaluator) score(g *Genome) {
	nest := e.layout(g)
	g.Fitness = fitness(nest)
	g.BoardCount = len(nest.Boards)
	g.Efficiency = nest.TotalEfficiency()
	g.Unplaced = len(nest.Unplaced)
}
