package project

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/piwi3910/polynest/internal/model"
)

// ResultDoc mirrors the output JSON document.
type ResultDoc struct {
	BoardCount      int        `json:"board_count"`
	BoardX          float64    `json:"board_x"`
	BoardY          float64    `json:"board_y"`
	TotalEfficiency float64    `json:"total_efficiency"`
	ExecutionTime   float64    `json:"execution_time"`
	Boards          []BoardDoc `json:"boards"`
}

// BoardDoc is one board of the result.
type BoardDoc struct {
	BoardID    int        `json:"board_id"`
	Efficiency float64    `json:"efficiency"`
	PieceCount int        `json:"piece_count"`
	Pieces     []PieceDoc `json:"pieces"`
}

// PieceDoc is one placed piece with its world-space vertices.
type PieceDoc struct {
	PieceID   int          `json:"piece_id"`
	PositionX float64      `json:"position_x"`
	PositionY float64      `json:"position_y"`
	Angle     int          `json:"angle"`
	Data      [][2]float64 `json:"data"`
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// BuildResult converts a layout into the output document. Positions carry 2
// decimals, vertices 6, percentages 2 and the execution time 3.
func BuildResult(nest *model.Nesting, prob *model.Problem, execSeconds float64) ResultDoc {
	doc := ResultDoc{
		BoardCount:      len(nest.Boards),
		BoardX:          prob.BoardWidth,
		BoardY:          prob.BoardHeight,
		TotalEfficiency: roundTo(nest.TotalEfficiency(), 2),
		ExecutionTime:   roundTo(execSeconds, 3),
		Boards:          make([]BoardDoc, 0, len(nest.Boards)),
	}

	for boardID, board := range nest.Boards {
		bd := BoardDoc{
			BoardID:    boardID,
			Efficiency: roundTo(board.Efficiency(), 2),
			PieceCount: len(board.Placed),
			Pieces:     make([]PieceDoc, 0, len(board.Placed)),
		}
		for _, pp := range board.Placed {
			world := pp.WorldOutline()
			data := make([][2]float64, len(world))
			for i, pt := range world {
				data[i] = [2]float64{roundTo(pt.X, 6), roundTo(pt.Y, 6)}
			}
			bd.Pieces = append(bd.Pieces, PieceDoc{
				PieceID:   pp.PieceID,
				PositionX: roundTo(pp.Position.X, 2),
				PositionY: roundTo(pp.Position.Y, 2),
				Angle:     pp.Angle,
				Data:      data,
			})
		}
		doc.Boards = append(doc.Boards, bd)
	}
	return doc
}

// SaveResult writes the result document as indented JSON.
func SaveResult(path string, doc ResultDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing result %s", path)
	}
	return nil
}
