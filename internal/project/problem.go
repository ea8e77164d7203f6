// Package project reads nesting problems and writes nesting results, plus
// the optional YAML tuning overrides for the search parameters.
package project

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/piwi3910/polynest/internal/model"
)

// problemFile mirrors the input JSON document. The "peaces" spelling is
// historical and part of the wire contract.
type problemFile struct {
	BoardX                float64     `json:"board_x"`
	BoardY                float64     `json:"board_y"`
	DistanceBetweenBoards float64     `json:"distance_between_boards"`
	DistanceBetweenPieces float64     `json:"distance_between_peaces"`
	Peaces                []pieceSpec `json:"peaces"`
}

type pieceSpec struct {
	Angle []int       `json:"angle"`
	Data  [][]float64 `json:"data"`
}

// LoadProblem reads and validates an input file, returning the problem
// descriptor with normalized pieces.
func LoadProblem(path string) (*model.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading input %s", path)
	}

	var pf problemFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, errors.Wrapf(err, "parsing input %s", path)
	}

	if pf.BoardX <= 0 || pf.BoardY <= 0 {
		return nil, errors.Errorf("invalid board dimensions %gx%g", pf.BoardX, pf.BoardY)
	}
	if len(pf.Peaces) == 0 {
		return nil, errors.New("input contains no pieces")
	}
	if len(pf.Peaces) > model.MaxPieces {
		return nil, errors.Errorf("too many pieces: %d exceeds limit %d", len(pf.Peaces), model.MaxPieces)
	}

	prob := &model.Problem{
		BoardWidth:  pf.BoardX,
		BoardHeight: pf.BoardY,
		Margin:      pf.DistanceBetweenBoards,
		Clearance:   pf.DistanceBetweenPieces,
	}

	for i, ps := range pf.Peaces {
		piece, err := buildPiece(i, ps)
		if err != nil {
			return nil, errors.Wrapf(err, "piece %d", i)
		}
		prob.Pieces = append(prob.Pieces, piece)
	}
	return prob, nil
}

func buildPiece(id int, ps pieceSpec) (model.Piece, error) {
	if len(ps.Data) < 3 {
		return model.Piece{}, errors.Errorf("polygon has %d vertices, need at least 3", len(ps.Data))
	}
	if len(ps.Data) > model.MaxPoints {
		return model.Piece{}, errors.Errorf("polygon has %d vertices, limit is %d", len(ps.Data), model.MaxPoints)
	}
	if len(ps.Angle) > model.MaxAngles {
		return model.Piece{}, errors.Errorf("%d allowed angles, limit is %d", len(ps.Angle), model.MaxAngles)
	}

	outline := make(model.Outline, len(ps.Data))
	for i, pair := range ps.Data {
		if len(pair) != 2 {
			return model.Piece{}, errors.Errorf("vertex %d has %d coordinates, want 2", i, len(pair))
		}
		outline[i] = model.Point2D{X: pair[0], Y: pair[1]}
	}
	return model.NewPiece(id, outline, ps.Angle), nil
}

// AppendPieces adds extra pieces (e.g. imported from DXF) to the problem,
// assigning them the next free ids.
func AppendPieces(prob *model.Problem, outlines []model.Outline, angles []int) error {
	if len(prob.Pieces)+len(outlines) > model.MaxPieces {
		return errors.Errorf("too many pieces: %d exceeds limit %d",
			len(prob.Pieces)+len(outlines), model.MaxPieces)
	}
	for _, o := range outlines {
		if len(o) > model.MaxPoints {
			return errors.Errorf("polygon has %d vertices, limit is %d", len(o), model.MaxPoints)
		}
		prob.Pieces = append(prob.Pieces, model.NewPiece(len(prob.Pieces), o, angles))
	}
	return nil
}
