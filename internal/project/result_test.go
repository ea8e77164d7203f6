package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/polynest/internal/model"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.23, roundTo(1.23456, 2))
	assert.Equal(t, 1.235, roundTo(1.23456, 3))
	assert.Equal(t, -1.23, roundTo(-1.2349, 2))
	assert.Equal(t, 100.0, roundTo(99.9999999, 2))
}

func buildTestNesting() (*model.Nesting, *model.Problem) {
	prob := &model.Problem{BoardWidth: 100, BoardHeight: 100}
	piece := model.NewPiece(0, model.Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, []int{0})
	prob.Pieces = []model.Piece{piece}

	board := model.NewBoard(100, 100)
	board.Placed = append(board.Placed, model.PlacedPiece{
		PieceID:  0,
		Angle:    0,
		Position: model.Point2D{X: 5.123456789, Y: 7.5},
		Rotated:  piece.Rotated(0),
		Area:     piece.Area,
	})
	board.UsedArea = piece.Area

	nest := model.NewNesting()
	nest.Boards = []*model.Board{board}
	return nest, prob
}

func TestBuildResult(t *testing.T) {
	nest, prob := buildTestNesting()
	doc := BuildResult(nest, prob, 1.23456)

	assert.Equal(t, 1, doc.BoardCount)
	assert.Equal(t, 100.0, doc.BoardX)
	assert.Equal(t, 100.0, doc.BoardY)
	assert.Equal(t, 1.0, doc.TotalEfficiency)
	assert.Equal(t, 1.235, doc.ExecutionTime)

	require.Len(t, doc.Boards, 1)
	b := doc.Boards[0]
	assert.Equal(t, 0, b.BoardID)
	assert.Equal(t, 1, b.PieceCount)
	assert.Equal(t, 1.0, b.Efficiency)

	require.Len(t, b.Pieces, 1)
	p := b.Pieces[0]
	assert.Equal(t, 0, p.PieceID)
	// Positions are rounded to 2 decimals, vertices to 6.
	assert.Equal(t, 5.12, p.PositionX)
	assert.Equal(t, 7.5, p.PositionY)
	require.Len(t, p.Data, 4)
	// World vertices are the rotated outline plus the full-precision offset.
	assert.Equal(t, 5.123457, p.Data[0][0])
	assert.Equal(t, 7.5, p.Data[0][1])
	assert.Equal(t, 15.123457, p.Data[1][0])
}

func TestSaveResultRoundTrip(t *testing.T) {
	nest, prob := buildTestNesting()
	doc := BuildResult(nest, prob, 0.5)

	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, SaveResult(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(1), decoded["board_count"])
	assert.Contains(t, decoded, "total_efficiency")
	assert.Contains(t, decoded, "execution_time")
	assert.Contains(t, decoded, "boards")

	boards := decoded["boards"].([]any)
	require.Len(t, boards, 1)
	board := boards[0].(map[string]any)
	assert.Equal(t, float64(0), board["board_id"])
	pieces := board["pieces"].([]any)
	require.Len(t, pieces, 1)
	piece := pieces[0].(map[string]any)
	assert.Contains(t, piece, "piece_id")
	assert.Contains(t, piece, "position_x")
	assert.Contains(t, piece, "angle")
	assert.Contains(t, piece, "data")
}

func TestSaveResultBadPath(t *testing.T) {
	nest, prob := buildTestNesting()
	doc := BuildResult(nest, prob, 0.5)
	err := SaveResult(filepath.Join(t.TempDir(), "missing", "deep", "result.json"), doc)
	assert.Error(t, err)
}
