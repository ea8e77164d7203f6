package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/polynest/internal/model"
)

const sampleInput = `{
  "board_x": 1000,
  "board_y": 500,
  "distance_between_boards": 10,
  "distance_between_peaces": 5,
  "peaces": [
    {"angle": [0, 90], "data": [[0, 0], [100, 0], [100, 50], [0, 50]]},
    {"angle": [0], "data": [[20, 30], [60, 30], [40, 70]]}
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProblem(t *testing.T) {
	path := writeTemp(t, "input.json", sampleInput)

	prob, err := LoadProblem(path)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, prob.BoardWidth)
	assert.Equal(t, 500.0, prob.BoardHeight)
	assert.Equal(t, 10.0, prob.Margin)
	assert.Equal(t, 5.0, prob.Clearance)
	require.Len(t, prob.Pieces, 2)

	p0 := prob.Pieces[0]
	assert.Equal(t, 0, p0.ID)
	assert.Equal(t, []int{0, 90}, p0.Angles)
	assert.Equal(t, 100.0, p0.Width)
	assert.Equal(t, 50.0, p0.Height)

	// The triangle is normalized so its bbox starts at the origin.
	p1 := prob.Pieces[1]
	min, _ := p1.Outline.BoundingBox()
	assert.Equal(t, 0.0, min.X)
	assert.Equal(t, 0.0, min.Y)
	assert.InDelta(t, 800.0, p1.Area, 1e-9)
}

func TestLoadProblemMissingFile(t *testing.T) {
	_, err := LoadProblem(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadProblemBadJSON(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"board_x": 100,`)
	_, err := LoadProblem(path)
	assert.Error(t, err)
}

func TestLoadProblemRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero board", `{"board_x": 0, "board_y": 100, "peaces": [{"angle": [0], "data": [[0,0],[1,0],[1,1]]}]}`},
		{"no pieces", `{"board_x": 100, "board_y": 100, "peaces": []}`},
		{"two-vertex polygon", `{"board_x": 100, "board_y": 100, "peaces": [{"angle": [0], "data": [[0,0],[1,0]]}]}`},
		{"three-coordinate vertex", `{"board_x": 100, "board_y": 100, "peaces": [{"angle": [0], "data": [[0,0,0],[1,0,0],[1,1,0]]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "input.json", tt.content)
			_, err := LoadProblem(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadProblemDefaultsEmptyAngles(t *testing.T) {
	path := writeTemp(t, "input.json",
		`{"board_x": 100, "board_y": 100, "peaces": [{"angle": [], "data": [[0,0],[10,0],[10,10],[0,10]]}]}`)
	prob, err := LoadProblem(path)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, prob.Pieces[0].Angles)
}

func TestAppendPieces(t *testing.T) {
	prob := &model.Problem{BoardWidth: 100, BoardHeight: 100}
	prob.Pieces = []model.Piece{model.NewPiece(0, model.Outline{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, []int{0})}

	outlines := []model.Outline{
		{{X: 5, Y: 5}, {X: 15, Y: 5}, {X: 15, Y: 15}, {X: 5, Y: 15}},
	}
	require.NoError(t, AppendPieces(prob, outlines, []int{0, 90}))
	require.Len(t, prob.Pieces, 2)
	assert.Equal(t, 1, prob.Pieces[1].ID)
	assert.Equal(t, []int{0, 90}, prob.Pieces[1].Angles)
}
