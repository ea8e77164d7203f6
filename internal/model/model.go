// Package model defines the data types shared by the nesting engine:
// polygon pieces, boards, placements and the problem descriptor.
package model

import "github.com/google/uuid"

// Hard capacity limits of the nesting engine.
const (
	MaxPieces = 100  // pieces per problem
	MaxPoints = 1000 // vertices per polygon
	MaxBoards = 50   // boards per layout
	MaxAngles = 10   // allowed rotation angles per piece
)

// Point2D represents a 2D coordinate in world units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a simple closed polygon as an ordered sequence of
// vertices. The outline is implicitly closed: the last point connects back
// to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Area computes the polygon area using the shoelace formula.
func (o Outline) Area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X * o[j].Y
		area -= o[j].X * o[i].Y
	}
	return abs(area) / 2
}

// Centroid returns the arithmetic mean of the outline's vertices. This is the
// rotation center used throughout the engine; it is not the area centroid.
func (o Outline) Centroid() Point2D {
	if len(o) == 0 {
		return Point2D{}
	}
	var sx, sy float64
	for _, p := range o {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(o))
	return Point2D{X: sx / n, Y: sy / n}
}

// Clone returns an independent copy of the outline.
func (o Outline) Clone() Outline {
	result := make(Outline, len(o))
	copy(result, o)
	return result
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Piece is an input polygon together with its permitted rotation angles.
// Pieces are immutable after ingest: the outline is normalized so its
// bounding box starts at (0, 0), and bbox, dimensions and area are cached.
type Piece struct {
	ID      int     `json:"id"`
	Outline Outline `json:"outline"`
	Angles  []int   `json:"angles"` // allowed rotation angles in degrees
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Area    float64 `json:"area"`
}

// NewPiece builds a Piece from a raw outline, translating it so the bounding
// box minimum sits at the origin. An empty angle list defaults to {0}.
func NewPiece(id int, outline Outline, angles []int) Piece {
	min, max := outline.BoundingBox()
	normalized := outline.Translate(-min.X, -min.Y)
	if len(angles) == 0 {
		angles = []int{0}
	}
	return Piece{
		ID:      id,
		Outline: normalized,
		Angles:  angles,
		Width:   max.X - min.X,
		Height:  max.Y - min.Y,
		Area:    normalized.Area(),
	}
}

// RotatedPiece is a piece outline rotated to one of its allowed angles, with
// the bounding box recomputed. Vertices are not re-translated to the origin
// after rotation.
type RotatedPiece struct {
	Outline    Outline
	Min, Max   Point2D
	Width      float64
	Height     float64
}

// Clone returns an independent copy with its own vertex buffer.
func (rp RotatedPiece) Clone() RotatedPiece {
	c := rp
	c.Outline = rp.Outline.Clone()
	return c
}

// PlacedPiece is a rotated piece committed to a board at a world-space
// position offset. World coordinates of a vertex are vertex + Position.
type PlacedPiece struct {
	PieceID  int
	Angle    int // applied rotation in degrees
	Position Point2D
	Rotated  RotatedPiece
	Area     float64 // original piece area; rotation preserves it
}

// WorldOutline returns the placed polygon in world coordinates.
func (pp PlacedPiece) WorldOutline() Outline {
	return pp.Rotated.Outline.Translate(pp.Position.X, pp.Position.Y)
}

// WorldBBox returns the placed bounding box in world coordinates.
func (pp PlacedPiece) WorldBBox() (min, max Point2D) {
	min = Point2D{X: pp.Rotated.Min.X + pp.Position.X, Y: pp.Rotated.Min.Y + pp.Position.Y}
	max = Point2D{X: pp.Rotated.Max.X + pp.Position.X, Y: pp.Rotated.Max.Y + pp.Position.Y}
	return min, max
}

// Clone returns a deep copy of the placed piece.
func (pp PlacedPiece) Clone() PlacedPiece {
	c := pp
	c.Rotated = pp.Rotated.Clone()
	return c
}

// Board is a single rectangular sheet with its placed pieces. Placement
// order is insertion order.
type Board struct {
	Width    float64
	Height   float64
	Placed   []PlacedPiece
	UsedArea float64
}

// NewBoard opens an empty board of the given dimensions.
func NewBoard(width, height float64) *Board {
	return &Board{Width: width, Height: height}
}

// Efficiency returns the board's area usage percentage.
func (b *Board) Efficiency() float64 {
	total := b.Width * b.Height
	if total == 0 {
		return 0
	}
	return (b.UsedArea / total) * 100.0
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{Width: b.Width, Height: b.Height, UsedArea: b.UsedArea}
	c.Placed = make([]PlacedPiece, len(b.Placed))
	for i, pp := range b.Placed {
		c.Placed[i] = pp.Clone()
	}
	return c
}

// Nesting is a complete layout: the ordered boards produced for one genome,
// plus the ids of pieces that could not be placed anywhere.
type Nesting struct {
	RunID    string
	Boards   []*Board
	Unplaced []int
}

// NewNesting creates an empty layout with a fresh run identifier.
func NewNesting() *Nesting {
	return &Nesting{RunID: uuid.New().String()[:8]}
}

// UsedArea returns the total area of all placed pieces.
func (n *Nesting) UsedArea() float64 {
	var total float64
	for _, b := range n.Boards {
		total += b.UsedArea
	}
	return total
}

// PlacedCount returns the number of placed pieces across all boards.
func (n *Nesting) PlacedCount() int {
	count := 0
	for _, b := range n.Boards {
		count += len(b.Placed)
	}
	return count
}

// TotalEfficiency returns the aggregate usage percentage over all boards.
func (n *Nesting) TotalEfficiency() float64 {
	if len(n.Boards) == 0 {
		return 0
	}
	boardArea := n.Boards[0].Width * n.Boards[0].Height
	total := boardArea * float64(len(n.Boards))
	if total == 0 {
		return 0
	}
	return (n.UsedArea() / total) * 100.0
}

// Clone returns a deep copy, independent of any evaluator scratch state.
func (n *Nesting) Clone() *Nesting {
	c := &Nesting{RunID: n.RunID}
	c.Boards = make([]*Board, len(n.Boards))
	for i, b := range n.Boards {
		c.Boards[i] = b.Clone()
	}
	c.Unplaced = append([]int(nil), n.Unplaced...)
	return c
}

// Problem is the input descriptor: board dimensions, edge margin,
// inter-piece clearance, and the pieces to nest. Pieces are owned by the
// problem for the lifetime of the run.
type Problem struct {
	BoardWidth  float64
	BoardHeight float64
	Margin      float64 // required empty strip along each board edge
	Clearance   float64 // minimum distance between placed piece boundaries
	Pieces      []Piece
}
