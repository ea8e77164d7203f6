// Package export renders nesting results to PDF layout sheets, QR-coded
// piece labels, and XLSX run reports.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/polynest/internal/model"
)

// pieceColor represents an RGB color for a placed piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF renders each board of the layout on its own page with the placed
// polygons drawn to scale, followed by a summary page.
func ExportPDF(path string, nest *model.Nesting, prob *model.Problem) error {
	if len(nest.Boards) == 0 {
		return fmt.Errorf("no boards to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, board := range nest.Boards {
		pdf.AddPage()
		renderBoardPage(pdf, board, i)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, nest, prob)

	return pdf.OutputFileAndClose(path)
}

// renderBoardPage draws a single board on the current PDF page.
func renderBoardPage(pdf *fpdf.Fpdf, board *model.Board, boardID int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Board %d (%.0f x %.0f)", boardID, board.Width, board.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Used area: %.0f | Efficiency: %.2f%%",
		len(board.Placed), board.UsedArea, board.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom

	scale := math.Min(drawWidth/board.Width, drawHeight/board.Height)
	canvasW := board.Width * scale
	canvasH := board.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Board background
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for i, pp := range board.Placed {
		col := pieceColors[i%len(pieceColors)]
		world := pp.WorldOutline()

		points := make([]fpdf.PointType, len(world))
		for j, pt := range world {
			points[j] = fpdf.PointType{
				X: offsetX + pt.X*scale,
				Y: offsetY + pt.Y*scale,
			}
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(points, "FD")

		// Piece id at the bbox center when the piece is large enough.
		min, max := pp.WorldBBox()
		pw := (max.X - min.X) * scale
		ph := (max.Y - min.Y) * scale
		if pw > 8 && ph > 5 {
			label := fmt.Sprintf("#%d", pp.PieceID)
			pdf.SetFont("Helvetica", "", 7)
			pdf.SetTextColor(0, 0, 0)
			labelW := pdf.GetStringWidth(label)
			cx := offsetX + (min.X+max.X)/2*scale
			cy := offsetY + (min.Y+max.Y)/2*scale
			pdf.SetXY(cx-labelW/2, cy-2)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
	}
}

// renderSummaryPage draws the overall run statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, nest *model.Nesting, prob *model.Problem) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	y := marginTop + headerHeight + 8

	lines := []string{
		fmt.Sprintf("Run: %s", nest.RunID),
		fmt.Sprintf("Board size: %.0f x %.0f", prob.BoardWidth, prob.BoardHeight),
		fmt.Sprintf("Boards used: %d", len(nest.Boards)),
		fmt.Sprintf("Pieces placed: %d / %d", nest.PlacedCount(), len(prob.Pieces)),
		fmt.Sprintf("Total efficiency: %.2f%%", nest.TotalEfficiency()),
	}
	if len(nest.Unplaced) > 0 {
		lines = append(lines, fmt.Sprintf("Unplaced pieces: %v", nest.Unplaced))
	}
	for _, line := range lines {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 6, line, "", 0, "L", false, 0, "")
		y += 7
	}

	// Per-board table
	y += 4
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(30, 6, "Board", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Pieces", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Efficiency", "1", 0, "C", false, 0, "")
	y += 6
	pdf.SetFont("Helvetica", "", 10)
	for i, board := range nest.Boards {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", i), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", len(board.Placed)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f%%", board.Efficiency()), "1", 0, "C", false, 0, "")
		y += 6
	}
}
