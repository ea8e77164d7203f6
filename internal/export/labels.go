package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/polynest/internal/model"
)

// LabelInfo holds the data encoded into each piece label's QR code.
type LabelInfo struct {
	Run     string  `json:"run"`
	PieceID int     `json:"piece_id"`
	Board   int     `json:"board"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   int     `json:"angle"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10
// rows per US Letter page).
const (
	labelPageWidth  = 215.9
	labelPageHeight = 279.4
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportLabels generates a PDF of QR-coded labels, one per placed piece.
// Each QR code carries the placement metadata as JSON.
func ExportLabels(path string, nest *model.Nesting) error {
	if len(nest.Boards) == 0 {
		return fmt.Errorf("no boards to generate labels for")
	}

	var labels []LabelInfo
	for boardID, board := range nest.Boards {
		for _, pp := range board.Placed {
			labels = append(labels, LabelInfo{
				Run:     nest.RunID,
				PieceID: pp.PieceID,
				Board:   boardID,
				X:       pp.Position.X,
				Y:       pp.Position.Y,
				Angle:   pp.Angle,
				Width:   pp.Rotated.Width,
				Height:  pp.Rotated.Height,
			})
		}
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		slot := i % labelsPerPage
		col := slot % labelCols
		row := slot / labelCols

		x := labelMarginLeft + float64(col)*(labelWidth+labelPadding)
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, label, x, y, i); err != nil {
			return err
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label cell: QR code on the left, text on the
// right.
func renderLabel(pdf *fpdf.Fpdf, label LabelInfo, x, y float64, idx int) error {
	payload, err := json.Marshal(label)
	if err != nil {
		return fmt.Errorf("encoding label payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generating QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr-%d", idx)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding + qrSize + labelPadding
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding+2)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 4, fmt.Sprintf("Piece #%d", label.PieceID), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+7)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5,
		fmt.Sprintf("Board %d @ (%.1f, %.1f)", label.Board, label.X, label.Y), "", 0, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+11)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5,
		fmt.Sprintf("%.1f x %.1f @ %d deg", label.Width, label.Height, label.Angle), "", 0, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+15)
	pdf.CellFormat(labelWidth-qrSize-3*labelPadding, 3.5,
		fmt.Sprintf("Run %s", label.Run), "", 0, "L", false, 0, "")

	return nil
}
