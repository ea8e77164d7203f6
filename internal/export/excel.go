package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/polynest/internal/model"
)

// ExportXLSX writes the run report as a workbook with a Boards sheet and a
// Pieces sheet.
func ExportXLSX(path string, nest *model.Nesting, prob *model.Problem, execSeconds float64) error {
	if len(nest.Boards) == 0 {
		return fmt.Errorf("no boards to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const boardsSheet = "Boards"
	f.SetSheetName("Sheet1", boardsSheet)

	headers := []any{"Board", "Pieces", "Used Area", "Efficiency %"}
	if err := f.SetSheetRow(boardsSheet, "A1", &headers); err != nil {
		return err
	}
	for i, board := range nest.Boards {
		row := []any{i, len(board.Placed), board.UsedArea, board.Efficiency()}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(boardsSheet, cell, &row); err != nil {
			return err
		}
	}
	summaryRow := len(nest.Boards) + 3
	summary := []any{
		"Total",
		nest.PlacedCount(),
		nest.UsedArea(),
		nest.TotalEfficiency(),
	}
	if err := f.SetSheetRow(boardsSheet, fmt.Sprintf("A%d", summaryRow), &summary); err != nil {
		return err
	}
	meta := []any{"Run", nest.RunID, "Execution (s)", execSeconds}
	if err := f.SetSheetRow(boardsSheet, fmt.Sprintf("A%d", summaryRow+1), &meta); err != nil {
		return err
	}

	const piecesSheet = "Pieces"
	if _, err := f.NewSheet(piecesSheet); err != nil {
		return err
	}
	pieceHeaders := []any{"Piece", "Board", "X", "Y", "Angle", "Area"}
	if err := f.SetSheetRow(piecesSheet, "A1", &pieceHeaders); err != nil {
		return err
	}
	rowIdx := 2
	for boardID, board := range nest.Boards {
		for _, pp := range board.Placed {
			row := []any{pp.PieceID, boardID, pp.Position.X, pp.Position.Y, pp.Angle, pp.Area}
			if err := f.SetSheetRow(piecesSheet, fmt.Sprintf("A%d", rowIdx), &row); err != nil {
				return err
			}
			rowIdx++
		}
	}
	for _, id := range nest.Unplaced {
		row := []any{id, "unplaced", "", "", "", prob.Pieces[id].Area}
		if err := f.SetSheetRow(piecesSheet, fmt.Sprintf("A%d", rowIdx), &row); err != nil {
			return err
		}
		rowIdx++
	}

	return f.SaveAs(path)
}
