package export

import (
	"fmt"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/xuri/excelize/v2"
)

// Worksheet names in the cutting-list workbook.
const (
	sheetPieces   = "Pieces"
	sheetSequence = "Cut Sequence"
	sheetSummary  = "Summary"
)

// WriteCuttingListXLSX exports a record as a spreadsheet workbook with one
// worksheet per concern: the piece list, the ordered cut sequence, and the
// run summary. Fabricators hand this to the floor alongside the work order.
func WriteCuttingListXLSX(path string, record *model.OptimizationRecord) error {
	if record == nil {
		return fmt.Errorf("no record to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetPieces)
	if _, err := f.NewSheet(sheetSequence); err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writePiecesSheet(f, record, headerStyle); err != nil {
		return err
	}
	if err := writeSequenceSheet(f, record, headerStyle); err != nil {
		return err
	}
	if err := writeSummarySheet(f, record, headerStyle); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func writePiecesSheet(f *excelize.File, record *model.OptimizationRecord, headerStyle int) error {
	headers := []string{"Piece ID", "Name", "Width (mm)", "Height (mm)", "Thickness (mm)", "Status", "X (mm)", "Y (mm)", "Rotated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetPieces, cell, h); err != nil {
			return fmt.Errorf("failed to write cell: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetPieces, "A1", last, headerStyle)

	row := 2
	for _, p := range record.Result.Placed {
		writePieceRow(f, row, p, "placed")
		row++
	}
	for _, p := range record.Result.Unplaced {
		writePieceRow(f, row, p, "unplaced")
		row++
	}

	_ = f.SetColWidth(sheetPieces, "A", "B", 16)
	_ = f.SetColWidth(sheetPieces, "C", "I", 12)
	return nil
}

func writePieceRow(f *excelize.File, row int, p model.Piece, status string) {
	values := []interface{}{p.ID, p.Name, p.Width, p.Height, p.Thickness, status}
	if status == "placed" {
		values = append(values, p.X, p.Y, p.Rotated)
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheetPieces, cell, v)
	}
}

func writeSequenceSheet(f *excelize.File, record *model.OptimizationRecord, headerStyle int) error {
	headers := []string{"Order", "Direction", "Start X", "Start Y", "End X", "End Y", "Length (mm)", "Tool", "Speed (mm/s)", "Pieces"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetSequence, cell, h); err != nil {
			return fmt.Errorf("failed to write cell: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetSequence, "A1", last, headerStyle)

	for i, s := range record.CutPaths {
		values := []interface{}{
			s.Order, string(s.Orientation), s.StartX, s.StartY, s.EndX, s.EndY,
			s.Length(), s.Tool, s.Speed, joinIDs(s.PieceIDs),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheetSequence, cell, v)
		}
	}

	_ = f.SetColWidth(sheetSequence, "A", "I", 11)
	_ = f.SetColWidth(sheetSequence, "J", "J", 30)
	return nil
}

func writeSummarySheet(f *excelize.File, record *model.OptimizationRecord, headerStyle int) error {
	stats := record.Stats
	rows := [][2]interface{}{
		{"Run ID", record.ID},
		{"Algorithm", string(record.Algorithm)},
		{"Created", record.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Duration", record.Duration.String()},
		{"Sheet", fmt.Sprintf("%.0f x %.0f x %.0f mm", record.Sheet.Width, record.Sheet.Height, record.Sheet.Thickness)},
		{"Total pieces", stats.TotalPieces},
		{"Placed pieces", stats.PlacedPieces},
		{"Unplaced pieces", stats.UnplacedPieces},
		{"Sheet area (sq mm)", stats.SheetArea},
		{"Used area (sq mm)", stats.UsedArea},
		{"Waste area (sq mm)", stats.WasteArea},
		{"Utilization (%)", stats.UtilizationRate},
		{"Waste rate (%)", stats.WasteRate},
		{"Material efficiency (%)", stats.MaterialEfficiency},
		{"Density (pieces/sq m)", stats.Density},
		{"Largest waste block (sq mm)", stats.LargestWaste},
		{"Cut segments", len(record.CutPaths)},
	}
	if record.Sheet.PricePerArea > 0 {
		rows = append(rows,
			[2]interface{}{"Estimated material cost", stats.EstimatedCost},
			[2]interface{}{"Waste cost", stats.WasteCost},
		)
	}

	for i, r := range rows {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(sheetSummary, keyCell, r[0]); err != nil {
			return fmt.Errorf("failed to write cell: %w", err)
		}
		_ = f.SetCellValue(sheetSummary, valCell, r[1])
		_ = f.SetCellStyle(sheetSummary, keyCell, keyCell, headerStyle)
	}

	_ = f.SetColWidth(sheetSummary, "A", "A", 28)
	_ = f.SetColWidth(sheetSummary, "B", "B", 24)
	return nil
}
