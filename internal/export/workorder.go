// Package export renders optimization records into printable and
// machine-readable documents. All exporters are pure functions of a record;
// none of them mutate it.
package export

import (
	"fmt"
	"math"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/go-pdf/fpdf"
)

// pieceColor is an RGB fill color for a placed piece in the layout drawing.
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
	legendHeight = 18.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WriteWorkOrderPDF generates a printable work order for one optimization
// record: the sheet layout with the scoring sequence overlaid, a cut table,
// and a statistics summary.
func WriteWorkOrderPDF(path string, record *model.OptimizationRecord) error {
	if record == nil || len(record.Result.Placed) == 0 {
		return fmt.Errorf("no placed pieces to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, record)

	pdf.AddPage()
	renderCutSequencePage(pdf, record)

	return pdf.OutputFileAndClose(path)
}

func renderLayoutPage(pdf *fpdf.Fpdf, record *model.OptimizationRecord) {
	sheet := record.Sheet

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Work Order %s - %s layout (%.0f x %.0f mm, %.0f mm glass)",
		record.ID, record.Algorithm, sheet.Width, sheet.Height, sheet.Thickness)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Placed: %d/%d | Utilization: %.1f%% | Waste: %.0f sq mm | Cuts: %d",
		record.Stats.PlacedPieces, record.Stats.TotalPieces,
		record.Stats.UtilizationRate, record.Stats.WasteArea, len(record.CutPaths))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/sheet.Width, drawHeight/sheet.Height)
	canvasW := sheet.Width * scale
	canvasH := sheet.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Sheet background.
	pdf.SetFillColor(225, 240, 245)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Placed pieces. Sheet coordinates have a lower-left origin; the page has
	// a top-left origin, so y is flipped.
	for i, p := range record.Result.Placed {
		col := pieceColors[i%len(pieceColors)]
		occ := p.OccupiedRect()
		pw := occ.Width * scale
		ph := occ.Height * scale
		px := offsetX + occ.X*scale
		py := offsetY + (sheet.Height-occ.Y-occ.Height)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			label := p.ID
			dims := fmt.Sprintf("%.0fx%.0f", p.Width, p.Height)
			if p.Rotated {
				dims += " R"
			}
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	// Scoring sequence overlay.
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.2)
	for _, s := range record.CutPaths {
		x1 := offsetX + s.StartX*scale
		y1 := offsetY + (sheet.Height-s.StartY)*scale
		x2 := offsetX + s.EndX*scale
		y2 := offsetY + (sheet.Height-s.EndY)*scale
		pdf.Line(x1, y1, x2, y2)
	}

	drawDimensionAnnotations(pdf, sheet, scale, offsetX, offsetY, canvasW, canvasH)
	drawPieceLegend(pdf, record.Result.Placed, offsetY+canvasH+5)
}

func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet model.Sheet, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", sheet.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", sheet.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

func drawPieceLegend(pdf *fpdf.Fpdf, placed []model.Piece, startY float64) {
	if len(placed) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range placed {
		col := pieceColors[i%len(pieceColors)]
		label := fmt.Sprintf("%s (%.0fx%.0f)", p.ID, p.Width, p.Height)
		if p.Rotated {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

func renderCutSequencePage(pdf *fpdf.Fpdf, record *model.OptimizationRecord) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cut Sequence", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	colWidths := []float64{15, 25, 45, 45, 25, 30, 60}
	headers := []string{"#", "Dir", "From (x, y)", "To (x, y)", "Length", "Tool", "Pieces"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 8)
	for i, s := range record.CutPaths {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}

		row := []string{
			fmt.Sprintf("%d", s.Order),
			string(s.Orientation)[:1],
			fmt.Sprintf("%.1f, %.1f", s.StartX, s.StartY),
			fmt.Sprintf("%.1f, %.1f", s.EndX, s.EndY),
			fmt.Sprintf("%.0f mm", s.Length()),
			s.Tool,
			joinIDs(s.PieceIDs),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 5, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 5
	}

	// Unplaced pieces warning.
	if len(record.Result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: unplaced pieces", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, p := range record.Result.Unplaced {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, fmt.Sprintf("- %s: %.0f x %.0f mm", p.ID, p.Width, p.Height), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := fmt.Sprintf("NestCut work order %s - generated %s", record.ID, record.CreatedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}

// labelFontSize returns an appropriate font size for a piece rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
