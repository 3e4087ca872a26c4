package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each piece label's QR code. Shop
// floor scanners decode this JSON to match a cut piece back to its order.
type LabelInfo struct {
	PieceID   string  `json:"piece_id"`
	Name      string  `json:"name"`
	Width     float64 `json:"width_mm"`
	Height    float64 `json:"height_mm"`
	Thickness float64 `json:"thickness_mm"`
	RunID     string  `json:"run"`
	Rotated   bool    `json:"rotated"`
	X         float64 `json:"x_mm"`
	Y         float64 `json:"y_mm"`
}

// Label layout constants for Avery 5160-compatible sheets (3 columns, 10 rows
// per page). Each label cell is approximately 66.7mm x 25.4mm on US Letter.
const (
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

// WriteLabelsPDF generates a PDF of QR-coded labels for every placed piece of
// a record, laid out on a standard Avery 5160 label sheet.
func WriteLabelsPDF(path string, record *model.OptimizationRecord) error {
	if record == nil {
		return fmt.Errorf("no record to generate labels for")
	}

	labels := CollectLabelInfos(record)
	if len(labels) == 0 {
		return fmt.Errorf("no pieces placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.PieceID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// CollectLabelInfos extracts label information from a record for use in
// testing or alternative export formats.
func CollectLabelInfos(record *model.OptimizationRecord) []LabelInfo {
	labels := make([]LabelInfo, 0, len(record.Result.Placed))
	for _, p := range record.Result.Placed {
		labels = append(labels, LabelInfo{
			PieceID:   p.ID,
			Name:      p.Name,
			Width:     p.Width,
			Height:    p.Height,
			Thickness: p.Thickness,
			RunID:     record.ID,
			Rotated:   p.Rotated,
			X:         p.X,
			Y:         p.Y,
		})
	}
	return labels
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide.
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%s", info.RunID, info.PieceID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	name := info.Name
	if name == "" {
		name = info.PieceID
	}
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f x %.0f x %.0f mm", info.Width, info.Height, info.Thickness)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	posInfo := fmt.Sprintf("Run %s @ (%.0f, %.0f)", info.RunID, info.X, info.Y)
	pdf.CellFormat(textW, 3, posInfo, "", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}
