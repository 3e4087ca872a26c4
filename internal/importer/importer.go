// Package importer reads design lists from CSV and Excel files. It supports
// automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/xuri/excelize/v2"
)

// defaultThickness applies when an imported row has no thickness column.
const defaultThickness = 4.0 // mm float glass

// ImportResult holds the results of an import operation. Errors are
// per-row and non-fatal: valid rows still import.
type ImportResult struct {
	Requirements []model.Requirement
	Errors       []string
	Warnings     []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name      int
	Width     int
	Height    int
	Quantity  int
	Thickness int
}

// headerAliases maps canonical column names to their accepted aliases (all
// lowercase).
var headerAliases = map[string][]string{
	"name":      {"name", "label", "design", "piece", "part", "description", "desc", "item"},
	"width":     {"width", "w", "length", "len", "x"},
	"height":    {"height", "h", "depth", "d", "y"},
	"quantity":  {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"thickness": {"thickness", "thick", "t", "glass", "mm"},
}

// DetectCSVDelimiter examines the file content and determines the most likely
// CSV delimiter out of comma, semicolon, tab, and pipe. The delimiter that
// produces the most consistent multi-column split across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Consistency dominates; column count breaks ties.
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. Matching
// is case-insensitive against known aliases for each column role. Returns the
// mapping and true if a header was detected, or a default positional mapping
// and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Name:      -1,
		Width:     -1,
		Height:    -1,
		Quantity:  -1,
		Thickness: -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "name":
					if mapping.Name == -1 {
						mapping.Name = i
					}
				case "width":
					if mapping.Width == -1 {
						mapping.Width = i
					}
				case "height":
					if mapping.Height == -1 {
						mapping.Height = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				case "thickness":
					if mapping.Thickness == -1 {
						mapping.Thickness = i
					}
				}
			}
		}
	}

	if !isHeader {
		// Positional fallback: Name, Width, Height, Quantity, Thickness.
		return ColumnMapping{
			Name:      0,
			Width:     1,
			Height:    2,
			Quantity:  3,
			Thickness: 4,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index. Returns
// an empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Requirement from a row using the given column mapping.
// Returns the requirement, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (model.Requirement, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Design %d", count+1)
	}

	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return model.Requirement{}, fmt.Sprintf("%s: missing width value", rowLabel), ""
	}
	width, err := strconv.ParseFloat(widthStr, 64)
	if err != nil {
		return model.Requirement{}, fmt.Sprintf("%s: invalid width %q", rowLabel, widthStr), ""
	}

	heightStr := getCell(row, mapping.Height)
	if heightStr == "" {
		return model.Requirement{}, fmt.Sprintf("%s: missing height value", rowLabel), ""
	}
	height, err := strconv.ParseFloat(heightStr, 64)
	if err != nil {
		return model.Requirement{}, fmt.Sprintf("%s: invalid height %q", rowLabel, heightStr), ""
	}

	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.Requirement{}, fmt.Sprintf("%s: missing quantity value", rowLabel), ""
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.Requirement{}, fmt.Sprintf("%s: invalid quantity %q", rowLabel, qtyStr), ""
	}

	if width <= 0 || height <= 0 || qty <= 0 {
		return model.Requirement{}, fmt.Sprintf("%s: width, height, and quantity must be positive", rowLabel), ""
	}

	thickness := defaultThickness
	var warning string
	if thickStr := getCell(row, mapping.Thickness); thickStr != "" {
		t, err := strconv.ParseFloat(thickStr, 64)
		if err != nil || t <= 0 {
			warning = fmt.Sprintf("%s: invalid thickness %q, defaulting to %.0fmm", rowLabel, thickStr, defaultThickness)
		} else {
			thickness = t
		}
	}

	req := model.Requirement{
		Design:   model.NewDesign(name, width, height, thickness),
		Quantity: qty,
	}
	return req, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports design requirements from a CSV file. It automatically
// detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	return importFromRows(records, "line", result.Warnings)
}

// ImportCSVFromReader imports design requirements from a CSV reader with a
// known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	return importFromRows(records, "line", nil)
}

// ImportExcel imports design requirements from the first worksheet of an
// .xlsx file, auto-detecting the column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "sheet is empty")
		return result
	}

	return importFromRows(rows, "row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data. It
// detects headers, maps columns, and parses each row into a requirement.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "no data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "detected header row, skipping")

		var missing []string
		if mapping.Width == -1 {
			missing = append(missing, "width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "height")
		}
		if mapping.Quantity == -1 {
			missing = append(missing, "quantity")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// No recognized header. If the second column is not numeric the first
		// row is likely an unknown header; skip it but keep the positional
		// mapping.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		req, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Requirements))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Requirements = append(result.Requirements, req)
	}

	return result
}
