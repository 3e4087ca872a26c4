// Package stats derives utilization, waste and cost metrics from a completed
// placement. Everything here is deterministic arithmetic over the result.
package stats

import "github.com/glassfab/nestcut/internal/model"

// wasteGridCell is the resolution of the largest-empty-rectangle scan in mm.
// The scan is an approximation bounded by this resolution; exact largest
// empty rectangle search is outside the precision this system needs.
const wasteGridCell = 50.0

// Compute derives the statistics for one placement result on one sheet.
func Compute(result model.PlacementResult, sheet model.Sheet) model.Statistics {
	s := model.Statistics{
		TotalPieces:    len(result.Placed) + len(result.Unplaced),
		PlacedPieces:   len(result.Placed),
		UnplacedPieces: len(result.Unplaced),
		SheetArea:      sheet.Area(),
	}

	var requestedArea float64
	for _, p := range result.Placed {
		s.UsedArea += p.Area
		requestedArea += p.Area
	}
	for _, p := range result.Unplaced {
		requestedArea += p.Area
	}

	s.WasteArea = s.SheetArea - s.UsedArea
	if s.SheetArea > 0 {
		s.UtilizationRate = s.UsedArea / s.SheetArea * 100
		s.WasteRate = 100 - s.UtilizationRate
		s.Density = float64(s.PlacedPieces) / s.SheetArea * 1_000_000
	}
	if requestedArea > 0 {
		s.MaterialEfficiency = s.UsedArea / requestedArea * 100
	}

	s.LargestWaste = largestEmptyRect(result.Placed, sheet)

	if sheet.PricePerArea > 0 {
		s.EstimatedCost = s.UsedArea * sheet.PricePerArea
		s.WasteCost = s.WasteArea * sheet.PricePerArea
	}

	return s
}

// largestEmptyRect approximates the largest axis-aligned empty rectangle by
// scanning the sheet on a fixed grid: from each uncovered cell it grows a
// rectangle rightward, then upward while all cells in the span stay
// uncovered, and tracks the maximum area found.
func largestEmptyRect(placed []model.Piece, sheet model.Sheet) float64 {
	cols := int(sheet.Width / wasteGridCell)
	rows := int(sheet.Height / wasteGridCell)
	if cols == 0 || rows == 0 {
		return 0
	}

	covered := make([][]bool, rows)
	for r := range covered {
		covered[r] = make([]bool, cols)
	}
	for _, p := range placed {
		occ := p.OccupiedRect()
		c0 := int(occ.X / wasteGridCell)
		c1 := int((occ.X + occ.Width - 0.001) / wasteGridCell)
		r0 := int(occ.Y / wasteGridCell)
		r1 := int((occ.Y + occ.Height - 0.001) / wasteGridCell)
		for r := max(r0, 0); r <= r1 && r < rows; r++ {
			for c := max(c0, 0); c <= c1 && c < cols; c++ {
				covered[r][c] = true
			}
		}
	}

	var best float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if covered[r][c] {
				continue
			}

			// Grow rightward from the seed cell.
			width := 0
			for c+width < cols && !covered[r][c+width] {
				width++
			}

			// Grow the full-width strip upward.
			height := 1
			for r+height < rows {
				clear := true
				for i := 0; i < width; i++ {
					if covered[r+height][c+i] {
						clear = false
						break
					}
				}
				if !clear {
					break
				}
				height++
			}

			area := float64(width) * float64(height) * wasteGridCell * wasteGridCell
			if area > best {
				best = area
			}
		}
	}
	return best
}
