// Package cutpath converts placed pieces into the ordered sequence of
// straight scoring cuts used to physically cut the sheet.
package cutpath

import (
	"fmt"
	"math"
	"sort"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/google/uuid"
)

// rowTolerance groups pieces whose vertical centers are within this many mm
// into one cutting row.
const rowTolerance = 10.0

// Default tool metadata carried on every segment. Not consumed by any
// algorithm; exporters and downstream controllers read it.
const (
	defaultTool  = "diamond-scribe"
	defaultSpeed = 120.0 // mm/s
)

// Generate emits the boundary cut segments for every placed piece. Pieces are
// processed row by row (y-centers within rowTolerance), left to right within
// a row, so pieces cut in the same pass stay adjacent in the output. Each
// segment is inset outward by half the minimum gap; coincident segments from
// adjacent pieces are merged and carry all owning piece ids.
func Generate(placed []model.Piece, opts model.PlacementOptions) []model.CutSegment {
	ordered := make([]model.Piece, len(placed))
	copy(ordered, placed)
	sortRowMajor(ordered)

	inset := opts.MinimumGap / 2
	var segments []model.CutSegment
	index := make(map[segmentKey]int)

	for _, p := range ordered {
		occ := p.OccupiedRect()
		x0 := occ.X - inset
		y0 := occ.Y - inset
		x1 := occ.X + occ.Width + inset
		y1 := occ.Y + occ.Height + inset

		edges := []model.CutSegment{
			{Orientation: model.SegmentHorizontal, StartX: x0, StartY: y0, EndX: x1, EndY: y0},
			{Orientation: model.SegmentHorizontal, StartX: x0, StartY: y1, EndX: x1, EndY: y1},
			{Orientation: model.SegmentVertical, StartX: x0, StartY: y0, EndX: x0, EndY: y1},
			{Orientation: model.SegmentVertical, StartX: x1, StartY: y0, EndX: x1, EndY: y1},
		}

		for _, e := range edges {
			key := keyFor(e)
			if i, ok := index[key]; ok {
				segments[i].PieceIDs = append(segments[i].PieceIDs, p.ID)
				continue
			}
			e.ID = uuid.New().String()[:8]
			e.Tool = defaultTool
			e.Speed = defaultSpeed
			e.PieceIDs = []string{p.ID}
			index[key] = len(segments)
			segments = append(segments, e)
		}
	}

	return segments
}

// sortRowMajor orders pieces by cutting row, then by x within the row.
func sortRowMajor(pieces []model.Piece) {
	sort.SliceStable(pieces, func(i, j int) bool {
		ci := pieces[i].Y + pieces[i].PlacedHeight()/2
		cj := pieces[j].Y + pieces[j].PlacedHeight()/2
		if math.Abs(ci-cj) > rowTolerance {
			return ci < cj
		}
		return pieces[i].X < pieces[j].X
	})
}

type segmentKey struct {
	orientation    model.SegmentOrientation
	sx, sy, ex, ey float64
}

func keyFor(s model.CutSegment) segmentKey {
	return segmentKey{
		orientation: s.Orientation,
		sx:          roundCoord(s.StartX),
		sy:          roundCoord(s.StartY),
		ex:          roundCoord(s.EndX),
		ey:          roundCoord(s.EndY),
	}
}

// roundCoord snaps a coordinate to 0.01mm so coincident edges from adjacent
// pieces hash to the same key despite float noise.
func roundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

// OrderSegments orders cut segments to minimize tool travel with a
// nearest-neighbor walk: starting from (0,0), repeatedly pick the remaining
// segment whose start point is closest to the current tool position. Not an
// exact tour, deliberately; order fields are rewritten to 1..N.
func OrderSegments(segments []model.CutSegment) []model.CutSegment {
	remaining := make([]model.CutSegment, len(segments))
	copy(remaining, segments)

	ordered := make([]model.CutSegment, 0, len(remaining))
	toolX, toolY := 0.0, 0.0

	for len(remaining) > 0 {
		bestIdx := 0
		bestDist := math.MaxFloat64
		for i, s := range remaining {
			dx := s.StartX - toolX
			dy := s.StartY - toolY
			d := dx*dx + dy*dy
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}

		next := remaining[bestIdx]
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)

		next.Order = len(ordered) + 1
		ordered = append(ordered, next)
		toolX, toolY = next.EndX, next.EndY
	}

	return ordered
}

// TravelDistance sums the rapid-move distance between consecutive segments of
// an ordered path, starting from the (0,0) tool origin.
func TravelDistance(ordered []model.CutSegment) float64 {
	toolX, toolY := 0.0, 0.0
	var total float64
	for _, s := range ordered {
		dx := s.StartX - toolX
		dy := s.StartY - toolY
		total += math.Sqrt(dx*dx + dy*dy)
		toolX, toolY = s.EndX, s.EndY
	}
	return total
}

// Describe renders a human-readable one-line summary for a segment, used by
// the CLI and the cutting-list export.
func Describe(s model.CutSegment) string {
	return fmt.Sprintf("#%d %s cut (%.1f, %.1f) -> (%.1f, %.1f), %.0fmm",
		s.Order, s.Orientation, s.StartX, s.StartY, s.EndX, s.EndY, s.Length())
}
