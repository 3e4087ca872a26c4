// Package engine implements the placement strategies for the sheet-nesting
// optimizer: deterministic bottom-left-fill, a first-fit greedy baseline, and
// a genetic algorithm searching over piece positions.
package engine

import (
	"sort"

	"github.com/glassfab/nestcut/internal/model"
)

// Strategy is the common contract all placement algorithms implement.
// Implementations clone the input pieces, so runs are independent and the
// caller's slice is never mutated.
type Strategy interface {
	Name() model.Algorithm
	Optimize(pieces []model.Piece, sheet model.Sheet, opts model.PlacementOptions) (model.PlacementResult, error)
}

// ForAlgorithm returns the strategy registered for the given algorithm name.
func ForAlgorithm(a model.Algorithm) (Strategy, bool) {
	switch a {
	case model.AlgorithmBLF:
		return &BottomLeftFill{}, true
	case model.AlgorithmGreedy:
		return &Greedy{}, true
	case model.AlgorithmGenetic:
		return NewGenetic(), true
	default:
		return nil, false
	}
}

// clonePieces copies the piece slice with cleared placement state.
func clonePieces(pieces []model.Piece) []model.Piece {
	cloned := make([]model.Piece, len(pieces))
	for i, p := range pieces {
		p.Placed = false
		p.X, p.Y = 0, 0
		p.Rotated = false
		p.Flipped = false
		cloned[i] = p
	}
	return cloned
}

// sortByAreaDesc orders pieces largest-first, preserving input order on ties.
// Placing large pieces first reduces fragmentation of the free space.
func sortByAreaDesc(pieces []model.Piece) {
	sort.SliceStable(pieces, func(i, j int) bool {
		return pieces[i].Area > pieces[j].Area
	})
}

// sortByPriorityThenArea orders pieces by priority (lower first), breaking
// ties by area descending and then input order.
func sortByPriorityThenArea(pieces []model.Piece) {
	sort.SliceStable(pieces, func(i, j int) bool {
		if pieces[i].Priority != pieces[j].Priority {
			return pieces[i].Priority < pieces[j].Priority
		}
		return pieces[i].Area > pieces[j].Area
	})
}

// orientation is one way a piece can lie on the sheet.
type orientation struct {
	w, h    float64
	rotated bool
}

// orientations enumerates the candidate orientations for a piece. The natural
// orientation always comes first; the rotated one is added when rotation is
// allowed and actually differs.
func orientations(p model.Piece, opts model.PlacementOptions) []orientation {
	out := []orientation{{w: p.Width, h: p.Height}}
	if opts.AllowRotation && p.Width != p.Height {
		out = append(out, orientation{w: p.Height, h: p.Width, rotated: true})
	}
	return out
}

// place records a successful placement on the piece and splits the free space
// around the occupied rectangle expanded by the minimum gap.
func place(p *model.Piece, x, y float64, o orientation, free []model.FreeRect, gap float64) []model.FreeRect {
	p.Placed = true
	p.X, p.Y = x, y
	p.Rotated = o.rotated

	occupied := model.FreeRect{X: x, Y: y, Width: o.w, Height: o.h}
	return splitAroundPlacement(free, expand(occupied, gap))
}

// splitResult assembles the strategy output from worked pieces and the final
// free-rectangle list.
func splitResult(pieces []model.Piece, free []model.FreeRect) model.PlacementResult {
	result := model.PlacementResult{LeftoverSpace: free}
	for _, p := range pieces {
		if p.Placed {
			result.Placed = append(result.Placed, p)
		} else {
			result.Unplaced = append(result.Unplaced, p)
		}
	}
	return result
}
