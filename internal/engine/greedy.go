package engine

import "github.com/glassfab/nestcut/internal/model"

// Greedy is the fast first-fit baseline. Pieces are considered in priority
// then area order and dropped into the first free rectangle that fits, without
// the bottom-left minimization step.
type Greedy struct{}

func (g *Greedy) Name() model.Algorithm {
	return model.AlgorithmGreedy
}

func (g *Greedy) Optimize(pieces []model.Piece, sheet model.Sheet, opts model.PlacementOptions) (model.PlacementResult, error) {
	worked := clonePieces(pieces)
	sortByPriorityThenArea(worked)

	free := []model.FreeRect{usableRect(sheet, opts.EdgeMargin)}

	for i := range worked {
		if cand, ok := firstFit(worked[i], free, opts); ok {
			free = place(&worked[i], cand.x, cand.y, cand.o, free, opts.MinimumGap)
		}
	}

	return splitResult(worked, free), nil
}

// firstFit returns the first candidate in free-rectangle scan order.
func firstFit(p model.Piece, free []model.FreeRect, opts model.PlacementOptions) (candidate, bool) {
	for _, r := range free {
		for _, o := range orientations(p, opts) {
			if fits(r, o.w, o.h) {
				return candidate{x: r.X, y: r.Y, o: o}, true
			}
		}
	}
	return candidate{}, false
}
