package engine

import "github.com/glassfab/nestcut/internal/model"

// BottomLeftFill is the deterministic single-pass placement strategy. Pieces
// are processed largest-first; each piece is anchored at the lower-left corner
// of the free rectangle that minimizes x+y among all fitting candidates.
type BottomLeftFill struct{}

func (b *BottomLeftFill) Name() model.Algorithm {
	return model.AlgorithmBLF
}

func (b *BottomLeftFill) Optimize(pieces []model.Piece, sheet model.Sheet, opts model.PlacementOptions) (model.PlacementResult, error) {
	worked := clonePieces(pieces)
	sortByAreaDesc(worked)

	free := []model.FreeRect{usableRect(sheet, opts.EdgeMargin)}

	for i := range worked {
		if cand, ok := bottomLeftCandidate(worked[i], free, opts); ok {
			free = place(&worked[i], cand.x, cand.y, cand.o, free, opts.MinimumGap)
		}
		// A piece with no fitting candidate stays unplaced; that is a normal
		// outcome, not an error.
	}

	return splitResult(worked, free), nil
}

type candidate struct {
	x, y float64
	o    orientation
}

// bottomLeftCandidate scans every free rectangle and orientation and returns
// the candidate with minimal x+y. Ties keep the first candidate found, i.e.
// free-rectangle list order then orientation order, which keeps the strategy
// deterministic.
func bottomLeftCandidate(p model.Piece, free []model.FreeRect, opts model.PlacementOptions) (candidate, bool) {
	var best candidate
	found := false

	for _, r := range free {
		for _, o := range orientations(p, opts) {
			if !fits(r, o.w, o.h) {
				continue
			}
			if !found || r.X+r.Y < best.x+best.y-eps {
				best = candidate{x: r.X, y: r.Y, o: o}
				found = true
			}
		}
	}

	return best, found
}
