package engine

import "github.com/glassfab/nestcut/internal/model"

// Geometric epsilon for float comparisons, matches the precision the rest of
// the engine works at.
const eps = 0.001

// minResidual is the floor for residual free rectangles. Anything smaller than
// 10x10mm can never hold a piece and would only grow the free list.
const minResidual = 10.0

// usableRect returns the sheet interior minus the edge margin on every side.
func usableRect(sheet model.Sheet, margin float64) model.FreeRect {
	return model.FreeRect{
		X:      margin,
		Y:      margin,
		Width:  sheet.Width - 2*margin,
		Height: sheet.Height - 2*margin,
	}
}

// fits reports whether an oriented piece of w x h fits inside r.
func fits(r model.FreeRect, w, h float64) bool {
	return w <= r.Width+eps && h <= r.Height+eps
}

func rectsOverlap(a, b model.FreeRect) bool {
	return a.X < b.X+b.Width-eps && a.X+a.Width > b.X+eps &&
		a.Y < b.Y+b.Height-eps && a.Y+a.Height > b.Y+eps
}

// containsRect reports whether outer fully contains inner.
func containsRect(outer, inner model.FreeRect) bool {
	return outer.X <= inner.X+eps && outer.Y <= inner.Y+eps &&
		outer.X+outer.Width >= inner.X+inner.Width-eps &&
		outer.Y+outer.Height >= inner.Y+inner.Height-eps
}

// expand grows a rectangle by d on every side.
func expand(r model.FreeRect, d float64) model.FreeRect {
	return model.FreeRect{
		X:      r.X - d,
		Y:      r.Y - d,
		Width:  r.Width + 2*d,
		Height: r.Height + 2*d,
	}
}

// splitAroundPlacement removes every free rectangle that intersects the placed
// rectangle (already expanded by the minimum gap) and replaces each with up to
// four maximal residual strips. Residuals below the minResidual floor are
// discarded to bound list growth.
func splitAroundPlacement(free []model.FreeRect, placed model.FreeRect) []model.FreeRect {
	var next []model.FreeRect

	for _, r := range free {
		if !rectsOverlap(r, placed) {
			next = append(next, r)
			continue
		}

		// Left strip, full height of the original rect.
		if placed.X > r.X+eps {
			next = appendResidual(next, model.FreeRect{
				X: r.X, Y: r.Y,
				Width: placed.X - r.X, Height: r.Height,
			})
		}
		// Right strip.
		if placed.X+placed.Width < r.X+r.Width-eps {
			next = appendResidual(next, model.FreeRect{
				X: placed.X + placed.Width, Y: r.Y,
				Width: (r.X + r.Width) - (placed.X + placed.Width), Height: r.Height,
			})
		}
		// Strip below, full width of the original rect.
		if placed.Y > r.Y+eps {
			next = appendResidual(next, model.FreeRect{
				X: r.X, Y: r.Y,
				Width: r.Width, Height: placed.Y - r.Y,
			})
		}
		// Strip above.
		if placed.Y+placed.Height < r.Y+r.Height-eps {
			next = appendResidual(next, model.FreeRect{
				X: r.X, Y: placed.Y + placed.Height,
				Width: r.Width, Height: (r.Y + r.Height) - (placed.Y + placed.Height),
			})
		}
	}

	return pruneContained(next)
}

func appendResidual(list []model.FreeRect, r model.FreeRect) []model.FreeRect {
	if r.Width < minResidual || r.Height < minResidual {
		return list
	}
	return append(list, r)
}

// pruneContained removes any rectangle fully contained within another.
func pruneContained(rects []model.FreeRect) []model.FreeRect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]model.FreeRect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i != j && containsRect(b, a) {
				if containsRect(a, b) && j > i {
					// Identical rects: keep the first occurrence only.
					continue
				}
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// subtractRect subtracts sub from base, returning up to four rectangles.
func subtractRect(base, sub model.FreeRect) []model.FreeRect {
	if !rectsOverlap(base, sub) {
		return []model.FreeRect{base}
	}

	ix := maxf(base.X, sub.X)
	iy := maxf(base.Y, sub.Y)
	iw := minf(base.X+base.Width, sub.X+sub.Width) - ix
	ih := minf(base.Y+base.Height, sub.Y+sub.Height) - iy
	if iw <= 0 || ih <= 0 {
		return []model.FreeRect{base}
	}

	var result []model.FreeRect
	if ix > base.X {
		result = append(result, model.FreeRect{X: base.X, Y: base.Y, Width: ix - base.X, Height: base.Height})
	}
	if ix+iw < base.X+base.Width {
		result = append(result, model.FreeRect{X: ix + iw, Y: base.Y, Width: base.X + base.Width - (ix + iw), Height: base.Height})
	}
	if iy > base.Y {
		result = append(result, model.FreeRect{X: maxf(base.X, ix), Y: base.Y, Width: minf(base.X+base.Width, ix+iw) - maxf(base.X, ix), Height: iy - base.Y})
	}
	if iy+ih < base.Y+base.Height {
		result = append(result, model.FreeRect{X: maxf(base.X, ix), Y: iy + ih, Width: minf(base.X+base.Width, ix+iw) - maxf(base.X, ix), Height: base.Y + base.Height - (iy + ih)})
	}
	return result
}

// subtractAll removes every rectangle in subs from base and filters residuals
// below the minResidual floor.
func subtractAll(base model.FreeRect, subs []model.FreeRect) []model.FreeRect {
	free := []model.FreeRect{base}
	for _, sub := range subs {
		var next []model.FreeRect
		for _, r := range free {
			next = append(next, subtractRect(r, sub)...)
		}
		free = next
	}

	var result []model.FreeRect
	for _, r := range free {
		if r.Width >= minResidual && r.Height >= minResidual {
			result = append(result, r)
		}
	}
	return pruneContained(result)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
