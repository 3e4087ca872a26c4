package engine

import (
	"fmt"
	"testing"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tightOptions removes gap and margin so geometric expectations are exact.
func tightOptions() model.PlacementOptions {
	opts := model.DefaultOptions()
	opts.MinimumGap = 0
	opts.EdgeMargin = 0
	return opts
}

func makePieces(count int, w, h float64) []model.Piece {
	pieces := make([]model.Piece, count)
	for i := range pieces {
		pieces[i] = model.Piece{
			ID:     fmt.Sprintf("p-%d", i+1),
			Width:  w,
			Height: h,
			Area:   w * h,
		}
	}
	return pieces
}

func TestBottomLeftFill_TwentySquaresFillFourRows(t *testing.T) {
	// 20 pieces of 200x200 on a 1000x1000 sheet occupy exactly 80% of it.
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(20, 200, 200)

	blf := &BottomLeftFill{}
	result, err := blf.Optimize(pieces, sheet, tightOptions())

	require.NoError(t, err)
	assert.Len(t, result.Placed, 20)
	assert.Empty(t, result.Unplaced)

	var used float64
	for _, p := range result.Placed {
		used += p.Area
	}
	assert.InDelta(t, 800000.0, used, 0.001)
}

func TestBottomLeftFill_OversizePieceStaysUnplaced(t *testing.T) {
	// 1200x200 exceeds the sheet width, and rotating makes it exceed the
	// height, so no orientation fits.
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(1, 1200, 200)

	blf := &BottomLeftFill{}
	result, err := blf.Optimize(pieces, sheet, tightOptions())

	require.NoError(t, err)
	assert.Empty(t, result.Placed)
	require.Len(t, result.Unplaced, 1)
	assert.False(t, result.Unplaced[0].Placed)
}

func TestBottomLeftFill_SecondLargePieceDoesNotFit(t *testing.T) {
	// Two 300x300 pieces cannot share a 500x500 sheet: after the first is
	// placed the remaining strips are only 200mm wide.
	sheet := model.Sheet{Width: 500, Height: 500}
	pieces := makePieces(2, 300, 300)

	blf := &BottomLeftFill{}
	result, err := blf.Optimize(pieces, sheet, tightOptions())

	require.NoError(t, err)
	assert.Len(t, result.Placed, 1)
	assert.Len(t, result.Unplaced, 1)
}

func TestBottomLeftFill_AnchorsAtBottomLeft(t *testing.T) {
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(1, 200, 100)

	blf := &BottomLeftFill{}
	result, err := blf.Optimize(pieces, sheet, tightOptions())

	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, 0.0, result.Placed[0].X)
	assert.Equal(t, 0.0, result.Placed[0].Y)
}

func TestBottomLeftFill_EdgeMarginShrinksUsableArea(t *testing.T) {
	// A 95x95 piece fits a 100x100 sheet, but not once a 5mm margin is
	// reserved on every side.
	sheet := model.Sheet{Width: 100, Height: 100}
	pieces := makePieces(1, 95, 95)

	opts := tightOptions()
	opts.EdgeMargin = 5

	blf := &BottomLeftFill{}
	result, err := blf.Optimize(pieces, sheet, opts)

	require.NoError(t, err)
	assert.Empty(t, result.Placed)
	assert.Len(t, result.Unplaced, 1)
}

func TestBottomLeftFill_MinimumGapSeparatesPieces(t *testing.T) {
	sheet := model.Sheet{Width: 500, Height: 500}
	pieces := makePieces(2, 100, 100)

	opts := tightOptions()
	opts.MinimumGap = 10

	blf := &BottomLeftFill{}
	result, err := blf.Optimize(pieces, sheet, opts)

	require.NoError(t, err)
	require.Len(t, result.Placed, 2)

	a, b := result.Placed[0].OccupiedRect(), result.Placed[1].OccupiedRect()
	assert.False(t, rectsOverlap(expand(a, 5), expand(b, 5)),
		"pieces should keep at least the minimum gap apart")
}

func TestBottomLeftFill_RotationAllowsTallSheetFit(t *testing.T) {
	// A 250x80 piece only fits a 100x300 sheet when rotated.
	sheet := model.Sheet{Width: 100, Height: 300}
	pieces := makePieces(1, 250, 80)

	blf := &BottomLeftFill{}

	opts := tightOptions()
	opts.AllowRotation = false
	result, err := blf.Optimize(pieces, sheet, opts)
	require.NoError(t, err)
	assert.Empty(t, result.Placed, "should not fit without rotation")

	opts.AllowRotation = true
	result, err = blf.Optimize(pieces, sheet, opts)
	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	assert.True(t, result.Placed[0].Rotated)
	assert.Equal(t, 80.0, result.Placed[0].PlacedWidth())
	assert.Equal(t, 250.0, result.Placed[0].PlacedHeight())
}

func TestBottomLeftFill_DeterministicAcrossRuns(t *testing.T) {
	sheet := model.Sheet{Width: 1200, Height: 800}
	pieces := []model.Piece{
		{ID: "a", Width: 300, Height: 200, Area: 60000},
		{ID: "b", Width: 300, Height: 200, Area: 60000},
		{ID: "c", Width: 450, Height: 150, Area: 67500},
		{ID: "d", Width: 120, Height: 500, Area: 60000},
	}

	blf := &BottomLeftFill{}
	first, err := blf.Optimize(pieces, sheet, model.DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := blf.Optimize(pieces, sheet, model.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, first.Placed, again.Placed, "identical input must give identical output")
		assert.Equal(t, first.Unplaced, again.Unplaced)
	}
}

func TestBottomLeftFill_DoesNotMutateInput(t *testing.T) {
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(3, 200, 200)

	blf := &BottomLeftFill{}
	_, err := blf.Optimize(pieces, sheet, tightOptions())
	require.NoError(t, err)

	for _, p := range pieces {
		assert.False(t, p.Placed, "caller's slice must stay untouched")
		assert.Zero(t, p.X)
		assert.Zero(t, p.Y)
	}
}

func TestGreedy_PlacesSimpleLayout(t *testing.T) {
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(20, 200, 200)

	g := &Greedy{}
	result, err := g.Optimize(pieces, sheet, tightOptions())

	require.NoError(t, err)
	assert.Len(t, result.Placed, 20)
	assert.Empty(t, result.Unplaced)
}

func TestGreedy_HonorsPriorityOrder(t *testing.T) {
	// Only one of the two pieces fits. The higher-priority (lower value)
	// piece must win even though it is smaller.
	sheet := model.Sheet{Width: 320, Height: 320}
	pieces := []model.Piece{
		{ID: "low", Width: 300, Height: 300, Area: 90000, Priority: 5},
		{ID: "high", Width: 250, Height: 250, Area: 62500, Priority: 1},
	}

	g := &Greedy{}
	result, err := g.Optimize(pieces, sheet, tightOptions())

	require.NoError(t, err)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, "high", result.Placed[0].ID)
}

func TestForAlgorithm_KnownAndUnknown(t *testing.T) {
	for _, a := range model.Algorithms() {
		s, ok := ForAlgorithm(a)
		require.True(t, ok, "algorithm %s should resolve", a)
		assert.Equal(t, a, s.Name())
	}

	_, ok := ForAlgorithm("simulated-annealing")
	assert.False(t, ok)
}

func TestSplitResult_PartitionsByPlacedFlag(t *testing.T) {
	pieces := []model.Piece{
		{ID: "a", Placed: true},
		{ID: "b", Placed: false},
		{ID: "c", Placed: true},
	}

	result := splitResult(pieces, nil)
	assert.Len(t, result.Placed, 2)
	assert.Len(t, result.Unplaced, 1)
	assert.Equal(t, "b", result.Unplaced[0].ID)
}
