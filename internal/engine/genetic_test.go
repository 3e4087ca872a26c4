package engine

import (
	"testing"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastGenetic returns a seeded strategy with a small population so tests stay
// quick.
func fastGenetic(seed int64) *Genetic {
	g := NewGeneticSeeded(seed)
	g.Config.PopulationSize = 12
	g.Config.MaxGenerations = 10
	return g
}

func TestGenetic_PlacesSimpleLayout(t *testing.T) {
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(4, 200, 200)

	g := fastGenetic(42)
	result, err := g.Optimize(pieces, sheet, tightOptions())

	require.NoError(t, err)
	// The population is seeded with bottom-left and greedy layouts, so the
	// best individual can never be worse than placing all four pieces.
	assert.Len(t, result.Placed, 4)
	assert.Empty(t, result.Unplaced)
}

func TestGenetic_ResultIsGeometricallyValid(t *testing.T) {
	sheet := model.Sheet{Width: 800, Height: 600}
	pieces := makePieces(8, 150, 120)

	opts := model.DefaultOptions()
	opts.QualityTarget = 0 // run all generations
	opts.TimeLimit = 5

	g := fastGenetic(7)
	result, err := g.Optimize(pieces, sheet, opts)
	require.NoError(t, err)

	usable := usableRect(sheet, opts.EdgeMargin)
	halfGap := opts.MinimumGap / 2

	for _, p := range result.Placed {
		assert.True(t, containsRect(usable, p.OccupiedRect()),
			"piece %s must stay inside the usable area", p.ID)
	}
	for i := 0; i < len(result.Placed); i++ {
		for j := i + 1; j < len(result.Placed); j++ {
			a := expand(result.Placed[i].OccupiedRect(), halfGap)
			b := expand(result.Placed[j].OccupiedRect(), halfGap)
			assert.False(t, rectsOverlap(a, b),
				"pieces %s and %s overlap", result.Placed[i].ID, result.Placed[j].ID)
		}
	}
}

func TestGenetic_ConservesPieces(t *testing.T) {
	sheet := model.Sheet{Width: 400, Height: 400}
	pieces := makePieces(6, 180, 180)

	g := fastGenetic(99)
	result, err := g.Optimize(pieces, sheet, tightOptions())
	require.NoError(t, err)

	assert.Equal(t, len(pieces), len(result.Placed)+len(result.Unplaced))

	seen := map[string]bool{}
	for _, p := range result.Placed {
		seen[p.ID] = true
	}
	for _, p := range result.Unplaced {
		assert.False(t, seen[p.ID], "piece %s reported both placed and unplaced", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, len(pieces))
}

func TestGenetic_SameSeedSameResult(t *testing.T) {
	sheet := model.Sheet{Width: 900, Height: 700}
	pieces := makePieces(6, 200, 150)

	opts := model.DefaultOptions()
	opts.QualityTarget = 0
	opts.TimeLimit = 0 // no clock dependence

	first, err := fastGenetic(1234).Optimize(pieces, sheet, opts)
	require.NoError(t, err)
	second, err := fastGenetic(1234).Optimize(pieces, sheet, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Placed, second.Placed)
	assert.Equal(t, first.Unplaced, second.Unplaced)
}

func TestGenetic_EmptyInputReturnsEmptyResult(t *testing.T) {
	sheet := model.Sheet{Width: 500, Height: 500}

	g := fastGenetic(1)
	result, err := g.Optimize(nil, sheet, model.DefaultOptions())

	require.NoError(t, err)
	assert.Empty(t, result.Placed)
	assert.Empty(t, result.Unplaced)
	require.Len(t, result.LeftoverSpace, 1)
}

func TestGenetic_QualityTargetStopsEarly(t *testing.T) {
	// With a trivial target the search accepts the first generation's best,
	// which the deterministic seeds already satisfy.
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(2, 100, 100)

	opts := tightOptions()
	opts.QualityTarget = 0.01

	g := fastGenetic(5)
	result, err := g.Optimize(pieces, sheet, opts)

	require.NoError(t, err)
	assert.Len(t, result.Placed, 2)
}

func TestGenetic_LeftoverSpaceAvoidsPlacements(t *testing.T) {
	sheet := model.Sheet{Width: 1000, Height: 1000}
	pieces := makePieces(3, 250, 250)

	opts := tightOptions()
	g := fastGenetic(11)
	result, err := g.Optimize(pieces, sheet, opts)
	require.NoError(t, err)

	for _, free := range result.LeftoverSpace {
		for _, p := range result.Placed {
			assert.False(t, rectsOverlap(free, p.OccupiedRect()),
				"leftover rect %+v overlaps piece %s", free, p.ID)
		}
	}
}

func TestDefaultGeneticConfig_Parameters(t *testing.T) {
	cfg := DefaultGeneticConfig()
	assert.Equal(t, 50, cfg.PopulationSize)
	assert.Equal(t, 100, cfg.MaxGenerations)
	assert.Equal(t, 0.1, cfg.MutationRate)
	assert.Equal(t, 0.8, cfg.CrossoverRate)
	assert.Equal(t, 5, cfg.EliteSize)
	assert.Equal(t, 3, cfg.TournamentSize)
}
