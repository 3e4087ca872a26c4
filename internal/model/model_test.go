package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRequirements_QuantityProducesNumberedPieces(t *testing.T) {
	design := NewDesign("Pane A", 400, 300, 4)
	pieces, err := ExpandRequirements([]Requirement{{Design: design, Quantity: 3}})

	require.NoError(t, err)
	require.Len(t, pieces, 3)
	assert.Equal(t, design.ID+"-1", pieces[0].ID)
	assert.Equal(t, design.ID+"-2", pieces[1].ID)
	assert.Equal(t, design.ID+"-3", pieces[2].ID)
	for _, p := range pieces {
		assert.Equal(t, design.ID, p.DesignID)
		assert.Equal(t, "Pane A", p.Name)
		assert.Equal(t, 400.0*300.0, p.Area)
		assert.False(t, p.Placed)
	}
}

func TestExpandRequirements_PreservesInputOrder(t *testing.T) {
	a := NewDesign("A", 100, 100, 4)
	b := NewDesign("B", 200, 150, 4)
	pieces, err := ExpandRequirements([]Requirement{
		{Design: a, Quantity: 2},
		{Design: b, Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, pieces, 3)
	assert.Equal(t, "A", pieces[0].Name)
	assert.Equal(t, "A", pieces[1].Name)
	assert.Equal(t, "B", pieces[2].Name)
}

func TestExpandRequirements_RejectsZeroQuantity(t *testing.T) {
	design := NewDesign("Bad", 100, 100, 4)
	_, err := ExpandRequirements([]Requirement{{Design: design, Quantity: 0}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")
}

func TestExpandRequirements_RejectsNonPositiveDimensions(t *testing.T) {
	design := NewDesign("Flat", 100, 0, 4)
	_, err := ExpandRequirements([]Requirement{{Design: design, Quantity: 1}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive")
}

func TestPiece_PlacedDimensionsFollowRotation(t *testing.T) {
	p := Piece{Width: 250, Height: 80}

	assert.Equal(t, 250.0, p.PlacedWidth())
	assert.Equal(t, 80.0, p.PlacedHeight())

	p.Rotated = true
	assert.Equal(t, 80.0, p.PlacedWidth())
	assert.Equal(t, 250.0, p.PlacedHeight())

	p.X, p.Y = 10, 20
	occ := p.OccupiedRect()
	assert.Equal(t, FreeRect{X: 10, Y: 20, Width: 80, Height: 250}, occ)
}

func TestDefaultOptions_AreValid(t *testing.T) {
	opts := DefaultOptions()
	assert.NoError(t, opts.Validate())
	assert.True(t, opts.AllowRotation)
	assert.False(t, opts.AllowFlipping)
	assert.Equal(t, 3.0, opts.MinimumGap)
	assert.Equal(t, 5.0, opts.EdgeMargin)
}

func TestPlacementOptions_ValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PlacementOptions)
	}{
		{"negative gap", func(o *PlacementOptions) { o.MinimumGap = -1 }},
		{"negative margin", func(o *PlacementOptions) { o.EdgeMargin = -0.5 }},
		{"negative time limit", func(o *PlacementOptions) { o.TimeLimit = -10 }},
		{"quality target above one", func(o *PlacementOptions) { o.QualityTarget = 1.5 }},
		{"quality target below zero", func(o *PlacementOptions) { o.QualityTarget = -0.1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestAlgorithms_ListsAllStrategies(t *testing.T) {
	algs := Algorithms()
	assert.Equal(t, []Algorithm{AlgorithmBLF, AlgorithmGreedy, AlgorithmGenetic}, algs)
}

func TestCutSegment_Length(t *testing.T) {
	s := CutSegment{StartX: 0, StartY: 0, EndX: 3, EndY: 4}
	assert.Equal(t, 5.0, s.Length())
}

func TestNewDesign_AssignsShortID(t *testing.T) {
	d := NewDesign("Window", 600, 400, 6)
	assert.Len(t, d.ID, 8)
	assert.Equal(t, 600.0*400.0, d.Area())
}
