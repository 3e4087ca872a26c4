package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/glassfab/nestcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleRequest() Request {
	return Request{
		Requirements: []model.Requirement{
			{Design: model.NewDesign("Pane", 200, 200, 4), Quantity: 4},
		},
		Sheet:     model.Sheet{Width: 1000, Height: 1000, Thickness: 4},
		Algorithm: model.AlgorithmBLF,
	}
}

func TestOptimize_ProducesCompleteRecord(t *testing.T) {
	s := New()
	record, err := s.Optimize(simpleRequest())

	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Len(t, record.ID, 8)
	assert.Equal(t, model.AlgorithmBLF, record.Algorithm)
	assert.False(t, record.CreatedAt.IsZero())
	assert.GreaterOrEqual(t, record.Duration.Nanoseconds(), int64(0))

	assert.Len(t, record.Result.Placed, 4)
	assert.Empty(t, record.Result.Unplaced)
	assert.Equal(t, 4, record.Stats.PlacedPieces)
	assert.NotEmpty(t, record.CutPaths)

	// Cut paths come back ordered 1..N.
	for i, seg := range record.CutPaths {
		assert.Equal(t, i+1, seg.Order)
	}
}

func TestOptimize_NilOptionsUseDefaults(t *testing.T) {
	s := New()
	req := simpleRequest()
	req.Options = nil

	record, err := s.Optimize(req)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultOptions(), record.Options)
}

func TestOptimize_NoDesignsFailsFast(t *testing.T) {
	s := New()
	req := simpleRequest()
	req.Requirements = nil

	record, err := s.Optimize(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "no designs provided")
	assert.Nil(t, record, "no partial record on validation failure")
	assert.Empty(t, s.History())
}

func TestOptimize_MissingSheetFailsFast(t *testing.T) {
	s := New()
	req := simpleRequest()
	req.Sheet = model.Sheet{}

	_, err := s.Optimize(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "no sheet provided")
	assert.Empty(t, s.History())
}

func TestOptimize_ZeroQuantityFailsFast(t *testing.T) {
	s := New()
	req := simpleRequest()
	req.Requirements[0].Quantity = 0

	_, err := s.Optimize(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "quantity")
}

func TestOptimize_UnknownAlgorithmFailsFast(t *testing.T) {
	s := New()
	req := simpleRequest()
	req.Algorithm = "quantum"

	_, err := s.Optimize(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "unknown algorithm")
}

func TestOptimize_InvalidOptionsFailFast(t *testing.T) {
	s := New()
	req := simpleRequest()
	opts := model.DefaultOptions()
	opts.MinimumGap = -1
	req.Options = &opts

	_, err := s.Optimize(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestOptimize_PartialPlacementIsSuccess(t *testing.T) {
	s := New()
	req := Request{
		Requirements: []model.Requirement{
			{Design: model.NewDesign("Big", 300, 300, 4), Quantity: 2},
		},
		Sheet:     model.Sheet{Width: 500, Height: 500},
		Algorithm: model.AlgorithmBLF,
	}
	opts := model.DefaultOptions()
	opts.MinimumGap = 0
	opts.EdgeMargin = 0
	req.Options = &opts

	record, err := s.Optimize(req)

	require.NoError(t, err, "unplaced pieces are a result, not an error")
	assert.Len(t, record.Result.Placed, 1)
	assert.Len(t, record.Result.Unplaced, 1)
	assert.Len(t, s.History(), 1)
}

func TestOptimize_AllAlgorithmsAccepted(t *testing.T) {
	s := New()
	for _, alg := range model.Algorithms() {
		req := simpleRequest()
		req.Algorithm = alg
		opts := model.DefaultOptions()
		opts.QualityTarget = 0.1 // keep the genetic run short
		req.Options = &opts

		record, err := s.Optimize(req)
		require.NoError(t, err, "algorithm %s", alg)
		assert.Equal(t, alg, record.Algorithm)
	}
	assert.Len(t, s.History(), len(model.Algorithms()))
}

func TestHistory_ReturnsSnapshotInRunOrder(t *testing.T) {
	s := New()

	var ids []string
	for i := 0; i < 3; i++ {
		record, err := s.Optimize(simpleRequest())
		require.NoError(t, err)
		ids = append(ids, record.ID)
	}

	history := s.History()
	require.Len(t, history, 3)
	for i, record := range history {
		assert.Equal(t, ids[i], record.ID)
	}

	assert.Equal(t, ids[2], s.Latest().ID)
}

func TestHistory_LimitDropsOldestFirst(t *testing.T) {
	s := New(WithHistoryLimit(2))

	var ids []string
	for i := 0; i < 4; i++ {
		record, err := s.Optimize(simpleRequest())
		require.NoError(t, err)
		ids = append(ids, record.ID)
	}

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[3], history[1].ID)
}

func TestLatest_NilWhenEmpty(t *testing.T) {
	assert.Nil(t, New().Latest())
}

func TestOptimize_ConcurrentRunsAreSafe(t *testing.T) {
	s := New()
	const runs = 8

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Optimize(simpleRequest())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, s.History(), runs)
}

func TestCompareAlgorithms_RanksByUtilization(t *testing.T) {
	s := New()
	req := simpleRequest()
	opts := model.DefaultOptions()
	opts.QualityTarget = 0.1
	req.Options = &opts

	comparisons := s.CompareAlgorithms(req)

	require.Len(t, comparisons, len(model.Algorithms()))
	for _, c := range comparisons {
		require.NoError(t, c.Err)
		require.NotNil(t, c.Record)
	}
	for i := 1; i < len(comparisons); i++ {
		assert.GreaterOrEqual(t,
			comparisons[i-1].Record.Stats.UtilizationRate,
			comparisons[i].Record.Stats.UtilizationRate,
			"results must be sorted best first")
	}

	// Every algorithm ran against the requested configuration.
	seen := map[model.Algorithm]bool{}
	for _, c := range comparisons {
		seen[c.Algorithm] = true
	}
	assert.Len(t, seen, len(model.Algorithms()))
}

func TestCompareAlgorithms_InvalidRequestReportsPerAlgorithm(t *testing.T) {
	s := New()
	req := simpleRequest()
	req.Requirements = nil

	comparisons := s.CompareAlgorithms(req)

	require.Len(t, comparisons, len(model.Algorithms()))
	for _, c := range comparisons {
		assert.Error(t, c.Err)
		assert.True(t, errors.Is(c.Err, ErrInvalidInput))
		assert.Nil(t, c.Record)
	}
}

func TestOptimize_RecordsAreIndependent(t *testing.T) {
	// Two sessions never share history.
	s1, s2 := New(), New()

	_, err := s1.Optimize(simpleRequest())
	require.NoError(t, err)

	assert.Len(t, s1.History(), 1)
	assert.Empty(t, s2.History())
}

func TestOptimize_ExpansionFailureWrapsInvalidInput(t *testing.T) {
	s := New()
	req := simpleRequest()
	req.Requirements = []model.Requirement{
		{Design: model.Design{ID: "bad", Width: -5, Height: 100}, Quantity: 1},
	}

	_, err := s.Optimize(req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "non-positive")
}

func ExampleSession_Optimize() {
	s := New()
	record, err := s.Optimize(Request{
		Requirements: []model.Requirement{
			{Design: model.Design{ID: "pane", Name: "Pane", Width: 400, Height: 300, Thickness: 4}, Quantity: 2},
		},
		Sheet:     model.Sheet{Width: 1000, Height: 1000},
		Algorithm: model.AlgorithmBLF,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("placed %d of %d pieces\n", record.Stats.PlacedPieces, record.Stats.TotalPieces)
	// Output: placed 2 of 2 pieces
}
