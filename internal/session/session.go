// Package session orchestrates optimization runs: it validates requests,
// dispatches to a placement strategy, times execution, derives statistics and
// cut paths, and retains the resulting immutable records.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glassfab/nestcut/internal/cutpath"
	"github.com/glassfab/nestcut/internal/engine"
	"github.com/glassfab/nestcut/internal/model"
	"github.com/glassfab/nestcut/internal/stats"
	"github.com/google/uuid"
)

// ErrInvalidInput marks request validation failures. These are raised before
// any placement work begins and are never retried automatically.
var ErrInvalidInput = errors.New("invalid input")

// Request describes one optimization invocation.
type Request struct {
	Requirements []model.Requirement
	Sheet        model.Sheet
	Algorithm    model.Algorithm
	// Options may be nil, in which case DefaultOptions apply.
	Options *model.PlacementOptions
}

// Session owns the optimization history for one caller. Safe for concurrent
// use: runs share no state and the history append is synchronized.
type Session struct {
	mu           sync.Mutex
	history      []*model.OptimizationRecord
	historyLimit int
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryLimit caps the retained history; the oldest records are dropped
// first. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.historyLimit = n }
}

func New(opts ...Option) *Session {
	s := &Session{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Optimize validates the request, runs the selected strategy and returns the
// completed record. A partial placement (unplaced pieces remaining) is a
// successful outcome; only validation failures and internal strategy faults
// return errors, and neither produces a partial record.
func (s *Session) Optimize(req Request) (*model.OptimizationRecord, error) {
	options, strategy, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	pieces, err := model.ExpandRequirements(req.Requirements)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start := time.Now()
	result, err := runStrategy(strategy, pieces, req.Sheet, options)
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}
	duration := time.Since(start)

	paths := cutpath.OrderSegments(cutpath.Generate(result.Placed, options))

	record := &model.OptimizationRecord{
		ID:           uuid.New().String()[:8],
		Algorithm:    req.Algorithm,
		Sheet:        req.Sheet,
		Requirements: req.Requirements,
		Result:       result,
		Stats:        stats.Compute(result, req.Sheet),
		CutPaths:     paths,
		Duration:     duration,
		CreatedAt:    time.Now(),
		Options:      options,
	}

	s.append(record)
	return record, nil
}

func (s *Session) validate(req Request) (model.PlacementOptions, engine.Strategy, error) {
	if len(req.Requirements) == 0 {
		return model.PlacementOptions{}, nil, fmt.Errorf("%w: no designs provided", ErrInvalidInput)
	}
	if req.Sheet.Width <= 0 || req.Sheet.Height <= 0 {
		return model.PlacementOptions{}, nil, fmt.Errorf("%w: no sheet provided", ErrInvalidInput)
	}
	for _, r := range req.Requirements {
		if r.Quantity < 1 {
			return model.PlacementOptions{}, nil, fmt.Errorf(
				"%w: design %q quantity must be at least 1, got %d", ErrInvalidInput, r.Design.ID, r.Quantity)
		}
	}

	strategy, ok := engine.ForAlgorithm(req.Algorithm)
	if !ok {
		return model.PlacementOptions{}, nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidInput, req.Algorithm)
	}

	options := model.DefaultOptions()
	if req.Options != nil {
		options = *req.Options
	}
	if err := options.Validate(); err != nil {
		return model.PlacementOptions{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return options, strategy, nil
}

// runStrategy executes a strategy, converting panics inside the algorithm
// into errors so a faulty run aborts cleanly instead of reporting a
// half-computed placement.
func runStrategy(s engine.Strategy, pieces []model.Piece, sheet model.Sheet, opts model.PlacementOptions) (result model.PlacementResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Optimize(pieces, sheet, opts)
}

func (s *Session) append(record *model.OptimizationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, record)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
}

// History returns a snapshot of the retained records, oldest first. Records
// are immutable after construction, so sharing the pointers is safe.
func (s *Session) History() []*model.OptimizationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.OptimizationRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Latest returns the most recent record, or nil if no run has completed.
func (s *Session) Latest() *model.OptimizationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil
	}
	return s.history[len(s.history)-1]
}
