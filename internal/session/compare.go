package session

import (
	"sort"

	"github.com/glassfab/nestcut/internal/model"
)

// Comparison holds the outcome of running one algorithm on a request.
type Comparison struct {
	Algorithm model.Algorithm
	Record    *model.OptimizationRecord
	Err       error
}

// CompareAlgorithms runs every supported algorithm on the same request and
// returns the outcomes ranked by utilization, best first. Failed runs sort
// last. This enables side-by-side what-if comparison before committing a
// layout to the cutting table.
func (s *Session) CompareAlgorithms(req Request) []Comparison {
	results := make([]Comparison, 0, len(model.Algorithms()))

	for _, alg := range model.Algorithms() {
		r := req
		r.Algorithm = alg
		record, err := s.Optimize(r)
		results = append(results, Comparison{Algorithm: alg, Record: record, Err: err})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err != nil {
			return false
		}
		if a.Record.Stats.UtilizationRate != b.Record.Stats.UtilizationRate {
			return a.Record.Stats.UtilizationRate > b.Record.Stats.UtilizationRate
		}
		return a.Record.Duration < b.Record.Duration
	})

	return results
}
