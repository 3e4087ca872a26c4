package engine

import (
	"math/rand"
	"sort"
	"time"

	"github.com/glassfab/nestcut/internal/model"
)

// GeneticConfig holds the parameters of the genetic strategy.
type GeneticConfig struct {
	PopulationSize int
	MaxGenerations int
	MutationRate   float64
	CrossoverRate  float64
	EliteSize      int
	TournamentSize int
}

// DefaultGeneticConfig returns the standard parameter set.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		MaxGenerations: 100,
		MutationRate:   0.1,
		CrossoverRate:  0.8,
		EliteSize:      5,
		TournamentSize: 3,
	}
}

// Genetic is the population-based placement strategy. Each individual carries
// its own copy of the piece list annotated with positions; fitness is the
// material utilization of the valid subset of those positions, scaled to
// 0..100 so it is directly comparable to QualityTarget * 100.
type Genetic struct {
	Config GeneticConfig

	seed   int64
	seeded bool
}

// NewGenetic returns a genetic strategy with default parameters and a
// time-based random seed.
func NewGenetic() *Genetic {
	return &Genetic{Config: DefaultGeneticConfig()}
}

// NewGeneticSeeded returns a genetic strategy with a fixed seed for
// reproducible runs.
func NewGeneticSeeded(seed int64) *Genetic {
	return &Genetic{Config: DefaultGeneticConfig(), seed: seed, seeded: true}
}

func (g *Genetic) Name() model.Algorithm {
	return model.AlgorithmGenetic
}

// individual is one candidate solution: an independent clone of the piece
// list with per-piece positions and a fitness score.
type individual struct {
	pieces  []model.Piece
	fitness float64
}

func cloneIndividual(ind individual) individual {
	pieces := make([]model.Piece, len(ind.pieces))
	copy(pieces, ind.pieces)
	return individual{pieces: pieces, fitness: ind.fitness}
}

func (g *Genetic) Optimize(pieces []model.Piece, sheet model.Sheet, opts model.PlacementOptions) (model.PlacementResult, error) {
	worked := clonePieces(pieces)
	usable := usableRect(sheet, opts.EdgeMargin)

	if len(worked) == 0 {
		return model.PlacementResult{LeftoverSpace: []model.FreeRect{usable}}, nil
	}

	seed := g.seed
	if !g.seeded {
		seed = time.Now().UnixNano()
	}
	run := &geneticRun{
		cfg:    g.Config,
		rng:    rand.New(rand.NewSource(seed)),
		sheet:  sheet,
		opts:   opts,
		usable: usable,
	}

	best := run.evolve(worked)

	// Re-evaluate so the placed flags reflect the validated positions.
	run.evaluate(&best)

	result := splitResult(best.pieces, nil)
	result.LeftoverSpace = leftoverSpace(usable, result.Placed, opts.MinimumGap)
	return result, nil
}

type geneticRun struct {
	cfg    GeneticConfig
	rng    *rand.Rand
	sheet  model.Sheet
	opts   model.PlacementOptions
	usable model.FreeRect
}

// evolve runs the generation loop and returns the best individual seen across
// all generations, not just the final one.
func (r *geneticRun) evolve(pieces []model.Piece) individual {
	population := r.initPopulation(pieces)
	for i := range population {
		r.evaluate(&population[i])
	}

	start := time.Now()
	target := r.opts.QualityTarget * 100
	var best individual
	haveBest := false

	for gen := 0; gen < r.cfg.MaxGenerations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		if !haveBest || population[0].fitness > best.fitness {
			best = cloneIndividual(population[0])
			haveBest = true
		}

		if target > 0 && best.fitness >= target {
			break
		}
		// Cooperative timeout at generation boundaries; mid-generation state
		// is not a valid result.
		if r.opts.TimeLimit > 0 && time.Since(start).Seconds() > r.opts.TimeLimit {
			break
		}

		next := make([]individual, 0, r.cfg.PopulationSize)
		elite := r.cfg.EliteSize
		if elite > len(population) {
			elite = len(population)
		}
		for i := 0; i < elite; i++ {
			next = append(next, cloneIndividual(population[i]))
		}

		for len(next) < r.cfg.PopulationSize {
			p1 := r.tournamentSelect(population)
			p2 := r.tournamentSelect(population)

			var child individual
			if r.rng.Float64() < r.cfg.CrossoverRate {
				child = r.crossover(p1, p2)
			} else {
				child = cloneIndividual(p1)
			}
			if r.rng.Float64() < r.cfg.MutationRate {
				r.mutate(&child)
			}
			r.evaluate(&child)
			next = append(next, child)
		}

		population = next
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	if !haveBest || population[0].fitness > best.fitness {
		best = cloneIndividual(population[0])
	}
	return best
}

// initPopulation diversifies the starting population by cycling through three
// seeding strategies: uniform random placement, greedy seeding, and
// bottom-left seeding.
func (r *geneticRun) initPopulation(pieces []model.Piece) []individual {
	population := make([]individual, r.cfg.PopulationSize)
	for i := range population {
		switch i % 3 {
		case 0:
			population[i] = r.randomIndividual(pieces)
		case 1:
			population[i] = r.strategySeed(pieces, &Greedy{})
		default:
			population[i] = r.strategySeed(pieces, &BottomLeftFill{})
		}
	}
	return population
}

// randomIndividual assigns every piece a uniform random position clipped to
// its valid range inside the usable area.
func (r *geneticRun) randomIndividual(pieces []model.Piece) individual {
	ind := individual{pieces: make([]model.Piece, len(pieces))}
	copy(ind.pieces, pieces)
	for i := range ind.pieces {
		r.randomizePosition(&ind.pieces[i])
	}
	return ind
}

func (r *geneticRun) randomizePosition(p *model.Piece) {
	if r.opts.AllowRotation && p.Width != p.Height {
		p.Rotated = r.rng.Float64() < 0.5
	}
	maxX := r.usable.X + r.usable.Width - p.PlacedWidth()
	maxY := r.usable.Y + r.usable.Height - p.PlacedHeight()
	if maxX < r.usable.X || maxY < r.usable.Y {
		// Try the other orientation before giving up.
		if r.opts.AllowRotation && p.Width != p.Height {
			p.Rotated = !p.Rotated
			maxX = r.usable.X + r.usable.Width - p.PlacedWidth()
			maxY = r.usable.Y + r.usable.Height - p.PlacedHeight()
		}
		if maxX < r.usable.X || maxY < r.usable.Y {
			p.Placed = false
			return
		}
	}
	p.X = r.usable.X + r.rng.Float64()*(maxX-r.usable.X)
	p.Y = r.usable.Y + r.rng.Float64()*(maxY-r.usable.Y)
	p.Placed = true
}

// strategySeed runs a deterministic strategy and copies its placements back
// into input order, giving the population a strong starting point.
func (r *geneticRun) strategySeed(pieces []model.Piece, s Strategy) individual {
	result, err := s.Optimize(pieces, r.sheet, r.opts)
	ind := individual{pieces: make([]model.Piece, len(pieces))}
	copy(ind.pieces, pieces)
	if err != nil {
		return ind
	}

	byID := make(map[string]model.Piece, len(result.Placed))
	for _, p := range result.Placed {
		byID[p.ID] = p
	}
	for i := range ind.pieces {
		if placed, ok := byID[ind.pieces[i].ID]; ok {
			ind.pieces[i] = placed
		} else {
			ind.pieces[i].Placed = false
		}
	}
	return ind
}

// evaluate computes fitness as valid utilization scaled to 0..100. Validity
// is enforced here, during evaluation: a piece whose position leaves the
// usable area or overlaps an earlier accepted piece is treated as unplaced,
// so an invalid layout can never be reported as a success.
func (r *geneticRun) evaluate(ind *individual) {
	var accepted []model.FreeRect
	var usedArea float64
	halfGap := r.opts.MinimumGap / 2

	for i := range ind.pieces {
		p := &ind.pieces[i]
		if !p.Placed {
			continue
		}
		occupied := p.OccupiedRect()
		if !containsRect(r.usable, occupied) {
			p.Placed = false
			continue
		}
		grown := expand(occupied, halfGap)
		overlaps := false
		for _, a := range accepted {
			if rectsOverlap(grown, a) {
				overlaps = true
				break
			}
		}
		if overlaps {
			p.Placed = false
			continue
		}
		accepted = append(accepted, grown)
		usedArea += p.Area
	}

	sheetArea := r.sheet.Area()
	if sheetArea <= 0 {
		ind.fitness = 0
		return
	}
	ind.fitness = usedArea / sheetArea * 100
}

// tournamentSelect picks the fittest of a random tournament.
func (r *geneticRun) tournamentSelect(population []individual) individual {
	best := population[r.rng.Intn(len(population))]
	for i := 1; i < r.cfg.TournamentSize; i++ {
		c := population[r.rng.Intn(len(population))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

// crossover produces an offspring taking positions before a random cut point
// from the first parent and the rest from the second.
func (r *geneticRun) crossover(p1, p2 individual) individual {
	n := len(p1.pieces)
	child := individual{pieces: make([]model.Piece, n)}
	cut := 1 + r.rng.Intn(n)
	copy(child.pieces[:cut], p1.pieces[:cut])
	copy(child.pieces[cut:], p2.pieces[cut:])
	return child
}

// mutate perturbs one or more random piece positions within bounds. Unplaced
// pieces may be given a position again, letting the search recover pieces a
// seeding strategy could not fit.
func (r *geneticRun) mutate(ind *individual) {
	n := len(ind.pieces)
	moves := 1 + r.rng.Intn(3)
	for m := 0; m < moves; m++ {
		r.randomizePosition(&ind.pieces[r.rng.Intn(n)])
	}
}

// leftoverSpace reconstructs the free-rectangle list for a position-based
// result by subtracting the gap-expanded placements from the usable area.
func leftoverSpace(usable model.FreeRect, placed []model.Piece, gap float64) []model.FreeRect {
	subs := make([]model.FreeRect, len(placed))
	for i, p := range placed {
		subs[i] = expand(p.OccupiedRect(), gap)
	}
	return subtractAll(usable, subs)
}
