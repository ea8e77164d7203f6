package engine

import (
	"math/rand"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/piwi3910/polynest/internal/model"
)

// Config holds the genetic search parameters.
type Config struct {
	Population     int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Workers        int // parallel evaluation workers; <=1 disables fan-out
}

// DefaultConfig returns the tuned search parameters.
func DefaultConfig() Config {
	return Config{
		Population:     100,
		Generations:    50,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     10,
		Workers:        runtime.NumCPU(),
	}
}

// nestingGA drives the population-based search over (sequence, rotation)
// genomes. All randomness flows through the single master RNG; evaluation is
// deterministic, so fan-out does not affect results.
type nestingGA struct {
	prob *model.Problem
	cfg  Config
	rng  *rand.Rand
	eval evaluator
}

func newNestingGA(prob *model.Problem, cfg Config, seed int64) *nestingGA {
	return &nestingGA{
		prob: prob,
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		eval: newEvaluator(prob),
	}
}

// greedyGenome orders pieces by decreasing area with rotation index 0 for
// every piece.
func (g *nestingGA) greedyGenome() *Genome {
	n := len(g.prob.Pieces)
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}
	sort.SliceStable(seq, func(a, b int) bool {
		return g.prob.Pieces[seq[a]].Area > g.prob.Pieces[seq[b]].Area
	})
	return &Genome{Sequence: seq, Rotation: make([]int, n)}
}

// randomGenome draws a uniform permutation and uniform rotation indices.
func (g *nestingGA) randomGenome() *Genome {
	n := len(g.prob.Pieces)
	rot := make([]int, n)
	for id := 0; id < n; id++ {
		rot[id] = g.rng.Intn(len(g.prob.Pieces[id].Angles))
	}
	return &Genome{Sequence: g.rng.Perm(n), Rotation: rot}
}

// initPopulation seeds 10% greedy genomes and fills the rest randomly.
func (g *nestingGA) initPopulation() []*Genome {
	population := make([]*Genome, g.cfg.Population)
	greedyCount := g.cfg.Population / 10
	if greedyCount < 1 {
		greedyCount = 1
	}
	for i := range population {
		if i < greedyCount {
			population[i] = g.greedyGenome()
		} else {
			population[i] = g.randomGenome()
		}
	}
	return population
}

// evaluateAll scores the genomes, fanning out over static index ranges so
// the work assignment is identical on every run.
func (g *nestingGA) evaluateAll(genomes []*Genome) {
	workers := g.cfg.Workers
	if workers <= 1 || len(genomes) < 2 {
		for _, ge := range genomes {
			g.eval.score(ge)
		}
		return
	}
	if workers > len(genomes) {
		workers = len(genomes)
	}

	var grp errgroup.Group
	chunk := (len(genomes) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(genomes) {
			hi = len(genomes)
		}
		if lo >= hi {
			break
		}
		batch := genomes[lo:hi]
		grp.Go(func() error {
			for _, ge := range batch {
				g.eval.score(ge)
			}
			return nil
		})
	}
	// Workers never return errors; evaluation failures are encoded in fitness.
	_ = grp.Wait()
}

// tournamentSelect returns the fittest of TournamentSize random genomes.
func (g *nestingGA) tournamentSelect(population []*Genome) *Genome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.cfg.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}

// orderCrossover implements OX on the sequence: the inter-cut slice comes
// from parent1, the remaining positions are filled in circular order with
// parent2's genes, scanning parent2 circularly starting after the right cut.
// Rotation is keyed by piece id, so each piece's rotation choice is inherited
// from either parent with equal probability.
func (g *nestingGA) orderCrossover(parent1, parent2 *Genome) *Genome {
	n := len(parent1.Sequence)
	child := &Genome{
		Sequence: make([]int, n),
		Rotation: make([]int, n),
	}

	cut1 := g.rng.Intn(n)
	cut2 := g.rng.Intn(n)
	if cut1 > cut2 {
		cut1, cut2 = cut2, cut1
	}

	inSegment := make(map[int]bool, cut2-cut1+1)
	for i := cut1; i <= cut2; i++ {
		child.Sequence[i] = parent1.Sequence[i]
		inSegment[parent1.Sequence[i]] = true
	}

	childIdx := (cut2 + 1) % n
	for off := 1; off <= n; off++ {
		gene := parent2.Sequence[(cut2+off)%n]
		if inSegment[gene] {
			continue
		}
		child.Sequence[childIdx] = gene
		childIdx = (childIdx + 1) % n
	}

	for id := 0; id < n; id++ {
		if g.rng.Float64() < 0.5 {
			child.Rotation[id] = parent1.Rotation[id]
		} else {
			child.Rotation[id] = parent2.Rotation[id]
		}
	}
	return child
}

// mutate applies 2-4 candidate sequence swaps and 3-6 candidate rotation
// changes, each accepted with probability MutationRate.
func (g *nestingGA) mutate(c *Genome) {
	n := len(c.Sequence)
	if n == 0 {
		return
	}

	swaps := 2 + g.rng.Intn(3)
	for s := 0; s < swaps; s++ {
		if g.rng.Float64() < g.cfg.MutationRate {
			i := g.rng.Intn(n)
			j := g.rng.Intn(n)
			c.Sequence[i], c.Sequence[j] = c.Sequence[j], c.Sequence[i]
		}
	}

	changes := 3 + g.rng.Intn(4)
	for s := 0; s < changes; s++ {
		if g.rng.Float64() < g.cfg.MutationRate {
			id := g.rng.Intn(n)
			c.Rotation[id] = g.rng.Intn(len(g.prob.Pieces[id].Angles))
		}
	}
}

// capture re-evaluates the population's top genome to regenerate its layout
// and deep-clones it into best-ever when it improves on the incumbent.
func (g *nestingGA) capture(top *Genome, best *Genome, bestNest *model.Nesting) (*Genome, *model.Nesting) {
	if best != nil && top.Fitness <= best.Fitness {
		return best, bestNest
	}
	nest := g.eval.layout(top)
	klog.V(1).Infof("new best: fitness=%.2f boards=%d efficiency=%.2f%% unplaced=%d",
		top.Fitness, len(nest.Boards), nest.TotalEfficiency(), len(nest.Unplaced))
	return top.Clone(), nest.Clone()
}

// evolve runs the fixed-generation loop and returns the best-ever genome and
// its layout.
func (g *nestingGA) evolve() (*Genome, *model.Nesting) {
	population := g.initPopulation()
	g.evaluateAll(population)

	var best *Genome
	var bestNest *model.Nesting

	byFitness := func(pop []*Genome) func(i, j int) bool {
		return func(i, j int) bool { return pop[i].Fitness > pop[j].Fitness }
	}

	for gen := 0; gen < g.cfg.Generations; gen++ {
		sort.SliceStable(population, byFitness(population))
		best, bestNest = g.capture(population[0], best, bestNest)

		klog.V(2).Infof("generation %d/%d: top=%.2f boards=%d",
			gen+1, g.cfg.Generations, population[0].Fitness, population[0].BoardCount)

		next := make([]*Genome, 0, g.cfg.Population)
		elite := g.cfg.EliteCount
		if elite > len(population) {
			elite = len(population)
		}
		for i := 0; i < elite; i++ {
			next = append(next, population[i].Clone())
		}

		children := make([]*Genome, 0, g.cfg.Population-elite)
		for len(next)+len(children) < g.cfg.Population {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)
			child := g.orderCrossover(parent1, parent2)
			g.mutate(child)
			children = append(children, child)
		}
		g.evaluateAll(children)
		population = append(next, children...)
	}

	sort.SliceStable(population, byFitness(population))
	best, bestNest = g.capture(population[0], best, bestNest)

	return best, bestNest
}

// Run executes the genetic nesting search for the problem and returns the
// best-ever layout together with the genome that produced it.
func Run(prob *model.Problem, cfg Config, seed int64) (*model.Nesting, *Genome, error) {
	if len(prob.Pieces) == 0 {
		return nil, nil, errors.New("nothing to nest: problem has no pieces")
	}
	if len(prob.Pieces) > model.MaxPieces {
		return nil, nil, errors.Errorf("too many pieces: %d exceeds limit %d", len(prob.Pieces), model.MaxPieces)
	}

	ga := newNestingGA(prob, cfg, seed)

	greedy := ga.greedyGenome()
	ga.eval.score(greedy)

	best, bestNest := ga.evolve()

	klog.Infof("search finished: best fitness=%.2f boards=%d efficiency=%.2f%% (greedy baseline %.2f)",
		best.Fitness, best.BoardCount, best.Efficiency, greedy.Fitness)
	if len(bestNest.Unplaced) > 0 {
		klog.Errorf("%d piece(s) could not be placed: %v", len(bestNest.Unplaced), bestNest.Unplaced)
	}

	return bestNest, best, nil
}
