package classical

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// ForestOptions configures the random forest.
type ForestOptions struct {
	Trees           int
	MaxDepth        int     // 0 = unlimited
	MinSamplesSplit int     // nodes smaller than this become leaves
	MaxFeatures     float64 // fraction of features tried per split, (0, 1]
	Workers         int     // concurrent tree builds; 0 = GOMAXPROCS
	Seed            int64
}

// DefaultForestOptions returns 100 unlimited-depth trees considering every
// feature at every split.
func DefaultForestOptions() ForestOptions {
	return ForestOptions{Trees: 100, MinSamplesSplit: 2, MaxFeatures: 1}
}

// RandomForest averages bootstrap-trained CART regression trees.
type RandomForest struct {
	opts   ForestOptions
	logger logging.Logger

	nFeatures int
	trees     []*tree
}

// NewRandomForest builds an unfitted forest.  Zero options fall back to
// defaults.
func NewRandomForest(opts ForestOptions, logger logging.Logger) *RandomForest {
	def := DefaultForestOptions()
	if opts.Trees <= 0 {
		opts.Trees = def.Trees
	}
	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = def.MinSamplesSplit
	}
	if opts.MaxFeatures <= 0 || opts.MaxFeatures > 1 {
		opts.MaxFeatures = def.MaxFeatures
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &RandomForest{opts: opts, logger: logging.OrDefault(logger).Named("forest")}
}

// Name implements Regressor.
func (f *RandomForest) Name() string { return "Random Forest" }

// NumTrees returns the number of fitted trees.
func (f *RandomForest) NumTrees() int { return len(f.trees) }

// Fit implements Regressor.  Every tree draws its bootstrap sample and
// feature subsets from its own source, seeded up front from opts.Seed, so
// the result does not depend on scheduling.
func (f *RandomForest) Fit(ctx context.Context, x [][]float64, y []float64) error {
	d, err := checkTrainingData(x, y)
	if err != nil {
		return err
	}
	b := &builder{
		x:        x,
		y:        y,
		binary:   binaryColumns(x, d),
		mtry:     max(1, int(math.Round(f.opts.MaxFeatures*float64(d)))),
		maxDepth: f.opts.MaxDepth,
		minSplit: f.opts.MinSamplesSplit,
	}

	master := rand.New(rand.NewSource(f.opts.Seed))
	seeds := make([]int64, f.opts.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*tree, f.opts.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Wrap(err, errors.ErrCodeCanceled, "forest fit canceled")
			}
			trees[i] = b.build(rand.New(rand.NewSource(seeds[i])))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.trees = trees
	f.nFeatures = d
	depth := 0
	for _, t := range trees {
		depth = max(depth, t.depth)
	}
	f.logger.Info("random forest fitted",
		logging.Int("rows", len(x)),
		logging.Int("features", d),
		logging.Int("trees", len(trees)),
		logging.Int("max_features", b.mtry),
		logging.Int("deepest_tree", depth))
	return nil
}

// Predict implements Regressor.
func (f *RandomForest) Predict(x [][]float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, notFitted(f.Name())
	}
	if err := checkWidth(x, f.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	votes := make([]float64, len(f.trees))
	for i, row := range x {
		for k, t := range f.trees {
			votes[k] = t.predict(row)
		}
		out[i] = stat.Mean(votes, nil)
	}
	return out, nil
}

var _ Regressor = (*RandomForest)(nil)

// ---------------------------------------------------------------------------
// Regression trees
// ---------------------------------------------------------------------------

// node is a tree node stored in a flat slice; left < 0 marks a leaf.
type node struct {
	feature     int
	threshold   float64
	left, right int
	value       float64
}

type tree struct {
	nodes []node
	depth int
}

func (t *tree) predict(row []float64) float64 {
	i := 0
	for t.nodes[i].left >= 0 {
		n := t.nodes[i]
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].value
}

// builder holds the read-only training data shared by all tree builds.
type builder struct {
	x        [][]float64
	y        []float64
	binary   []bool
	mtry     int
	maxDepth int
	minSplit int
}

// binaryColumns flags features whose values are all 0 or 1.
func binaryColumns(x [][]float64, d int) []bool {
	out := make([]bool, d)
	for j := range out {
		out[j] = true
	}
	for _, row := range x {
		for j, v := range row {
			if v != 0 && v != 1 {
				out[j] = false
			}
		}
	}
	return out
}

func (b *builder) build(rng *rand.Rand) *tree {
	n := len(b.x)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}
	t := &tree{}
	b.grow(t, sample, 0, rng)
	return t
}

type split struct {
	feature   int
	threshold float64
	score     float64 // Σ_left²/n_left + Σ_right²/n_right
}

// grow appends the subtree for idx and returns its node index.
func (b *builder) grow(t *tree, idx []int, depth int, rng *rand.Rand) int {
	self := len(t.nodes)
	t.depth = max(t.depth, depth)

	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	n := float64(len(idx))
	t.nodes = append(t.nodes, node{left: -1, right: -1, value: sum / n})

	if len(idx) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) || b.pure(idx) {
		return self
	}

	best := split{feature: -1, score: sum * sum / n}
	features := rng.Perm(len(b.binary))[:b.mtry]
	for _, j := range features {
		var s split
		var ok bool
		if b.binary[j] {
			s, ok = b.splitBinary(idx, j, sum)
		} else {
			s, ok = b.splitContinuous(idx, j, sum)
		}
		if ok && s.score > best.score+1e-12 {
			best = s
		}
	}
	if best.feature < 0 {
		return self
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.grow(t, left, depth+1, rng)
	r := b.grow(t, right, depth+1, rng)
	t.nodes[self].feature = best.feature
	t.nodes[self].threshold = best.threshold
	t.nodes[self].left = l
	t.nodes[self].right = r
	return self
}

func (b *builder) pure(idx []int) bool {
	first := b.y[idx[0]]
	for _, i := range idx[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

// splitBinary scores the single 0/1 split of a binary feature in one pass.
func (b *builder) splitBinary(idx []int, j int, total float64) (split, bool) {
	var sumR float64
	nR := 0
	for _, i := range idx {
		if b.x[i][j] == 1 {
			sumR += b.y[i]
			nR++
		}
	}
	nL := len(idx) - nR
	if nL == 0 || nR == 0 {
		return split{}, false
	}
	sumL := total - sumR
	return split{
		feature:   j,
		threshold: 0.5,
		score:     sumL*sumL/float64(nL) + sumR*sumR/float64(nR),
	}, true
}

// splitContinuous scans the sorted values of feature j, placing thresholds
// midway between distinct neighbours.
func (b *builder) splitContinuous(idx []int, j int, total float64) (split, bool) {
	order := append([]int(nil), idx...)
	sort.Slice(order, func(p, q int) bool { return b.x[order[p]][j] < b.x[order[q]][j] })

	best := split{feature: j}
	found := false
	var sumL float64
	for k := 0; k < len(order)-1; k++ {
		sumL += b.y[order[k]]
		cur, next := b.x[order[k]][j], b.x[order[k+1]][j]
		if cur == next {
			continue
		}
		nL := float64(k + 1)
		nR := float64(len(order)) - nL
		sumR := total - sumL
		score := sumL*sumL/nL + sumR*sumR/nR
		if !found || score > best.score {
			best.score = score
			best.threshold = (cur + next) / 2
			found = true
		}
	}
	return best, found
}

//Personal.AI order the ending
