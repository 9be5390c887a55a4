package dataset

import (
	"context"
	"math"
	"math/rand"

	"github.com/samber/lo"

	"github.com/turtacn/solubility-bench/internal/domain/molecule"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Split modes.
const (
	// SplitShared draws one permutation; the graph partition is the
	// fingerprint partition minus degenerate graphs.
	SplitShared = "shared"
	// SplitIndependent splits the filtered graph table with its own
	// permutation, so the two partitions need not coincide.
	SplitIndependent = "independent"
)

// SplitOptions controls the train/test partition.
type SplitOptions struct {
	Seed       int64
	TrainRatio float64
	Mode       string
}

// Record is one parsed molecule with both feature representations.
type Record struct {
	Line        int
	SMILES      string
	Target      float64
	Molecule    *molecule.Molecule // nil when features came from the cache
	Fingerprint *molecule.Fingerprint
	Graph       *featurize.Graph // Y set to Target
}

// HasGraph reports whether the record can enter the graph dataset.
func (r *Record) HasGraph() bool { return r.Graph != nil && !r.Graph.Degenerate() }

// Dataset holds both feature tables and their partitions.
type Dataset struct {
	Records    []*Record
	Invalid    int
	Degenerate int

	FingerprintTrain []*Record
	FingerprintTest  []*Record
	GraphTrain       []*featurize.Graph
	GraphTest        []*featurize.Graph
}

// Stats summarises dataset sizes.
type Stats struct {
	Rows             int `json:"rows"`
	Parsed           int `json:"parsed"`
	Invalid          int `json:"invalid"`
	Degenerate       int `json:"degenerate"`
	FingerprintTrain int `json:"fingerprint_train"`
	FingerprintTest  int `json:"fingerprint_test"`
	GraphTrain       int `json:"graph_train"`
	GraphTest        int `json:"graph_test"`
}

// Stats returns the dataset sizes.
func (d *Dataset) Stats() Stats {
	return Stats{
		Rows:             len(d.Records) + d.Invalid,
		Parsed:           len(d.Records),
		Invalid:          d.Invalid,
		Degenerate:       d.Degenerate,
		FingerprintTrain: len(d.FingerprintTrain),
		FingerprintTest:  len(d.FingerprintTest),
		GraphTrain:       len(d.GraphTrain),
		GraphTest:        len(d.GraphTest),
	}
}

// FingerprintMatrix returns dense fingerprint rows and targets.
func FingerprintMatrix(recs []*Record) ([][]float64, []float64) {
	x := lo.Map(recs, func(r *Record, _ int) []float64 { return r.Fingerprint.Dense() })
	y := lo.Map(recs, func(r *Record, _ int) float64 { return r.Target })
	return x, y
}

// TrainCount returns ⌊ratio·n⌋.
func TrainCount(n int, ratio float64) int {
	return int(math.Floor(ratio * float64(n)))
}

// Assembler featurizes rows and partitions them.
type Assembler struct {
	source featurize.Source
	opts   SplitOptions
	logger logging.Logger
}

// NewAssembler builds an Assembler.  An empty mode means SplitShared.
func NewAssembler(source featurize.Source, opts SplitOptions, logger logging.Logger) *Assembler {
	if opts.Mode == "" {
		opts.Mode = SplitShared
	}
	return &Assembler{source: source, opts: opts, logger: logging.OrDefault(logger).Named("dataset")}
}

// Assemble featurizes every row, drops unparsable ones and splits the rest.
// No returned record carries a nil fingerprint.
func (a *Assembler) Assemble(ctx context.Context, rows []Row) (*Dataset, error) {
	if a.opts.TrainRatio <= 0 || a.opts.TrainRatio >= 1 {
		return nil, errors.Newf(errors.ErrCodeDatasetSplitInvalid, "train ratio %v must be in (0, 1)", a.opts.TrainRatio)
	}
	if a.opts.Mode != SplitShared && a.opts.Mode != SplitIndependent {
		return nil, errors.Newf(errors.ErrCodeDatasetSplitInvalid, "unknown split mode %q", a.opts.Mode)
	}

	ds := &Dataset{}
	for _, row := range rows {
		feats, err := a.source.Features(ctx, row.SMILES)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeCanceled) {
				return nil, err
			}
			ds.Invalid++
			a.logger.Warn("unparsable molecule dropped", logging.Row(row.Line), logging.SMILES(row.SMILES), logging.Err(err))
			continue
		}
		rec := &Record{
			Line:        row.Line,
			SMILES:      row.SMILES,
			Target:      row.Target,
			Molecule:    feats.Molecule,
			Fingerprint: feats.Fingerprint,
			Graph:       feats.Graph.WithTarget(row.Target),
		}
		if !rec.HasGraph() {
			ds.Degenerate++
		}
		ds.Records = append(ds.Records, rec)
	}

	n := len(ds.Records)
	if n == 0 {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "no parsable molecules")
	}
	nTrain := TrainCount(n, a.opts.TrainRatio)
	if nTrain == 0 || nTrain == n {
		return nil, errors.Newf(errors.ErrCodeDatasetSplitInvalid,
			"train ratio %v leaves an empty partition for %d molecules", a.opts.TrainRatio, n)
	}

	rng := rand.New(rand.NewSource(a.opts.Seed))
	shuffled := permute(ds.Records, rng.Perm(n))
	ds.FingerprintTrain = shuffled[:nTrain]
	ds.FingerprintTest = shuffled[nTrain:]

	switch a.opts.Mode {
	case SplitShared:
		ds.GraphTrain = graphsOf(lo.Filter(ds.FingerprintTrain, hasGraph))
		ds.GraphTest = graphsOf(lo.Filter(ds.FingerprintTest, hasGraph))
	case SplitIndependent:
		table := lo.Filter(ds.Records, hasGraph)
		m := len(table)
		g := permute(table, rng.Perm(m))
		k := TrainCount(m, a.opts.TrainRatio)
		ds.GraphTrain = graphsOf(g[:k])
		ds.GraphTest = graphsOf(g[k:])
	}

	a.logger.Info("dataset assembled",
		logging.Int("parsed", n),
		logging.Int("invalid", ds.Invalid),
		logging.Int("degenerate", ds.Degenerate),
		logging.Int("fp_train", len(ds.FingerprintTrain)),
		logging.Int("fp_test", len(ds.FingerprintTest)),
		logging.Int("graph_train", len(ds.GraphTrain)),
		logging.Int("graph_test", len(ds.GraphTest)),
		logging.String("split_mode", a.opts.Mode),
	)
	return ds, nil
}

func hasGraph(r *Record, _ int) bool { return r.HasGraph() }

func graphsOf(recs []*Record) []*featurize.Graph {
	return lo.Map(recs, func(r *Record, _ int) *featurize.Graph { return r.Graph })
}

func permute[T any](xs []T, perm []int) []T {
	out := make([]T, len(xs))
	for i, p := range perm {
		out[i] = xs[p]
	}
	return out
}

//Personal.AI order the ending
