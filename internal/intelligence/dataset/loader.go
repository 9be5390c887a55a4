package dataset

import (
	"math/rand"

	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Loader yields collated mini-batches of graphs.  With shuffle set, every
// call to Batches draws a fresh order from the loader's seeded source, so
// epochs differ while the run stays reproducible.
type Loader struct {
	graphs    []*featurize.Graph
	batchSize int
	shuffle   bool
	device    nn.Device
	rng       *rand.Rand
}

// NewLoader builds a loader.  Degenerate graphs are rejected here rather
// than at collation time.
func NewLoader(graphs []*featurize.Graph, batchSize int, shuffle bool, seed int64, device nn.Device) (*Loader, error) {
	if batchSize <= 0 {
		return nil, errors.Newf(errors.ErrCodeValidation, "batch size must be > 0, got %d", batchSize)
	}
	if err := device.Validate(); err != nil {
		return nil, err
	}
	for i, g := range graphs {
		if g == nil || g.Degenerate() {
			return nil, errors.Newf(errors.ErrCodeDatasetCollateFailed, "graph %d has no edges", i).
				WithDetailf("smiles=%q", smilesOf(g))
		}
	}
	return &Loader{
		graphs:    graphs,
		batchSize: batchSize,
		shuffle:   shuffle,
		device:    device,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// NumGraphs returns the number of graphs served per epoch.
func (l *Loader) NumGraphs() int { return len(l.graphs) }

// Len returns the number of batches per epoch.
func (l *Loader) Len() int { return (len(l.graphs) + l.batchSize - 1) / l.batchSize }

// BatchSize returns the configured batch size.
func (l *Loader) BatchSize() int { return l.batchSize }

// Device returns the device batches are collated for.
func (l *Loader) Device() nn.Device { return l.device }

// Batches collates one epoch.  The final batch may be smaller.
func (l *Loader) Batches() ([]*Batch, error) {
	order := make([]int, len(l.graphs))
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	out := make([]*Batch, 0, l.Len())
	for start := 0; start < len(order); start += l.batchSize {
		end := start + l.batchSize
		if end > len(order) {
			end = len(order)
		}
		gs := make([]*featurize.Graph, 0, end-start)
		for _, idx := range order[start:end] {
			gs = append(gs, l.graphs[idx])
		}
		b, err := Collate(gs, l.device)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

//Personal.AI order the ending
