package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Batch is the disjoint union of several graphs.  Node indices of graph k
// are offset by the node count of graphs 0..k-1; Assign maps every node row
// back to its graph.
type Batch struct {
	X         *mat.Dense
	Src       []int
	Dst       []int
	EdgeAttr  [][]float64
	Assign    []int
	Counts    []int
	NumGraphs int
	Y         []float64
	Device    nn.Device
}

// NumNodes returns the total node count.
func (b *Batch) NumNodes() int { return len(b.Assign) }

// Collate merges graphs into one batch on device.
func Collate(graphs []*featurize.Graph, device nn.Device) (*Batch, error) {
	if err := device.Validate(); err != nil {
		return nil, err
	}
	if len(graphs) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetCollateFailed, "no graphs to collate")
	}

	nodes, edges := 0, 0
	for i, g := range graphs {
		if g == nil || g.NumNodes() == 0 || g.Degenerate() {
			return nil, errors.Newf(errors.ErrCodeDatasetCollateFailed, "graph %d has no edges", i).
				WithDetailf("smiles=%q", smilesOf(g))
		}
		nodes += g.NumNodes()
		edges += g.NumEdges()
	}

	b := &Batch{
		X:         mat.NewDense(nodes, featurize.NodeFeatures, nil),
		Src:       make([]int, 0, edges),
		Dst:       make([]int, 0, edges),
		EdgeAttr:  make([][]float64, 0, edges),
		Assign:    make([]int, 0, nodes),
		Counts:    make([]int, len(graphs)),
		NumGraphs: len(graphs),
		Y:         make([]float64, len(graphs)),
		Device:    device,
	}

	offset := 0
	for k, g := range graphs {
		for i, row := range g.X {
			if len(row) != featurize.NodeFeatures {
				return nil, errors.Newf(errors.ErrCodeDatasetCollateFailed,
					"graph %d node %d has %d features, want %d", k, i, len(row), featurize.NodeFeatures)
			}
			b.X.SetRow(offset+i, row)
			b.Assign = append(b.Assign, k)
		}
		for e, pair := range g.EdgeIndex {
			b.Src = append(b.Src, pair[0]+offset)
			b.Dst = append(b.Dst, pair[1]+offset)
			b.EdgeAttr = append(b.EdgeAttr, g.EdgeAttr[e])
		}
		b.Counts[k] = g.NumNodes()
		b.Y[k] = g.Y
		offset += g.NumNodes()
	}
	return b, nil
}

func smilesOf(g *featurize.Graph) string {
	if g == nil {
		return ""
	}
	return g.SMILES
}

//Personal.AI order the ending
