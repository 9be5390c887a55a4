package featurize

import (
	"github.com/turtacn/solubility-bench/internal/domain/molecule"
)

// Feature widths.
const (
	NodeFeatures = 8
	EdgeFeatures = 4
)

// NodeFeatureNames lists the node feature columns in order.
var NodeFeatureNames = [NodeFeatures]string{
	"atomic_num", "hybridization", "degree", "aromatic",
	"total_h", "formal_charge", "chirality", "explicit_valence",
}

// EdgeFeatureNames lists the edge feature columns in order.
var EdgeFeatureNames = [EdgeFeatures]string{
	"bond_order", "conjugated", "in_ring", "stereo",
}

// Graph is the molecular graph consumed by the graph networks.
type Graph struct {
	SMILES    string      `json:"smiles"`
	X         [][]float64 `json:"x"`
	EdgeIndex [][2]int    `json:"edge_index"`
	EdgeAttr  [][]float64 `json:"edge_attr"`
	Y         float64     `json:"y"`
}

// NumNodes returns the atom count.
func (g *Graph) NumNodes() int { return len(g.X) }

// NumEdges returns the number of directed edge pairs.
func (g *Graph) NumEdges() int { return len(g.EdgeIndex) }

// Degenerate reports a graph without edges.  Such graphs cannot be batched.
func (g *Graph) Degenerate() bool { return len(g.EdgeIndex) == 0 }

// WithTarget returns a shallow copy of g carrying target y.
func (g *Graph) WithTarget(y float64) *Graph {
	c := *g
	c.Y = y
	return &c
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// GraphFromMolecule builds the graph for m.  Each bond yields the pair
// (begin, end); symmetric adds (end, begin) right after it with the same
// features.
func GraphFromMolecule(m *molecule.Molecule, symmetric bool) *Graph {
	g := &Graph{
		SMILES: m.SMILES,
		X:      make([][]float64, m.NumAtoms()),
	}
	for i, a := range m.Atoms {
		g.X[i] = []float64{
			float64(a.AtomicNumber()),
			float64(a.Hybridization),
			float64(m.Degree(i)),
			boolFeature(a.Aromatic),
			float64(a.TotalH()),
			float64(a.Charge),
			float64(a.Chirality),
			float64(m.ExplicitValence(i)),
		}
	}

	n := m.NumBonds()
	if symmetric {
		n *= 2
	}
	g.EdgeIndex = make([][2]int, 0, n)
	g.EdgeAttr = make([][]float64, 0, n)
	for _, b := range m.Bonds {
		attr := []float64{
			b.Type.Order(),
			boolFeature(b.Conjugated),
			boolFeature(b.InRing),
			float64(b.Stereo),
		}
		g.EdgeIndex = append(g.EdgeIndex, [2]int{b.Begin, b.End})
		g.EdgeAttr = append(g.EdgeAttr, attr)
		if symmetric {
			g.EdgeIndex = append(g.EdgeIndex, [2]int{b.End, b.Begin})
			g.EdgeAttr = append(g.EdgeAttr, append([]float64(nil), attr...))
		}
	}
	return g
}

//Personal.AI order the ending
