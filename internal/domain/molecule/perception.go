package molecule

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// perceive fills every derived atom and bond property after parsing.  Order
// matters: hybridization reads implicit hydrogens, conjugation reads
// hybridization-independent saturation, stereo skips ring bonds.
func perceive(m *Molecule) error {
	if err := assignImplicitHydrogens(m); err != nil {
		return err
	}
	g := m.graph()
	assignRings(m, g)
	m.Fragments = len(topo.ConnectedComponents(g))
	for i := range m.Atoms {
		m.Atoms[i].Hybridization = hybridization(m, i)
	}
	assignConjugation(m)
	assignStereo(m)
	return nil
}

// graph builds an undirected gonum view of the heavy-atom skeleton.
func (m *Molecule) graph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range m.Atoms {
		g.AddNode(simple.Node(i))
	}
	for _, b := range m.Bonds {
		g.SetEdge(g.NewEdge(simple.Node(b.Begin), simple.Node(b.End)))
	}
	return g
}

// ─────────────────────────────────────────────────────────────────────────────
// Hydrogens
// ─────────────────────────────────────────────────────────────────────────────

func assignImplicitHydrogens(m *Molecule) error {
	for i, a := range m.Atoms {
		if a.Bracket || len(a.Element.Valences) == 0 {
			continue
		}
		sum, aromatic := m.valenceSum(i)

		target := -1
		for _, v := range a.Element.Valences {
			if v >= sum {
				target = v
				break
			}
		}
		if target < 0 {
			if a.Aromatic {
				continue
			}
			return errors.Newf(errors.ErrCodeMoleculeValenceViolation,
				"atom %d (%s) has valence %d, maximum is %d",
				i, a.Element.Symbol, sum, a.Element.Valences[len(a.Element.Valences)-1]).
				WithDetailf("smiles=%q", m.SMILES)
		}

		h := target - sum
		// An aromatic atom spends one valence on the delocalised system.
		if a.Aromatic && aromatic > 0 {
			h--
		}
		if h < 0 {
			h = 0
		}
		a.ImplicitH = h
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Rings
// ─────────────────────────────────────────────────────────────────────────────

// assignRings marks ring atoms and bonds.  A bond lies on some ring exactly
// when it lies on some cycle of a cycle basis.
func assignRings(m *Molecule, g graph.Undirected) {
	for _, cycle := range topo.UndirectedCyclesIn(g) {
		n := len(cycle)
		if n < 2 {
			continue
		}
		for k := 0; k < n; k++ {
			u := int(cycle[k].ID())
			v := int(cycle[(k+1)%n].ID())
			if u == v {
				continue
			}
			if b := m.BondBetween(u, v); b != nil {
				b.InRing = true
				m.Atoms[u].InRing = true
				m.Atoms[v].InRing = true
			}
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Hybridization
// ─────────────────────────────────────────────────────────────────────────────

func hybridization(m *Molecule, i int) Hybridization {
	a := m.Atoms[i]
	if a.Element.Number <= 2 {
		return HybridS
	}
	steric := m.Degree(i) + a.TotalH()
	if steric == 0 {
		return HybridUnspecified
	}
	if a.Aromatic {
		return HybridSP2
	}

	doubles, triples := 0, 0
	for _, b := range m.AtomBonds(i) {
		switch b.Type {
		case BondDouble:
			doubles++
		case BondTriple, BondQuadruple:
			triples++
		case BondAromatic:
			return HybridSP2
		}
	}

	switch {
	case steric >= 6:
		return HybridSP3D2
	case steric == 5:
		return HybridSP3D
	case doubles >= 2 && steric >= 4:
		// sulfones, phosphates
		return HybridSP3
	case triples > 0 || doubles >= 2:
		return HybridSP
	case doubles == 1:
		return HybridSP2
	}

	if isLonePairDonor(m, i) {
		for _, j := range m.Neighbors(i) {
			if isUnsaturated(m, j, nil) {
				return HybridSP2
			}
		}
	}
	return HybridSP3
}

// ─────────────────────────────────────────────────────────────────────────────
// Conjugation
// ─────────────────────────────────────────────────────────────────────────────

// isUnsaturated reports whether atom i carries a multiple or aromatic bond
// other than except.
func isUnsaturated(m *Molecule, i int, except *Bond) bool {
	for _, b := range m.AtomBonds(i) {
		if b == except {
			continue
		}
		if b.Type == BondDouble || b.Type == BondTriple || b.Type == BondAromatic {
			return true
		}
	}
	return false
}

// isLonePairDonor reports whether atom i is a saturated N, O or S with a lone
// pair that can delocalise into a neighbouring pi system.
func isLonePairDonor(m *Molecule, i int) bool {
	a := m.Atoms[i]
	switch a.Element.Number {
	case 7, 8, 16:
	default:
		return false
	}
	if a.Aromatic || isUnsaturated(m, i, nil) {
		return false
	}
	return m.Degree(i)+a.TotalH() < 4
}

func assignConjugation(m *Molecule) {
	for _, b := range m.Bonds {
		switch b.Type {
		case BondAromatic:
			b.Conjugated = true
		case BondSingle:
			ub := isUnsaturated(m, b.Begin, b)
			ue := isUnsaturated(m, b.End, b)
			if (ub && ue) || (ub && isLonePairDonor(m, b.End)) || (ue && isLonePairDonor(m, b.Begin)) {
				b.Conjugated = true
			}
		}
	}
	for _, b := range m.Bonds {
		if b.Type != BondDouble && b.Type != BondTriple {
			continue
		}
		for _, end := range [2]int{b.Begin, b.End} {
			for _, o := range m.AtomBonds(end) {
				if o != b && o.Conjugated {
					b.Conjugated = true
				}
			}
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Double-bond stereo
// ─────────────────────────────────────────────────────────────────────────────

func flipDir(d byte) byte {
	if d == '/' {
		return '\\'
	}
	return '/'
}

// sideDirection returns the normalised direction of the first directional
// bond on one side of double bond dbl.  Normal form is "x/a=" on the begin
// side and "=b/y" on the end side.
func sideDirection(m *Molecule, atom int, dbl *Bond, beginSide bool) byte {
	for _, o := range m.AtomBonds(atom) {
		if o == dbl || o.dir == 0 {
			continue
		}
		d := o.dir
		if beginSide && o.Begin == atom {
			d = flipDir(d)
		}
		if !beginSide && o.End == atom {
			d = flipDir(d)
		}
		return d
	}
	return 0
}

func assignStereo(m *Molecule) {
	for _, b := range m.Bonds {
		if b.Type != BondDouble || b.InRing {
			continue
		}
		db := sideDirection(m, b.Begin, b, true)
		de := sideDirection(m, b.End, b, false)
		if db == 0 || de == 0 {
			continue
		}
		if db == de {
			b.Stereo = StereoE
		} else {
			b.Stereo = StereoZ
		}
	}
}

//Personal.AI order the ending
