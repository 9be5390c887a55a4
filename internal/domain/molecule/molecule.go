// Package molecule is the chemistry toolkit of the solubility benchmark.  It
// parses SMILES into an atom/bond structure, perceives rings, hybridization,
// conjugation and double-bond stereo, and derives circular (Morgan)
// fingerprints from the perceived structure.
package molecule

import "math"

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// BondType is the bond multiplicity.  Numeric values follow the common
// cheminformatics convention so that they can be hashed as-is.
type BondType int

const (
	BondUnspecified BondType = 0
	BondSingle      BondType = 1
	BondDouble      BondType = 2
	BondTriple      BondType = 3
	BondQuadruple   BondType = 4
	BondAromatic    BondType = 12
)

// Order returns the bond order used for features and valence sums.
func (t BondType) Order() float64 {
	switch t {
	case BondSingle:
		return 1
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	case BondAromatic:
		return 1.5
	default:
		return 0
	}
}

// Hybridization codes.
type Hybridization int

const (
	HybridUnspecified Hybridization = iota
	HybridS
	HybridSP
	HybridSP2
	HybridSP3
	HybridSP3D
	HybridSP3D2
)

// String returns the conventional label.
func (h Hybridization) String() string {
	switch h {
	case HybridS:
		return "S"
	case HybridSP:
		return "SP"
	case HybridSP2:
		return "SP2"
	case HybridSP3:
		return "SP3"
	case HybridSP3D:
		return "SP3D"
	case HybridSP3D2:
		return "SP3D2"
	default:
		return "UNSPECIFIED"
	}
}

// Chirality is the tetrahedral tag written on a bracket atom.
type Chirality int

const (
	ChiralNone Chirality = iota
	ChiralCW             // @@
	ChiralCCW            // @
)

// BondStereo is the double-bond configuration.
type BondStereo int

const (
	StereoNone BondStereo = iota
	StereoAny
	StereoZ
	StereoE
)

// ─────────────────────────────────────────────────────────────────────────────
// Atom / Bond / Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Atom is one parsed atom.  Perceived fields are filled by ParseSMILES.
type Atom struct {
	Index    int
	Element  Element
	Aromatic bool
	Bracket  bool
	Isotope  int
	Charge   int

	// ExplicitH is the hydrogen count written inside brackets.
	ExplicitH int
	// ImplicitH is derived from default valences for organic-subset atoms.
	ImplicitH int

	Chirality     Chirality
	Hybridization Hybridization
	InRing        bool
}

// AtomicNumber returns the element number.
func (a *Atom) AtomicNumber() int { return a.Element.Number }

// TotalH returns explicit plus implicit hydrogens.
func (a *Atom) TotalH() int { return a.ExplicitH + a.ImplicitH }

// Bond connects atoms Begin and End, in the order they were written.
type Bond struct {
	Index      int
	Begin, End int
	Type       BondType
	Conjugated bool
	InRing     bool
	Stereo     BondStereo

	// dir holds '/' or '\' when the bond was written with a direction.
	dir byte
}

// Other returns the atom at the opposite end of the bond from atom.
func (b *Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

// Molecule is the parsed and perceived structure of one SMILES string.
type Molecule struct {
	SMILES string
	Atoms  []*Atom
	Bonds  []*Bond

	// Fragments is the number of connected components.
	Fragments int

	adj [][]int // atom index -> incident bond indices
}

// NumAtoms returns the heavy-atom count (hydrogens are implicit unless
// written as bracket atoms).
func (m *Molecule) NumAtoms() int { return len(m.Atoms) }

// NumBonds returns the bond count.
func (m *Molecule) NumBonds() int { return len(m.Bonds) }

// AtomBonds returns the bonds incident to atom i.
func (m *Molecule) AtomBonds(i int) []*Bond {
	out := make([]*Bond, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.Bonds[bi])
	}
	return out
}

// Neighbors returns the indices of atoms bonded to atom i.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.Bonds[bi].Other(i))
	}
	return out
}

// Degree returns the number of explicit neighbours of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

// BondBetween returns the bond joining atoms i and j, or nil.
func (m *Molecule) BondBetween(i, j int) *Bond {
	for _, bi := range m.adj[i] {
		if m.Bonds[bi].Other(i) == j {
			return m.Bonds[bi]
		}
	}
	return nil
}

// ExplicitValence returns the sum of bond orders of atom i (aromatic bonds
// count 1.5) plus bracket hydrogens.  Half orders round down, so a fused
// aromatic carbon reports 4.
func (m *Molecule) ExplicitValence(i int) int {
	var sum float64
	for _, bi := range m.adj[i] {
		sum += m.Bonds[bi].Type.Order()
	}
	return int(math.Floor(sum+0.1)) + m.Atoms[i].ExplicitH
}

// valenceSum counts aromatic bonds as 1, used for implicit hydrogen
// derivation.
func (m *Molecule) valenceSum(i int) (sum, aromatic int) {
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		if b.Type == BondAromatic {
			sum++
			aromatic++
			continue
		}
		sum += int(b.Type.Order())
	}
	return sum, aromatic
}

func (m *Molecule) addAtom(a *Atom) int {
	a.Index = len(m.Atoms)
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return a.Index
}

func (m *Molecule) addBond(begin, end int, t BondType, dir byte) *Bond {
	b := &Bond{Index: len(m.Bonds), Begin: begin, End: end, Type: t, dir: dir}
	m.Bonds = append(m.Bonds, b)
	m.adj[begin] = append(m.adj[begin], b.Index)
	m.adj[end] = append(m.adj[end], b.Index)
	return b
}

//Personal.AI order the ending
