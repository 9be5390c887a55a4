package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

func TestParseSMILES_Ethanol(t *testing.T) {
	m, err := ParseSMILES("CCO")
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumAtoms())
	assert.Equal(t, 2, m.NumBonds())
	assert.Equal(t, []int{3, 2, 1}, []int{m.Atoms[0].TotalH(), m.Atoms[1].TotalH(), m.Atoms[2].TotalH()})
	assert.Equal(t, 8, m.Atoms[2].AtomicNumber())
	assert.Equal(t, 1, m.Degree(2))
	assert.Equal(t, 2, m.Degree(1))
	assert.Equal(t, 1, m.Fragments)
	for _, b := range m.Bonds {
		assert.Equal(t, BondSingle, b.Type)
		assert.False(t, b.InRing)
	}
}

func TestParseSMILES_Methane(t *testing.T) {
	m, err := ParseSMILES("C")
	require.NoError(t, err)
	assert.Equal(t, 1, m.NumAtoms())
	assert.Equal(t, 0, m.NumBonds())
	assert.Equal(t, 4, m.Atoms[0].ImplicitH)
	assert.Equal(t, HybridSP3, m.Atoms[0].Hybridization)
}

func TestParseSMILES_Benzene(t *testing.T) {
	m, err := ParseSMILES("c1ccccc1")
	require.NoError(t, err)

	require.Equal(t, 6, m.NumAtoms())
	require.Equal(t, 6, m.NumBonds())
	for i, a := range m.Atoms {
		assert.True(t, a.Aromatic)
		assert.True(t, a.InRing)
		assert.Equal(t, 1, a.TotalH())
		assert.Equal(t, HybridSP2, a.Hybridization)
		assert.Equal(t, 3, m.ExplicitValence(i))
	}
	for _, b := range m.Bonds {
		assert.Equal(t, BondAromatic, b.Type)
		assert.True(t, b.InRing)
		assert.True(t, b.Conjugated)
	}
}

func TestParseSMILES_AromaticHydrogens(t *testing.T) {
	tests := []struct {
		smiles string
		atom   int
		wantH  int
	}{
		{"c1ccncc1", 3, 0},       // pyridine N
		{"c1ccsc1", 3, 0},        // thiophene S
		{"c1ccsc1", 0, 1},        // thiophene C
		{"c1ccc2ccccc2c1", 3, 0}, // naphthalene fusion C
		{"c1cc[nH]c1", 3, 1},     // pyrrole N
		{"Oc1ccccc1", 1, 0},      // phenol ipso C
		{"O=c1cccc[nH]1", 1, 0},  // 2-pyridone carbonyl C
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.wantH, m.Atoms[tt.atom].TotalH())
		})
	}
}

func TestParseSMILES_FusedRingValence(t *testing.T) {
	m := MustParseSMILES("c1ccc2ccccc2c1")
	assert.Equal(t, 4, m.ExplicitValence(3))
	assert.Equal(t, 3, m.ExplicitValence(4))
	assert.Equal(t, 11, m.NumBonds())
}

func TestParseSMILES_BracketAtoms(t *testing.T) {
	tests := []struct {
		smiles    string
		charge    int
		explicitH int
		isotope   int
		chiral    Chirality
		symbol    string
	}{
		{"[NH4+]", 1, 4, 0, ChiralNone, "N"},
		{"[O-]", -1, 0, 0, ChiralNone, "O"},
		{"[Fe++]", 2, 0, 0, ChiralNone, "Fe"},
		{"[Cu+2]", 2, 0, 0, ChiralNone, "Cu"},
		{"[13CH4]", 0, 4, 13, ChiralNone, "C"},
		{"[C@@H](F)(Cl)Br", 0, 1, 0, ChiralCW, "C"},
		{"[C@H](F)(Cl)Br", 0, 1, 0, ChiralCCW, "C"},
		{"[Na+:1]", 1, 0, 0, ChiralNone, "Na"},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			a := m.Atoms[0]
			assert.True(t, a.Bracket)
			assert.Equal(t, tt.symbol, a.Element.Symbol)
			assert.Equal(t, tt.charge, a.Charge)
			assert.Equal(t, tt.explicitH, a.ExplicitH)
			assert.Equal(t, 0, a.ImplicitH)
			assert.Equal(t, tt.isotope, a.Isotope)
			assert.Equal(t, tt.chiral, a.Chirality)
		})
	}
}

func TestParseSMILES_RingClosures(t *testing.T) {
	m, err := ParseSMILES("C1CCCCC1")
	require.NoError(t, err)
	assert.Equal(t, 6, m.NumBonds())
	for _, b := range m.Bonds {
		assert.True(t, b.InRing)
	}

	m, err = ParseSMILES("C%10CC%10")
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumBonds())

	m, err = ParseSMILES("C1CC=1")
	require.NoError(t, err)
	assert.Equal(t, BondDouble, m.BondBetween(0, 2).Type)
}

func TestParseSMILES_RingAndChainAtoms(t *testing.T) {
	m := MustParseSMILES("CCc1ccccc1")
	assert.False(t, m.Atoms[0].InRing)
	assert.False(t, m.Atoms[1].InRing)
	assert.True(t, m.Atoms[2].InRing)
	assert.False(t, m.BondBetween(1, 2).InRing)
}

func TestParseSMILES_Fragments(t *testing.T) {
	m, err := ParseSMILES("[Na+].[Cl-]")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Fragments)
	assert.Equal(t, 0, m.NumBonds())
}

func TestParseSMILES_DoubleBondStereo(t *testing.T) {
	tests := []struct {
		smiles string
		want   BondStereo
	}{
		{"F/C=C/F", StereoE},
		{`F/C=C\F`, StereoZ},
		{`C(\F)=C/F`, StereoE},
		{`F\C=C/F`, StereoZ},
		{"FC=CF", StereoNone},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			var dbl *Bond
			for _, b := range m.Bonds {
				if b.Type == BondDouble {
					dbl = b
				}
			}
			require.NotNil(t, dbl)
			assert.Equal(t, tt.want, dbl.Stereo)
		})
	}
}

func TestParseSMILES_Conjugation(t *testing.T) {
	m := MustParseSMILES("CC(=O)O")
	assert.False(t, m.BondBetween(0, 1).Conjugated)
	assert.True(t, m.BondBetween(1, 2).Conjugated)
	assert.True(t, m.BondBetween(1, 3).Conjugated)

	m = MustParseSMILES("CC(C)=O")
	assert.False(t, m.BondBetween(1, 3).Conjugated)

	m = MustParseSMILES("C=CC=C")
	for _, b := range m.Bonds {
		assert.True(t, b.Conjugated)
	}
}

func TestParseSMILES_Hybridization(t *testing.T) {
	m := MustParseSMILES("C#CC=CNC(=O)C")
	assert.Equal(t, HybridSP, m.Atoms[0].Hybridization)
	assert.Equal(t, HybridSP2, m.Atoms[2].Hybridization)
	assert.Equal(t, HybridSP2, m.Atoms[4].Hybridization) // amide-like N
	assert.Equal(t, HybridSP3, m.Atoms[7].Hybridization)

	m = MustParseSMILES("O=C=O")
	assert.Equal(t, HybridSP, m.Atoms[1].Hybridization)

	m = MustParseSMILES("CS(=O)(=O)C")
	assert.Equal(t, HybridSP3, m.Atoms[1].Hybridization)
}

func TestParseSMILES_Errors(t *testing.T) {
	tests := []struct {
		smiles string
		code   errors.ErrorCode
	}{
		{"", errors.ErrCodeMoleculeInvalidSMILES},
		{"   ", errors.ErrCodeMoleculeInvalidSMILES},
		{"C(", errors.ErrCodeMoleculeInvalidSMILES},
		{"C)", errors.ErrCodeMoleculeInvalidSMILES},
		{"(C)", errors.ErrCodeMoleculeInvalidSMILES},
		{"C1CC", errors.ErrCodeMoleculeInvalidSMILES},
		{"C=", errors.ErrCodeMoleculeInvalidSMILES},
		{"=C", errors.ErrCodeMoleculeInvalidSMILES},
		{"C==C", errors.ErrCodeMoleculeInvalidSMILES},
		{"[CH4", errors.ErrCodeMoleculeInvalidSMILES},
		{"C11", errors.ErrCodeMoleculeInvalidSMILES},
		{"C1C1", errors.ErrCodeMoleculeInvalidSMILES},
		{"C%1", errors.ErrCodeMoleculeInvalidSMILES},
		{"C.=C", errors.ErrCodeMoleculeInvalidSMILES},
		{"C?", errors.ErrCodeMoleculeInvalidSMILES},
		{"Xy", errors.ErrCodeMoleculeUnknownElement},
		{"[Zz]", errors.ErrCodeMoleculeUnknownElement},
		{"Na", errors.ErrCodeMoleculeUnknownElement},
		{"C(C)(C)(C)(C)C", errors.ErrCodeMoleculeValenceViolation},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m, err := ParseSMILES(tt.smiles)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestMustParseSMILES_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseSMILES("C(") })
}

//Personal.AI order the ending
