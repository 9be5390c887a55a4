package molecule

import (
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// pendingBond is a bond symbol read but not yet attached to an atom pair.
type pendingBond struct {
	set bool
	typ BondType
	dir byte
}

// ringOpen is an unclosed ring-closure digit.
type ringOpen struct {
	atom int
	bond pendingBond
}

type smilesParser struct {
	src  string
	pos  int
	mol  *Molecule
	prev int

	branches []int
	rings    map[int]ringOpen
	bond     pendingBond
}

// ParseSMILES parses s, then perceives implicit hydrogens, rings,
// hybridization, conjugation and double-bond stereo.  Every failure is an
// *errors.AppError with code MOL_001 (or MOL_002 for unknown elements).
func ParseSMILES(s string) (*Molecule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "SMILES string cannot be empty")
	}
	p := &smilesParser{
		src:   s,
		mol:   &Molecule{SMILES: s},
		prev:  -1,
		rings: make(map[int]ringOpen),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	if err := perceive(p.mol); err != nil {
		return nil, err
	}
	return p.mol, nil
}

// MustParseSMILES panics on error.  Tests and constant tables only.
func MustParseSMILES(s string) *Molecule {
	m, err := ParseSMILES(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (p *smilesParser) fail(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeMoleculeInvalidSMILES, format, args...).
		WithDetailf("smiles=%q pos=%d", p.src, p.pos)
}

func (p *smilesParser) parse() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch opened before any atom")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.bond.set {
				return p.fail("dangling bond before ')'")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case c == '.':
			if p.bond.set {
				return p.fail("dangling bond before '.'")
			}
			p.prev = -1
			p.pos++
		case strings.IndexByte("-=#$:/\\", c) >= 0:
			if p.bond.set {
				return p.fail("two consecutive bond symbols")
			}
			p.bond = bondFromSymbol(c)
			p.pos++
		case c >= '0' && c <= '9':
			if err := p.ringClosure(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
				return p.fail("'%%' must be followed by two digits")
			}
			n := int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
			if err := p.ringClosure(n); err != nil {
				return err
			}
			p.pos += 3
		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.attach(a); err != nil {
				return err
			}
		default:
			a, err := p.organicAtom()
			if err != nil {
				return err
			}
			if err := p.attach(a); err != nil {
				return err
			}
		}
	}

	if len(p.branches) > 0 {
		return p.fail("unbalanced '('")
	}
	if p.bond.set {
		return p.fail("dangling bond at end of input")
	}
	if len(p.rings) > 0 {
		return p.fail("unclosed ring bond %d", lo.Min(lo.Keys(p.rings)))
	}
	if len(p.mol.Atoms) == 0 {
		return p.fail("no atoms")
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func bondFromSymbol(c byte) pendingBond {
	switch c {
	case '=':
		return pendingBond{set: true, typ: BondDouble}
	case '#':
		return pendingBond{set: true, typ: BondTriple}
	case '$':
		return pendingBond{set: true, typ: BondQuadruple}
	case ':':
		return pendingBond{set: true, typ: BondAromatic}
	case '/', '\\':
		return pendingBond{set: true, typ: BondSingle, dir: c}
	default:
		return pendingBond{set: true, typ: BondSingle}
	}
}

// implicitBondType is used when no symbol was written between two atoms.
func (p *smilesParser) implicitBondType(a, b int) BondType {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) attach(a *Atom) error {
	idx := p.mol.addAtom(a)
	if p.prev >= 0 {
		t := p.bond.typ
		if !p.bond.set {
			t = p.implicitBondType(p.prev, idx)
		}
		p.mol.addBond(p.prev, idx, t, p.bond.dir)
	} else if p.bond.set {
		return p.fail("bond symbol without a preceding atom")
	}
	p.bond = pendingBond{}
	p.prev = idx
	return nil
}

func (p *smilesParser) ringClosure(n int) error {
	if p.prev < 0 {
		return p.fail("ring closure %d before any atom", n)
	}
	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, bond: p.bond}
		p.bond = pendingBond{}
		return nil
	}
	delete(p.rings, n)

	if open.atom == p.prev {
		return p.fail("ring closure %d bonds an atom to itself", n)
	}
	if p.mol.BondBetween(open.atom, p.prev) != nil {
		return p.fail("ring closure %d duplicates an existing bond", n)
	}

	closure := open.bond
	if p.bond.set {
		if closure.set && (closure.typ != p.bond.typ) {
			return p.fail("conflicting bond symbols on ring closure %d", n)
		}
		if !closure.set || closure.dir == 0 {
			closure = p.bond
		}
	}
	t := closure.typ
	if !closure.set {
		t = p.implicitBondType(open.atom, p.prev)
	}
	p.mol.addBond(open.atom, p.prev, t, closure.dir)
	p.bond = pendingBond{}
	return nil
}

func (p *smilesParser) organicAtom() (*Atom, error) {
	rest := p.src[p.pos:]
	if len(rest) >= 2 && (rest[:2] == "Cl" || rest[:2] == "Br") {
		el := elements[rest[:2]]
		p.pos += 2
		return &Atom{Element: el}, nil
	}
	c := rest[:1]
	if organicSubset[c] {
		p.pos++
		return &Atom{Element: elements[c]}, nil
	}
	if sym, ok := aromaticSymbols[c]; ok {
		p.pos++
		return &Atom{Element: elements[sym], Aromatic: true}, nil
	}
	if unicode.IsLetter(rune(c[0])) {
		return nil, errors.Newf(errors.ErrCodeMoleculeUnknownElement,
			"element %q is not allowed outside brackets", c).WithDetailf("smiles=%q pos=%d", p.src, p.pos)
	}
	return nil, p.fail("unexpected character %q", c)
}

// bracketAtom parses "[" isotope? symbol chiral? hcount? charge? class? "]".
func (p *smilesParser) bracketAtom() (*Atom, error) {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return nil, p.fail("unclosed '['")
	}
	body := p.src[p.pos+1 : p.pos+end]
	start := p.pos
	p.pos += end + 1

	a := &Atom{Bracket: true}
	i := 0

	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}

	if i >= len(body) {
		p.pos = start
		return nil, p.fail("bracket atom without element")
	}
	switch {
	case i+1 < len(body) && aromaticSymbols[body[i:i+2]] != "":
		a.Element = elements[aromaticSymbols[body[i:i+2]]]
		a.Aromatic = true
		i += 2
	case body[i] >= 'a' && body[i] <= 'z':
		sym, ok := aromaticSymbols[body[i:i+1]]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeMoleculeUnknownElement, "unknown aromatic symbol %q", body[i:i+1])
		}
		a.Element = elements[sym]
		a.Aromatic = true
		i++
	case body[i] >= 'A' && body[i] <= 'Z':
		sym := body[i : i+1]
		if i+1 < len(body) && body[i+1] >= 'a' && body[i+1] <= 'z' {
			if _, ok := elements[body[i:i+2]]; ok {
				sym = body[i : i+2]
			}
		}
		el, ok := elements[sym]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeMoleculeUnknownElement, "unknown element %q", sym).
				WithDetailf("smiles=%q", p.src)
		}
		a.Element = el
		i += len(sym)
	default:
		return nil, p.fail("invalid bracket atom %q", body)
	}

	if i < len(body) && body[i] == '@' {
		a.Chirality = ChiralCCW
		i++
		if i < len(body) && body[i] == '@' {
			a.Chirality = ChiralCW
			i++
		}
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.ExplicitH = 1
		if i < len(body) && isDigit(body[i]) {
			a.ExplicitH = int(body[i] - '0')
			i++
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sym := body[i]
		i++
		mag := 1
		switch {
		case i < len(body) && isDigit(body[i]):
			mag = 0
			for i < len(body) && isDigit(body[i]) {
				mag = mag*10 + int(body[i]-'0')
				i++
			}
		default:
			for i < len(body) && body[i] == sym {
				mag++
				i++
			}
		}
		a.Charge = sign * mag
	}

	if i < len(body) && body[i] == ':' {
		i++
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}

	if i != len(body) {
		return nil, p.fail("unexpected %q in bracket atom", body[i:])
	}
	return a, nil
}

//Personal.AI order the ending
