package molecule

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Default Morgan parameters.
const (
	DefaultMorganRadius = 3
	DefaultMorganBits   = 1024
)

// hashInts folds a sequence of integers into one 32-bit identifier.
func hashInts(vals ...int) uint32 {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(int64(v)))
	}
	return uint32(xxhash.Sum64(buf))
}

// atomInvariant is the radius-0 identifier of atom i.
func atomInvariant(m *Molecule, i int) uint32 {
	a := m.Atoms[i]
	ring := 0
	if a.InRing {
		ring = 1
	}
	return hashInts(a.AtomicNumber(), m.Degree(i), a.TotalH(), a.Charge, a.Isotope, ring)
}

// bondSet is the set of bonds covered by one atom environment.
type bondSet []uint64

func newBondSet(n int) bondSet { return make(bondSet, (n+63)/64) }

func (s bondSet) add(i int) { s[i/64] |= 1 << uint(i%64) }

func (s bondSet) union(o bondSet) {
	for i := range s {
		s[i] |= o[i]
	}
}

func (s bondSet) key() string {
	buf := make([]byte, 8*len(s))
	for i, w := range s {
		binary.LittleEndian.PutUint64(buf[8*i:], w)
	}
	return string(buf)
}

type neighborTerm struct {
	bond int
	id   uint32
}

// MorganIDs returns the circular-substructure identifiers of m up to radius.
// Each atom contributes its invariant and then one identifier per iteration.
// An environment whose bond set was already produced by another atom (or an
// earlier iteration) is skipped.
func MorganIDs(m *Molecule, radius int) []uint32 {
	n := len(m.Atoms)
	ids := make([]uint32, n)
	envs := make([]bondSet, n)
	out := make([]uint32, 0, n*(radius+1))

	for i := range m.Atoms {
		ids[i] = atomInvariant(m, i)
		envs[i] = newBondSet(len(m.Bonds))
		out = append(out, ids[i])
	}

	seen := make(map[string]struct{})
	for iter := 1; iter <= radius; iter++ {
		next := make([]uint32, n)
		nextEnvs := make([]bondSet, n)
		for i := range m.Atoms {
			env := newBondSet(len(m.Bonds))
			env.union(envs[i])

			terms := make([]neighborTerm, 0, m.Degree(i))
			for _, b := range m.AtomBonds(i) {
				j := b.Other(i)
				terms = append(terms, neighborTerm{bond: int(b.Type), id: ids[j]})
				env.add(b.Index)
				env.union(envs[j])
			}
			sort.Slice(terms, func(x, y int) bool {
				if terms[x].bond != terms[y].bond {
					return terms[x].bond < terms[y].bond
				}
				return terms[x].id < terms[y].id
			})

			vals := make([]int, 0, 2+2*len(terms))
			vals = append(vals, iter, int(ids[i]))
			for _, t := range terms {
				vals = append(vals, t.bond, int(t.id))
			}
			next[i] = hashInts(vals...)
			nextEnvs[i] = env

			if len(terms) == 0 {
				continue
			}
			k := env.key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, next[i])
		}
		ids, envs = next, nextEnvs
	}
	return out
}

// Morgan computes an ECFP-style fingerprint of m folded into nBits bits.
func Morgan(m *Molecule, radius, nBits int) (*Fingerprint, error) {
	if m == nil || len(m.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeFingerprintGenerationFailed, "molecule has no atoms")
	}
	if radius < 0 {
		return nil, errors.Newf(errors.ErrCodeFingerprintGenerationFailed, "radius must be ≥ 0, got %d", radius)
	}
	if nBits <= 0 {
		return nil, errors.Newf(errors.ErrCodeFingerprintGenerationFailed, "nBits must be > 0, got %d", nBits)
	}

	fp := NewFingerprint(radius, nBits)
	for _, id := range MorganIDs(m, radius) {
		fp.SetBit(int(id % uint32(nBits)))
	}
	return fp, nil
}

// MorganFromSMILES parses smiles and computes its Morgan fingerprint.
func MorganFromSMILES(smiles string, radius, nBits int) (*Fingerprint, error) {
	m, err := ParseSMILES(smiles)
	if err != nil {
		return nil, err
	}
	return Morgan(m, radius, nBits)
}

//Personal.AI order the ending
