package molecule

import (
	"math/bits"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fingerprint Structure
// ─────────────────────────────────────────────────────────────────────────────

// Fingerprint is a fixed-length bit vector.  Bit i is stored in byte i/8 at
// bit position i%8.
type Fingerprint struct {
	// Radius is the Morgan radius the fingerprint was computed with.
	Radius int `json:"radius"`

	// Bits is the packed bit vector representation.
	Bits []byte `json:"bits"`

	// Length is the total number of bits in the fingerprint.
	Length int `json:"length"`

	// NumOnBits is the count of set bits (popcount).
	NumOnBits int `json:"num_on_bits"`
}

// NewFingerprint returns an all-zero fingerprint of length bits.
func NewFingerprint(radius, length int) *Fingerprint {
	return &Fingerprint{
		Radius: radius,
		Bits:   make([]byte, (length+7)/8),
		Length: length,
	}
}

// FingerprintFromBytes rebuilds a fingerprint from packed data, e.g. a cache
// entry.  The popcount is recomputed.
func FingerprintFromBytes(radius int, data []byte, length int) (*Fingerprint, error) {
	if length <= 0 || len(data) != (length+7)/8 {
		return nil, errors.Newf(errors.ErrCodeFingerprintGenerationFailed,
			"fingerprint of %d bits needs %d bytes, got %d", length, (length+7)/8, len(data))
	}
	onBits := 0
	for _, b := range data {
		onBits += bits.OnesCount8(b)
	}
	return &Fingerprint{Radius: radius, Bits: data, Length: length, NumOnBits: onBits}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bit Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetBit returns true if the bit at the given index is set.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.Length {
		return false
	}
	return fp.Bits[index/8]&(1<<uint(index%8)) != 0
}

// SetBit sets the bit at the given index to 1.
func (fp *Fingerprint) SetBit(index int) {
	if index < 0 || index >= fp.Length {
		return
	}
	byteIdx := index / 8
	old := fp.Bits[byteIdx]
	fp.Bits[byteIdx] |= 1 << uint(index%8)
	if old != fp.Bits[byteIdx] {
		fp.NumOnBits++
	}
}

// OnBits returns the indices of set bits in ascending order.
func (fp *Fingerprint) OnBits() []int {
	out := make([]int, 0, fp.NumOnBits)
	for i := 0; i < fp.Length; i++ {
		if fp.GetBit(i) {
			out = append(out, i)
		}
	}
	return out
}

// Dense expands the fingerprint into a 0/1 feature row for the classical
// regressors.
func (fp *Fingerprint) Dense() []float64 {
	out := make([]float64, fp.Length)
	for i := range out {
		if fp.GetBit(i) {
			out[i] = 1
		}
	}
	return out
}

// ToBytes returns the packed representation.
func (fp *Fingerprint) ToBytes() []byte {
	return fp.Bits
}

// ─────────────────────────────────────────────────────────────────────────────
// Similarity
// ─────────────────────────────────────────────────────────────────────────────

// Tanimoto returns |a∧b| / |a∨b|.  Two empty fingerprints score 0.
func Tanimoto(a, b *Fingerprint) (float64, error) {
	if a.Length != b.Length {
		return 0, errors.Newf(errors.ErrCodeValidation,
			"fingerprints must have same dimension, got %d and %d", a.Length, b.Length)
	}
	intersection, union := 0, 0
	for i := range a.Bits {
		intersection += bits.OnesCount8(a.Bits[i] & b.Bits[i])
		union += bits.OnesCount8(a.Bits[i] | b.Bits[i])
	}
	if union == 0 {
		return 0, nil
	}
	return float64(intersection) / float64(union), nil
}

//Personal.AI order the ending
