package nn

import (
	"fmt"
	"math"
	"math/rand"
)

// Initializer is implemented by every layer that owns initialisable weights.
// Models call it on each entry of their fixed layer list.
type Initializer interface {
	Initialize(rng *rand.Rand)
}

// Module exposes trainable parameters.
type Module interface {
	Parameters() []*Tensor
}

// XavierUniform fills t with U(-a, a), a = √(6/(rows+cols)).
func XavierUniform(t *Tensor, rng *rand.Rand) {
	r, c := t.Dims()
	limit := math.Sqrt(6 / float64(r+c))
	t.Value.Apply(func(_, _ int, _ float64) float64 {
		return (rng.Float64()*2 - 1) * limit
	}, t.Value)
}

// ─────────────────────────────────────────────────────────────────────────────
// Linear
// ─────────────────────────────────────────────────────────────────────────────

// Linear computes xW + b.
type Linear struct {
	In, Out int
	W, B    *Tensor
}

// NewLinear allocates an in→out layer.  Call Initialize before training.
func NewLinear(name string, in, out int) *Linear {
	return &Linear{
		In:  in,
		Out: out,
		W:   NewParam(name+".weight", in, out),
		B:   NewParam(name+".bias", 1, out),
	}
}

// Initialize implements Initializer.
func (l *Linear) Initialize(rng *rand.Rand) {
	XavierUniform(l.W, rng)
	l.B.Value.Zero()
}

// Parameters implements Module.
func (l *Linear) Parameters() []*Tensor { return []*Tensor{l.W, l.B} }

// Forward applies the layer.
func (l *Linear) Forward(tp *Tape, x *Tensor) *Tensor {
	return AddBias(tp, MatMul(tp, x, l.W), l.B)
}

// ─────────────────────────────────────────────────────────────────────────────
// GCNConv
// ─────────────────────────────────────────────────────────────────────────────

// GCNConv is a graph convolution: normalised aggregation of xW over each
// node's in-neighbours and itself, plus a bias.
type GCNConv struct {
	In, Out int
	W, B    *Tensor
}

// NewGCNConv allocates an in→out convolution.
func NewGCNConv(name string, in, out int) *GCNConv {
	return &GCNConv{
		In:  in,
		Out: out,
		W:   NewParam(name+".weight", in, out),
		B:   NewParam(name+".bias", 1, out),
	}
}

// Initialize implements Initializer.
func (l *GCNConv) Initialize(rng *rand.Rand) {
	XavierUniform(l.W, rng)
	l.B.Value.Zero()
}

// Parameters implements Module.
func (l *GCNConv) Parameters() []*Tensor { return []*Tensor{l.W, l.B} }

// Forward applies the convolution over edges src→dst.
func (l *GCNConv) Forward(tp *Tape, x *Tensor, src, dst []int) *Tensor {
	return AddBias(tp, GCNPropagate(tp, MatMul(tp, x, l.W), src, dst), l.B)
}

// ─────────────────────────────────────────────────────────────────────────────
// GATConv
// ─────────────────────────────────────────────────────────────────────────────

// DefaultNegativeSlope is the LeakyReLU slope applied to attention logits.
const DefaultNegativeSlope = 0.2

// GATConv is multi-head graph attention with concatenated heads.  The output
// width is Heads·Out.
type GATConv struct {
	In, Out, Heads int
	NegativeSlope  float64

	W              *Tensor // In × Heads·Out
	AttSrc, AttDst *Tensor // Heads × Out
	B              *Tensor // 1 × Heads·Out
}

// NewGATConv allocates an attention layer.
func NewGATConv(name string, in, out, heads int) *GATConv {
	return &GATConv{
		In:            in,
		Out:           out,
		Heads:         heads,
		NegativeSlope: DefaultNegativeSlope,
		W:             NewParam(name+".weight", in, heads*out),
		AttSrc:        NewParam(name+".att_src", heads, out),
		AttDst:        NewParam(name+".att_dst", heads, out),
		B:             NewParam(name+".bias", 1, heads*out),
	}
}

// OutDim returns Heads·Out.
func (l *GATConv) OutDim() int { return l.Heads * l.Out }

// Initialize implements Initializer.
func (l *GATConv) Initialize(rng *rand.Rand) {
	XavierUniform(l.W, rng)
	XavierUniform(l.AttSrc, rng)
	XavierUniform(l.AttDst, rng)
	l.B.Value.Zero()
}

// Parameters implements Module.
func (l *GATConv) Parameters() []*Tensor { return []*Tensor{l.W, l.AttSrc, l.AttDst, l.B} }

// Forward applies attention over edges src→dst.
func (l *GATConv) Forward(tp *Tape, x *Tensor, src, dst []int) *Tensor {
	h := MatMul(tp, x, l.W)
	return AddBias(tp, GATAttend(tp, h, l.AttSrc, l.AttDst, src, dst, l.Heads, l.Out, l.NegativeSlope), l.B)
}

// String describes the layer shape.
func (l *GATConv) String() string {
	return fmt.Sprintf("GATConv(%d, %d, heads=%d)", l.In, l.Out, l.Heads)
}

// compile-time interface checks
var (
	_ Initializer = (*Linear)(nil)
	_ Initializer = (*GCNConv)(nil)
	_ Initializer = (*GATConv)(nil)
	_ Module      = (*Linear)(nil)
	_ Module      = (*GCNConv)(nil)
	_ Module      = (*GATConv)(nil)
)

//Personal.AI order the ending
