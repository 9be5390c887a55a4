package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomConst(rng *rand.Rand, r, c int) *Tensor {
	v := mat.NewDense(r, c, nil)
	v.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() }, v)
	return NewTensor(v)
}

func randomParam(rng *rand.Rand, name string, r, c int) *Tensor {
	p := NewParam(name, r, c)
	p.Value.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() * 0.5 }, p.Value)
	return p
}

// checkGradients compares tape gradients with central finite differences.
func checkGradients(t *testing.T, params []*Tensor, forward func(tp *Tape) *Tensor) {
	t.Helper()
	for _, p := range params {
		p.Grad = nil
	}
	tp := NewTape()
	loss := forward(tp)
	require.NoError(t, tp.Backward(loss))
	assert.Equal(t, 0, tp.Len())

	const h = 1e-6
	for _, p := range params {
		require.NotNil(t, p.Grad, p.Name)
		r, c := p.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				orig := p.Value.At(i, j)
				p.Value.Set(i, j, orig+h)
				plus := forward(nil).Scalar()
				p.Value.Set(i, j, orig-h)
				minus := forward(nil).Scalar()
				p.Value.Set(i, j, orig)

				numeric := (plus - minus) / (2 * h)
				tol := 1e-4 * math.Max(1, math.Abs(numeric))
				assert.InDelta(t, numeric, p.Grad.At(i, j), tol, "%s[%d,%d]", p.Name, i, j)
			}
		}
	}
}

func TestGradients_LinearMSE(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := randomConst(rng, 4, 3)
	lin := NewLinear("lin", 3, 1)
	lin.Initialize(rng)
	lin.B.Value.Set(0, 0, 0.3)
	y := []float64{0.5, -1, 2, 0}

	checkGradients(t, lin.Parameters(), func(tp *Tape) *Tensor {
		return MSE(tp, lin.Forward(tp, x), y)
	})
}

func TestGradients_GCN(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x := randomConst(rng, 5, 3)
	src := []int{0, 1, 3, 4}
	dst := []int{1, 2, 4, 3}
	assign := []int{0, 0, 0, 1, 1}

	conv := NewGCNConv("conv", 3, 2)
	conv.Initialize(rng)
	conv.B.Value.Set(0, 1, 0.1)
	head := NewLinear("head", 2, 1)
	head.Initialize(rng)
	y := []float64{1, -1}

	params := append(conv.Parameters(), head.Parameters()...)
	checkGradients(t, params, func(tp *Tape) *Tensor {
		h := conv.Forward(tp, x, src, dst)
		return MSE(tp, head.Forward(tp, MeanPool(tp, h, assign, 2)), y)
	})
}

func TestGradients_GAT(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := randomConst(rng, 5, 3)
	src := []int{0, 1, 2, 3, 1}
	dst := []int{1, 2, 0, 4, 0}
	assign := []int{0, 0, 0, 1, 1}

	att := NewGATConv("gat", 3, 2, 2)
	params := []*Tensor{
		randomParam(rng, "w", 3, 4),
		randomParam(rng, "att_src", 2, 2),
		randomParam(rng, "att_dst", 2, 2),
		randomParam(rng, "bias", 1, 4),
	}
	att.W, att.AttSrc, att.AttDst, att.B = params[0], params[1], params[2], params[3]
	head := NewLinear("head", 4, 1)
	head.Initialize(rng)
	y := []float64{0.3, 0.7}

	all := append(params, head.Parameters()...)
	checkGradients(t, all, func(tp *Tape) *Tensor {
		h := att.Forward(tp, x, src, dst)
		return MSE(tp, head.Forward(tp, MeanPool(tp, h, assign, 2)), y)
	})
}

func TestGradients_L1Penalty(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := randomParam(rng, "a", 2, 3)
	b := randomParam(rng, "b", 1, 2)
	x := randomConst(rng, 3, 2)
	y := []float64{1, 2}

	checkGradients(t, []*Tensor{a, b}, func(tp *Tape) *Tensor {
		pred := AddBias(tp, MatMul(tp, a, x), b)
		col := MatMul(tp, pred, NewTensor(mat.NewDense(2, 1, []float64{1, 1})))
		return Add(tp, MSE(tp, col, y), Scale(tp, AbsSum(tp, []*Tensor{a, b}), 0.01))
	})
}

func TestGradients_ReLU(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	w := randomParam(rng, "w", 3, 1)
	x := randomConst(rng, 6, 3)
	y := []float64{1, 0, 1, 0, 1, 0}
	checkGradients(t, []*Tensor{w}, func(tp *Tape) *Tensor {
		return MSE(tp, ReLU(tp, MatMul(tp, x, w)), y)
	})
}

func TestMeanPool_ConstantInvariance(t *testing.T) {
	for _, sizes := range [][]int{{1}, {3}, {2, 7}, {5, 1, 4}} {
		var assign []int
		for g, n := range sizes {
			for i := 0; i < n; i++ {
				assign = append(assign, g)
			}
		}
		x := mat.NewDense(len(assign), 2, nil)
		x.Apply(func(_, j int, _ float64) float64 { return 4.25 + float64(j) }, x)

		out := MeanPool(nil, NewTensor(x), assign, len(sizes))
		for g := range sizes {
			assert.InDelta(t, 4.25, out.Value.At(g, 0), 1e-12)
			assert.InDelta(t, 5.25, out.Value.At(g, 1), 1e-12)
		}
	}
}

func TestGATAttend_ConstantRowsPassThrough(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	h := mat.NewDense(4, 4, nil)
	h.Apply(func(_, j int, _ float64) float64 { return float64(j + 1) }, h)
	attSrc := randomParam(rng, "s", 2, 2)
	attDst := randomParam(rng, "d", 2, 2)

	out := GATAttend(nil, NewTensor(h), attSrc, attDst, []int{0, 1, 2}, []int{1, 2, 3}, 2, 2, 0.2)
	assert.True(t, mat.EqualApprox(h, out.Value, 1e-12))
}

func TestGCNPropagate_IsolatedNodeKeepsFeatures(t *testing.T) {
	h := mat.NewDense(3, 1, []float64{2, 4, 8})
	out := GCNPropagate(nil, NewTensor(h), []int{0}, []int{1})
	assert.InDelta(t, 2.0, out.Value.At(0, 0), 1e-12)
	// node 1: 4/2 + 2/√(1·2)
	assert.InDelta(t, 2+2/math.Sqrt2, out.Value.At(1, 0), 1e-12)
	assert.InDelta(t, 8.0, out.Value.At(2, 0), 1e-12)
}

func TestDropout(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := NewTensor(mat.NewDense(50, 4, nil))
	x.Value.Apply(func(_, _ int, _ float64) float64 { return 1 }, x.Value)

	assert.Same(t, x, Dropout(nil, x, 0.5, false, rng))
	assert.Same(t, x, Dropout(nil, x, 0, true, rng))

	out := Dropout(nil, x, 0.5, true, rng)
	zeros, twos := 0, 0
	r, c := out.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			switch out.Value.At(i, j) {
			case 0:
				zeros++
			case 2:
				twos++
			}
		}
	}
	assert.Equal(t, r*c, zeros+twos)
	assert.Greater(t, zeros, 0)
	assert.Greater(t, twos, 0)
}

func TestMeanSquaredError_MatchesTensorLoss(t *testing.T) {
	pred := []float64{1, 2, -0.5}
	target := []float64{0, 4, -0.5}
	assert.InDelta(t, 5.0/3.0, MeanSquaredError(pred, target), 1e-12)

	loss := MSE(nil, NewTensor(mat.NewDense(3, 1, pred)), target)
	assert.InDelta(t, loss.Scalar(), MeanSquaredError(pred, target), 1e-12)
}

func TestTape_NilTapeRecordsNothing(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	lin := NewLinear("lin", 2, 1)
	lin.Initialize(rng)
	out := lin.Forward(nil, randomConst(rng, 3, 2))
	assert.False(t, out.RequiresGrad())
	assert.Nil(t, lin.W.Grad)
}

func TestTape_BackwardRequiresScalar(t *testing.T) {
	tp := NewTape()
	p := NewParam("p", 2, 2)
	out := Scale(tp, p, 2)
	assert.Error(t, tp.Backward(out))

	assert.Error(t, NewTape().Backward(NewTensor(mat.NewDense(1, 1, nil))))
}

//Personal.AI order the ending
