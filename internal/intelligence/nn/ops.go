package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MatMul returns a·b.
func MatMul(tp *Tape, a, b *Tensor) *Tensor {
	ar, _ := a.Dims()
	_, bc := b.Dims()
	v := mat.NewDense(ar, bc, nil)
	v.Mul(a.Value, b.Value)

	tracked := tp.tracks(a, b)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			if a.requiresGrad {
				var da mat.Dense
				da.Mul(out.Grad, b.Value.T())
				a.accumulate(&da)
			}
			if b.requiresGrad {
				var db mat.Dense
				db.Mul(a.Value.T(), out.Grad)
				b.accumulate(&db)
			}
		})
	}
	return out
}

// AddBias adds the 1×C row b to every row of x.
func AddBias(tp *Tape, x, b *Tensor) *Tensor {
	r, c := x.Dims()
	v := mat.NewDense(r, c, nil)
	brow := b.Value.RawRowView(0)
	for i := 0; i < r; i++ {
		xrow := x.Value.RawRowView(i)
		orow := v.RawRowView(i)
		for j := range orow {
			orow[j] = xrow[j] + brow[j]
		}
	}

	tracked := tp.tracks(x, b)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			if x.requiresGrad {
				x.accumulate(out.Grad)
			}
			if b.requiresGrad {
				db := mat.NewDense(1, c, nil)
				drow := db.RawRowView(0)
				for i := 0; i < r; i++ {
					for j, g := range out.Grad.RawRowView(i) {
						drow[j] += g
					}
				}
				b.accumulate(db)
			}
		})
	}
	return out
}

// Add returns a+b for equally shaped tensors.
func Add(tp *Tape, a, b *Tensor) *Tensor {
	r, c := a.Dims()
	v := mat.NewDense(r, c, nil)
	v.Add(a.Value, b.Value)

	tracked := tp.tracks(a, b)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			if a.requiresGrad {
				a.accumulate(out.Grad)
			}
			if b.requiresGrad {
				b.accumulate(out.Grad)
			}
		})
	}
	return out
}

// Scale returns k·x.
func Scale(tp *Tape, x *Tensor, k float64) *Tensor {
	r, c := x.Dims()
	v := mat.NewDense(r, c, nil)
	v.Scale(k, x.Value)

	tracked := tp.tracks(x)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			var dx mat.Dense
			dx.Scale(k, out.Grad)
			x.accumulate(&dx)
		})
	}
	return out
}

// ReLU returns max(x, 0).
func ReLU(tp *Tape, x *Tensor) *Tensor {
	r, c := x.Dims()
	v := mat.NewDense(r, c, nil)
	v.Apply(func(_, _ int, val float64) float64 { return math.Max(val, 0) }, x.Value)

	tracked := tp.tracks(x)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			dx := mat.NewDense(r, c, nil)
			dx.Apply(func(i, j int, g float64) float64 {
				if x.Value.At(i, j) > 0 {
					return g
				}
				return 0
			}, out.Grad)
			x.accumulate(dx)
		})
	}
	return out
}

// Dropout zeroes each element with probability p and scales survivors by
// 1/(1-p).  Outside training, or with p == 0, x is returned unchanged.
func Dropout(tp *Tape, x *Tensor, p float64, training bool, rng *rand.Rand) *Tensor {
	if !training || p <= 0 {
		return x
	}
	r, c := x.Dims()
	mask := mat.NewDense(r, c, nil)
	keep := 1 / (1 - p)
	mask.Apply(func(_, _ int, _ float64) float64 {
		if rng.Float64() < p {
			return 0
		}
		return keep
	}, mask)

	v := mat.NewDense(r, c, nil)
	v.MulElem(x.Value, mask)

	tracked := tp.tracks(x)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			var dx mat.Dense
			dx.MulElem(out.Grad, mask)
			x.accumulate(&dx)
		})
	}
	return out
}

// MeanPool averages the rows of x per graph.  assign maps each row to a
// graph index in [0, numGraphs).
func MeanPool(tp *Tape, x *Tensor, assign []int, numGraphs int) *Tensor {
	_, c := x.Dims()
	counts := make([]float64, numGraphs)
	for _, g := range assign {
		counts[g]++
	}
	v := mat.NewDense(numGraphs, c, nil)
	for i, g := range assign {
		orow := v.RawRowView(g)
		for j, val := range x.Value.RawRowView(i) {
			orow[j] += val / counts[g]
		}
	}

	tracked := tp.tracks(x)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			r, _ := x.Dims()
			dx := mat.NewDense(r, c, nil)
			for i, g := range assign {
				drow := dx.RawRowView(i)
				for j, gv := range out.Grad.RawRowView(g) {
					drow[j] = gv / counts[g]
				}
			}
			x.accumulate(dx)
		})
	}
	return out
}

// MeanSquaredError scores plain prediction slices of equal, non-zero length.
// It is the untracked counterpart of MSE.
func MeanSquaredError(pred, target []float64) float64 {
	d := floats.Distance(pred, target, 2)
	return d * d / float64(len(pred))
}

// MSE returns the mean squared error between the single-column pred and y.
func MSE(tp *Tape, pred *Tensor, y []float64) *Tensor {
	n := len(y)
	var sum float64
	for i, t := range y {
		d := pred.Value.At(i, 0) - t
		sum += d * d
	}
	v := mat.NewDense(1, 1, []float64{sum / float64(n)})

	tracked := tp.tracks(pred)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			g := out.Grad.At(0, 0)
			dp := mat.NewDense(n, 1, nil)
			for i, t := range y {
				dp.Set(i, 0, 2*(pred.Value.At(i, 0)-t)/float64(n)*g)
			}
			pred.accumulate(dp)
		})
	}
	return out
}

// AbsSum returns Σ|θ| over every element of params, the L1 penalty.
func AbsSum(tp *Tape, params []*Tensor) *Tensor {
	var sum float64
	for _, p := range params {
		r, c := p.Dims()
		for i := 0; i < r; i++ {
			for _, val := range p.Value.RawRowView(i)[:c] {
				sum += math.Abs(val)
			}
		}
	}
	v := mat.NewDense(1, 1, []float64{sum})

	tracked := tp.tracks(params...)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			g := out.Grad.At(0, 0)
			for _, p := range params {
				if !p.requiresGrad {
					continue
				}
				r, c := p.Dims()
				dp := mat.NewDense(r, c, nil)
				dp.Apply(func(i, j int, _ float64) float64 {
					val := p.Value.At(i, j)
					switch {
					case val > 0:
						return g
					case val < 0:
						return -g
					default:
						return 0
					}
				}, dp)
				p.accumulate(dp)
			}
		})
	}
	return out
}

//Personal.AI order the ending
