package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adam is the Adam optimiser with L2 weight decay added to the gradient
// before the moment update.
type Adam struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Eps         float64
	WeightDecay float64

	params []*Tensor
	m, v   []*mat.Dense
	step   int
}

// NewAdam builds an optimiser over params with β=(0.9, 0.999), ε=1e-8.
func NewAdam(params []*Tensor, lr, weightDecay float64) *Adam {
	a := &Adam{
		LR:          lr,
		Beta1:       0.9,
		Beta2:       0.999,
		Eps:         1e-8,
		WeightDecay: weightDecay,
		params:      params,
		m:           make([]*mat.Dense, len(params)),
		v:           make([]*mat.Dense, len(params)),
	}
	for i, p := range params {
		r, c := p.Dims()
		a.m[i] = mat.NewDense(r, c, nil)
		a.v[i] = mat.NewDense(r, c, nil)
	}
	return a
}

// ZeroGrad clears every parameter gradient.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

// Steps returns the number of updates applied so far.
func (a *Adam) Steps() int { return a.step }

// Step applies one update.  Parameters without a gradient are skipped.
func (a *Adam) Step() {
	a.step++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.step))

	for i, p := range a.params {
		if p.Grad == nil {
			continue
		}
		r, c := p.Dims()
		for row := 0; row < r; row++ {
			w := p.Value.RawRowView(row)
			g := p.Grad.RawRowView(row)
			m := a.m[i].RawRowView(row)
			v := a.v[i].RawRowView(row)
			for j := 0; j < c; j++ {
				grad := g[j] + a.WeightDecay*w[j]
				m[j] = a.Beta1*m[j] + (1-a.Beta1)*grad
				v[j] = a.Beta2*v[j] + (1-a.Beta2)*grad*grad
				mHat := m[j] / bc1
				vHat := v[j] / bc2
				w[j] -= a.LR * mHat / (math.Sqrt(vHat) + a.Eps)
			}
		}
	}
}

//Personal.AI order the ending
