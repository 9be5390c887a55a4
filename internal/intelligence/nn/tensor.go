// Package nn is a small reverse-mode autodiff engine over gonum matrices with
// the layers the benchmark's graph networks need: linear, graph convolution
// and graph attention, plus dropout, mean pooling, losses and Adam.
//
// A forward pass records one backward closure per operation on a Tape.
// Passing a nil *Tape disables gradient tracking entirely, which is how
// evaluation runs.
package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Tensor is a matrix value with an optional accumulated gradient.
type Tensor struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense

	requiresGrad bool
}

// NewTensor wraps v as a constant.
func NewTensor(v *mat.Dense) *Tensor {
	return &Tensor{Value: v}
}

// NewParam allocates a zero r×c trainable parameter.
func NewParam(name string, r, c int) *Tensor {
	return &Tensor{Name: name, Value: mat.NewDense(r, c, nil), requiresGrad: true}
}

// Dims returns the value's shape.
func (t *Tensor) Dims() (int, int) { return t.Value.Dims() }

// RequiresGrad reports whether gradients flow into t.
func (t *Tensor) RequiresGrad() bool { return t.requiresGrad }

// Scalar returns the single element of a 1×1 tensor.
func (t *Tensor) Scalar() float64 { return t.Value.At(0, 0) }

// ZeroGrad drops the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	if t.Grad != nil {
		t.Grad.Zero()
	}
}

func (t *Tensor) accumulate(g mat.Matrix) {
	if t.Grad == nil {
		r, c := t.Value.Dims()
		t.Grad = mat.NewDense(r, c, nil)
	}
	t.Grad.Add(t.Grad, g)
}

// Tape records backward closures in execution order.
type Tape struct {
	ops []func()
}

// NewTape returns an empty tape.
func NewTape() *Tape { return &Tape{} }

// Len returns the number of recorded operations.
func (tp *Tape) Len() int {
	if tp == nil {
		return 0
	}
	return len(tp.ops)
}

func (tp *Tape) record(fn func()) {
	tp.ops = append(tp.ops, fn)
}

// tracks reports whether an op producing from inputs must be recorded.
func (tp *Tape) tracks(inputs ...*Tensor) bool {
	if tp == nil {
		return false
	}
	for _, in := range inputs {
		if in.requiresGrad {
			return true
		}
	}
	return false
}

// Backward seeds loss with gradient 1, runs the recorded closures in reverse
// and clears the tape.
func (tp *Tape) Backward(loss *Tensor) error {
	if r, c := loss.Dims(); r != 1 || c != 1 {
		return errors.Newf(errors.ErrCodeTrainingShapeMismatch, "backward needs a scalar loss, got %dx%d", r, c)
	}
	if !loss.requiresGrad {
		return errors.New(errors.ErrCodeTrainingShapeMismatch, "loss does not depend on any parameter")
	}
	loss.Grad = mat.NewDense(1, 1, []float64{1})
	for i := len(tp.ops) - 1; i >= 0; i-- {
		tp.ops[i]()
	}
	tp.ops = tp.ops[:0]
	return nil
}

// newResult builds an op output, marking it trainable when recorded.
func newResult(v *mat.Dense, tracked bool) *Tensor {
	return &Tensor{Value: v, requiresGrad: tracked}
}

//Personal.AI order the ending
