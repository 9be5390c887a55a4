package gnn

import (
	"fmt"
	"math/rand"

	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
)

// ConvNet stacks graph convolutions, each followed by ReLU and dropout,
// then mean-pools and regresses with a linear head.
type ConvNet struct {
	base
	convs []*nn.GCNConv
}

// NewConvNet allocates the network.  Weights are zero until Initialize.
func NewConvNet(cfg ModelConfig, device nn.Device) (*ConvNet, error) {
	b, err := newBase(cfg, device)
	if err != nil {
		return nil, err
	}
	m := &ConvNet{base: b}
	in := cfg.InFeatures
	for i, out := range cfg.Hidden {
		m.convs = append(m.convs, nn.NewGCNConv(fmt.Sprintf("conv%d", i+1), in, out))
		in = out
	}
	return m, nil
}

// layers is the fixed initialisation order.
func (m *ConvNet) layers() []nn.Initializer {
	out := make([]nn.Initializer, 0, len(m.convs)+1)
	for _, c := range m.convs {
		out = append(out, c)
	}
	return append(out, m.head)
}

// Initialize implements nn.Initializer.
func (m *ConvNet) Initialize(rng *rand.Rand) {
	for _, l := range m.layers() {
		l.Initialize(rng)
	}
}

// Parameters implements nn.Module.
func (m *ConvNet) Parameters() []*nn.Tensor {
	var ps []*nn.Tensor
	for _, c := range m.convs {
		ps = append(ps, c.Parameters()...)
	}
	return append(ps, m.head.Parameters()...)
}

// Forward implements Model.
func (m *ConvNet) Forward(tp *nn.Tape, b *dataset.Batch) (*nn.Tensor, error) {
	if err := m.check(b); err != nil {
		return nil, err
	}
	h := nn.NewTensor(b.X)
	for _, c := range m.convs {
		h = m.activate(tp, c.Forward(tp, h, b.Src, b.Dst))
	}
	return m.readout(tp, h, b), nil
}

var _ Model = (*ConvNet)(nil)

//Personal.AI order the ending
