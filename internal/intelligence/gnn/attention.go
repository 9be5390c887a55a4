package gnn

import (
	"fmt"
	"math/rand"

	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
)

// AttentionNet stacks multi-head graph attention layers with concatenated
// heads, each followed by ReLU and dropout, then mean-pools and regresses
// with a linear head.
type AttentionNet struct {
	base
	atts []*nn.GATConv
}

// NewAttentionNet allocates the network.  Weights are zero until Initialize.
func NewAttentionNet(cfg ModelConfig, device nn.Device) (*AttentionNet, error) {
	b, err := newBase(cfg, device)
	if err != nil {
		return nil, err
	}
	m := &AttentionNet{base: b}
	in := cfg.InFeatures
	for i, out := range cfg.Hidden {
		l := nn.NewGATConv(fmt.Sprintf("att%d", i+1), in, out, cfg.Heads[i])
		m.atts = append(m.atts, l)
		in = l.OutDim()
	}
	return m, nil
}

func (m *AttentionNet) layers() []nn.Initializer {
	out := make([]nn.Initializer, 0, len(m.atts)+1)
	for _, a := range m.atts {
		out = append(out, a)
	}
	return append(out, m.head)
}

// Initialize implements nn.Initializer.
func (m *AttentionNet) Initialize(rng *rand.Rand) {
	for _, l := range m.layers() {
		l.Initialize(rng)
	}
}

// Parameters implements nn.Module.
func (m *AttentionNet) Parameters() []*nn.Tensor {
	var ps []*nn.Tensor
	for _, a := range m.atts {
		ps = append(ps, a.Parameters()...)
	}
	return append(ps, m.head.Parameters()...)
}

// Forward implements Model.
func (m *AttentionNet) Forward(tp *nn.Tape, b *dataset.Batch) (*nn.Tensor, error) {
	if err := m.check(b); err != nil {
		return nil, err
	}
	h := nn.NewTensor(b.X)
	for _, a := range m.atts {
		h = m.activate(tp, a.Forward(tp, h, b.Src, b.Dst))
	}
	return m.readout(tp, h, b), nil
}

// Layers describes the attention stack, e.g. for the CLI.
func (m *AttentionNet) Layers() []string {
	out := make([]string, len(m.atts))
	for i, a := range m.atts {
		out[i] = a.String()
	}
	return out
}

var _ Model = (*AttentionNet)(nil)

//Personal.AI order the ending
