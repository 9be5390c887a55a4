package gnn

import (
	"fmt"
	"math/rand"

	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Model is a graph-level regressor over collated batches.
type Model interface {
	nn.Module
	nn.Initializer

	// Name is the report label.
	Name() string
	Config() ModelConfig
	Device() nn.Device

	// Forward returns one prediction per graph as a NumGraphs×1 tensor.
	// A nil tape runs without gradient tracking.
	Forward(tp *nn.Tape, b *dataset.Batch) (*nn.Tensor, error)

	Train()
	Eval()
	Training() bool
}

// ModelState reports the train/eval mode.
type ModelState int

const (
	StateEval ModelState = iota
	StateTrain
)

// String returns the state label.
func (s ModelState) String() string {
	switch s {
	case StateTrain:
		return "train"
	case StateEval:
		return "eval"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// base carries what both architectures share: configuration, device,
// mode, the dropout source and the regression head.
type base struct {
	cfg    ModelConfig
	device nn.Device
	state  ModelState
	rng    *rand.Rand
	head   *nn.Linear
}

func newBase(cfg ModelConfig, device nn.Device) (base, error) {
	if err := cfg.Validate(); err != nil {
		return base{}, err
	}
	if err := device.Validate(); err != nil {
		return base{}, err
	}
	return base{
		cfg:    cfg,
		device: device,
		state:  StateTrain,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		head:   nn.NewLinear("head", cfg.OutFeatures(), 1),
	}, nil
}

func (b *base) Name() string        { return b.cfg.Kind.DisplayName() }
func (b *base) Config() ModelConfig { return b.cfg }
func (b *base) Device() nn.Device   { return b.device }
func (b *base) Train()              { b.state = StateTrain }
func (b *base) Eval()               { b.state = StateEval }
func (b *base) Training() bool      { return b.state == StateTrain }

// check validates a batch against the model before a forward pass.
func (b *base) check(batch *dataset.Batch) error {
	if batch == nil || batch.NumGraphs == 0 {
		return errors.New(errors.ErrCodeTrainingShapeMismatch, "empty batch")
	}
	if err := nn.CheckSameDevice(b.device, batch.Device); err != nil {
		return err
	}
	if _, c := batch.X.Dims(); c != b.cfg.InFeatures {
		return errors.Newf(errors.ErrCodeTrainingShapeMismatch,
			"batch has %d node features, model expects %d", c, b.cfg.InFeatures)
	}
	return nil
}

// readout mean-pools node embeddings per graph and applies the head.
func (b *base) readout(tp *nn.Tape, h *nn.Tensor, batch *dataset.Batch) *nn.Tensor {
	pooled := nn.MeanPool(tp, h, batch.Assign, batch.NumGraphs)
	return b.head.Forward(tp, pooled)
}

// activate applies ReLU then dropout in training mode.
func (b *base) activate(tp *nn.Tape, h *nn.Tensor) *nn.Tensor {
	return nn.Dropout(tp, nn.ReLU(tp, h), b.cfg.Dropout, b.Training(), b.rng)
}

// New builds and initialises a model from cfg on device.  Parameters are
// drawn from a source seeded with cfg.Seed.
func New(cfg ModelConfig, device nn.Device) (Model, error) {
	var (
		m   Model
		err error
	)
	switch cfg.Kind {
	case KindConv:
		m, err = NewConvNet(cfg, device)
	case KindAttention:
		m, err = NewAttentionNet(cfg, device)
	default:
		return nil, errors.Newf(errors.ErrCodeModelUnknownKind, "unknown model kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	m.Initialize(rand.New(rand.NewSource(cfg.Seed)))
	return m, nil
}

// Predict runs m in eval mode without gradient tracking and returns one
// value per graph.  The previous mode is restored.
func Predict(m Model, b *dataset.Batch) ([]float64, error) {
	if m.Training() {
		m.Eval()
		defer m.Train()
	}
	out, err := m.Forward(nil, b)
	if err != nil {
		return nil, err
	}
	r, _ := out.Dims()
	preds := make([]float64, r)
	for i := range preds {
		preds[i] = out.Value.At(i, 0)
	}
	return preds, nil
}

// NumParameters counts scalar parameters.
func NumParameters(m nn.Module) int {
	n := 0
	for _, p := range m.Parameters() {
		r, c := p.Dims()
		n += r * c
	}
	return n
}

//Personal.AI order the ending
