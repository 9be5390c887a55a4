package gnn

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

func testBatch(t *testing.T, smiles ...string) *dataset.Batch {
	t.Helper()
	f := featurize.New(featurize.DefaultOptions(), logging.NewNopLogger())
	gs := make([]*featurize.Graph, len(smiles))
	for i, s := range smiles {
		g, err := f.Graph(s)
		require.NoError(t, err)
		gs[i] = g.WithTarget(float64(i))
	}
	b, err := dataset.Collate(gs, nn.CPU)
	require.NoError(t, err)
	return b
}

func allKinds() []ModelConfig {
	return []ModelConfig{DefaultConvConfig(), DefaultAttentionConfig()}
}

func TestDefaultConfigs(t *testing.T) {
	conv := DefaultConvConfig()
	require.NoError(t, conv.Validate())
	assert.Equal(t, 16, conv.OutFeatures())
	assert.Equal(t, 0.5, conv.Dropout)

	att := DefaultAttentionConfig()
	require.NoError(t, att.Validate())
	assert.Equal(t, 16, att.OutFeatures())
	assert.Equal(t, 0.3, att.Dropout)

	_, err := DefaultConfig("mlp")
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelUnknownKind))
}

func TestModelConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ModelConfig)
		code   errors.ErrorCode
	}{
		{"unknown kind", func(c *ModelConfig) { c.Kind = "mlp" }, errors.ErrCodeModelUnknownKind},
		{"no inputs", func(c *ModelConfig) { c.InFeatures = 0 }, errors.ErrCodeModelConfigInvalid},
		{"no layers", func(c *ModelConfig) { c.Hidden = nil }, errors.ErrCodeModelConfigInvalid},
		{"zero width", func(c *ModelConfig) { c.Hidden = []int{32, 0, 8} }, errors.ErrCodeModelConfigInvalid},
		{"heads length", func(c *ModelConfig) { c.Heads = []int{1} }, errors.ErrCodeModelConfigInvalid},
		{"zero heads", func(c *ModelConfig) { c.Heads = []int{1, 0, 2} }, errors.ErrCodeModelConfigInvalid},
		{"dropout one", func(c *ModelConfig) { c.Dropout = 1 }, errors.ErrCodeModelConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAttentionConfig()
			tt.mutate(&cfg)
			assert.True(t, errors.IsCode(cfg.Validate(), tt.code))
		})
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"conv": KindConv, "gcn": KindConv, "attention": KindAttention, "gat": KindAttention} {
		k, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, k)
	}
	_, err := ParseKind("svr")
	assert.Error(t, err)
	assert.Equal(t, "Conv. GNN", KindConv.DisplayName())
	assert.Equal(t, "Atten. GNN", KindAttention.DisplayName())
}

func TestNumParameters(t *testing.T) {
	conv, err := New(DefaultConvConfig(), nn.CPU)
	require.NoError(t, err)
	want := (8*32 + 32) + (32*64 + 64) + (64*16 + 16) + (16 + 1)
	assert.Equal(t, want, NumParameters(conv))

	att, err := New(DefaultAttentionConfig(), nn.CPU)
	require.NoError(t, err)
	// W + att_src + att_dst + bias per layer
	l1 := 8*32 + 32 + 32 + 32
	l2 := 32*64 + 64 + 64 + 64
	l3 := 64*16 + 16 + 16 + 16
	assert.Equal(t, l1+l2+l3+16+1, NumParameters(att))
}

func TestForward_Shape(t *testing.T) {
	b := testBatch(t, "CCO", "c1ccccc1", "CC(=O)O")
	for _, cfg := range allKinds() {
		m, err := New(cfg, nn.CPU)
		require.NoError(t, err)
		out, err := m.Forward(nn.NewTape(), b)
		require.NoError(t, err, cfg.Kind)
		r, c := out.Dims()
		assert.Equal(t, 3, r)
		assert.Equal(t, 1, c)
	}
}

func TestEval_IsIdempotent(t *testing.T) {
	b := testBatch(t, "CCO", "c1ccccc1O", "CCCl")
	for _, cfg := range allKinds() {
		m, err := New(cfg, nn.CPU)
		require.NoError(t, err)
		m.Eval()
		first, err := Predict(m, b)
		require.NoError(t, err)
		second, err := Predict(m, b)
		require.NoError(t, err)
		assert.Equal(t, first, second, cfg.Kind)
		assert.False(t, m.Training())
	}
}

func TestPredict_RestoresTrainingMode(t *testing.T) {
	m, err := New(DefaultConvConfig(), nn.CPU)
	require.NoError(t, err)
	require.True(t, m.Training())
	_, err = Predict(m, testBatch(t, "CCO"))
	require.NoError(t, err)
	assert.True(t, m.Training())
}

func TestNew_SeedDeterminesWeights(t *testing.T) {
	b := testBatch(t, "CCO", "CCN")
	cfg := DefaultAttentionConfig()
	cfg.Seed = 11
	m1, err := New(cfg, nn.CPU)
	require.NoError(t, err)
	m2, err := New(cfg, nn.CPU)
	require.NoError(t, err)
	p1, err := Predict(m1, b)
	require.NoError(t, err)
	p2, err := Predict(m2, b)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestInitialize_XavierWeightsZeroBiases(t *testing.T) {
	m, err := New(DefaultConvConfig(), nn.CPU)
	require.NoError(t, err)
	for _, p := range m.Parameters() {
		r, c := p.Dims()
		nonzero := false
		for i := 0; i < r; i++ {
			for _, v := range p.Value.RawRowView(i) {
				if v != 0 {
					nonzero = true
				}
			}
		}
		if strings.HasSuffix(p.Name, ".bias") {
			assert.False(t, nonzero, p.Name)
		} else {
			assert.True(t, nonzero, "%s (%dx%d)", p.Name, r, c)
		}
	}
}

func TestForward_Errors(t *testing.T) {
	m, err := New(DefaultConvConfig(), nn.CPU)
	require.NoError(t, err)

	b := testBatch(t, "CCO")
	b.Device = nn.Device("cuda")
	_, err = m.Forward(nil, b)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTrainingDeviceMismatch))

	_, err = m.Forward(nil, &dataset.Batch{Device: nn.CPU})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTrainingShapeMismatch))

	cfg := DefaultConvConfig()
	cfg.InFeatures = 5
	narrow, err := New(cfg, nn.CPU)
	require.NoError(t, err)
	_, err = narrow.Forward(nil, testBatch(t, "CCO"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeTrainingShapeMismatch))
}

func TestNew_RejectsBadDevice(t *testing.T) {
	_, err := New(DefaultConvConfig(), nn.Device("tpu"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDeviceUnsupported))
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	b := testBatch(t, "CCO", "c1ccccc1", "CC#N")
	for _, cfg := range allKinds() {
		cfg.Seed = 5
		m, err := New(cfg, nn.CPU)
		require.NoError(t, err)
		// perturb away from the seeded initialisation
		m.Parameters()[0].Value.Set(0, 0, 0.123)

		var buf bytes.Buffer
		require.NoError(t, SaveCheckpoint(&buf, m, featurize.DefaultOptions()))

		restored, err := LoadCheckpoint(&buf, nn.CPU)
		require.NoError(t, err)
		assert.False(t, restored.Training())
		assert.Equal(t, cfg.Kind, restored.Config().Kind)

		want, err := Predict(m, b)
		require.NoError(t, err)
		got, err := Predict(restored, b)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-12)
	}
}

func TestCheckpoint_Errors(t *testing.T) {
	m, err := New(DefaultConvConfig(), nn.CPU)
	require.NoError(t, err)

	ck := NewCheckpoint(m, featurize.DefaultOptions())
	delete(ck.Params, "head.weight")
	_, err = ck.Restore(nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelCheckpointFailed))

	ck = NewCheckpoint(m, featurize.DefaultOptions())
	ck.Version = 99
	_, err = ck.Restore(nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelCheckpointFailed))

	ck = NewCheckpoint(m, featurize.DefaultOptions())
	ck.Params["conv1.weight"] = ParamMatrix{Rows: 1, Cols: 1, Data: []float64{1}}
	_, err = ck.Restore(nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelCheckpointFailed))

	_, err = LoadCheckpoint(strings.NewReader("{"), nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelCheckpointFailed))

	_, err = LoadCheckpointFile("/nonexistent/model.json", nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelCheckpointFailed))
}

func TestCheckpoint_Featurizer(t *testing.T) {
	m, err := New(DefaultAttentionConfig(), nn.CPU)
	require.NoError(t, err)
	opts := featurize.Options{Radius: 2, NBits: 2048, SymmetricEdges: true}

	var buf bytes.Buffer
	require.NoError(t, SaveCheckpoint(&buf, m, opts))
	assert.Contains(t, buf.String(), `"featurizer":{"radius":2,"n_bits":2048,"symmetric_edges":true}`)

	ck, err := DecodeCheckpoint(&buf)
	require.NoError(t, err)
	assert.Equal(t, opts, ck.Featurizer)
	require.NoError(t, ck.CheckFeaturizer(opts))

	for _, other := range []featurize.Options{
		{Radius: 3, NBits: 2048, SymmetricEdges: true},
		{Radius: 2, NBits: 1024, SymmetricEdges: true},
		{Radius: 2, NBits: 2048, SymmetricEdges: false},
	} {
		err := ck.CheckFeaturizer(other)
		assert.True(t, errors.IsCode(err, errors.ErrCodeModelConfigInvalid), "%+v", other)
	}
}

func TestAttentionNet_Layers(t *testing.T) {
	m, err := NewAttentionNet(DefaultAttentionConfig(), nn.CPU)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"GATConv(8, 32, heads=1)",
		"GATConv(32, 32, heads=2)",
		"GATConv(64, 8, heads=2)",
	}, m.Layers())
}

func TestModelState_String(t *testing.T) {
	assert.Equal(t, "train", StateTrain.String())
	assert.Equal(t, "eval", StateEval.String())
}

//Personal.AI order the ending
