package prediction

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/gnn"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/internal/intelligence/reporting"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

func newModels(t *testing.T) map[gnn.Kind]gnn.Model {
	t.Helper()
	conv, err := gnn.New(gnn.DefaultConvConfig(), nn.CPU)
	require.NoError(t, err)
	att, err := gnn.New(gnn.DefaultAttentionConfig(), nn.CPU)
	require.NoError(t, err)
	return map[gnn.Kind]gnn.Model{gnn.KindConv: conv, gnn.KindAttention: att}
}

func newTestService(t *testing.T, maxBatch int) Service {
	t.Helper()
	svc, err := NewService(newModels(t), featurize.New(featurize.DefaultOptions(), nil), maxBatch, nil, logging.NewNopLogger())
	require.NoError(t, err)
	return svc
}

func TestPredict_MixedBatch(t *testing.T) {
	svc := newTestService(t, 0)
	res, err := svc.Predict(context.Background(), &PredictInput{
		Model:  "conv",
		SMILES: []string{"CCO", "C", "not-a-smiles", "c1ccccc1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Conv. GNN", res.Model)
	require.Len(t, res.Items, 4)

	assert.NotNil(t, res.Items[0].LogS)
	assert.Empty(t, res.Items[0].Error)

	assert.Nil(t, res.Items[1].LogS)
	assert.Equal(t, string(errors.ErrCodeMoleculeDegenerateGraph), res.Items[1].Code)

	assert.Nil(t, res.Items[2].LogS)
	assert.Equal(t, string(errors.ErrCodeMoleculeInvalidSMILES), res.Items[2].Code)

	assert.NotNil(t, res.Items[3].LogS)
}

func TestPredict_MatchesSingleMoleculeInference(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	batch, err := svc.Predict(ctx, &PredictInput{Model: "gat", SMILES: []string{"CCO", "CC(=O)O"}})
	require.NoError(t, err)
	single, err := svc.Predict(ctx, &PredictInput{Model: "attention", SMILES: []string{"CC(=O)O"}})
	require.NoError(t, err)

	assert.InDelta(t, *single.Items[0].LogS, *batch.Items[1].LogS, 1e-9)
}

func TestPredict_Errors(t *testing.T) {
	svc := newTestService(t, 2)
	ctx := context.Background()

	_, err := svc.Predict(ctx, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = svc.Predict(ctx, &PredictInput{Model: "conv", SMILES: []string{"C", "CC", "CCC"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = svc.Predict(ctx, &PredictInput{Model: "transformer", SMILES: []string{"CC"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelUnknownKind))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Predict(canceled, &PredictInput{Model: "conv", SMILES: []string{"CC"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeCanceled))
}

func TestSetMaxBatch(t *testing.T) {
	svc := newTestService(t, 1)
	ctx := context.Background()
	in := &PredictInput{Model: "conv", SMILES: []string{"CC", "CCC"}}

	_, err := svc.Predict(ctx, in)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	svc.SetMaxBatch(2)
	_, err = svc.Predict(ctx, in)
	assert.NoError(t, err)

	svc.SetMaxBatch(0)
	_, err = svc.Predict(ctx, in)
	assert.NoError(t, err)
}

func TestPredict_ModelNotLoaded(t *testing.T) {
	models := newModels(t)
	delete(models, gnn.KindAttention)
	svc, err := NewService(models, featurize.New(featurize.DefaultOptions(), nil), 0, nil, nil)
	require.NoError(t, err)

	_, err = svc.Predict(context.Background(), &PredictInput{Model: "gat", SMILES: []string{"CC"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestPredict_Concurrent(t *testing.T) {
	svc := newTestService(t, 0)
	want, err := svc.Predict(context.Background(), &PredictInput{Model: "conv", SMILES: []string{"c1ccccc1O"}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Predict(context.Background(), &PredictInput{Model: "conv", SMILES: []string{"c1ccccc1O"}})
			if assert.NoError(t, err) {
				assert.InDelta(t, *want.Items[0].LogS, *got.Items[0].LogS, 1e-12)
			}
		}()
	}
	wg.Wait()
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, featurize.New(featurize.DefaultOptions(), nil), 0, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	_, err = NewService(newModels(t), nil, 0, nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestModels_Sorted(t *testing.T) {
	infos := newTestService(t, 0).Models()
	require.Len(t, infos, 2)
	assert.Equal(t, gnn.KindAttention, infos[0].Kind)
	assert.Equal(t, gnn.KindConv, infos[1].Kind)
	assert.Positive(t, infos[1].Parameters)
}

type mapStore map[string][]byte

func (m mapStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "missing")
	}
	return data, nil
}

func TestLoadModels(t *testing.T) {
	store := mapStore{}
	for kind, m := range newModels(t) {
		var buf bytes.Buffer
		require.NoError(t, gnn.SaveCheckpoint(&buf, m, featurize.DefaultOptions()))
		store[reporting.CheckpointKey(kind)] = buf.Bytes()
	}

	models, err := LoadModels(context.Background(), store, nn.CPU, featurize.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Equal(t, "Atten. GNN", models[gnn.KindAttention].Name())

	delete(store, reporting.CheckpointKey(gnn.KindConv))
	_, err = LoadModels(context.Background(), store, nn.CPU, featurize.DefaultOptions(), gnn.KindConv)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArtifactNotFound))
}

func TestLoadModels_FeaturizerMismatch(t *testing.T) {
	store := mapStore{}
	trained := featurize.Options{Radius: 3, NBits: 1024, SymmetricEdges: true}
	for kind, m := range newModels(t) {
		var buf bytes.Buffer
		require.NoError(t, gnn.SaveCheckpoint(&buf, m, trained))
		store[reporting.CheckpointKey(kind)] = buf.Bytes()
	}

	_, err := LoadModels(context.Background(), store, nn.CPU, featurize.DefaultOptions(), gnn.KindAttention)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelConfigInvalid))
	assert.Contains(t, err.Error(), "symmetric_edges=true")

	models, err := LoadModels(context.Background(), store, nn.CPU, trained, gnn.KindAttention)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

//Personal.AI order the ending
