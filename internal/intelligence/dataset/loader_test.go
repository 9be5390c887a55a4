package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

func loaderGraphs(t *testing.T) []*featurize.Graph {
	smiles := []string{"CC", "CCO", "CCN", "CCC", "c1ccccc1", "CC(=O)O", "CCCl"}
	gs := make([]*featurize.Graph, len(smiles))
	for i, s := range smiles {
		gs[i] = mustGraph(t, s, float64(i))
	}
	return gs
}

func batchTargets(bs []*Batch) []float64 {
	var out []float64
	for _, b := range bs {
		out = append(out, b.Y...)
	}
	return out
}

func TestLoader_Sizes(t *testing.T) {
	l, err := NewLoader(loaderGraphs(t), 3, false, 0, nn.CPU)
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 7, l.NumGraphs())

	bs, err := l.Batches()
	require.NoError(t, err)
	require.Len(t, bs, 3)
	assert.Equal(t, 3, bs[0].NumGraphs)
	assert.Equal(t, 1, bs[2].NumGraphs)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6}, batchTargets(bs))
}

func TestLoader_ShuffleCoversEveryGraph(t *testing.T) {
	l, err := NewLoader(loaderGraphs(t), 2, true, 42, nn.CPU)
	require.NoError(t, err)

	first, err := l.Batches()
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{0, 1, 2, 3, 4, 5, 6}, batchTargets(first))

	// a fresh loader with the same seed reproduces the epoch order
	l2, err := NewLoader(loaderGraphs(t), 2, true, 42, nn.CPU)
	require.NoError(t, err)
	again, err := l2.Batches()
	require.NoError(t, err)
	assert.Equal(t, batchTargets(first), batchTargets(again))
}

func TestLoader_Errors(t *testing.T) {
	_, err := NewLoader(loaderGraphs(t), 0, false, 0, nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = NewLoader([]*featurize.Graph{mustGraph(t, "C", 0)}, 2, false, 0, nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetCollateFailed))

	_, err = NewLoader(loaderGraphs(t), 2, false, 0, nn.Device("tpu"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDeviceUnsupported))
}

func TestLoader_EmptyYieldsNoBatches(t *testing.T) {
	l, err := NewLoader(nil, 4, true, 1, nn.CPU)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	bs, err := l.Batches()
	require.NoError(t, err)
	assert.Empty(t, bs)
}

//Personal.AI order the ending
