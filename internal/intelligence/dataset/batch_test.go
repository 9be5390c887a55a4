package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

func mustGraph(t *testing.T, smiles string, y float64) *featurize.Graph {
	t.Helper()
	f := featurize.New(featurize.DefaultOptions(), logging.NewNopLogger())
	g, err := f.Graph(smiles)
	require.NoError(t, err)
	return g.WithTarget(y)
}

func TestCollate_OffsetsAndAssignment(t *testing.T) {
	ethanol := mustGraph(t, "CCO", 1)
	benzene := mustGraph(t, "c1ccccc1", 2)

	b, err := Collate([]*featurize.Graph{ethanol, benzene}, nn.CPU)
	require.NoError(t, err)

	r, c := b.X.Dims()
	assert.Equal(t, 9, r)
	assert.Equal(t, featurize.NodeFeatures, c)
	assert.Equal(t, 9, b.NumNodes())
	assert.Equal(t, 2, b.NumGraphs)
	assert.Equal(t, []int{3, 6}, b.Counts)
	assert.Equal(t, []float64{1, 2}, b.Y)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 1, 1, 1}, b.Assign)
	assert.Equal(t, ethanol.NumEdges()+benzene.NumEdges(), len(b.Src))
	assert.Len(t, b.EdgeAttr, len(b.Src))

	// benzene's first edge starts after ethanol's three atoms
	k := ethanol.NumEdges()
	assert.Equal(t, benzene.EdgeIndex[0][0]+3, b.Src[k])
	assert.Equal(t, benzene.EdgeIndex[0][1]+3, b.Dst[k])
	assert.Equal(t, benzene.X[0], b.X.RawRowView(3))
	for e := range b.Src {
		assert.Equal(t, b.Assign[b.Src[e]], b.Assign[b.Dst[e]], "edge %d crosses graphs", e)
	}
}

func TestCollate_Errors(t *testing.T) {
	methane := mustGraph(t, "C", 0)

	_, err := Collate(nil, nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetCollateFailed))

	_, err = Collate([]*featurize.Graph{mustGraph(t, "CC", 0), methane}, nn.CPU)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetCollateFailed))

	_, err = Collate([]*featurize.Graph{mustGraph(t, "CC", 0)}, nn.Device("cuda"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDeviceUnsupported))
}

//Personal.AI order the ending
