package featurize

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// memoryCache stores JSON like the Redis cache does.
type memoryCache struct {
	data  map[string][]byte
	loads int
}

func (m *memoryCache) GetOrSet(ctx context.Context, key string, dest interface{}, _ time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if raw, ok := m.data[key]; ok {
		return json.Unmarshal(raw, dest)
	}
	m.loads++
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	args := m.Called(ctx, key, dest, ttl, loader)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func TestCachedFeaturizer_HitAfterMiss(t *testing.T) {
	cache := &memoryCache{data: map[string][]byte{}}
	inner := newTestFeaturizer(false)
	cf := NewCached(inner, cache, time.Hour, logging.NewNopLogger())
	ctx := context.Background()

	first, err := cf.Features(ctx, "c1ccccc1O")
	require.NoError(t, err)
	second, err := cf.Features(ctx, "c1ccccc1O")
	require.NoError(t, err)

	assert.Equal(t, 1, cache.loads)
	assert.Equal(t, first.Fingerprint.Bits, second.Fingerprint.Bits)
	assert.Equal(t, first.Fingerprint.NumOnBits, second.Fingerprint.NumOnBits)
	assert.Equal(t, first.Graph.EdgeIndex, second.Graph.EdgeIndex)
	assert.Equal(t, first.Graph.X, second.Graph.X)
}

func TestCachedFeaturizer_InvalidSMILESNotDegraded(t *testing.T) {
	cache := &memoryCache{data: map[string][]byte{}}
	cf := NewCached(newTestFeaturizer(false), cache, 0, logging.NewNopLogger())

	_, err := cf.Features(context.Background(), "C(")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidSMILES))
	assert.Empty(t, cache.data)
}

func TestCachedFeaturizer_CacheFailureFallsBack(t *testing.T) {
	mc := &mockCache{}
	mc.On("GetOrSet", mock.Anything, mock.AnythingOfType("string"), mock.Anything, time.Minute, mock.Anything).
		Return(errors.New(errors.ErrCodeCacheError, "connection refused"))

	cf := NewCached(newTestFeaturizer(false), mc, time.Minute, logging.NewNopLogger())
	feats, err := cf.Features(context.Background(), "CCO")
	require.NoError(t, err)
	assert.Equal(t, 3, feats.Graph.NumNodes())
	mc.AssertExpectations(t)
}

func TestCachedFeaturizer_CorruptEntryEvicted(t *testing.T) {
	opts := newTestFeaturizer(false).Options()
	key := CacheKey(opts, "CCO")
	cache := &memoryCache{data: map[string][]byte{
		key: []byte(`{"radius":3,"n_bits":1024,"fp":null,"graph":null}`),
	}}
	cf := NewCached(newTestFeaturizer(false), cache, time.Hour, logging.NewNopLogger())

	feats, err := cf.Features(context.Background(), "CCO")
	require.NoError(t, err)
	assert.Equal(t, 3, feats.Graph.NumNodes())
	assert.NotContains(t, cache.data, key)

	_, err = cf.Features(context.Background(), "CCO")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.loads)
	assert.Contains(t, cache.data, key)
}

func TestCachedFeaturizer_EvictionFailureIsNotFatal(t *testing.T) {
	mc := &mockCache{}
	mc.On("GetOrSet", mock.Anything, mock.AnythingOfType("string"), mock.Anything, time.Minute, mock.Anything).Return(nil)
	mc.On("Delete", mock.Anything, mock.Anything).Return(errors.New(errors.ErrCodeCacheError, "readonly"))

	cf := NewCached(newTestFeaturizer(false), mc, time.Minute, logging.NewNopLogger())
	feats, err := cf.Features(context.Background(), "CCO")
	require.NoError(t, err)
	assert.Equal(t, 3, feats.Graph.NumNodes())
	mc.AssertCalled(t, "Delete", mock.Anything, []string{CacheKey(cf.inner.Options(), "CCO")})
}

func TestCacheKeyPrefix_ScopesKeys(t *testing.T) {
	opts := Options{Radius: 3, NBits: 1024, SymmetricEdges: true}
	prefix := CacheKeyPrefix(opts)
	assert.Equal(t, "feat:r3:b1024:strue:", prefix)
	assert.True(t, strings.HasPrefix(CacheKey(opts, "CCO"), prefix))
	assert.False(t, strings.HasPrefix(CacheKey(Options{Radius: 2, NBits: 1024, SymmetricEdges: true}, "CCO"), prefix))
}

func TestCacheKey_DependsOnOptions(t *testing.T) {
	a := CacheKey(Options{Radius: 3, NBits: 1024}, "CCO")
	b := CacheKey(Options{Radius: 2, NBits: 1024}, "CCO")
	c := CacheKey(Options{Radius: 3, NBits: 1024}, "CCN")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, CacheKey(Options{Radius: 3, NBits: 1024}, "CCO"))
}

//Personal.AI order the ending
