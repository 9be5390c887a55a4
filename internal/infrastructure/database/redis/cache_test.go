package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	pkgerrors "github.com/turtacn/solubility-bench/pkg/errors"
)

var _ featurize.Cache = Cache(nil)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.client = NewClientWithUniversal(db, logging.NewNopLogger())
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(), WithPrefix("test:"), WithTTLJitter(0))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type entry struct {
	SMILES string  `json:"smiles"`
	Bits   []int   `json:"bits"`
	LogS   float64 `json:"log_s"`
}

func mustJSON(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := entry{SMILES: "CCO", Bits: []int{1, 5}, LogS: 1.1}
	s.mock.ExpectGet("test:k1").SetVal(string(mustJSON(s.T(), val)))

	var dest entry
	require.NoError(s.T(), s.cache.Get(context.Background(), "k1", &dest))
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:k1").RedisNil()

	var dest entry
	err := s.cache.Get(context.Background(), "k1", &dest)
	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheMiss))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:k1").SetErr(fmt.Errorf("connection refused"))

	var dest entry
	err := s.cache.Get(context.Background(), "k1", &dest)
	require.Error(s.T(), err)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:k1").SetVal("{not json")

	var dest entry
	err := s.cache.Get(context.Background(), "k1", &dest)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTL() {
	val := entry{SMILES: "C"}
	s.mock.ExpectSet("test:k1", mustJSON(s.T(), val), 24*time.Hour).SetVal("OK")

	require.NoError(s.T(), s.cache.Set(context.Background(), "k1", val, 0))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	require.NoError(s.T(), s.cache.Delete(context.Background(), "k1", "k2"))
	require.NoError(s.T(), s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestGetOrSet_HitSkipsLoader() {
	val := entry{SMILES: "CCO", LogS: 1.1}
	s.mock.ExpectGet("test:k1").SetVal(string(mustJSON(s.T(), val)))

	calls := 0
	var dest entry
	err := s.cache.GetOrSet(context.Background(), "k1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		calls++
		return val, nil
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
	assert.Zero(s.T(), calls)
}

func (s *CacheTestSuite) TestGetOrSet_MissLoadsAndStores() {
	val := entry{SMILES: "c1ccccc1", Bits: []int{3}, LogS: -1.6}
	s.mock.ExpectGet("test:k1").RedisNil()
	s.mock.ExpectSet("test:k1", mustJSON(s.T(), val), time.Minute).SetVal("OK")

	calls := 0
	var dest entry
	err := s.cache.GetOrSet(context.Background(), "k1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		calls++
		return val, nil
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
	assert.Equal(s.T(), 1, calls)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:k1").RedisNil()
	loadErr := pkgerrors.New(pkgerrors.ErrCodeMoleculeInvalidSMILES, "bad smiles")

	var dest entry
	err := s.cache.GetOrSet(context.Background(), "k1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return nil, loadErr
	})
	assert.Equal(s.T(), loadErr, err)
}

func (s *CacheTestSuite) TestGetOrSet_SetFailureStillReturnsValue() {
	val := entry{SMILES: "O"}
	s.mock.ExpectGet("test:k1").RedisNil()
	s.mock.ExpectSet("test:k1", mustJSON(s.T(), val), time.Minute).SetErr(fmt.Errorf("readonly"))

	var dest entry
	err := s.cache.GetOrSet(context.Background(), "k1", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return val, nil
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:feat:*", 100).SetVal([]string{"test:feat:a", "test:feat:b"}, 7)
	s.mock.ExpectDel("test:feat:a", "test:feat:b").SetVal(2)
	s.mock.ExpectScan(7, "test:feat:*", 100).SetVal([]string{"test:feat:c"}, 0)
	s.mock.ExpectDel("test:feat:c").SetVal(1)

	n, err := s.cache.DeleteByPrefix(context.Background(), "feat:")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), n)
}

func (s *CacheTestSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	require.NoError(s.T(), s.cache.Ping(context.Background()))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestJitterTTL(t *testing.T) {
	c := NewRedisCache(nil, nil, WithTTLJitter(0.1)).(*redisCache)
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(time.Hour)
		assert.GreaterOrEqual(t, got, 54*time.Minute)
		assert.LessOrEqual(t, got, 66*time.Minute)
	}
	assert.Zero(t, c.jitterTTL(0))

	off := NewRedisCache(nil, nil, WithTTLJitter(0)).(*redisCache)
	assert.Equal(t, time.Hour, off.jitterTTL(time.Hour))
}

//Personal.AI order the ending
