package featurize

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/turtacn/solubility-bench/internal/domain/molecule"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
)

// CachePrefix namespaces feature entries inside the shared cache.
const CachePrefix = "feat:"

// Cache is the subset of the Redis cache used for memoising features.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	Delete(ctx context.Context, keys ...string) error
}

// cacheEntry is the serialised form of Features.  The parsed molecule is not
// stored; cache hits carry fingerprint and graph only.
type cacheEntry struct {
	Radius int    `json:"radius"`
	NBits  int    `json:"n_bits"`
	FP     []byte `json:"fp"`
	Graph  *Graph `json:"graph"`
}

// CachedFeaturizer memoises Featurizer output.  A failing cache never fails a
// featurization; it is logged and bypassed.
type CachedFeaturizer struct {
	inner  *Featurizer
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewCached wraps inner with cache.  ttl 0 uses the cache's default.
func NewCached(inner *Featurizer, cache Cache, ttl time.Duration, logger logging.Logger) *CachedFeaturizer {
	return &CachedFeaturizer{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logging.OrDefault(logger).Named("featurize.cache"),
	}
}

// CacheKeyPrefix is the key prefix shared by every entry written under opts.
func CacheKeyPrefix(opts Options) string {
	return fmt.Sprintf("%sr%d:b%d:s%t:", CachePrefix, opts.Radius, opts.NBits, opts.SymmetricEdges)
}

// CacheKey identifies smiles under the featurizer options.
func CacheKey(opts Options, smiles string) string {
	return fmt.Sprintf("%s%016x", CacheKeyPrefix(opts), xxhash.Sum64String(smiles))
}

// Features implements Source.
func (c *CachedFeaturizer) Features(ctx context.Context, smiles string) (*Features, error) {
	opts := c.inner.Options()
	var (
		entry   cacheEntry
		loadErr error
	)
	key := CacheKey(opts, smiles)
	err := c.cache.GetOrSet(ctx, key, &entry, c.ttl, func(ctx context.Context) (interface{}, error) {
		f, err := c.inner.Features(ctx, smiles)
		if err != nil {
			loadErr = err
			return nil, err
		}
		return cacheEntry{Radius: opts.Radius, NBits: opts.NBits, FP: f.Fingerprint.ToBytes(), Graph: f.Graph}, nil
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if err != nil {
		c.logger.Warn("feature cache unavailable, computing directly", logging.SMILES(smiles), logging.Err(err))
		return c.inner.Features(ctx, smiles)
	}

	fp, err := molecule.FingerprintFromBytes(entry.Radius, entry.FP, entry.NBits)
	if err != nil || entry.Graph == nil {
		c.logger.Warn("corrupt feature cache entry, recomputing", logging.SMILES(smiles))
		if derr := c.cache.Delete(ctx, key); derr != nil {
			c.logger.Warn("failed to evict corrupt feature cache entry", logging.SMILES(smiles), logging.Err(derr))
		}
		return c.inner.Features(ctx, smiles)
	}
	return &Features{SMILES: smiles, Fingerprint: fp, Graph: entry.Graph}, nil
}

var (
	_ Source = (*Featurizer)(nil)
	_ Source = (*CachedFeaturizer)(nil)
)

//Personal.AI order the ending
