package cli

import (
	"context"

	"github.com/turtacn/solubility-bench/internal/application/benchmark"
	"github.com/turtacn/solubility-bench/internal/config"
	"github.com/turtacn/solubility-bench/internal/infrastructure/database/redis"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/interfaces/http/handlers"
)

// runtimeDeps are the infrastructure pieces shared by run and serve.
type runtimeDeps struct {
	Source    featurize.Source
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.BenchMetrics
	Checkers  []handlers.HealthChecker

	closers []func() error
}

// Close releases connections opened by buildDeps.
func (d *runtimeDeps) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// buildDeps wires the featurizer (Redis-cached when enabled) and the metrics
// collector from cfg.
func buildDeps(cfg *config.Config, logger logging.Logger) (*runtimeDeps, error) {
	deps := &runtimeDeps{}
	base := featurize.New(benchmark.FeaturizerOptions(cfg.Featurizer), logger)
	deps.Source = base

	if cfg.Cache.Enabled {
		rc := cfg.Cache.Redis
		cache, closeFn, err := openCache(cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, closeFn)
		deps.Source = featurize.NewCached(base, cache, 0, logger)
		deps.Checkers = append(deps.Checkers, handlers.CheckFunc{
			Label: "redis",
			Fn:    func(ctx context.Context) error { return cache.Ping(ctx) },
		})
		logger.Info("feature cache enabled", logging.String("addr", rc.Addr))
	}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.Collector = collector
		deps.Metrics = prometheus.NewBenchMetrics(collector)
	}
	return deps, nil
}

// openCache connects to the configured Redis feature cache.
func openCache(cfg *config.Config, logger logging.Logger) (redis.Cache, func() error, error) {
	rc := cfg.Cache.Redis
	client, err := redis.NewClient(&redis.RedisConfig{
		Addr:         rc.Addr,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cache := redis.NewRedisCache(client, logger,
		redis.WithPrefix(rc.KeyPrefix),
		redis.WithDefaultTTL(rc.DefaultTTL),
	)
	return cache, client.Close, nil
}

//Personal.AI order the ending
