// Package config provides configuration loading, defaults, and validation for
// the solubility benchmark.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "SOLBENCH"

// envKeys lists every leaf key so AutomaticEnv can see variables for keys that
// are absent from the file (viper only consults env for keys it knows about).
var envKeys = []string{
	"log.level", "log.format",
	"data.path", "data.smiles_column", "data.target_column", "data.delimiter",
	"featurizer.radius", "featurizer.n_bits", "featurizer.symmetric_edges",
	"split.seed", "split.train_ratio", "split.mode",
	"training.epochs", "training.batch_size", "training.l1_coef", "training.log_every", "training.seed",
	"gcn.dropout", "gcn.learning_rate", "gcn.weight_decay",
	"gat.dropout", "gat.learning_rate", "gat.weight_decay",
	"classical.svr.c", "classical.svr.epsilon", "classical.svr.gamma",
	"classical.forest.trees", "classical.forest.max_depth", "classical.forest.workers", "classical.forest.seed",
	"report.output_dir", "report.save_checkpoints",
	"storage.backend", "storage.prefix",
	"storage.minio.endpoint", "storage.minio.access_key", "storage.minio.secret_key",
	"storage.minio.bucket", "storage.minio.use_ssl",
	"cache.enabled", "cache.redis.addr", "cache.redis.password", "cache.redis.db",
	"server.port", "server.mode",
	"metrics.enabled", "metrics.namespace",
	"device",
}

// newViper builds a Viper instance with YAML file type, the SOLBENCH_ env
// prefix and a "." → "_" key replacer, so "training.epochs" resolves to
// SOLBENCH_TRAINING_EPOCHS.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	for k, val := range zeroableDefaults {
		v.SetDefault(k, val)
	}
	return v
}

// Load reads the YAML file at configPath, merges SOLBENCH_* overrides,
// applies defaults and validates.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from SOLBENCH_* variables and defaults only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-parses configPath whenever it changes on disk and hands the new
// Config to onChange.  Invalid revisions are skipped.  Only settings that are
// safe to swap at runtime (log level, server batch limit) should be applied by
// the callback.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on error.  For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
