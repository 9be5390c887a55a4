// Package config defines the configuration structures for the solubility
// benchmark.  No I/O lives in this file, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// DataConfig describes the input table.
type DataConfig struct {
	Path         string `mapstructure:"path"`
	SMILESColumn string `mapstructure:"smiles_column"`
	TargetColumn string `mapstructure:"target_column"`
	Delimiter    string `mapstructure:"delimiter"`
}

// FeaturizerConfig holds fingerprint and graph construction parameters.
type FeaturizerConfig struct {
	Radius         int  `mapstructure:"radius"`
	NBits          int  `mapstructure:"n_bits"`
	SymmetricEdges bool `mapstructure:"symmetric_edges"`
}

// Split modes.
const (
	SplitShared      = "shared"
	SplitIndependent = "independent"
)

// SplitConfig controls the train/test partition.
type SplitConfig struct {
	Seed       int64   `mapstructure:"seed"`
	TrainRatio float64 `mapstructure:"train_ratio"`
	Mode       string  `mapstructure:"mode"` // "shared" | "independent"
}

// TrainingConfig holds loop parameters shared by both graph networks.
type TrainingConfig struct {
	Epochs    int     `mapstructure:"epochs"`
	BatchSize int     `mapstructure:"batch_size"`
	L1Coef    float64 `mapstructure:"l1_coef"`
	LogEvery  int     `mapstructure:"log_every"`
	Seed      int64   `mapstructure:"seed"`
}

// GNNConfig holds per-architecture hyperparameters.
type GNNConfig struct {
	Hidden       []int   `mapstructure:"hidden"`
	Heads        []int   `mapstructure:"heads"`
	Dropout      float64 `mapstructure:"dropout"`
	LearningRate float64 `mapstructure:"learning_rate"`
	WeightDecay  float64 `mapstructure:"weight_decay"`
}

// SVRConfig holds epsilon-SVR parameters.
type SVRConfig struct {
	C         float64 `mapstructure:"c"`
	Epsilon   float64 `mapstructure:"epsilon"`
	Gamma     string  `mapstructure:"gamma"` // "scale" | "auto" | numeric string
	Tolerance float64 `mapstructure:"tolerance"`
	MaxPasses int     `mapstructure:"max_passes"`
}

// ForestConfig holds random-forest parameters.
type ForestConfig struct {
	Trees           int     `mapstructure:"trees"`
	MaxDepth        int     `mapstructure:"max_depth"` // 0 = unlimited
	MinSamplesSplit int     `mapstructure:"min_samples_split"`
	MaxFeatures     float64 `mapstructure:"max_features"` // fraction of features per split
	Workers         int     `mapstructure:"workers"`
	Seed            int64   `mapstructure:"seed"`
}

// ClassicalConfig groups the fingerprint-based regressors.
type ClassicalConfig struct {
	SVR    SVRConfig    `mapstructure:"svr"`
	Forest ForestConfig `mapstructure:"forest"`
}

// ReportConfig controls rendered artifacts.
type ReportConfig struct {
	OutputDir       string  `mapstructure:"output_dir"`
	PlotWidthInch   float64 `mapstructure:"plot_width_inch"`
	PlotHeightInch  float64 `mapstructure:"plot_height_inch"`
	SaveCheckpoints bool    `mapstructure:"save_checkpoints"`
}

// MinIOConfig holds S3-compatible object storage parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// StorageConfig selects where reports, plots and checkpoints are written.
type StorageConfig struct {
	Backend string      `mapstructure:"backend"` // "local" | "minio"
	Prefix  string      `mapstructure:"prefix"`
	MinIO   MinIOConfig `mapstructure:"minio"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// CacheConfig toggles the feature cache.
type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// ServerConfig holds HTTP server tunables for `solbench serve`.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBatch        int           `mapstructure:"max_batch"`
}

// MetricsConfig controls Prometheus collection.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Data       DataConfig       `mapstructure:"data"`
	Featurizer FeaturizerConfig `mapstructure:"featurizer"`
	Split      SplitConfig      `mapstructure:"split"`
	Training   TrainingConfig   `mapstructure:"training"`
	GCN        GNNConfig        `mapstructure:"gcn"`
	GAT        GNNConfig        `mapstructure:"gat"`
	Classical  ClassicalConfig  `mapstructure:"classical"`
	Report     ReportConfig     `mapstructure:"report"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`

	// Device is the compute backend, chosen once before any model exists.
	Device string `mapstructure:"device"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-defaulted Config and
// returns the first problem found.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Data.SMILESColumn == "" || c.Data.TargetColumn == "" {
		return fmt.Errorf("config: data.smiles_column and data.target_column are required")
	}
	if len([]rune(c.Data.Delimiter)) != 1 {
		return fmt.Errorf("config: data.delimiter must be a single character, got %q", c.Data.Delimiter)
	}

	if c.Featurizer.Radius < 0 {
		return fmt.Errorf("config: featurizer.radius must be ≥ 0, got %d", c.Featurizer.Radius)
	}
	if c.Featurizer.NBits < 8 {
		return fmt.Errorf("config: featurizer.n_bits must be ≥ 8, got %d", c.Featurizer.NBits)
	}

	if c.Split.TrainRatio <= 0 || c.Split.TrainRatio >= 1 {
		return fmt.Errorf("config: split.train_ratio %v must be in (0, 1)", c.Split.TrainRatio)
	}
	switch c.Split.Mode {
	case SplitShared, SplitIndependent:
	default:
		return fmt.Errorf("config: split.mode %q is invalid; expected shared|independent", c.Split.Mode)
	}

	if c.Training.Epochs < 1 {
		return fmt.Errorf("config: training.epochs must be ≥ 1, got %d", c.Training.Epochs)
	}
	if c.Training.BatchSize < 1 {
		return fmt.Errorf("config: training.batch_size must be ≥ 1, got %d", c.Training.BatchSize)
	}
	if c.Training.L1Coef < 0 {
		return fmt.Errorf("config: training.l1_coef must be ≥ 0, got %v", c.Training.L1Coef)
	}

	for name, g := range map[string]GNNConfig{"gcn": c.GCN, "gat": c.GAT} {
		if g.Dropout < 0 || g.Dropout >= 1 {
			return fmt.Errorf("config: %s.dropout %v must be in [0, 1)", name, g.Dropout)
		}
		if g.LearningRate <= 0 {
			return fmt.Errorf("config: %s.learning_rate must be > 0", name)
		}
		if len(g.Hidden) != 3 {
			return fmt.Errorf("config: %s.hidden must list 3 layer widths, got %d", name, len(g.Hidden))
		}
	}
	if len(c.GAT.Heads) != 3 {
		return fmt.Errorf("config: gat.heads must list 3 head counts, got %d", len(c.GAT.Heads))
	}

	if c.Classical.SVR.C <= 0 {
		return fmt.Errorf("config: classical.svr.c must be > 0")
	}
	if c.Classical.SVR.Epsilon < 0 {
		return fmt.Errorf("config: classical.svr.epsilon must be ≥ 0")
	}
	if c.Classical.Forest.Trees < 1 {
		return fmt.Errorf("config: classical.forest.trees must be ≥ 1")
	}
	if c.Classical.Forest.MaxFeatures <= 0 || c.Classical.Forest.MaxFeatures > 1 {
		return fmt.Errorf("config: classical.forest.max_features must be in (0, 1]")
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Report.OutputDir == "" {
			return fmt.Errorf("config: report.output_dir is required for local storage")
		}
	case StorageMinIO:
		if c.Storage.MinIO.Endpoint == "" || c.Storage.MinIO.Bucket == "" {
			return fmt.Errorf("config: storage.minio.endpoint and storage.minio.bucket are required")
		}
	default:
		return fmt.Errorf("config: storage.backend %q is invalid; expected local|minio", c.Storage.Backend)
	}

	if c.Cache.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("config: cache.redis.addr is required when cache is enabled")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Device == "" {
		return fmt.Errorf("config: device is required")
	}
	return nil
}

//Personal.AI order the ending
