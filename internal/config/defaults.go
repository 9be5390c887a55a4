// Package config provides configuration loading, defaults, and validation for
// the solubility benchmark.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultSMILESColumn = "smiles"
	DefaultTargetColumn = "measured log solubility in mols per litre"
	DefaultDelimiter    = ","

	DefaultRadius = 3
	DefaultNBits  = 1024

	DefaultSplitSeed  = 42
	DefaultTrainRatio = 0.7

	DefaultEpochs    = 600
	DefaultBatchSize = 64
	DefaultL1Coef    = 1e-4
	DefaultLogEvery  = 50

	DefaultGCNDropout  = 0.5
	DefaultGATDropout  = 0.3
	DefaultLR          = 1e-3
	DefaultWeightDecay = 5e-4

	DefaultSVRC       = 1.0
	DefaultSVREpsilon = 0.1
	DefaultSVRGamma   = "scale"

	DefaultForestTrees = 100

	DefaultOutputDir = "./out"

	DefaultRedisAddr = "localhost:6379"

	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultMetricsNamespace = "solbench"

	DefaultDevice = "cpu"
)

// Reference layer widths and head counts.
var (
	DefaultGCNHidden = []int{32, 64, 16}
	DefaultGATHidden = []int{32, 32, 8}
	DefaultGATHeads  = []int{1, 2, 2}
)

// zeroableDefaults holds keys where an explicit zero is meaningful (seed 0,
// no dropout, no L1 penalty).  They are registered with viper so that only an
// absent key picks up the default; ApplyDefaults never touches them.
var zeroableDefaults = map[string]interface{}{
	"split.seed":            int64(DefaultSplitSeed),
	"training.l1_coef":      DefaultL1Coef,
	"training.seed":         int64(DefaultSplitSeed),
	"gcn.dropout":           DefaultGCNDropout,
	"gat.dropout":           DefaultGATDropout,
	"classical.forest.seed": int64(DefaultSplitSeed),
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills zero-value fields in cfg with their defaults.  Values
// already set win.  Boolean toggles cannot be told apart from "unset" and are
// left alone, as are the zeroable seed, dropout and L1 fields.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Data ──────────────────────────────────────────────────────────────────
	if cfg.Data.SMILESColumn == "" {
		cfg.Data.SMILESColumn = DefaultSMILESColumn
	}
	if cfg.Data.TargetColumn == "" {
		cfg.Data.TargetColumn = DefaultTargetColumn
	}
	if cfg.Data.Delimiter == "" {
		cfg.Data.Delimiter = DefaultDelimiter
	}

	// ── Featurizer ────────────────────────────────────────────────────────────
	if cfg.Featurizer.Radius == 0 {
		cfg.Featurizer.Radius = DefaultRadius
	}
	if cfg.Featurizer.NBits == 0 {
		cfg.Featurizer.NBits = DefaultNBits
	}

	// ── Split ─────────────────────────────────────────────────────────────────
	if cfg.Split.TrainRatio == 0 {
		cfg.Split.TrainRatio = DefaultTrainRatio
	}
	if cfg.Split.Mode == "" {
		cfg.Split.Mode = SplitShared
	}

	// ── Training ──────────────────────────────────────────────────────────────
	if cfg.Training.Epochs == 0 {
		cfg.Training.Epochs = DefaultEpochs
	}
	if cfg.Training.BatchSize == 0 {
		cfg.Training.BatchSize = DefaultBatchSize
	}
	if cfg.Training.LogEvery == 0 {
		cfg.Training.LogEvery = DefaultLogEvery
	}

	// ── Graph networks ────────────────────────────────────────────────────────
	applyGNNDefaults(&cfg.GCN, DefaultGCNHidden, nil)
	applyGNNDefaults(&cfg.GAT, DefaultGATHidden, DefaultGATHeads)

	// ── Classical ─────────────────────────────────────────────────────────────
	if cfg.Classical.SVR.C == 0 {
		cfg.Classical.SVR.C = DefaultSVRC
	}
	if cfg.Classical.SVR.Epsilon == 0 {
		cfg.Classical.SVR.Epsilon = DefaultSVREpsilon
	}
	if cfg.Classical.SVR.Gamma == "" {
		cfg.Classical.SVR.Gamma = DefaultSVRGamma
	}
	if cfg.Classical.SVR.Tolerance == 0 {
		cfg.Classical.SVR.Tolerance = 1e-3
	}
	if cfg.Classical.SVR.MaxPasses == 0 {
		cfg.Classical.SVR.MaxPasses = 1000
	}
	if cfg.Classical.Forest.Trees == 0 {
		cfg.Classical.Forest.Trees = DefaultForestTrees
	}
	if cfg.Classical.Forest.MinSamplesSplit == 0 {
		cfg.Classical.Forest.MinSamplesSplit = 2
	}
	if cfg.Classical.Forest.MaxFeatures == 0 {
		cfg.Classical.Forest.MaxFeatures = 1.0
	}

	// ── Report / storage ──────────────────────────────────────────────────────
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = DefaultOutputDir
	}
	if cfg.Report.PlotWidthInch == 0 {
		cfg.Report.PlotWidthInch = 14
	}
	if cfg.Report.PlotHeightInch == 0 {
		cfg.Report.PlotHeightInch = 4
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageLocal
	}
	if cfg.Storage.MinIO.Region == "" {
		cfg.Storage.MinIO.Region = "us-east-1"
	}
	if cfg.Storage.MinIO.Bucket == "" {
		cfg.Storage.MinIO.Bucket = "solbench-artifacts"
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.PoolSize == 0 {
		cfg.Cache.Redis.PoolSize = 10
	}
	if cfg.Cache.Redis.DialTimeout == 0 {
		cfg.Cache.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Cache.Redis.ReadTimeout == 0 {
		cfg.Cache.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Cache.Redis.WriteTimeout == 0 {
		cfg.Cache.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Cache.Redis.DefaultTTL == 0 {
		cfg.Cache.Redis.DefaultTTL = 24 * time.Hour
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = "solbench:"
	}

	// ── Server / metrics ──────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBatch == 0 {
		cfg.Server.MaxBatch = 256
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
}

func applyGNNDefaults(g *GNNConfig, hidden, heads []int) {
	if len(g.Hidden) == 0 {
		g.Hidden = append([]int(nil), hidden...)
	}
	if len(g.Heads) == 0 && heads != nil {
		g.Heads = append([]int(nil), heads...)
	}
	if g.LearningRate == 0 {
		g.LearningRate = DefaultLR
	}
	if g.WeightDecay == 0 {
		g.WeightDecay = DefaultWeightDecay
	}
}

// NewDefaultConfig returns a Config with every default applied, zeroable
// fields included.  It always validates.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Split.Seed = DefaultSplitSeed
	cfg.Training.L1Coef = DefaultL1Coef
	cfg.Training.Seed = DefaultSplitSeed
	cfg.GCN.Dropout = DefaultGCNDropout
	cfg.GAT.Dropout = DefaultGATDropout
	cfg.Classical.Forest.Seed = DefaultSplitSeed
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
