package benchmark

import (
	"context"
	"strconv"

	"github.com/turtacn/solubility-bench/internal/config"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/solubility-bench/internal/intelligence/classical"
	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/gnn"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/internal/intelligence/reporting"
	"github.com/turtacn/solubility-bench/internal/intelligence/training"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

func newSVR(c config.SVRConfig, log logging.Logger) classical.Regressor {
	return classical.NewSVR(classical.SVROptions{
		C:         c.C,
		Epsilon:   c.Epsilon,
		Gamma:     c.Gamma,
		Tolerance: c.Tolerance,
		MaxPasses: c.MaxPasses,
	}, log)
}

func newForest(c config.ForestConfig, log logging.Logger) classical.Regressor {
	return classical.NewRandomForest(classical.ForestOptions{
		Trees:           c.Trees,
		MaxDepth:        c.MaxDepth,
		MinSamplesSplit: c.MinSamplesSplit,
		MaxFeatures:     c.MaxFeatures,
		Workers:         c.Workers,
		Seed:            c.Seed,
	}, log)
}

// fitClassical trains reg on the fingerprint training partition and returns
// its test MSE.
func (s *serviceImpl) fitClassical(ctx context.Context, reg classical.Regressor, ds *dataset.Dataset, log logging.Logger) (float64, error) {
	timer := s.fitTimer(reg.Name())
	xTrain, yTrain := dataset.FingerprintMatrix(ds.FingerprintTrain)
	xTest, yTest := dataset.FingerprintMatrix(ds.FingerprintTest)

	if err := reg.Fit(ctx, xTrain, yTrain); err != nil {
		return 0, err
	}
	pred, err := reg.Predict(xTest)
	if err != nil {
		return 0, err
	}
	mse, err := reporting.MSE(pred, yTest)
	if err != nil {
		return 0, err
	}
	s.score(log, reg.Name(), timer, mse)
	return mse, nil
}

type graphRun struct {
	model   gnn.Model
	history *training.History
	mse     float64
}

// fitGraph trains one graph network on the graph training partition, with
// the test partition as validation set, and scores it on the test partition.
func (s *serviceImpl) fitGraph(ctx context.Context, kind gnn.Kind, ds *dataset.Dataset, log logging.Logger) (*graphRun, error) {
	gcfg := s.cfg.GCN
	if kind == gnn.KindAttention {
		gcfg = s.cfg.GAT
	}
	mcfg, err := ModelConfig(kind, gcfg, s.cfg.Training.Seed)
	if err != nil {
		return nil, err
	}
	model, err := gnn.New(mcfg, s.device)
	if err != nil {
		return nil, err
	}
	timer := s.fitTimer(model.Name())

	train, val, test, err := graphLoaders(ds, s.cfg.Training.BatchSize, s.cfg.Training.Seed, s.device)
	if err != nil {
		return nil, err
	}

	var observers []training.Observer
	if s.metrics != nil {
		observers = append(observers, s.metrics)
	}
	trainer := training.NewTrainer(TrainingConfig(s.cfg.Training), log, observers...)
	opt := nn.NewAdam(model.Parameters(), gcfg.LearningRate, gcfg.WeightDecay)
	hist, err := trainer.Fit(ctx, model, train, val, opt)
	if err != nil {
		return nil, err
	}

	eval, err := training.Evaluate(model, test)
	if err != nil {
		return nil, err
	}
	s.score(log, model.Name(), timer, eval.MSE)
	return &graphRun{model: model, history: hist, mse: eval.MSE}, nil
}

// graphLoaders returns the training and validation loaders, both reshuffled
// every epoch from distinct seeds, plus an ordered loader over the test
// graphs for the final score.
func graphLoaders(ds *dataset.Dataset, batchSize int, seed int64, device nn.Device) (train, val, test *dataset.Loader, err error) {
	if train, err = dataset.NewLoader(ds.GraphTrain, batchSize, true, seed, device); err != nil {
		return nil, nil, nil, err
	}
	if val, err = dataset.NewLoader(ds.GraphTest, batchSize, true, seed+1, device); err != nil {
		return nil, nil, nil, err
	}
	if test, err = dataset.NewLoader(ds.GraphTest, batchSize, false, 0, device); err != nil {
		return nil, nil, nil, err
	}
	return train, val, test, nil
}

// fitTimer starts timing a fit of method.  Without metrics the timer only
// measures.
func (s *serviceImpl) fitTimer(method string) *prometheus.Timer {
	var h prometheus.Histogram
	if s.metrics != nil {
		h = s.metrics.ModelFitDuration.WithLabelValues(method)
	}
	return prometheus.NewTimer(h)
}

func (s *serviceImpl) score(log logging.Logger, method string, timer *prometheus.Timer, mse float64) {
	elapsed := timer.ObserveDuration()
	log.Info(method+" MSE: "+strconv.FormatFloat(mse, 'f', 4, 64),
		logging.Model(method),
		logging.Float64("mse", mse),
		logging.Duration("elapsed", elapsed))
	if s.metrics != nil {
		prometheus.RecordModelScore(s.metrics, method, mse)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Config mapping
// ─────────────────────────────────────────────────────────────────────────────

// FeaturizerOptions maps the featurizer section.
func FeaturizerOptions(c config.FeaturizerConfig) featurize.Options {
	return featurize.Options{Radius: c.Radius, NBits: c.NBits, SymmetricEdges: c.SymmetricEdges}
}

// CSVOptions maps the data section.
func CSVOptions(c config.DataConfig) dataset.CSVOptions {
	opts := dataset.CSVOptions{SMILESColumn: c.SMILESColumn, TargetColumn: c.TargetColumn}
	if r := []rune(c.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

// SplitOptions maps the split section.
func SplitOptions(c config.SplitConfig) dataset.SplitOptions {
	return dataset.SplitOptions{Seed: c.Seed, TrainRatio: c.TrainRatio, Mode: c.Mode}
}

// TrainingConfig maps the training section.
func TrainingConfig(c config.TrainingConfig) training.Config {
	return training.Config{Epochs: c.Epochs, L1Coef: c.L1Coef, LogEvery: c.LogEvery}
}

// ModelConfig builds the architecture of kind from its config section.
// Empty layer lists keep the built-in architecture; dropout is taken as given.
func ModelConfig(kind gnn.Kind, c config.GNNConfig, seed int64) (gnn.ModelConfig, error) {
	mc, err := gnn.DefaultConfig(kind)
	if err != nil {
		return gnn.ModelConfig{}, err
	}
	if len(c.Hidden) > 0 {
		mc.Hidden = append([]int(nil), c.Hidden...)
	}
	if kind == gnn.KindAttention && len(c.Heads) > 0 {
		mc.Heads = append([]int(nil), c.Heads...)
	}
	mc.Dropout = c.Dropout
	mc.Seed = seed
	if err := mc.Validate(); err != nil {
		return gnn.ModelConfig{}, errors.Wrap(err, errors.ErrCodeModelConfigInvalid, "invalid "+string(kind)+" architecture")
	}
	return mc, nil
}

//Personal.AI order the ending
