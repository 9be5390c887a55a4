// Package training runs the mini-batch training loop for the graph networks
// and evaluates trained models.
package training

import (
	"context"
	"math"
	"time"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/gnn"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// ---------------------------------------------------------------------------
// Configuration and results
// ---------------------------------------------------------------------------

// Config controls one Fit call.
type Config struct {
	Epochs int
	// L1Coef scales Σ|θ| added to every training loss.  Zero disables it.
	L1Coef float64
	// LogEvery emits a progress line every n epochs; 0 logs only the last.
	LogEvery int
	// FailOnNonFinite aborts with TRN_004 instead of warning.
	FailOnNonFinite bool
}

// DefaultConfig returns 600 epochs with L1 1e-4.
func DefaultConfig() Config {
	return Config{Epochs: 600, L1Coef: 1e-4, LogEvery: 50}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "epochs must be > 0, got %d", c.Epochs)
	}
	if c.L1Coef < 0 {
		return errors.New(errors.ErrCodeValidation, "l1 coefficient must be ≥ 0")
	}
	return nil
}

// History holds the per-epoch average losses in epoch order.
type History struct {
	Train []float64 `json:"train"`
	Val   []float64 `json:"val"`
}

// Len returns the number of recorded epochs.
func (h *History) Len() int { return len(h.Train) }

// EpochStats is handed to observers after each epoch.
type EpochStats struct {
	Model     string
	Epoch     int
	TrainLoss float64
	ValLoss   float64
	Duration  time.Duration
}

// Observer receives per-epoch progress, e.g. to export metrics.
type Observer interface {
	ObserveEpoch(stats EpochStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(EpochStats)

// ObserveEpoch implements Observer.
func (f ObserverFunc) ObserveEpoch(s EpochStats) { f(s) }

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	ZeroGrad()
	Step()
}

// BatchSource yields one epoch of batches per call.
type BatchSource interface {
	Batches() ([]*dataset.Batch, error)
}

var (
	_ Optimizer   = (*nn.Adam)(nil)
	_ BatchSource = (*dataset.Loader)(nil)
)

// ---------------------------------------------------------------------------
// Trainer
// ---------------------------------------------------------------------------

// Trainer fits graph models.
type Trainer struct {
	cfg       Config
	logger    logging.Logger
	observers []Observer
}

// NewTrainer creates a Trainer.
func NewTrainer(cfg Config, logger logging.Logger, observers ...Observer) *Trainer {
	return &Trainer{cfg: cfg, logger: logging.OrDefault(logger).Named("training"), observers: observers}
}

// Fit trains model for cfg.Epochs epochs and returns the loss history.  An
// epoch first trains on every batch of train, then evaluates every batch of
// val without gradient tracking.  The model is left in eval mode.
func Fit(ctx context.Context, model gnn.Model, train, val BatchSource, opt Optimizer, cfg Config) (*History, error) {
	return NewTrainer(cfg, nil).Fit(ctx, model, train, val, opt)
}

// Fit is the Trainer form of the package-level Fit.
func (t *Trainer) Fit(ctx context.Context, model gnn.Model, train, val BatchSource, opt Optimizer) (*History, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}
	log := t.logger.With(logging.Model(model.Name()))
	log.Info("training started",
		logging.Int("epochs", t.cfg.Epochs),
		logging.Int("parameters", gnn.NumParameters(model)),
		logging.Float64("l1_coef", t.cfg.L1Coef))

	hist := &History{
		Train: make([]float64, 0, t.cfg.Epochs),
		Val:   make([]float64, 0, t.cfg.Epochs),
	}
	start := time.Now()
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		began := time.Now()

		trainLoss, err := t.trainEpoch(ctx, model, train, opt)
		if err != nil {
			return nil, err
		}
		valLoss, err := validate(ctx, model, val)
		if err != nil {
			return nil, err
		}
		hist.Train = append(hist.Train, trainLoss)
		hist.Val = append(hist.Val, valLoss)

		if !isFinite(trainLoss) || !isFinite(valLoss) {
			if t.cfg.FailOnNonFinite {
				return nil, errors.Newf(errors.ErrCodeTrainingDiverged, "non-finite loss at epoch %d", epoch).
					WithDetailf("train=%v val=%v", trainLoss, valLoss)
			}
			log.Warn("non-finite loss", logging.Epoch(epoch), logging.Loss("train", trainLoss), logging.Loss("val", valLoss))
		}

		stats := EpochStats{
			Model:     model.Name(),
			Epoch:     epoch,
			TrainLoss: trainLoss,
			ValLoss:   valLoss,
			Duration:  time.Since(began),
		}
		for _, o := range t.observers {
			o.ObserveEpoch(stats)
		}
		if epoch == t.cfg.Epochs || (t.cfg.LogEvery > 0 && epoch%t.cfg.LogEvery == 0) {
			log.Info("epoch finished",
				logging.Epoch(epoch),
				logging.Loss("train", trainLoss),
				logging.Loss("val", valLoss),
				logging.Duration("elapsed", time.Since(start)))
		}
	}
	return hist, nil
}

func (t *Trainer) trainEpoch(ctx context.Context, model gnn.Model, src BatchSource, opt Optimizer) (float64, error) {
	model.Train()
	batches, err := src.Batches()
	if err != nil {
		return 0, err
	}
	if len(batches) == 0 {
		return 0, errors.New(errors.ErrCodeTrainingEmptyLoader, "training loader yielded no batches")
	}

	params := model.Parameters()
	var total float64
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeCanceled, "training canceled")
		}
		opt.ZeroGrad()
		tp := nn.NewTape()
		pred, err := model.Forward(tp, b)
		if err != nil {
			return 0, err
		}
		loss := nn.MSE(tp, pred, b.Y)
		if t.cfg.L1Coef > 0 {
			loss = nn.Add(tp, loss, nn.Scale(tp, nn.AbsSum(tp, params), t.cfg.L1Coef))
		}
		if err := tp.Backward(loss); err != nil {
			return 0, err
		}
		opt.Step()
		total += loss.Scalar()
	}
	return total / float64(len(batches)), nil
}

func validate(ctx context.Context, model gnn.Model, src BatchSource) (float64, error) {
	model.Eval()
	batches, err := src.Batches()
	if err != nil {
		return 0, err
	}
	if len(batches) == 0 {
		return 0, errors.New(errors.ErrCodeTrainingEmptyLoader, "validation loader yielded no batches")
	}
	var total float64
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeCanceled, "validation canceled")
		}
		pred, err := model.Forward(nil, b)
		if err != nil {
			return 0, err
		}
		total += nn.MSE(nil, pred, b.Y).Scalar()
	}
	return total / float64(len(batches)), nil
}

// ---------------------------------------------------------------------------
// Evaluation
// ---------------------------------------------------------------------------

// Evaluation is the outcome of scoring a model on a loader.
type Evaluation struct {
	Predictions []float64 `json:"predictions"`
	Targets     []float64 `json:"targets"`
	MSE         float64   `json:"mse"`
}

// Evaluate runs model in eval mode over every batch of src and scores the
// concatenated predictions.
func Evaluate(model gnn.Model, src BatchSource) (*Evaluation, error) {
	model.Eval()
	batches, err := src.Batches()
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, errors.New(errors.ErrCodeTrainingEmptyLoader, "evaluation loader yielded no batches")
	}
	ev := &Evaluation{}
	for _, b := range batches {
		preds, err := gnn.Predict(model, b)
		if err != nil {
			return nil, err
		}
		ev.Predictions = append(ev.Predictions, preds...)
		ev.Targets = append(ev.Targets, b.Y...)
	}
	ev.MSE = nn.MeanSquaredError(ev.Predictions, ev.Targets)
	return ev, nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

//Personal.AI order the ending
