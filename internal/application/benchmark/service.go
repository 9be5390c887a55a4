// Package benchmark runs the end-to-end solubility comparison: load the
// table, featurize, fit the four regressors, score them on the held-out
// partition and publish the report.
package benchmark

import (
	"context"
	"time"

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

// Service runs benchmarks.
type Service interface {
	Run(ctx context.Context, input *Input) (*Result, error)
}

// Input selects the data of one run.  Rows, when non-nil, take precedence
// over Path.
type Input struct {
	Path string
	Rows []dataset.Row
	// Publish writes plots and summary.json through the artifact store.
	Publish bool
}

// Result is what a run produced.  Scores are in reporting.MethodOrder.
type Result struct {
	Summary   *reporting.Summary
	Dataset   dataset.Stats
	Scores    []reporting.BarEntry
	Histories map[string]*training.History
	Artifacts map[string]string
	// Models holds the trained graph networks in eval mode.
	Models map[gnn.Kind]gnn.Model
}

// Deps are the collaborators of a Service.  Store and Metrics may be nil;
// a nil Store disables publishing.
type Deps struct {
	Config  *config.Config
	Source  featurize.Source
	Store   reporting.ArtifactWriter
	Metrics *prometheus.BenchMetrics
	Logger  logging.Logger
}

type serviceImpl struct {
	cfg     *config.Config
	source  featurize.Source
	store   reporting.ArtifactWriter
	metrics *prometheus.BenchMetrics
	device  nn.Device
	logger  logging.Logger
}

// NewService validates deps and builds a Service.
func NewService(deps Deps) (Service, error) {
	if deps.Config == nil {
		return nil, errors.New(errors.ErrCodeValidation, "config is required")
	}
	device := nn.Device(deps.Config.Device)
	if err := device.Validate(); err != nil {
		return nil, err
	}
	logger := logging.OrDefault(deps.Logger).Named("benchmark")
	source := deps.Source
	if source == nil {
		source = featurize.New(FeaturizerOptions(deps.Config.Featurizer), logger)
	}
	return &serviceImpl{
		cfg:     deps.Config,
		source:  source,
		store:   deps.Store,
		metrics: deps.Metrics,
		device:  device,
		logger:  logger,
	}, nil
}

func (s *serviceImpl) Run(ctx context.Context, input *Input) (*Result, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeValidation, "input is required")
	}
	summary := reporting.NewSummary(time.Now())
	log := s.logger.With(logging.String("run_id", summary.RunID))

	rows, err := s.load(input)
	if err != nil {
		return nil, s.fail("dataset", err)
	}
	ds, err := dataset.NewAssembler(s.source, SplitOptions(s.cfg.Split), log).Assemble(ctx, rows)
	if err != nil {
		return nil, s.fail("dataset", err)
	}
	summary.Dataset = ds.Stats()
	s.recordDataset(summary.Dataset)

	scores := make(map[string]float64, len(reporting.MethodOrder))
	for _, reg := range []classical.Regressor{
		newSVR(s.cfg.Classical.SVR, log),
		newForest(s.cfg.Classical.Forest, log),
	} {
		mse, err := s.fitClassical(ctx, reg, ds, log)
		if err != nil {
			return nil, s.fail("classical", err)
		}
		scores[reg.Name()] = mse
	}

	models := make(map[gnn.Kind]gnn.Model, 2)
	for _, kind := range []gnn.Kind{gnn.KindConv, gnn.KindAttention} {
		run, err := s.fitGraph(ctx, kind, ds, log)
		if err != nil {
			return nil, s.fail("training", err)
		}
		scores[run.model.Name()] = run.mse
		summary.Histories[run.model.Name()] = run.history
		models[kind] = run.model
	}

	series, err := reporting.NewBarSeries(scores)
	if err != nil {
		return nil, s.fail("reporting", err)
	}
	summary.Scores = series
	summary.FinishedAt = time.Now().UTC()

	if input.Publish && s.store != nil {
		if err := s.publish(ctx, summary, models); err != nil {
			return nil, s.fail("reporting", err)
		}
	}

	log.Info("benchmark finished", logging.Duration("elapsed", summary.Duration()))
	return &Result{
		Summary:   summary,
		Dataset:   summary.Dataset,
		Scores:    series,
		Histories: summary.Histories,
		Artifacts: summary.Artifacts,
		Models:    models,
	}, nil
}

func (s *serviceImpl) load(input *Input) ([]dataset.Row, error) {
	if input.Rows != nil {
		return input.Rows, nil
	}
	path := input.Path
	if path == "" {
		path = s.cfg.Data.Path
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeValidation, "no input table given")
	}
	return dataset.LoadCSVFile(path, CSVOptions(s.cfg.Data), s.logger)
}

func (s *serviceImpl) publish(ctx context.Context, summary *reporting.Summary, models map[gnn.Kind]gnn.Model) error {
	pub := reporting.NewPublisher(s.store, reporting.PublisherOptions{
		HistorySize: reporting.PlotSize{Width: s.cfg.Report.PlotWidthInch, Height: s.cfg.Report.PlotHeightInch},
	}, s.logger)
	if s.cfg.Report.SaveCheckpoints {
		opts := FeaturizerOptions(s.cfg.Featurizer)
		for _, kind := range []gnn.Kind{gnn.KindConv, gnn.KindAttention} {
			if err := pub.PublishCheckpoint(ctx, summary, models[kind], opts); err != nil {
				return err
			}
		}
	}
	return pub.Publish(ctx, summary)
}

func (s *serviceImpl) recordDataset(st dataset.Stats) {
	if s.metrics == nil {
		return
	}
	for partition, n := range map[string]int{
		"fingerprint_train": st.FingerprintTrain,
		"fingerprint_test":  st.FingerprintTest,
		"graph_train":       st.GraphTrain,
		"graph_test":        st.GraphTest,
		"invalid":           st.Invalid,
	} {
		s.metrics.DatasetRows.WithLabelValues(partition).Set(float64(n))
	}
}

func (s *serviceImpl) fail(component string, err error) error {
	if s.metrics != nil {
		prometheus.RecordError(s.metrics, component, err)
	}
	s.logger.Error("benchmark failed", logging.String("stage", component), logging.Err(err))
	return err
}

//Personal.AI order the ending
