// Package prediction serves solubility predictions from trained graph
// networks.
package prediction

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/gnn"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/internal/intelligence/reporting"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// DefaultMaxBatch caps the molecules accepted per request.
const DefaultMaxBatch = 256

type Service interface {
	Predict(ctx context.Context, input *PredictInput) (*PredictResult, error)
	Models() []ModelInfo
	// SetMaxBatch changes the per-request limit; n <= 0 restores the default.
	SetMaxBatch(n int)
}

type PredictInput struct {
	Model  string   `json:"model"`
	SMILES []string `json:"smiles"`
}

// Item is the outcome for one input molecule.  Exactly one of LogS and
// Error is set.
type Item struct {
	SMILES string   `json:"smiles"`
	LogS   *float64 `json:"log_s,omitempty"`
	Error  string   `json:"error,omitempty"`
	Code   string   `json:"code,omitempty"`
}

type PredictResult struct {
	Model string `json:"model"`
	Items []Item `json:"items"`
}

type ModelInfo struct {
	Kind       gnn.Kind `json:"kind"`
	Name       string   `json:"name"`
	Parameters int      `json:"parameters"`
}

// entry serializes forward passes of one model.
type entry struct {
	mu    sync.Mutex
	model gnn.Model
}

type serviceImpl struct {
	models   map[gnn.Kind]*entry
	source   featurize.Source
	maxBatch atomic.Int64
	metrics  *prometheus.BenchMetrics
	logger   logging.Logger
}

// NewService serves models.  metrics may be nil.
func NewService(models map[gnn.Kind]gnn.Model, source featurize.Source, maxBatch int, metrics *prometheus.BenchMetrics, logger logging.Logger) (Service, error) {
	if len(models) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one model is required")
	}
	if source == nil {
		return nil, errors.New(errors.ErrCodeValidation, "featurizer is required")
	}
	entries := make(map[gnn.Kind]*entry, len(models))
	for kind, m := range models {
		m.Eval()
		entries[kind] = &entry{model: m}
	}
	s := &serviceImpl{
		models:  entries,
		source:  source,
		metrics: metrics,
		logger:  logging.OrDefault(logger).Named("prediction"),
	}
	s.SetMaxBatch(maxBatch)
	return s, nil
}

func (s *serviceImpl) SetMaxBatch(n int) {
	if n <= 0 {
		n = DefaultMaxBatch
	}
	s.maxBatch.Store(int64(n))
}

func (s *serviceImpl) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(s.models))
	for kind, e := range s.models {
		out = append(out, ModelInfo{Kind: kind, Name: e.model.Name(), Parameters: gnn.NumParameters(e.model)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Predict featurizes every SMILES and runs the valid ones through the model
// as one batch.  Unparsable or bond-less molecules get a per-item error.
func (s *serviceImpl) Predict(ctx context.Context, input *PredictInput) (*PredictResult, error) {
	if input == nil || len(input.SMILES) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "smiles list is empty")
	}
	if limit := int(s.maxBatch.Load()); len(input.SMILES) > limit {
		return nil, errors.Newf(errors.ErrCodeValidation, "at most %d molecules per request, got %d", limit, len(input.SMILES))
	}
	kind, err := gnn.ParseKind(input.Model)
	if err != nil {
		return nil, err
	}
	e, ok := s.models[kind]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeNotFound, "model %q is not loaded", kind)
	}

	items := make([]Item, len(input.SMILES))
	graphs := make([]*featurize.Graph, 0, len(input.SMILES))
	slots := make([]int, 0, len(input.SMILES))
	for i, smi := range input.SMILES {
		items[i].SMILES = smi
		f, err := s.source.Features(ctx, smi)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeCanceled) {
				return nil, err
			}
			s.itemError(&items[i], string(kind), err)
			continue
		}
		if f.Graph.Degenerate() {
			s.itemError(&items[i], string(kind), errors.New(errors.ErrCodeMoleculeDegenerateGraph, "molecule has no bonds"))
			continue
		}
		graphs = append(graphs, f.Graph)
		slots = append(slots, i)
	}

	if len(graphs) > 0 {
		preds, err := s.forward(e, graphs)
		if err != nil {
			return nil, err
		}
		for k, i := range slots {
			v := preds[k]
			items[i].LogS = &v
			if s.metrics != nil {
				prometheus.RecordPrediction(s.metrics, string(kind), true)
			}
		}
	}
	return &PredictResult{Model: e.model.Name(), Items: items}, nil
}

func (s *serviceImpl) forward(e *entry, graphs []*featurize.Graph) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := dataset.Collate(graphs, e.model.Device())
	if err != nil {
		return nil, err
	}
	return gnn.Predict(e.model, b)
}

func (s *serviceImpl) itemError(it *Item, model string, err error) {
	it.Error = err.Error()
	it.Code = string(errors.GetCode(err))
	if s.metrics != nil {
		prometheus.RecordPrediction(s.metrics, model, false)
	}
	s.logger.Debug("prediction skipped", logging.SMILES(it.SMILES), logging.Err(err))
}

// ArtifactReader is the part of an artifact store checkpoint loading needs.
type ArtifactReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// LoadModels restores the checkpoints of kinds published by a benchmark run.
// Every checkpoint must have been trained with featurizer options opts.
func LoadModels(ctx context.Context, store ArtifactReader, device nn.Device, opts featurize.Options, kinds ...gnn.Kind) (map[gnn.Kind]gnn.Model, error) {
	if len(kinds) == 0 {
		kinds = []gnn.Kind{gnn.KindConv, gnn.KindAttention}
	}
	out := make(map[gnn.Kind]gnn.Model, len(kinds))
	for _, kind := range kinds {
		data, err := store.Get(ctx, reporting.CheckpointKey(kind))
		if err != nil {
			return nil, err
		}
		ck, err := gnn.DecodeCheckpoint(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if err := ck.CheckFeaturizer(opts); err != nil {
			return nil, err
		}
		m, err := ck.Restore(device)
		if err != nil {
			return nil, err
		}
		out[kind] = m
	}
	return out, nil
}

//Personal.AI order the ending
