package reporting

import (
	"bytes"
	"context"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/gnn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Artifact keys.
const (
	KeyConvHistory  = "conv_gnn_history.png"
	KeyAttenHistory = "atten_gnn_history.png"
	KeyComparison   = "mse_comparison.png"
	KeySummary      = "summary.json"
	checkpointDir   = "checkpoints/"
)

// historyKeys maps a GNN method to its history plot.
var historyKeys = map[string]string{
	MethodConvGNN:  KeyConvHistory,
	MethodAttenGNN: KeyAttenHistory,
}

// ArtifactWriter is the part of an artifact store the publisher needs.
type ArtifactWriter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// PublisherOptions sets the figure sizes.  Zero sizes fall back to the
// defaults.
type PublisherOptions struct {
	HistorySize PlotSize
	BarSize     PlotSize
}

// Publisher renders plots and the summary and hands them to a store.
type Publisher struct {
	store  ArtifactWriter
	opts   PublisherOptions
	logger logging.Logger
}

// NewPublisher creates a Publisher writing to store.
func NewPublisher(store ArtifactWriter, opts PublisherOptions, logger logging.Logger) *Publisher {
	return &Publisher{
		store:  store,
		opts:   opts,
		logger: logging.OrDefault(logger).Named("publisher"),
	}
}

// Publish writes the history plots of every GNN in s.Histories, the MSE
// comparison chart and finally summary.json.  Artifact locations are
// recorded in s.Artifacts before the summary itself is encoded.
func (p *Publisher) Publish(ctx context.Context, s *Summary) error {
	if s == nil {
		return errors.New(errors.ErrCodeValidation, "summary is nil")
	}
	if s.Artifacts == nil {
		s.Artifacts = make(map[string]string)
	}

	for _, method := range []string{MethodConvGNN, MethodAttenGNN} {
		h, ok := s.Histories[method]
		if !ok {
			continue
		}
		png, err := HistoryPlot(method, h, p.opts.HistorySize)
		if err != nil {
			return err
		}
		if err := p.put(ctx, s, historyKeys[method], png, "image/png"); err != nil {
			return err
		}
	}

	png, err := BarChart(s.Scores, p.opts.BarSize)
	if err != nil {
		return err
	}
	if err := p.put(ctx, s, KeyComparison, png, "image/png"); err != nil {
		return err
	}

	// summary.json lists itself, so reserve the entry before encoding.
	s.Artifacts[KeySummary] = KeySummary
	data, err := s.JSON()
	if err != nil {
		return err
	}
	loc, err := p.store.Put(ctx, KeySummary, data, "application/json")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to write summary")
	}
	s.Artifacts[KeySummary] = loc
	p.logger.Info("report published",
		logging.String("run_id", s.RunID),
		logging.Int("artifacts", len(s.Artifacts)))
	return nil
}

// PublishCheckpoint stores m, trained on graphs built with opts, as
// checkpoints/<kind>.json.
func (p *Publisher) PublishCheckpoint(ctx context.Context, s *Summary, m gnn.Model, opts featurize.Options) error {
	var buf bytes.Buffer
	if err := gnn.SaveCheckpoint(&buf, m, opts); err != nil {
		return err
	}
	key := CheckpointKey(m.Config().Kind)
	return p.put(ctx, s, key, buf.Bytes(), "application/json")
}

// CheckpointKey is the artifact key of a model checkpoint.
func CheckpointKey(kind gnn.Kind) string {
	return checkpointDir + string(kind) + ".json"
}

func (p *Publisher) put(ctx context.Context, s *Summary, key string, data []byte, contentType string) error {
	loc, err := p.store.Put(ctx, key, data, contentType)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to write artifact").WithDetailf("key=%s", key)
	}
	s.Artifacts[key] = loc
	p.logger.Debug("artifact stored", logging.String("key", key), logging.String("location", loc))
	return nil
}

//Personal.AI order the ending
