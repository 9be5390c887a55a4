package reporting

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/turtacn/solubility-bench/internal/intelligence/dataset"
	"github.com/turtacn/solubility-bench/internal/intelligence/training"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Summary is the machine-readable record of one benchmark run.
type Summary struct {
	RunID      string                       `json:"run_id"`
	StartedAt  time.Time                    `json:"started_at"`
	FinishedAt time.Time                    `json:"finished_at"`
	Dataset    dataset.Stats                `json:"dataset"`
	Scores     []BarEntry                   `json:"scores"`
	Histories  map[string]*training.History `json:"histories,omitempty"`
	Artifacts  map[string]string            `json:"artifacts,omitempty"`
}

// NewSummary starts a summary with a fresh run id.
func NewSummary(startedAt time.Time) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		StartedAt: startedAt.UTC(),
		Histories: make(map[string]*training.History),
		Artifacts: make(map[string]string),
	}
}

// Duration is the wall time of the run, zero until FinishedAt is set.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Score returns the MSE recorded for method.
func (s *Summary) Score(method string) (float64, bool) {
	e, ok := lo.Find(s.Scores, func(e BarEntry) bool { return e.Method == method })
	return e.MSE, ok
}

// TableHeaders returns the column names of the score table.
func (s *Summary) TableHeaders() []string {
	return []string{"Method", "Test MSE"}
}

// TableRows returns one row per score in report order.
func (s *Summary) TableRows() [][]string {
	return lo.Map(s.Scores, func(e BarEntry, _ int) []string {
		return []string{e.Method, fmt.Sprintf("%.4f", e.MSE)}
	})
}

// lossSeries encodes non-finite losses as null, which encoding/json cannot
// otherwise represent.
type lossSeries []float64

func (l lossSeries) MarshalJSON() ([]byte, error) {
	out := lo.Map(l, func(v float64, _ int) *float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	})
	return json.Marshal(out)
}

// JSON renders the summary indented for humans.
func (s *Summary) JSON() ([]byte, error) {
	type history struct {
		Train lossSeries `json:"train"`
		Val   lossSeries `json:"val"`
	}
	type alias Summary
	view := struct {
		*alias
		Histories map[string]history `json:"histories,omitempty"`
	}{alias: (*alias)(s)}
	if len(s.Histories) > 0 {
		view.Histories = lo.MapValues(s.Histories, func(h *training.History, _ string) history {
			return history{Train: h.Train, Val: h.Val}
		})
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArtifactStoreFailed, "failed to encode summary")
	}
	return data, nil
}

// String renders one "<method> MSE: x.xxxx" line per score.
func (s *Summary) String() string {
	lines := lo.Map(s.Scores, func(e BarEntry, _ int) string {
		return fmt.Sprintf("%s MSE: %.4f", e.Method, e.MSE)
	})
	return strings.Join(lines, "\n")
}

// MarshalJSON makes a Summary encode the same way wherever it is embedded.
func (s *Summary) MarshalJSON() ([]byte, error) { return s.JSON() }

//Personal.AI order the ending
