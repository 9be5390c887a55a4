// Package reporting scores predictions and renders the benchmark's plots and
// summary.
package reporting

import (
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Method labels in report order.
const (
	MethodSVM          = "SVM"
	MethodRandomForest = "Random Forest"
	MethodConvGNN      = "Conv. GNN"
	MethodAttenGNN     = "Atten. GNN"
)

// MethodOrder is the fixed order of bar chart entries.
var MethodOrder = [4]string{MethodSVM, MethodRandomForest, MethodConvGNN, MethodAttenGNN}

// MSE returns the mean squared error of pred against target.
func MSE(pred, target []float64) (float64, error) {
	if len(pred) != len(target) {
		return 0, errors.Newf(errors.ErrCodeReportSeriesMismatch,
			"%d predictions for %d targets", len(pred), len(target))
	}
	if len(pred) == 0 {
		return 0, errors.New(errors.ErrCodeReportSeriesMismatch, "no predictions to score")
	}
	return nn.MeanSquaredError(pred, target), nil
}

// BarEntry is one bar of the comparison chart.
type BarEntry struct {
	Method string  `json:"method"`
	MSE    float64 `json:"mse"`
}

// NewBarSeries orders scores by MethodOrder.  Every method must be present
// and no other may be.
func NewBarSeries(scores map[string]float64) ([]BarEntry, error) {
	if len(scores) != len(MethodOrder) {
		return nil, errors.Newf(errors.ErrCodeReportSeriesMismatch,
			"need %d scores, got %d", len(MethodOrder), len(scores))
	}
	out := make([]BarEntry, 0, len(MethodOrder))
	for _, m := range MethodOrder {
		v, ok := scores[m]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeReportSeriesMismatch, "missing score for %q", m)
		}
		out = append(out, BarEntry{Method: m, MSE: v})
	}
	return out, nil
}

//Personal.AI order the ending
