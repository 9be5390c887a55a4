// Package classical implements the fingerprint-based baselines of the
// benchmark: an RBF-kernel support vector regressor and a random forest of
// regression trees.
package classical

import (
	"context"

	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Regressor is a model fitted on dense feature rows.
type Regressor interface {
	// Name is the report label.
	Name() string
	Fit(ctx context.Context, x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
}

// checkTrainingData validates shapes and returns the feature count.
func checkTrainingData(x [][]float64, y []float64) (int, error) {
	if len(x) == 0 {
		return 0, errors.New(errors.ErrCodeValidation, "no training rows")
	}
	if len(x) != len(y) {
		return 0, errors.Newf(errors.ErrCodeValidation, "%d rows but %d targets", len(x), len(y))
	}
	d := len(x[0])
	if d == 0 {
		return 0, errors.New(errors.ErrCodeValidation, "rows have no features")
	}
	if err := checkWidth(x, d); err != nil {
		return 0, err
	}
	return d, nil
}

func checkWidth(x [][]float64, d int) error {
	for i, row := range x {
		if len(row) != d {
			return errors.Newf(errors.ErrCodeValidation, "row %d has %d features, want %d", i, len(row), d)
		}
	}
	return nil
}

func notFitted(name string) error {
	return errors.Newf(errors.ErrCodeModelNotFitted, "%s has not been fitted", name)
}

//Personal.AI order the ending
