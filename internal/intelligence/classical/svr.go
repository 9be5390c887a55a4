package classical

import (
	"context"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Gamma modes for the RBF kernel.
const (
	// GammaScale is 1/(d·Var(X)) over every entry of X.
	GammaScale = "scale"
	// GammaAuto is 1/d.
	GammaAuto = "auto"
)

// SVROptions configures the ε-insensitive support vector regressor.
type SVROptions struct {
	C         float64
	Epsilon   float64
	Gamma     string // GammaScale, GammaAuto or a positive number
	Tolerance float64
	MaxPasses int
}

// DefaultSVROptions returns C=1, ε=0.1, γ=scale.
func DefaultSVROptions() SVROptions {
	return SVROptions{C: 1, Epsilon: 0.1, Gamma: GammaScale, Tolerance: 1e-3, MaxPasses: 1000}
}

// SVR is ε-SVR with an RBF kernel.  The bias is folded into the kernel as
// K(a, b) + 1, which turns the dual into a box-constrained problem that
// coordinate descent solves without the equality constraint:
//
//	min_β ½ βᵀ(K+1)β − yᵀβ + ε‖β‖₁   subject to |β_i| ≤ C
//
// and f(x) = Σ β_i (K(x_i, x) + 1).
type SVR struct {
	opts   SVROptions
	logger logging.Logger

	gamma   float64
	support [][]float64
	coef    []float64
	passes  int
}

// NewSVR builds an unfitted SVR.  Zero options fall back to defaults.
func NewSVR(opts SVROptions, logger logging.Logger) *SVR {
	def := DefaultSVROptions()
	if opts.C <= 0 {
		opts.C = def.C
	}
	if opts.Epsilon < 0 {
		opts.Epsilon = def.Epsilon
	}
	if opts.Gamma == "" {
		opts.Gamma = def.Gamma
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = def.MaxPasses
	}
	return &SVR{opts: opts, logger: logging.OrDefault(logger).Named("svr")}
}

// Name implements Regressor.
func (s *SVR) Name() string { return "SVM" }

// Gamma returns the kernel width resolved at fit time.
func (s *SVR) Gamma() float64 { return s.gamma }

// NumSupportVectors returns the number of rows with a non-zero coefficient.
func (s *SVR) NumSupportVectors() int { return len(s.support) }

// resolveGamma turns the configured gamma into a number for x.
func resolveGamma(gamma string, x [][]float64, d int) (float64, error) {
	switch gamma {
	case GammaScale:
		all := make([]float64, 0, len(x)*d)
		for _, row := range x {
			all = append(all, row...)
		}
		v := stat.PopVariance(all, nil)
		if v == 0 {
			return 1, nil
		}
		return 1 / (float64(d) * v), nil
	case GammaAuto:
		return 1 / float64(d), nil
	}
	g, err := strconv.ParseFloat(gamma, 64)
	if err != nil || g <= 0 {
		return 0, errors.Newf(errors.ErrCodeModelConfigInvalid, "gamma %q must be scale, auto or a positive number", gamma)
	}
	return g, nil
}

func rbf(gamma float64, a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-gamma * d * d)
}

// Fit implements Regressor.
func (s *SVR) Fit(ctx context.Context, x [][]float64, y []float64) error {
	d, err := checkTrainingData(x, y)
	if err != nil {
		return err
	}
	gamma, err := resolveGamma(s.opts.Gamma, x, d)
	if err != nil {
		return err
	}

	n := len(x)
	q := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		q.SetSym(i, i, 2)
		for j := i + 1; j < n; j++ {
			q.SetSym(i, j, rbf(gamma, x[i], x[j])+1)
		}
	}

	beta := make([]float64, n)
	grad := make([]float64, n) // (Qβ)_i − y_i
	for i := range grad {
		grad[i] = -y[i]
	}
	c, eps := s.opts.C, s.opts.Epsilon

	converged := false
	pass := 0
	for pass < s.opts.MaxPasses && !converged {
		pass++
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCodeCanceled, "svr fit canceled")
		}
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			qii := q.At(i, i)
			z := beta[i] - grad[i]/qii
			b := math.Max(math.Abs(z)-eps/qii, 0)
			b = math.Copysign(math.Min(b, c), z)
			delta := b - beta[i]
			if delta == 0 {
				continue
			}
			beta[i] = b
			for j := 0; j < n; j++ {
				grad[j] += delta * q.At(j, i)
			}
			maxDelta = math.Max(maxDelta, math.Abs(delta))
		}
		converged = maxDelta < s.opts.Tolerance
	}

	s.gamma = gamma
	s.passes = pass
	s.support = s.support[:0]
	s.coef = s.coef[:0]
	for i, b := range beta {
		if b != 0 {
			s.support = append(s.support, x[i])
			s.coef = append(s.coef, b)
		}
	}
	s.logger.Info("svr fitted",
		logging.Int("rows", n),
		logging.Int("features", d),
		logging.Float64("gamma", gamma),
		logging.Int("support_vectors", len(s.support)),
		logging.Int("passes", s.passes))
	if !converged {
		s.logger.Warn("svr did not converge", logging.Int("max_passes", s.opts.MaxPasses))
	}
	return nil
}

// Predict implements Regressor.
func (s *SVR) Predict(x [][]float64) ([]float64, error) {
	if s.gamma == 0 {
		return nil, notFitted(s.Name())
	}
	if len(s.support) > 0 {
		if err := checkWidth(x, len(s.support[0])); err != nil {
			return nil, err
		}
	}
	out := make([]float64, len(x))
	for i, row := range x {
		var f float64
		for k, sv := range s.support {
			f += s.coef[k] * (rbf(s.gamma, sv, row) + 1)
		}
		out[i] = f
	}
	return out, nil
}

var _ Regressor = (*SVR)(nil)

//Personal.AI order the ending
