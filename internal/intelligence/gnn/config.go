// Package gnn defines the two graph regression networks of the benchmark:
// a three-layer graph convolution network and a three-layer graph attention
// network, each followed by mean pooling and a linear head.
package gnn

import (
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// ---------------------------------------------------------------------------
// Model configuration
// ---------------------------------------------------------------------------

// Kind enumerates the supported architectures.
type Kind string

const (
	KindConv      Kind = "conv"
	KindAttention Kind = "attention"
)

// DisplayName returns the label used in reports.
func (k Kind) DisplayName() string {
	switch k {
	case KindConv:
		return "Conv. GNN"
	case KindAttention:
		return "Atten. GNN"
	default:
		return string(k)
	}
}

// ParseKind accepts the canonical kind names plus the short aliases used on
// the command line and in the predict API.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "conv", "gcn":
		return KindConv, nil
	case "attention", "atten", "gat":
		return KindAttention, nil
	}
	return "", errors.Newf(errors.ErrCodeModelUnknownKind, "unknown model kind %q", s)
}

// ModelConfig holds the architecture hyperparameters.  Hidden lists the
// per-head output width of each graph layer; Heads is only read for
// KindAttention and must then have the same length.
type ModelConfig struct {
	Kind       Kind    `json:"kind" yaml:"kind"`
	InFeatures int     `json:"in_features" yaml:"in_features"`
	Hidden     []int   `json:"hidden" yaml:"hidden"`
	Heads      []int   `json:"heads,omitempty" yaml:"heads,omitempty"`
	Dropout    float64 `json:"dropout" yaml:"dropout"`
	Seed       int64   `json:"seed" yaml:"seed"`
}

// DefaultConvConfig returns the GCN 32/64/16 architecture with dropout 0.5.
func DefaultConvConfig() ModelConfig {
	return ModelConfig{
		Kind:       KindConv,
		InFeatures: featurize.NodeFeatures,
		Hidden:     []int{32, 64, 16},
		Dropout:    0.5,
	}
}

// DefaultAttentionConfig returns the GAT 32×1 / 32×2 / 8×2 architecture
// with dropout 0.3.
func DefaultAttentionConfig() ModelConfig {
	return ModelConfig{
		Kind:       KindAttention,
		InFeatures: featurize.NodeFeatures,
		Hidden:     []int{32, 32, 8},
		Heads:      []int{1, 2, 2},
		Dropout:    0.3,
	}
}

// DefaultConfig returns the default configuration for kind.
func DefaultConfig(kind Kind) (ModelConfig, error) {
	switch kind {
	case KindConv:
		return DefaultConvConfig(), nil
	case KindAttention:
		return DefaultAttentionConfig(), nil
	}
	return ModelConfig{}, errors.Newf(errors.ErrCodeModelUnknownKind, "unknown model kind %q", kind)
}

// Validate checks the configuration for consistency.
func (c ModelConfig) Validate() error {
	if c.Kind != KindConv && c.Kind != KindAttention {
		return errors.Newf(errors.ErrCodeModelUnknownKind, "unknown model kind %q", c.Kind)
	}
	if c.InFeatures <= 0 {
		return errors.New(errors.ErrCodeModelConfigInvalid, "in_features must be positive")
	}
	if len(c.Hidden) == 0 {
		return errors.New(errors.ErrCodeModelConfigInvalid, "at least one hidden layer is required")
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return errors.Newf(errors.ErrCodeModelConfigInvalid, "hidden[%d] must be positive, got %d", i, h)
		}
	}
	if c.Kind == KindAttention {
		if len(c.Heads) != len(c.Hidden) {
			return errors.Newf(errors.ErrCodeModelConfigInvalid,
				"heads has %d entries, hidden has %d", len(c.Heads), len(c.Hidden))
		}
		for i, h := range c.Heads {
			if h <= 0 {
				return errors.Newf(errors.ErrCodeModelConfigInvalid, "heads[%d] must be positive, got %d", i, h)
			}
		}
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return errors.New(errors.ErrCodeModelConfigInvalid, "dropout must be in [0, 1)")
	}
	return nil
}

// OutFeatures returns the width of the last graph layer, i.e. the input
// width of the linear head.
func (c ModelConfig) OutFeatures() int {
	last := len(c.Hidden) - 1
	if c.Kind == KindAttention {
		return c.Hidden[last] * c.Heads[last]
	}
	return c.Hidden[last]
}

//Personal.AI order the ending
