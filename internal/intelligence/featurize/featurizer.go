// Package featurize turns SMILES strings into the two model inputs of the
// benchmark: Morgan fingerprints for the classical regressors and molecular
// graphs for the graph networks.
package featurize

import (
	"context"

	"github.com/turtacn/solubility-bench/internal/domain/molecule"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// Options configures fingerprint and graph construction.
type Options struct {
	Radius         int  `json:"radius"`
	NBits          int  `json:"n_bits"`
	SymmetricEdges bool `json:"symmetric_edges"`
}

// DefaultOptions returns radius 3, 1024 bits, one edge pair per bond.
func DefaultOptions() Options {
	return Options{Radius: molecule.DefaultMorganRadius, NBits: molecule.DefaultMorganBits}
}

// Features bundles both representations of one molecule.
type Features struct {
	SMILES      string
	Molecule    *molecule.Molecule
	Fingerprint *molecule.Fingerprint
	Graph       *Graph
}

// Source produces Features.  Featurizer and CachedFeaturizer implement it.
type Source interface {
	Features(ctx context.Context, smiles string) (*Features, error)
}

// Featurizer is stateless apart from its options and safe for concurrent use.
type Featurizer struct {
	opts   Options
	logger logging.Logger
}

// New builds a Featurizer.  Zero radius/bit options fall back to defaults;
// radius 0 is not expressible here, use a positive value.
func New(opts Options, logger logging.Logger) *Featurizer {
	d := DefaultOptions()
	if opts.Radius <= 0 {
		opts.Radius = d.Radius
	}
	if opts.NBits <= 0 {
		opts.NBits = d.NBits
	}
	return &Featurizer{opts: opts, logger: logging.OrDefault(logger)}
}

// Options returns the effective options.
func (f *Featurizer) Options() Options { return f.opts }

func (f *Featurizer) parse(smiles string) (*molecule.Molecule, error) {
	m, err := molecule.ParseSMILES(smiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, "invalid molecule").
			WithDetailf("smiles=%q", smiles)
	}
	return m, nil
}

// Fingerprint returns the Morgan fingerprint of smiles.
func (f *Featurizer) Fingerprint(smiles string) (*molecule.Fingerprint, error) {
	m, err := f.parse(smiles)
	if err != nil {
		return nil, err
	}
	return molecule.Morgan(m, f.opts.Radius, f.opts.NBits)
}

// Graph returns the molecular graph of smiles.  Degenerate graphs are
// returned, flagged through Graph.Degenerate.
func (f *Featurizer) Graph(smiles string) (*Graph, error) {
	m, err := f.parse(smiles)
	if err != nil {
		return nil, err
	}
	return GraphFromMolecule(m, f.opts.SymmetricEdges), nil
}

// Featurize parses smiles once and derives both representations.  It never
// returns partial features.
func (f *Featurizer) Featurize(smiles string) (*Features, error) {
	m, err := f.parse(smiles)
	if err != nil {
		return nil, err
	}
	return f.FromMolecule(m)
}

// FromMolecule derives both representations from a parsed molecule.
func (f *Featurizer) FromMolecule(m *molecule.Molecule) (*Features, error) {
	fp, err := molecule.Morgan(m, f.opts.Radius, f.opts.NBits)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeaturizationFailed, "fingerprint failed")
	}
	g := GraphFromMolecule(m, f.opts.SymmetricEdges)
	if g.Degenerate() {
		f.logger.Debug("degenerate molecular graph", logging.SMILES(m.SMILES))
	}
	return &Features{SMILES: m.SMILES, Molecule: m, Fingerprint: fp, Graph: g}, nil
}

// Features implements Source.
func (f *Featurizer) Features(ctx context.Context, smiles string) (*Features, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCanceled, "featurization canceled")
	}
	return f.Featurize(smiles)
}

//Personal.AI order the ending
