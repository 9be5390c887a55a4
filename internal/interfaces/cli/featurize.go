package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/solubility-bench/internal/domain/molecule"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// FeatureSummary describes one featurized SMILES.
type FeatureSummary struct {
	SMILES     string   `json:"smiles"`
	Nodes      int      `json:"nodes,omitempty"`
	Edges      int      `json:"edges,omitempty"`
	OnBits     int      `json:"on_bits,omitempty"`
	Degenerate bool     `json:"degenerate,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
	Error      string   `json:"error,omitempty"`
	Code       string   `json:"code,omitempty"`
}

// FeatureReport is the output of the featurize command.
type FeatureReport struct {
	NBits     int              `json:"n_bits"`
	Radius    int              `json:"radius"`
	Molecules []FeatureSummary `json:"molecules"`
}

func (r *FeatureReport) TableHeaders() []string {
	return []string{"SMILES", "Nodes", "Edges", "On bits", "Tanimoto", "Note"}
}

func (r *FeatureReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Molecules))
	for _, m := range r.Molecules {
		if m.Error != "" {
			rows = append(rows, []string{m.SMILES, "-", "-", "-", "-", m.Code})
			continue
		}
		sim := "-"
		if m.Similarity != nil {
			sim = strconv.FormatFloat(*m.Similarity, 'f', 3, 64)
		}
		note := ""
		if m.Degenerate {
			note = "no bonds"
		}
		rows = append(rows, []string{
			m.SMILES, strconv.Itoa(m.Nodes), strconv.Itoa(m.Edges), strconv.Itoa(m.OnBits), sim, note,
		})
	}
	return rows
}

func (r *FeatureReport) String() string {
	var sb strings.Builder
	for i, m := range r.Molecules {
		if i > 0 {
			sb.WriteString("\n")
		}
		if m.Error != "" {
			fmt.Fprintf(&sb, "%s: %s", m.SMILES, m.Error)
			continue
		}
		fmt.Fprintf(&sb, "%s: %d nodes, %d edges, %d/%d bits set", m.SMILES, m.Nodes, m.Edges, m.OnBits, r.NBits)
	}
	return sb.String()
}

func newFeaturizeCmd() *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "featurize <smiles>...",
		Short: "Print graph and fingerprint summaries for SMILES",
		Long: "featurize parses each SMILES and reports the molecular graph size and the\n" +
			"number of Morgan bits set.  The Tanimoto column compares every molecule\n" +
			"with the reference (the first argument unless --reference is given).",
		Example: "  solbench featurize CCO c1ccccc1O\n  solbench featurize --reference CCO CCN CCC",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			deps, err := buildDeps(cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close() }()

			report, err := featurizeAll(cmd, deps.Source, reference, args)
			if err != nil {
				return err
			}
			report.NBits = cliCtx.Config.Featurizer.NBits
			report.Radius = cliCtx.Config.Featurizer.Radius
			return PrintResult(cmd, report)
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "SMILES to compare against (default: first argument)")
	return cmd
}

func featurizeAll(cmd *cobra.Command, source featurize.Source, reference string, smiles []string) (*FeatureReport, error) {
	ctx := cmd.Context()
	report := &FeatureReport{Molecules: make([]FeatureSummary, len(smiles))}

	var refFP *molecule.Fingerprint
	if reference != "" {
		f, err := source.Features(ctx, reference)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "reference molecule")
		}
		refFP = f.Fingerprint
	}

	for i, smi := range smiles {
		s := &report.Molecules[i]
		s.SMILES = smi
		f, err := source.Features(ctx, smi)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeCanceled) {
				return nil, err
			}
			s.Error = err.Error()
			s.Code = string(errors.GetCode(err))
			continue
		}
		s.Nodes = f.Graph.NumNodes()
		s.Edges = f.Graph.NumEdges()
		s.OnBits = f.Fingerprint.NumOnBits
		s.Degenerate = f.Graph.Degenerate()

		if refFP == nil {
			refFP = f.Fingerprint
		}
		sim, err := molecule.Tanimoto(refFP, f.Fingerprint)
		if err != nil {
			return nil, err
		}
		s.Similarity = &sim
	}
	return report, nil
}

//Personal.AI order the ending
