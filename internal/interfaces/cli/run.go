package cli

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/turtacn/solubility-bench/internal/application/benchmark"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/storage"
	"github.com/turtacn/solubility-bench/internal/intelligence/reporting"
)

type runOptions struct {
	dataPath    string
	outputDir   string
	epochs      int
	noPublish   bool
	checkpoints bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full benchmark and print the MSE table",
		Long: "run loads the solubility table, fits SVR and Random Forest on Morgan\n" +
			"fingerprints and both graph networks on molecular graphs, then writes\n" +
			"the loss curves, the comparison chart and summary.json.",
		Example: "  solbench run --data delaney.csv --epochs 600\n  solbench run -o json --no-publish",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.dataPath, "data", "d", "", "input table (overrides data.path)")
	f.StringVar(&opts.outputDir, "output-dir", "", "artifact directory (overrides report.output_dir)")
	f.IntVar(&opts.epochs, "epochs", 0, "training epochs per graph network (overrides training.epochs)")
	f.BoolVar(&opts.noPublish, "no-publish", false, "skip writing plots and summary")
	f.BoolVar(&opts.checkpoints, "save-checkpoints", false, "also store graph network checkpoints for serve")
	return cmd
}

func runBenchmark(cmd *cobra.Command, opts *runOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := *cliCtx.Config
	if opts.outputDir != "" {
		cfg.Report.OutputDir = opts.outputDir
	}
	if opts.epochs > 0 {
		cfg.Training.Epochs = opts.epochs
	}
	if opts.checkpoints {
		cfg.Report.SaveCheckpoints = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cliCtx.Logger

	deps, err := buildDeps(&cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	var store reporting.ArtifactWriter
	if !opts.noPublish {
		st, err := storage.New(cfg.Storage, cfg.Report.OutputDir, logger)
		if err != nil {
			return err
		}
		store = st
	}

	svc, err := benchmark.NewService(benchmark.Deps{
		Config:  &cfg,
		Source:  deps.Source,
		Store:   store,
		Metrics: deps.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	result, err := svc.Run(cmd.Context(), &benchmark.Input{Path: opts.dataPath, Publish: store != nil})
	if err != nil {
		return err
	}

	if err := PrintResult(cmd, result.Summary); err != nil {
		return err
	}
	if cliCtx.OutputFormat != "json" {
		keys := lo.Keys(result.Artifacts)
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", result.Artifacts[key])
		}
	}
	logger.Debug("run complete", logging.String("run_id", result.Summary.RunID))
	return nil
}

//Personal.AI order the ending
