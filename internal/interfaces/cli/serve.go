package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/solubility-bench/internal/application/benchmark"
	"github.com/turtacn/solubility-bench/internal/application/prediction"
	"github.com/turtacn/solubility-bench/internal/config"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/infrastructure/storage"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/gnn"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	httpapi "github.com/turtacn/solubility-bench/internal/interfaces/http"
	"github.com/turtacn/solubility-bench/internal/interfaces/http/handlers"
	"github.com/turtacn/solubility-bench/internal/interfaces/http/middleware"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

func newServeCmd() *cobra.Command {
	var (
		port  int
		kinds []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions from stored graph network checkpoints",
		Long: "serve restores the checkpoints written by `run --save-checkpoints` and\n" +
			"exposes POST /api/v1/predict, GET /api/v1/models, /healthz, /readyz and\n" +
			"/metrics.  server.max_batch is reloaded when the config file changes.",
		Example: "  solbench serve --port 8080\n  solbench serve --models conv",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := *cliCtx.Config
			if port > 0 {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), &cfg, cliCtx, kinds)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	cmd.Flags().StringSliceVar(&kinds, "models", []string{string(gnn.KindConv), string(gnn.KindAttention)}, "model kinds to load")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, cliCtx *CLIContext, kinds []string) error {
	logger := cliCtx.Logger

	deps, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	store, err := storage.New(cfg.Storage, cfg.Report.OutputDir, logger)
	if err != nil {
		return err
	}
	models, err := loadAvailableModels(ctx, store, nn.Device(cfg.Device), benchmark.FeaturizerOptions(cfg.Featurizer), kinds, logger)
	if err != nil {
		return err
	}

	svc, err := prediction.NewService(models, deps.Source, cfg.Server.MaxBatch, deps.Metrics, logger)
	if err != nil {
		return err
	}

	if cliCtx.ConfigPath != "" {
		config.Watch(cliCtx.ConfigPath, func(next *config.Config) {
			svc.SetMaxBatch(next.Server.MaxBatch)
			logger.Info("config reloaded", logging.Int("max_batch", next.Server.MaxBatch))
		})
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		PredictHandler:   handlers.NewPredictHandler(svc, logger),
		HealthHandler:    handlers.NewHealthHandler(Version, func() int { return len(svc.Models()) }, deps.Checkers...),
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           logger,
		MetricsCollector: deps.Collector,
		Metrics:          deps.Metrics,
		Mode:             cfg.Server.Mode,
	})
	server := httpapi.NewServer(cfg.Server, router, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return server.Stop(context.Background())
}

// loadAvailableModels restores each requested checkpoint, skipping kinds that
// were never published.  At least one model must load.
func loadAvailableModels(ctx context.Context, store prediction.ArtifactReader, device nn.Device, opts featurize.Options, kinds []string, logger logging.Logger) (map[gnn.Kind]gnn.Model, error) {
	models := make(map[gnn.Kind]gnn.Model, len(kinds))
	for _, k := range kinds {
		kind, err := gnn.ParseKind(k)
		if err != nil {
			return nil, err
		}
		loaded, err := prediction.LoadModels(ctx, store, device, opts, kind)
		if errors.IsCode(err, errors.ErrCodeArtifactNotFound) {
			logger.Warn("checkpoint not found, model disabled", logging.String("kind", string(kind)))
			continue
		}
		if err != nil {
			return nil, err
		}
		models[kind] = loaded[kind]
		logger.Info("model loaded", logging.Model(loaded[kind].Name()), logging.Int("parameters", gnn.NumParameters(loaded[kind])))
	}
	if len(models) == 0 {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "no checkpoints found; run with --save-checkpoints first")
	}
	return models, nil
}

//Personal.AI order the ending
