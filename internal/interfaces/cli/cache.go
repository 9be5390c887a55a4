package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/solubility-bench/internal/application/benchmark"
	"github.com/turtacn/solubility-bench/internal/config"
	"github.com/turtacn/solubility-bench/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// PurgeResult reports how many feature cache entries were dropped.
type PurgeResult struct {
	Prefix  string `json:"prefix"`
	Deleted int64  `json:"deleted"`
}

func (r *PurgeResult) String() string {
	return fmt.Sprintf("deleted %d feature cache entries under %q", r.Deleted, r.Prefix)
}

// prefixDeleter is the part of the Redis cache the purge command needs.
type prefixDeleter interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis feature cache",
	}
	cmd.AddCommand(newCachePurgeCmd())
	return cmd
}

func newCachePurgeCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached features",
		Long: "purge removes feature cache entries written under the configured\n" +
			"featurizer options.  With --all every feature entry is removed,\n" +
			"whatever radius, width or edge mode produced it.",
		Example: "  solbench cache purge\n  solbench cache purge --all",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if !cliCtx.Config.Cache.Enabled {
				return errors.New(errors.ErrCodeValidation, "feature cache is disabled (cache.enabled=false)")
			}
			cache, closeFn, err := openCache(cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			res, err := purgeFeatures(cmd.Context(), cache, cliCtx.Config, all, cliCtx.Logger)
			if err != nil {
				return err
			}
			return PrintResult(cmd, res)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "purge entries for every featurizer configuration")
	return cmd
}

func purgeFeatures(ctx context.Context, cache prefixDeleter, cfg *config.Config, all bool, logger logging.Logger) (*PurgeResult, error) {
	prefix := featurize.CacheKeyPrefix(benchmark.FeaturizerOptions(cfg.Featurizer))
	if all {
		prefix = featurize.CachePrefix
	}
	n, err := cache.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "purge feature cache")
	}
	logger.Info("feature cache purged", logging.String("prefix", prefix), logging.Int64("deleted", n))
	return &PurgeResult{Prefix: prefix, Deleted: n}, nil
}

//Personal.AI order the ending
