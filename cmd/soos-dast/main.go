package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/soos-io/soos-dast/internal/config"
	"github.com/soos-io/soos-dast/internal/logging"
	"github.com/soos-io/soos-dast/internal/orchestrator"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &config.Options{}

	cmd := &cobra.Command{
		Use:           "soos-dast <targetURL>",
		Short:         "Runs a SOOS DAST analysis against the target URL",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TargetURL = args[0]
			return run(cmd.Context(), *opts)
		},
	}
	config.AddFlags(cmd.Flags(), opts)
	return cmd
}

func run(ctx context.Context, opts config.Options) error {
	// CI systems commonly drop credentials into a local .env file
	_ = gotenv.Load()

	cfg, err := config.Resolve(opts)
	if err != nil {
		logger := logging.New(opts.Debug)
		logger.Error().Msgf("configuration error: %v", err)
		return err
	}

	logger := logging.New(cfg.Debug, cfg.APIKey, cfg.GithubPAT)
	logger = logger.With().Str("run", uuid.NewString()).Logger()

	if err := orchestrator.New(cfg, &logger).Run(ctx); err != nil {
		logger.Error().Msgf("%v", err)
		return err
	}
	return nil
}
