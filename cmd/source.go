package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flashfusion/dealflow-cli/internal/model"
)

var (
	sourceUserEmail string
	sourceLimit     int
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Run deal sourcing for all subscribed profiles, or one user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSourcing(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		params := model.RunParams{
			UserEmail: sourceUserEmail,
			Limit:     sourceLimit,
		}

		report, err := executeRun(ctx, env, params)
		if err != nil {
			return eris.Wrap(err, "sourcing run")
		}

		zap.L().Info("sourcing complete", zap.Int("profiles", report.Processed))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

// executeRun runs the pipeline under the configured timeout and records the
// run in the history store when one is open. History failures are logged,
// never fatal.
func executeRun(ctx context.Context, env *sourcingEnv, params model.RunParams) (*model.RunReport, error) {
	if cfg.Sourcing.RunTimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Sourcing.RunTimeoutSecs)*time.Second)
		defer cancel()
	}

	var recorded *model.Run
	if env.Store != nil {
		run, err := env.Store.CreateRun(ctx, params)
		if err != nil {
			zap.L().Warn("run history create failed", zap.Error(err))
		} else {
			recorded = run
		}
	}

	report, err := env.Runner.Run(ctx, params)

	if recorded != nil {
		if err != nil {
			if ferr := env.Store.FailRun(ctx, recorded.ID, err.Error()); ferr != nil {
				zap.L().Warn("run history update failed", zap.Error(ferr))
			}
		} else {
			if cerr := env.Store.CompleteRun(ctx, recorded.ID, report); cerr != nil {
				zap.L().Warn("run history update failed", zap.Error(cerr))
			}
		}
	}

	return report, err
}

func init() {
	sourceCmd.Flags().StringVar(&sourceUserEmail, "user-email", "", "source deals for a single user profile")
	sourceCmd.Flags().IntVar(&sourceLimit, "limit", 0, "max deals per profile (default from config)")
	rootCmd.AddCommand(sourceCmd)
}
