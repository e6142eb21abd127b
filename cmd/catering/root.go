package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/seacatering/pkg/config"
	"github.com/dmitrymomot/seacatering/pkg/identity"
	"github.com/dmitrymomot/seacatering/pkg/logger"
)

// env is shared by every subcommand. It is filled in PersistentPreRunE.
type env struct {
	cfg config.App
	log *slog.Logger
}

type commandInfo struct {
	id        uuid.UUID
	startedAt time.Time
}

type commandInfoKey struct{}

func newRootCmd() *cobra.Command {
	e := &env{}
	var logLevel string

	root := &cobra.Command{
		Use:           "catering",
		Short:         "SEA Catering subscription service",
		Long:          "Runs the meal subscription API and its maintenance tasks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load(&e.cfg); err != nil {
				return err
			}
			if logLevel != "" {
				e.cfg.LogLevel = logLevel
			}
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			e.log = newLogger(e.cfg)
			logger.SetAsDefault(e.log)

			info := commandInfo{id: uuid.New(), startedAt: time.Now()}
			cmd.SetContext(context.WithValue(cmd.Context(), commandInfoKey{}, info))
			e.log.Debug("command start",
				slog.String("command", cmd.CommandPath()),
				slog.String("run_id", info.id.String()),
			)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			info, ok := cmd.Context().Value(commandInfoKey{}).(commandInfo)
			if !ok || e.log == nil {
				return
			}
			e.log.Debug("command end",
				slog.String("command", cmd.CommandPath()),
				slog.String("run_id", info.id.String()),
				logger.Duration(time.Since(info.startedAt)),
			)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newSeedCmd(e),
		newPurgeCmd(e),
		newTokenCmd(e),
	)
	return root
}

func newLogger(cfg config.App) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(identity.LogAttr),
	)
}

func newVerifier(cfg config.App) (*identity.Verifier, error) {
	var opts []identity.VerifierOption
	if cfg.JWTIssuer != "" {
		opts = append(opts, identity.WithIssuer(cfg.JWTIssuer))
	}
	if cfg.JWTAudience != "" {
		opts = append(opts, identity.WithAudience(cfg.JWTAudience))
	}
	return identity.NewVerifier(cfg.JWTSecret, opts...)
}
