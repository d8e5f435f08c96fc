package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirebattle-server/internal/app"
	"github.com/vovakirdan/wirebattle-server/internal/config"
	applog "github.com/vovakirdan/wirebattle-server/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:   "wirebattle-server",
		Short: "Turn-based text battle server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath, overrides)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	flags.IntVarP(&overrides.Port, "port", "p", 0, "battle listen port")
	flags.StringVar(&overrides.AdminAddr, "admin-addr", "", "admin HTTP listen address")
	flags.StringVar(&overrides.DatabasePath, "db", "", "SQLite path for the match ledger")
	flags.StringVar(&overrides.NATSURL, "nats-url", "", "NATS server URL for match events")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, configPath string, overrides config.Config) error {
	bootLog := applog.New("info")

	cfg, path, err := config.Load(bootLog, configPath)
	if err != nil {
		bootLog.Error().Err(err).Str("path", path).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(overrides)

	logger := applog.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("addr", cfg.ListenAddr()).Msg("starting wirebattle server")

	application, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
