package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/resistanceisuseless/subrecon/internal/api"
	"github.com/resistanceisuseless/subrecon/internal/config"
	"github.com/resistanceisuseless/subrecon/internal/enumeration"
)

func newServeCmd(flags *Flags, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the enumeration HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := newLogger(cfg.Verbose, zapcore.InfoLevel)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().String("auth-token", "", "Require this token on enumeration requests")
	cmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origins")
	bindFlags(v, cmd.Flags())
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Server.AuthToken == "" {
		logger.Warn("api token not set, enumeration endpoints are open")
	}

	enumerator := enumeration.New(cfg, logger)
	server := api.New(cfg, enumerator, logger, Version)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}
