package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
)

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.InitConfig(bootstrap.WithContext(c), constants.AppStorefront)

	logger := log.InitLogger(cfg.Application.LogPath, cfg.Application.Env).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main Start").
		Logger()
	c = logger.WithContext(c)

	rootCmd := &cobra.Command{
		Use:   constants.AppStorefront,
		Short: "Storefront catalog and cart server",
		Run: func(cmd *cobra.Command, args []string) {
			runStorefront(cmd.Context(), *cfg)
		},
	}
	migrateCmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert the catalog database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(infra.MigrationUp), string(infra.MigrationDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), *cfg, infra.MigrationDirection(args[0]))
		},
	}
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
