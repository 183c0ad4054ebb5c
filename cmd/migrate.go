package cmd

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
)

func runMigrate(c context.Context, cfg config.Config, direction infra.MigrationDirection) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppCatalogMigration).
		Str(log.KeyTag, "main runMigrate").
		Str(log.KeyMigrationDirection, string(direction)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	pool, err := infra.NewDatabaseClient(c, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "migrating database").Logger()
	logger.Info().Msg("migrating database")
	c = logger.WithContext(c)
	if err = infra.Migrate(c, pool, cfg.Database, direction); err != nil {
		return err
	}
	logger.Info().Msg("migrated database")

	return nil
}
