package cmd

import (
	"context"
	"fmt"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/product/internal/controller"
	productOtel "github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/internal/repository"
	"github.com/Alturino/storefront/product/internal/service"
	"github.com/Alturino/storefront/product/pkg/catalog"
	"github.com/Alturino/storefront/product/pkg/category"
)

// AttachProductService mounts the product and category routes on router.
// Routes expect the session middleware to run first.
func AttachProductService(c context.Context, router *mux.Router) {
	c, span := productOtel.Tracer.Start(c, "AttachProductService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppProductService).
		Str(log.KeyTag, "main AttachProductService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing product service").Logger()
	logger.Info().Msg("initializing product service")
	productService := service.NewProductService(category.DefaultMenu())
	logger.Info().Msg("initialized product service")

	logger = logger.With().Str(log.KeyProcess, "initializing product controller").Logger()
	logger.Info().Msg("initializing product controller")
	controller.AttachProductController(router, &productService)
	logger.Info().Msg("initialized product controller")
}

// NewCatalogSource builds the configured catalog source, wrapped by the
// redis cache when enabled. The returned func releases its connections.
func NewCatalogSource(c context.Context, cfg config.Config) (catalog.Source, func(), error) {
	c, span := productOtel.Tracer.Start(c, "NewCatalogSource")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main NewCatalogSource").
		Str(log.KeyCatalogSource, cfg.Catalog.Source).
		Logger()

	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var source catalog.Source
	logger = logger.With().Str(log.KeyProcess, "initializing catalog source").Logger()
	logger.Info().Msg("initializing catalog source")
	switch cfg.Catalog.Source {
	case repository.SourceFakeStore:
		source = repository.NewFakeStoreSource(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	case repository.SourcePostgres:
		c = logger.WithContext(c)
		pool, err := infra.NewDatabaseClient(c, cfg.Database)
		if err != nil {
			commonErrors.HandleError(err, span)
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		source = repository.NewPostgresSource(pool)
	default:
		err := fmt.Errorf("%w source=%s", commonErrors.ErrUnknownSource, cfg.Catalog.Source)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, nil, err
	}
	logger.Info().Msg("initialized catalog source")

	if cfg.Cache.Enabled {
		logger = logger.With().Str(log.KeyProcess, "initializing catalog cache").Logger()
		logger.Info().Msg("initializing catalog cache")
		c = logger.WithContext(c)
		cache, err := infra.NewCacheClient(c, cfg.Cache)
		if err != nil {
			commonErrors.HandleError(err, span)
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := cache.Close(); err != nil {
				logger.Error().Err(err).Msgf("failed shutting down cache with error=%s", err.Error())
			}
		})
		source = repository.NewCachedSource(source, cache, cfg.Cache.TTL)
		logger.Info().Msg("initialized catalog cache")
	}

	return source, closeAll, nil
}
