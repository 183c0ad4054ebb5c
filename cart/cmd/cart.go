package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	cartOtel "github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/controller"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/log"
)

// AttachCartService mounts the cart routes on router. Routes expect the
// session middleware to run first.
func AttachCartService(c context.Context, router *mux.Router) {
	c, span := cartOtel.Tracer.Start(c, "AttachCartService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppCartService).
		Str(log.KeyTag, "main AttachCartService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing cart service").Logger()
	logger.Info().Msg("initializing cart service")
	cartService := service.NewCartService()
	logger.Info().Msg("initialized cart service")

	logger = logger.With().Str(log.KeyProcess, "initializing cart controller").Logger()
	logger.Info().Msg("initializing cart controller")
	controller.AttachCartController(router, &cartService)
	logger.Info().Msg("initialized cart controller")
}
