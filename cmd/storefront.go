package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartCmd "github.com/Alturino/storefront/cart/cmd"
	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonOtel "github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/session"
	productCmd "github.com/Alturino/storefront/product/cmd"
)

func runStorefront(c context.Context, cfg config.Config) {
	c, span := commonOtel.Tracer.Start(c, "runStorefront")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main runStorefront").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppStorefront, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c := logger.WithContext(context.WithoutCancel(c))
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing catalog source").Logger()
	logger.Info().Msg("initializing catalog source")
	c = logger.WithContext(c)
	source, closeSource, err := productCmd.NewCatalogSource(c, cfg)
	if err != nil {
		err = fmt.Errorf("failed initializing catalog source with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down catalog source")
		closeSource()
		logger.Info().Msg("shutdown catalog source")
	}()
	logger.Info().Msg("initialized catalog source")

	logger = logger.With().Str(log.KeyProcess, "initializing sessions").Logger()
	logger.Info().Msg("initializing sessions")
	secret := cfg.Session.SecretKey
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn().Msg("session.secret_key is empty, sessions will not survive a restart")
	}
	tokens := session.NewTokens(secret, cfg.Session.TokenTTL)
	registry := session.NewRegistry(source, cfg.Session.IdleTimeout)
	defer registry.Close()
	go registry.Run(logger.WithContext(c), cfg.Session.JanitorInterval)
	logger.Info().Msg("initialized sessions")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppStorefront),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	api := router.NewRoute().Subrouter()
	api.Use(middleware.Session(registry, tokens, cfg.Session))
	cartCmd.AttachCartService(c, api)
	productCmd.AttachProductService(c, api)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  cfg.Application.ReadTimeout,
		WriteTimeout: cfg.Application.WriteTimeout,
	}
	logger.Info().Msg("initialized server")

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("error=%w occured while server is running", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
	case <-c.Done():
		logger.Info().Msg("received interuption signal shutting down")
	}

	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), cfg.Application.ShutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
