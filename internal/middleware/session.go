package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
)

type SessionTokens interface {
	Issue(c context.Context, sessionID uuid.UUID) (string, time.Time, error)
	Verify(c context.Context, token string) (uuid.UUID, error)
}

// Session resolves the browsing session from its cookie. A missing, invalid
// or expired cookie starts a fresh session with an empty cart.
func Session(
	registry *session.Registry,
	tokens SessionTokens,
	cfg config.Session,
) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Session")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Session").Logger()

			logger = logger.With().Str(log.KeyProcess, "resolving session").Logger()
			logger.Trace().Msg("resolving session")
			var current *session.Session
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				sessionID, err := tokens.Verify(c, cookie.Value)
				if err == nil {
					if s, ok := registry.Get(sessionID); ok {
						current = s
					} else {
						logger.Debug().
							Str(log.KeySessionID, sessionID.String()).
							Err(commonErrors.ErrSessionNotFound).
							Msg(commonErrors.ErrSessionNotFound.Error())
					}
				}
			} else if !errors.Is(err, http.ErrNoCookie) {
				logger.Debug().Err(err).Msg("failed reading session cookie")
			}

			if current == nil {
				logger = logger.With().Str(log.KeyProcess, "creating session").Logger()
				logger.Trace().Msg("creating session")
				current = registry.Create()
				token, expiresAt, err := tokens.Issue(c, current.ID)
				if err != nil {
					registry.Remove(current.ID)
					commonErrors.HandleError(err, span)
					logger.Error().Err(err).Msg(err.Error())
					response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(
						http.StatusInternalServerError,
						err.Error(),
					))
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Expires:  expiresAt,
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug().Str(log.KeySessionID, current.ID.String()).Msg("created session")
			}

			logger = logger.With().Str(log.KeySessionID, current.ID.String()).Logger()
			c = session.AttachToContext(logger.WithContext(c), current)
			logger.Trace().Msg("resolved session")

			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
