package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/log"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "middleware RecoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware RecoverPanic").Logger()
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				err, ok := recovered.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", recovered)
				}
				commonErrors.HandleError(err, span)
				logger.Error().Err(err).Stack().Msg("recovered from panic")
				response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(
					http.StatusInternalServerError,
					http.StatusText(http.StatusInternalServerError),
				))
			}
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}
