package response

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/common/otel"
)

// Prices go out as JSON numbers, the shape fakestoreapi.com uses.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c)

	w.Header().Set(HeaderContentType, HeaderValueJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"].(int); ok {
		w.WriteHeader(v)
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error().
			Err(err).
			Msgf("failed encode response body with error=%s", err.Error())
		return
	}
}

func Failed(statusCode int, message string) map[string]interface{} {
	return map[string]interface{}{
		"status":     "failed",
		"statusCode": statusCode,
		"message":    message,
	}
}

func Success(message string, data map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data":       data,
	}
}
