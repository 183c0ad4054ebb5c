package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTokenInvalid       = errors.New("invalid session token")
	ErrEmptySubject       = errors.New("missing subject")
	ErrInvalidProductID   = errors.New("invalid product id")
	ErrUnknownSource      = errors.New("unknown catalog source")
	ErrCheckoutNotEnabled = errors.New("checkout is not available")
	ErrCategoryNotFound   = errors.New("category not found")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
