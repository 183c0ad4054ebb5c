package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/pkg/request"
	cartResponse "github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/cart/pkg/store"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(mux *mux.Router, service *service.CartService) {
	controller := CartController{service: service}

	router := mux.PathPrefix("/cart").Subrouter()
	router.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/events", controller.Events).Methods(http.MethodGet)
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
	router.HandleFunc("/items", controller.AddToCart).Methods(http.MethodPost)
	router.HandleFunc("/items/{productId}/increase", controller.IncreaseCart).
		Methods(http.MethodPost)
	router.HandleFunc("/items/{productId}/decrease", controller.DecreaseCart).
		Methods(http.MethodPost)
	router.HandleFunc("/items/{productId}/quantity", controller.GetItemQuantity).
		Methods(http.MethodGet)
	router.HandleFunc("/items/{productId}", controller.RemoveFromCart).
		Methods(http.MethodDelete)
}

func currentCart(r *http.Request) (*store.Store, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil, commonErrors.ErrSessionNotFound
	}
	return s.Cart, nil
}

func productID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["productId"]
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w productId=%s", commonErrors.ErrInvalidProductID, raw)
	}
	return id, nil
}

func cartBody(cart cartResponse.Cart) map[string]interface{} {
	return map[string]interface{}{"cart": cart}
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetCart").
		Logger()

	cart, err := currentCart(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	result := t.service.GetCart(c, cart)
	logger.Debug().
		Int(log.KeyCartCount, result.CartCount).
		Int(log.KeyUniqueCartCount, result.UniqueCartCount).
		Msg("found cart")
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("found cart", cartBody(result)))
}

func (t CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddToCart").
		Logger()

	cart, err := currentCart(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Trace().Msg("decoding requestbody")
	reqBody := request.AddToCart{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusBadRequest, err.Error()))
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Trace().Msg("validating request body")
	if err := validate.Get().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusBadRequest, err.Error()))
		return
	}
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "adding to cart").Logger()
	c = logger.WithContext(c)
	result := t.service.AddToCart(c, cart, reqBody)
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("added to cart", cartBody(result)))
}

func (t CartController) IncreaseCart(w http.ResponseWriter, r *http.Request) {
	t.mutate(w, r, "CartController IncreaseCart", "increased cart item", t.service.IncreaseCart)
}

func (t CartController) DecreaseCart(w http.ResponseWriter, r *http.Request) {
	t.mutate(w, r, "CartController DecreaseCart", "decreased cart item", t.service.DecreaseCart)
}

func (t CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	t.mutate(w, r, "CartController RemoveFromCart", "removed cart item", t.service.RemoveFromCart)
}

type mutation func(c context.Context, cart *store.Store, productID int) cartResponse.Cart

func (t CartController) mutate(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	message string,
	apply mutation,
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Logger()

	cart, err := currentCart(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	logger = logger.With().Str(log.KeyProcess, "parsing productId").Logger()
	id, err := productID(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusBadRequest, err.Error()))
		return
	}
	span.SetAttributes(attribute.Int(log.KeyProductID, id))

	c = logger.WithContext(c)
	result := apply(c, cart, id)
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success(message, cartBody(result)))
}

func (t CartController) GetItemQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetItemQuantity").
		Logger()

	cart, err := currentCart(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	id, err := productID(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusBadRequest, err.Error()))
		return
	}

	quantity := t.service.GetItemQuantity(c, cart, id)
	response.WriteJsonResponse(c, w, map[string]string{}, response.Success("found item quantity", map[string]interface{}{
		"productId": id,
		"quantity":  quantity,
	}))
}

func (t CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Checkout").
		Logger()

	cart, err := currentCart(r)
	if err == nil {
		err = t.service.Checkout(c, cart)
	}
	statusCode := http.StatusInternalServerError
	if errors.Is(err, commonErrors.ErrCheckoutNotEnabled) {
		statusCode = http.StatusNotImplemented
	}
	logger.Info().Err(err).Msg("rejected checkout")
	response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(statusCode, err.Error()))
}

// Events streams the cart as server-sent events: the current cart first,
// then the latest cart after every change.
func (t CartController) Events(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Events")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Events").
		Logger()

	cart, err := currentCart(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, map[string]string{}, response.Failed(http.StatusInternalServerError, err.Error()))
		return
	}

	events, unsubscribe := cart.Subscribe()
	defer unsubscribe()

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug().Err(err).Msg("failed clearing write deadline")
	}

	w.Header().Set(response.HeaderContentType, response.HeaderValueSSE)
	w.Header().Set(response.HeaderCacheControl, "no-cache")
	w.Header().Set(response.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event cartResponse.CartEvent) error {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed encoding cart event with error=%w", err)
		}
		if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", data); err != nil {
			return fmt.Errorf("failed writing cart event with error=%w", err)
		}
		return rc.Flush()
	}

	logger = logger.With().Str(log.KeyProcess, "streaming cart events").Logger()
	logger.Debug().Msg("streaming cart events")
	err = send(cartResponse.CartEvent{Cart: cartResponse.FromSnapshot(cart.Snapshot())})
	for err == nil {
		select {
		case <-c.Done():
			logger.Debug().Msg("client disconnected")
			return
		case event, ok := <-events:
			if !ok {
				logger.Debug().Msg("session ended")
				return
			}
			span.AddEvent(string(event.Operation), trace.WithAttributes(
				attribute.Int(log.KeyProductID, event.ProductID),
			))
			err = send(cartResponse.FromEvent(event))
		}
	}
	commonErrors.HandleError(err, span)
	logger.Error().Err(err).Msg(err.Error())
}
