package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/cart/pkg/store"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
)

type CartService struct{}

func NewCartService() CartService {
	return CartService{}
}

func (svc CartService) GetCart(c context.Context, cart *store.Store) response.Cart {
	_, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	result := response.FromSnapshot(cart.Snapshot())
	span.SetAttributes(
		attribute.Int(log.KeyCartCount, result.CartCount),
		attribute.Int(log.KeyUniqueCartCount, result.UniqueCartCount),
	)
	return result
}

func (svc CartService) AddToCart(
	c context.Context,
	cart *store.Store,
	param request.AddToCart,
) response.Cart {
	c, span := otel.Tracer.Start(
		c,
		"CartService AddToCart",
		trace.WithAttributes(attribute.Int(log.KeyProductID, param.ID)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddToCart").
		Int(log.KeyProductID, param.ID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Trace().Msg("adding item to cart")
	cart.AddToCart(param.Item())
	svc.record(store.OperationAdd, true)
	logger.Info().
		Int(log.KeyCartItemQuantity, cart.GetItemQuantity(param.ID)).
		Msg("added item to cart")

	return svc.GetCart(c, cart)
}

func (svc CartService) IncreaseCart(c context.Context, cart *store.Store, productID int) response.Cart {
	return svc.mutate(c, cart, store.OperationIncrease, productID, cart.IncreaseCart)
}

func (svc CartService) DecreaseCart(c context.Context, cart *store.Store, productID int) response.Cart {
	return svc.mutate(c, cart, store.OperationDecrease, productID, cart.DecreaseCart)
}

func (svc CartService) RemoveFromCart(c context.Context, cart *store.Store, productID int) response.Cart {
	return svc.mutate(c, cart, store.OperationRemove, productID, cart.RemoveFromCart)
}

func (svc CartService) mutate(
	c context.Context,
	cart *store.Store,
	op store.Operation,
	productID int,
	apply func(int) bool,
) response.Cart {
	c, span := otel.Tracer.Start(
		c,
		"CartService "+string(op),
		trace.WithAttributes(
			attribute.Int(log.KeyProductID, productID),
			attribute.String(log.KeyCartOperation, string(op)),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService mutate").
		Str(log.KeyCartOperation, string(op)).
		Int(log.KeyProductID, productID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, string(op)+" cart item").Logger()
	logger.Trace().Msgf("applying %s to productId=%d", op, productID)
	effective := apply(productID)
	svc.record(op, effective)
	if !effective {
		logger.Debug().Msgf("productId=%d is not in cart", productID)
	} else {
		logger.Info().
			Int(log.KeyCartItemQuantity, cart.GetItemQuantity(productID)).
			Msgf("applied %s to productId=%d", op, productID)
	}
	span.SetAttributes(attribute.Bool("effective", effective))

	return svc.GetCart(c, cart)
}

func (svc CartService) GetItemQuantity(c context.Context, cart *store.Store, productID int) int {
	_, span := otel.Tracer.Start(
		c,
		"CartService GetItemQuantity",
		trace.WithAttributes(attribute.Int(log.KeyProductID, productID)),
	)
	defer span.End()

	return cart.GetItemQuantity(productID)
}

// Checkout is not offered; the cart is left untouched.
func (svc CartService) Checkout(c context.Context, cart *store.Store) error {
	_, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()

	commonErrors.HandleError(commonErrors.ErrCheckoutNotEnabled, span)
	return commonErrors.ErrCheckoutNotEnabled
}

func (svc CartService) record(op store.Operation, effective bool) {
	metric.CartMutations.WithLabelValues(string(op), strconv.FormatBool(effective)).Inc()
}
