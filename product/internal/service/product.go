package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/pkg/catalog"
	"github.com/Alturino/storefront/product/pkg/category"
	"github.com/Alturino/storefront/product/pkg/response"
)

const RecommendedCount = 4

type ProductDetail struct {
	Product     response.Product   `json:"product"`
	Quantity    int                `json:"quantity"`
	Control     catalog.Control    `json:"control"`
	Recommended []response.Product `json:"recommended"`
}

type Categories struct {
	Entries  []category.Entry `json:"entries"`
	Active   *string          `json:"active"`
	Selected *string          `json:"selected"`
}

type ProductService struct {
	menu category.Menu
}

func NewProductService(menu category.Menu) ProductService {
	return ProductService{menu: menu}
}

// GetCatalog mounts the session's catalog view and renders it for the
// selected category. With wait set it blocks until the fetch settles or c is
// done.
func (svc ProductService) GetCatalog(c context.Context, s *session.Session, wait bool) catalog.Page {
	c, span := otel.Tracer.Start(c, "ProductService GetCatalog")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService GetCatalog").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "mounting catalog").Logger()
	logger.Trace().Msg("mounting catalog")
	s.Catalog.Mount(c)
	if wait {
		if _, err := s.Catalog.WaitReady(c); err != nil {
			logger.Debug().Err(err).Msg("catalog fetch did not succeed")
		}
	}

	page := s.Catalog.Render(s.Category.Selected(), s.Cart)
	span.SetAttributes(
		attribute.String(log.KeyCatalogState, string(page.State)),
		attribute.Int(log.KeyProductCount, len(page.Tiles)),
	)
	logger.Debug().
		Str(log.KeyCatalogState, string(page.State)).
		Int(log.KeyProductCount, len(page.Tiles)).
		Msg("rendered catalog")

	return page
}

// FindProductById returns the product with its cart quantity and up to
// RecommendedCount other products from the catalog.
func (svc ProductService) FindProductById(
	c context.Context,
	s *session.Session,
	id int,
) (ProductDetail, error) {
	c, span := otel.Tracer.Start(
		c,
		"ProductService FindProductById",
		trace.WithAttributes(attribute.Int(log.KeyProductID, id)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Int(log.KeyProductID, id).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	product, err := s.Catalog.Product(c, id)
	if err != nil {
		if !errors.Is(err, commonErrors.ErrProductNotFound) {
			err = fmt.Errorf("failed finding productId=%d with error=%w", id, err)
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return ProductDetail{}, err
	}
	logger.Trace().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "finding recommended products").Logger()
	logger.Trace().Msg("finding recommended products")
	s.Catalog.Mount(c)
	recommended := []response.Product{}
	if state, err := s.Catalog.WaitReady(c); err == nil && state == catalog.StateReady {
		for _, p := range s.Catalog.Products() {
			if len(recommended) == RecommendedCount {
				break
			}
			if p.ID != id {
				recommended = append(recommended, p)
			}
		}
	} else {
		logger.Debug().Err(err).Msg("recommended products are unavailable")
	}
	logger.Trace().Int(log.KeyProductCount, len(recommended)).Msg("found recommended products")

	quantity := s.Cart.GetItemQuantity(id)
	return ProductDetail{
		Product:     product,
		Quantity:    quantity,
		Control:     catalog.ControlFor(quantity),
		Recommended: recommended,
	}, nil
}

func (svc ProductService) GetCategories(c context.Context, s *session.Session) Categories {
	_, span := otel.Tracer.Start(c, "ProductService GetCategories")
	defer span.End()

	active := s.Category.Active()
	return Categories{
		Entries:  svc.menu.Entries(active),
		Active:   active,
		Selected: s.Category.Selected(),
	}
}

// SelectCategory sets the catalog filter; nil shows every product.
func (svc ProductService) SelectCategory(c context.Context, s *session.Session, selected *string) Categories {
	c, span := otel.Tracer.Start(c, "ProductService SelectCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService SelectCategory").
		Logger()

	s.Category.Set(selected)
	if selected != nil {
		span.SetAttributes(attribute.String(log.KeyCategory, *selected))
		logger.Debug().Str(log.KeyCategory, *selected).Msg("selected category")
	} else {
		logger.Debug().Msg("cleared category")
	}

	return svc.GetCategories(c, s)
}

// ToggleCategory activates a menu entry, or collapses it when the entry is
// already active. Collapsing keeps the current filter.
func (svc ProductService) ToggleCategory(c context.Context, s *session.Session, name string) (Categories, error) {
	c, span := otel.Tracer.Start(
		c,
		"ProductService ToggleCategory",
		trace.WithAttributes(attribute.String(log.KeyCategory, name)),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService ToggleCategory").
		Str(log.KeyCategory, name).
		Logger()

	if !svc.menu.Contains(name) {
		err := fmt.Errorf("%w category=%s", commonErrors.ErrCategoryNotFound, name)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Categories{}, err
	}

	selected := s.Category.Toggle(name)
	logger.Debug().Bool("active", selected != nil).Msg("toggled category")

	return svc.GetCategories(c, s), nil
}
