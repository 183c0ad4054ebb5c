package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/pkg/response"
)

const SourcePostgres = "postgres"

const (
	listProducts = `SELECT id, title, price, description, category, image, rating_rate, rating_count
FROM products
ORDER BY id`
	getProduct = `SELECT id, title, price, description, category, image, rating_rate, rating_count
FROM products
WHERE id = $1`
)

type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) PostgresSource {
	return PostgresSource{pool: pool}
}

func (p PostgresSource) ListProducts(c context.Context) (products []response.Product, err error) {
	c, span := otel.Tracer.Start(c, "PostgresSource ListProducts")
	defer span.End()
	defer func() { metric.CatalogFetches.WithLabelValues(SourcePostgres, "list", metric.Result(err)).Inc() }()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresSource ListProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	rows, err := p.pool.Query(c, listProducts)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		err = fmt.Errorf("failed scanning products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	products = make([]response.Product, 0, len(found))
	for _, row := range found {
		products = append(products, row.Response())
	}
	logger.Debug().Int(log.KeyProductCount, len(products)).Msg("found products in database")

	return products, nil
}

func (p PostgresSource) GetProduct(c context.Context, id int) (product response.Product, err error) {
	c, span := otel.Tracer.Start(
		c,
		"PostgresSource GetProduct",
		trace.WithAttributes(attribute.Int(log.KeyProductID, id)),
	)
	defer span.End()
	defer func() { metric.CatalogFetches.WithLabelValues(SourcePostgres, "get", metric.Result(err)).Inc() }()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresSource GetProduct").
		Int(log.KeyProductID, id).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	rows, err := p.pool.Query(c, getProduct, id)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%d with error=%w", id, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[productRow])
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Debug().Msg(commonErrors.ErrProductNotFound.Error())
		return response.Product{}, commonErrors.ErrProductNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed scanning productId=%d with error=%w", id, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Trace().Msg("found product in database")

	return row.Response(), nil
}
