package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
	"github.com/Alturino/storefront/product/internal/cache"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/pkg/catalog"
	"github.com/Alturino/storefront/product/pkg/response"
)

const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupError = "error"
)

// CachedSource keeps fetched products in redis for ttl. Cache failures fall
// through to the wrapped source; not-found answers are never cached.
type CachedSource struct {
	source catalog.Source
	cache  *redis.Client
	ttl    time.Duration
}

func NewCachedSource(source catalog.Source, cache *redis.Client, ttl time.Duration) CachedSource {
	return CachedSource{source: source, cache: cache, ttl: ttl}
}

func (s CachedSource) ListProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "CachedSource ListProducts")
	defer span.End()

	products := []response.Product{}
	if s.lookup(c, cache.KeyProductList, &products) {
		return products, nil
	}

	products, err := s.source.ListProducts(c)
	if err != nil {
		return nil, err
	}
	s.store(c, cache.KeyProductList, products)
	return products, nil
}

func (s CachedSource) GetProduct(c context.Context, id int) (response.Product, error) {
	c, span := otel.Tracer.Start(
		c,
		"CachedSource GetProduct",
		trace.WithAttributes(attribute.Int(log.KeyProductID, id)),
	)
	defer span.End()

	key := cache.ProductKey(id)
	product := response.Product{}
	if s.lookup(c, key, &product) {
		return product, nil
	}

	product, err := s.source.GetProduct(c, id)
	if err != nil {
		return response.Product{}, err
	}
	s.store(c, key, product)
	return product, nil
}

func (s CachedSource) lookup(c context.Context, key string, dst interface{}) bool {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CachedSource lookup").
		Str(log.KeyCacheKey, key).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding in cache").Logger()
	logger.Trace().Msg("finding in cache")
	jsonCache, err := s.cache.Get(c, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metric.CatalogCacheLookups.WithLabelValues(lookupMiss).Inc()
		logger.Trace().Msg("not found in cache")
		return false
	}
	if err != nil {
		metric.CatalogCacheLookups.WithLabelValues(lookupError).Inc()
		err = fmt.Errorf("failed finding key=%s in cache with error=%w", key, err)
		logger.Warn().Err(err).Msg(err.Error())
		return false
	}

	logger = logger.With().Str(log.KeyProcess, "unmarshalling cache").Logger()
	if err = json.Unmarshal(jsonCache, dst); err != nil {
		metric.CatalogCacheLookups.WithLabelValues(lookupError).Inc()
		err = fmt.Errorf("failed to unmarshal jsonCache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		return false
	}
	metric.CatalogCacheLookups.WithLabelValues(lookupHit).Inc()
	logger.Debug().Msg("found in cache")
	return true
}

func (s CachedSource) store(c context.Context, key string, value interface{}) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CachedSource store").
		Str(log.KeyCacheKey, key).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "inserting to cache").Logger()
	logger.Trace().Msg("inserting to cache")
	jsonCache, err := json.Marshal(value)
	if err != nil {
		err = fmt.Errorf("failed marshalling key=%s with error=%w", key, err)
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	if err = s.cache.Set(c, key, jsonCache, s.ttl).Err(); err != nil {
		err = fmt.Errorf("failed to inserting key=%s to cache with error=%w", key, err)
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("inserted to cache")
}
