package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
	"github.com/Alturino/storefront/product/internal/otel"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
)

const SourceFakeStore = "fakestore"

// FakeStoreSource reads the catalog from a fakestoreapi.com compatible API.
type FakeStoreSource struct {
	baseURL string
	client  *http.Client
}

func NewFakeStoreSource(baseURL string, timeout time.Duration) FakeStoreSource {
	return FakeStoreSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (f FakeStoreSource) ListProducts(c context.Context) (products []productResponse.Product, err error) {
	c, span := otel.Tracer.Start(c, "FakeStoreSource ListProducts")
	defer span.End()
	defer func() { metric.CatalogFetches.WithLabelValues(SourceFakeStore, "list", metric.Result(err)).Inc() }()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FakeStoreSource ListProducts").
		Logger()

	body, err := f.get(c, "/products")
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "decoding products").Logger()
	logger.Trace().Msg("decoding products")
	products = []productResponse.Product{}
	if err = json.Unmarshal(body, &products); err != nil {
		err = fmt.Errorf("failed decoding products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int(log.KeyProductCount, len(products)).Msg("decoded products")

	return products, nil
}

// GetProduct returns ErrProductNotFound for a 404 or an empty body, which is
// how the public API answers unknown ids.
func (f FakeStoreSource) GetProduct(c context.Context, id int) (product productResponse.Product, err error) {
	c, span := otel.Tracer.Start(
		c,
		"FakeStoreSource GetProduct",
		trace.WithAttributes(attribute.Int(log.KeyProductID, id)),
	)
	defer span.End()
	defer func() { metric.CatalogFetches.WithLabelValues(SourceFakeStore, "get", metric.Result(err)).Inc() }()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FakeStoreSource GetProduct").
		Int(log.KeyProductID, id).
		Logger()

	body, err := f.get(c, "/products/"+strconv.Itoa(id))
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productResponse.Product{}, err
	}
	if len(strings.TrimSpace(string(body))) == 0 || strings.TrimSpace(string(body)) == "null" {
		logger.Debug().Msg(commonErrors.ErrProductNotFound.Error())
		return productResponse.Product{}, commonErrors.ErrProductNotFound
	}

	logger = logger.With().Str(log.KeyProcess, "decoding product").Logger()
	logger.Trace().Msg("decoding product")
	if err = json.Unmarshal(body, &product); err != nil {
		err = fmt.Errorf("failed decoding productId=%d with error=%w", id, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productResponse.Product{}, err
	}
	logger.Trace().Msg("decoded product")

	return product, nil
}

func (f FakeStoreSource) get(c context.Context, path string) ([]byte, error) {
	url := f.baseURL + path
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FakeStoreSource get").
		Str(log.KeyURL, url).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "requesting catalog").Logger()
	logger.Trace().Msgf("requesting %s", url)
	req, err := http.NewRequestWithContext(c, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating request to url=%s with error=%w", url, err)
	}
	req.Header.Set(response.HeaderAccept, response.HeaderValueJson)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(response.HeaderRequestID, requestID)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed requesting url=%s with error=%w", url, err)
	}
	defer resp.Body.Close()

	logger = logger.With().Int(log.KeyStatusCode, resp.StatusCode).Logger()
	if resp.StatusCode == http.StatusNotFound {
		return nil, commonErrors.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed requesting url=%s with statusCode=%d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response of url=%s with error=%w", url, err)
	}
	logger.Trace().Msgf("requested %s", url)

	return body, nil
}
