package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/product/internal/service"
	"github.com/Alturino/storefront/product/pkg/catalog"
	"github.com/Alturino/storefront/product/pkg/category"
	"github.com/Alturino/storefront/product/pkg/response"
)

type stubSource struct{}

func (stubSource) ListProducts(context.Context) ([]response.Product, error) {
	return []response.Product{
		{ID: 1, Title: "Backpack", Category: "men's clothing", Price: decimal.RequireFromString("109.95")},
		{ID: 9, Title: "Hard Drive", Category: "electronics", Price: decimal.NewFromInt(64)},
	}, nil
}

func (s stubSource) GetProduct(c context.Context, id int) (response.Product, error) {
	products, _ := s.ListProducts(c)
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return response.Product{}, commonErrors.ErrProductNotFound
}

type unavailableSource struct{}

func (unavailableSource) ListProducts(context.Context) ([]response.Product, error) {
	return nil, errors.New("upstream down")
}

func (unavailableSource) GetProduct(context.Context, int) (response.Product, error) {
	return response.Product{}, errors.New("upstream down")
}

func newRouter() *mux.Router {
	return newRouterWithSource(stubSource{})
}

func newRouterWithSource(source catalog.Source) *mux.Router {
	s := session.NewRegistry(source, time.Hour).Create()
	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.AttachToContext(r.Context(), s)))
		})
	})
	svc := service.NewProductService(category.DefaultMenu())
	AttachProductController(router, &svc)
	return router
}

func do(t *testing.T, handler http.Handler, method string, target string, body string) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	result := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	return rec.Code, result
}

func TestProductController(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		statusCode int
	}{
		{name: "given catalog request should render page", method: http.MethodGet, target: "/products?wait=true", statusCode: http.StatusOK},
		{name: "given known product should return detail", method: http.MethodGet, target: "/products/9", statusCode: http.StatusOK},
		{name: "given unknown product should answer 404", method: http.MethodGet, target: "/products/404", statusCode: http.StatusNotFound},
		{name: "given malformed product id should answer 400", method: http.MethodGet, target: "/products/abc", statusCode: http.StatusBadRequest},
		{name: "given categories request should list menu", method: http.MethodGet, target: "/categories", statusCode: http.StatusOK},
		{name: "given category selection should set it", method: http.MethodPut, target: "/categories/selected", body: `{"category":"electronics"}`, statusCode: http.StatusOK},
		{name: "given null selection should clear it", method: http.MethodPut, target: "/categories/selected", body: `{"category":null}`, statusCode: http.StatusOK},
		{name: "given malformed selection should answer 400", method: http.MethodPut, target: "/categories/selected", body: `{`, statusCode: http.StatusBadRequest},
		{name: "given known category toggle should succeed", method: http.MethodPost, target: "/categories/" + url.PathEscape("men's clothing") + "/toggle", statusCode: http.StatusOK},
		{name: "given unknown category toggle should answer 404", method: http.MethodPost, target: "/categories/garden/toggle", statusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, result := do(t, newRouter(), tt.method, tt.target, tt.body)
			assert.Equal(t, tt.statusCode, code)
			assert.EqualValues(t, tt.statusCode, result["statusCode"])
		})
	}
}

func TestProductControllerCatalogFollowsSelection(t *testing.T) {
	router := newRouter()

	do(t, router, http.MethodPut, "/categories/selected", `{"category":"electronics"}`)
	_, result := do(t, router, http.MethodGet, "/products?wait=true", "")

	data := result["data"].(map[string]interface{})
	page := data["catalog"].(map[string]interface{})
	assert.Equal(t, "ready", page["state"])
	assert.Equal(t, "electronics", page["category"])
	tiles := page["tiles"].([]interface{})
	require.Len(t, tiles, 1)
	tile := tiles[0].(map[string]interface{})
	assert.Equal(t, "add", tile["control"])
}

func TestProductControllerUnavailableCatalogAnswersNotFound(t *testing.T) {
	code, result := do(t, newRouterWithSource(unavailableSource{}), http.MethodGet, "/products/1", "")

	assert.Equal(t, http.StatusNotFound, code)
	assert.EqualValues(t, http.StatusNotFound, result["statusCode"])
	assert.Equal(t, commonErrors.ErrProductNotFound.Error(), result["message"])
	assert.NotContains(t, result["message"], "upstream down")
}
