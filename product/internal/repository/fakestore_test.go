package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
)

const fakeProducts = `[
  {"id":1,"title":"Backpack","price":109.95,"description":"pack","category":"men's clothing","image":"https://fakestoreapi.com/img/1.jpg","rating":{"rate":3.9,"count":120}},
  {"id":9,"title":"Hard Drive","price":64,"description":"usb","category":"electronics","image":"https://fakestoreapi.com/img/9.jpg","rating":{"rate":3.3,"count":203}}
]`

func newFakeStore(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fakeProducts))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing"}`))
	})
	mux.HandleFunc("/products/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/products/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/products/42", func(w http.ResponseWriter, r *http.Request) {})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFakeStoreSourceListProducts(t *testing.T) {
	server := newFakeStore(t)
	source := NewFakeStoreSource(server.URL+"/", time.Second)

	products, err := source.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Backpack", products[0].Title)
	assert.True(t, decimal.RequireFromString("109.95").Equal(products[0].Price))
	assert.Equal(t, 120, products[0].Rating.Count)
	assert.Equal(t, "electronics", products[1].Category)
}

func TestFakeStoreSourceGetProduct(t *testing.T) {
	server := newFakeStore(t)
	source := NewFakeStoreSource(server.URL, time.Second)

	tests := []struct {
		name     string
		id       int
		title    string
		notFound bool
		err      bool
	}{
		{name: "given known id should return product", id: 1, title: "Backpack"},
		{name: "given 404 should return not found", id: 404, notFound: true},
		{name: "given empty body should return not found", id: 42, notFound: true},
		{name: "given server error should return error", id: 500, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := source.GetProduct(context.Background(), tt.id)
			switch {
			case tt.notFound:
				assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
			case tt.err:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, commonErrors.ErrProductNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.title, product.Title)
			}
		})
	}
}

func TestFakeStoreSourceUnreachable(t *testing.T) {
	server := newFakeStore(t)
	url := server.URL
	server.Close()

	_, err := NewFakeStoreSource(url, time.Second).ListProducts(context.Background())
	assert.Error(t, err)
}
