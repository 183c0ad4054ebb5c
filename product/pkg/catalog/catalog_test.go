package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/product/pkg/response"
)

func products() []response.Product {
	return []response.Product{
		{ID: 1, Title: "Rice", Category: "food", Price: decimal.NewFromInt(3)},
		{ID: 2, Title: "Monitor", Category: "electronics", Price: decimal.NewFromInt(200)},
		{ID: 3, Title: "Bread", Category: "food", Price: decimal.NewFromInt(2)},
		{ID: 4, Title: "SSD", Category: "electronics", Price: decimal.NewFromInt(90)},
		{ID: 5, Title: "Milk", Category: "food", Price: decimal.NewFromInt(1)},
	}
}

func ptr(s string) *string { return &s }

func ids(products []response.Product) []int {
	result := make([]int, 0, len(products))
	for _, p := range products {
		result = append(result, p.ID)
	}
	return result
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		category *string
		expected []int
	}{
		{name: "given nil category should return every product", category: nil, expected: []int{1, 2, 3, 4, 5}},
		{name: "given mixed case category should match case-insensitively", category: ptr("Electronics"), expected: []int{2, 4}},
		{name: "given substring should match containing categories", category: ptr("oo"), expected: []int{1, 3, 5}},
		{name: "given empty category should match every product", category: ptr(""), expected: []int{1, 2, 3, 4, 5}},
		{name: "given unknown category should return nothing", category: ptr("jewelery"), expected: []int{}},
		{name: "given cyrillic category should lower case unicode", category: ptr("ХООЛ"), expected: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Filter(products(), tt.category)))
		})
	}
}

func TestFilterIsIdempotentAndOrderPreserving(t *testing.T) {
	list := products()
	first := Filter(list, ptr("food"))
	second := Filter(list, ptr("food"))
	assert.Equal(t, first, second)
	assert.Equal(t, first, Filter(first, ptr("food")))
	assert.Equal(t, list, Filter(list, nil))
}

func TestFilterUnicodeCategory(t *testing.T) {
	list := []response.Product{{ID: 1, Category: "Хоол"}, {ID: 2, Category: "Цэцэг"}}
	assert.Equal(t, []int{1}, ids(Filter(list, ptr("хоол"))))
}

func TestControlFor(t *testing.T) {
	assert.Equal(t, ControlAdd, ControlFor(0))
	assert.Equal(t, ControlStepper, ControlFor(1))
	assert.Equal(t, ControlStepper, ControlFor(12))
}

type stubSource struct {
	mu       sync.Mutex
	calls    int
	products []response.Product
	errs     []error
	release  chan struct{}
}

func (s *stubSource) ListProducts(c context.Context) ([]response.Product, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	release := s.release
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-c.Done():
			return nil, c.Err()
		}
	}
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	return s.products, nil
}

func (s *stubSource) GetProduct(_ context.Context, id int) (response.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return response.Product{}, commonErrors.ErrProductNotFound
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type quantities map[int]int

func (q quantities) GetItemQuantity(id int) int { return q[id] }

func TestViewRendersPlaceholdersWhilePending(t *testing.T) {
	source := &stubSource{products: products(), release: make(chan struct{})}
	view := NewView(source)

	page := view.Render(nil, quantities{})
	assert.True(t, page.Loading)
	assert.Equal(t, PlaceholderCount, page.Placeholders)

	view.Mount(context.Background())
	page = view.Render(nil, quantities{})
	assert.Equal(t, StateLoading, page.State)
	assert.True(t, page.Loading)
	assert.Equal(t, 8, page.Placeholders)
	assert.Empty(t, page.Tiles)

	close(source.release)
	state, err := view.WaitReady(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, state)

	page = view.Render(ptr("electronics"), quantities{4: 2})
	assert.False(t, page.Loading)
	assert.Equal(t, 0, page.Placeholders)
	require.Len(t, page.Tiles, 2)
	assert.Equal(t, 2, page.Tiles[0].Product.ID)
	assert.Equal(t, ControlAdd, page.Tiles[0].Control)
	assert.Equal(t, 0, page.Tiles[0].Quantity)
	assert.Equal(t, 4, page.Tiles[1].Product.ID)
	assert.Equal(t, ControlStepper, page.Tiles[1].Control)
	assert.Equal(t, 2, page.Tiles[1].Quantity)
}

func TestViewFetchesOncePerMount(t *testing.T) {
	source := &stubSource{products: products()}
	view := NewView(source)

	view.Mount(context.Background())
	_, err := view.WaitReady(context.Background())
	require.NoError(t, err)
	view.Mount(context.Background())
	view.Mount(context.Background())
	assert.Equal(t, 1, source.Calls())

	view.Unmount()
	assert.Equal(t, StateIdle, view.State())
	view.Mount(context.Background())
	_, err = view.WaitReady(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.Calls())
}

func TestViewFailureRendersNotFoundAndRetriesOnMount(t *testing.T) {
	source := &stubSource{products: products(), errs: []error{errors.New("boom")}}
	view := NewView(source)

	view.Mount(context.Background())
	state, err := view.WaitReady(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateFailed, state)

	page := view.Render(nil, quantities{})
	assert.True(t, page.NotFound)
	assert.False(t, page.Loading)
	assert.Empty(t, page.Tiles)

	view.Mount(context.Background())
	state, err = view.WaitReady(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, state)
	assert.Len(t, view.Render(nil, quantities{}).Tiles, 5)
}

func TestViewDiscardsSupersededFetch(t *testing.T) {
	release := make(chan struct{})
	source := &stubSource{products: products(), release: release}
	view := NewView(source)

	view.Mount(context.Background())
	view.mu.Lock()
	staleDone := view.done
	view.mu.Unlock()

	view.Unmount()
	close(release)
	select {
	case <-staleDone:
	case <-time.After(time.Second):
		t.Fatal("stale fetch did not finish")
	}

	assert.Equal(t, StateIdle, view.State())
	assert.Nil(t, view.Products())
}

func TestViewRenderReadsCurrentCartState(t *testing.T) {
	source := &stubSource{products: products()}
	view := NewView(source)
	view.Mount(context.Background())
	_, err := view.WaitReady(context.Background())
	require.NoError(t, err)

	q := quantities{}
	assert.Equal(t, ControlAdd, view.Render(nil, q).Tiles[0].Control)
	q[1] = 1
	assert.Equal(t, ControlStepper, view.Render(nil, q).Tiles[0].Control)
	delete(q, 1)
	assert.Equal(t, ControlAdd, view.Render(nil, q).Tiles[0].Control)
}

func TestViewProduct(t *testing.T) {
	view := NewView(&stubSource{products: products()})

	p, err := view.Product(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Bread", p.Title)

	_, err = view.Product(context.Background(), 42)
	assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
}
