package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/pkg/store"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/product/pkg/response"
)

type emptySource struct{}

func (emptySource) ListProducts(context.Context) ([]response.Product, error) {
	return []response.Product{}, nil
}

func (emptySource) GetProduct(context.Context, int) (response.Product, error) {
	return response.Product{}, commonErrors.ErrProductNotFound
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newRegistry(idle time.Duration) (*Registry, *clock) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewRegistry(emptySource{}, idle)
	r.now = clk.Now
	return r, clk
}

func TestRegistryCreateAndGet(t *testing.T) {
	r, _ := newRegistry(time.Minute)

	s := r.Create()
	require.NotNil(t, s)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.NotNil(t, s.Cart)
	assert.NotNil(t, s.Category)
	assert.NotNil(t, s.Catalog)

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get(uuid.New())
	assert.False(t, ok)
}

func TestRegistryRemove(t *testing.T) {
	r, _ := newRegistry(time.Minute)
	s := r.Create()
	kept := r.Create()

	r.Remove(s.ID)
	r.Remove(uuid.New())

	_, ok := r.Get(s.ID)
	assert.False(t, ok)
	_, ok = r.Get(kept.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistrySessionsAreIsolated(t *testing.T) {
	r, _ := newRegistry(time.Minute)
	first := r.Create()
	second := r.Create()

	first.Cart.AddToCart(store.Item{ID: 1, Price: decimal.NewFromInt(5)})

	assert.Equal(t, 1, first.Cart.GetItemQuantity(1))
	assert.Equal(t, 0, second.Cart.GetItemQuantity(1))
}

func TestRegistryExpire(t *testing.T) {
	tests := []struct {
		name      string
		idle      time.Duration
		elapsed   time.Duration
		touched   bool
		expired   int
		remaining int
	}{
		{name: "given session within idle timeout should keep it", idle: time.Minute, elapsed: 30 * time.Second, expired: 0, remaining: 1},
		{name: "given session past idle timeout should drop it", idle: time.Minute, elapsed: 2 * time.Minute, expired: 1, remaining: 0},
		{name: "given session touched recently should keep it", idle: time.Minute, elapsed: 50 * time.Second, touched: true, expired: 0, remaining: 1},
		{name: "given zero idle timeout should never expire", idle: 0, elapsed: 24 * time.Hour, expired: 0, remaining: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, clk := newRegistry(tt.idle)
			s := r.Create()

			clk.now = clk.now.Add(tt.elapsed)
			if tt.touched {
				_, ok := r.Get(s.ID)
				require.True(t, ok)
			}
			clk.now = clk.now.Add(tt.elapsed)

			assert.Equal(t, tt.expired, r.Expire())
			assert.Equal(t, tt.remaining, r.Len())
		})
	}
}

func TestRegistryExpiryEndsCart(t *testing.T) {
	r, clk := newRegistry(time.Minute)
	s := r.Create()
	s.Cart.AddToCart(store.Item{ID: 1, Price: decimal.NewFromInt(5)})
	events, _ := s.Cart.Subscribe()

	clk.now = clk.now.Add(2 * time.Minute)
	_, ok := r.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	_, open := <-events
	assert.False(t, open)
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	r, clk := newRegistry(time.Minute)
	r.Create()
	clk.now = clk.now.Add(time.Hour)

	c, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(c, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	r, _ := newRegistry(time.Minute)
	s := r.Create()
	got, ok := FromContext(AttachToContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
