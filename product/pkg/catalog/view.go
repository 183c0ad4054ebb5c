package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/product/pkg/response"
)

const PlaceholderCount = 8

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

type Tile struct {
	Product  response.Product `json:"product"`
	Quantity int              `json:"quantity"`
	Control  Control          `json:"control"`
}

type Page struct {
	State        State   `json:"state"`
	Loading      bool    `json:"loading"`
	NotFound     bool    `json:"notFound"`
	Placeholders int     `json:"placeholders"`
	Category     *string `json:"category"`
	Tiles        []Tile  `json:"tiles"`
}

// View is the per-session catalog list. The product list is fetched once
// per mount; a failed fetch is retried by mounting again.
type View struct {
	source Source

	mu         sync.Mutex
	state      State
	products   []response.Product
	err        error
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewView(source Source) *View {
	return &View{source: source, state: StateIdle}
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Mount starts the asynchronous fetch unless one is in flight or already
// succeeded. The fetch outlives the request that mounted it but keeps its
// logger and trace.
func (v *View) Mount(c context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateLoading || v.state == StateReady {
		return
	}

	v.generation++
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(c))
	v.cancel = cancel
	v.state = StateLoading
	v.err = nil
	v.done = make(chan struct{})

	go v.fetch(fetchCtx, v.generation, v.done)
}

func (v *View) fetch(c context.Context, generation uint64, done chan struct{}) {
	defer close(done)

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "View fetch").Logger()

	products, err := v.source.ListProducts(c)

	v.mu.Lock()
	defer v.mu.Unlock()
	if generation != v.generation {
		logger.Debug().Msg("discarding superseded catalog fetch")
		return
	}
	v.cancel()
	v.cancel = nil
	if err != nil {
		logger.Error().Err(err).Msg("failed fetching catalog")
		v.state = StateFailed
		v.err = err
		return
	}
	v.state = StateReady
	v.products = products
	logger.Info().Int(log.KeyProductCount, len(products)).Msg("fetched catalog")
}

// Unmount cancels an in-flight fetch and drops the fetched list; its result,
// if it still arrives, is discarded.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.state = StateIdle
	v.products = nil
	v.err = nil
}

// WaitReady blocks until the current fetch settles or c is done.
func (v *View) WaitReady(c context.Context) (State, error) {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-c.Done():
			return v.State(), c.Err()
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, v.err
}

// Products returns the fetched list, or nil while not ready.
func (v *View) Products() []response.Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateReady {
		return nil
	}
	return v.products
}

// Render derives the page for the selected category. Quantities are read
// from the cart at call time.
func (v *View) Render(selected *string, quantities QuantityReader) Page {
	v.mu.Lock()
	state := v.state
	products := v.products
	v.mu.Unlock()

	page := Page{State: state, Category: selected, Tiles: []Tile{}}
	switch state {
	case StateIdle, StateLoading:
		page.Loading = true
		page.Placeholders = PlaceholderCount
		return page
	case StateFailed:
		page.NotFound = true
		return page
	}

	visible := Filter(products, selected)
	page.Tiles = make([]Tile, 0, len(visible))
	for _, p := range visible {
		quantity := quantities.GetItemQuantity(p.ID)
		page.Tiles = append(page.Tiles, Tile{
			Product:  p,
			Quantity: quantity,
			Control:  ControlFor(quantity),
		})
	}
	return page
}

// Product fetches a single product from the source.
func (v *View) Product(c context.Context, id int) (response.Product, error) {
	return v.source.GetProduct(c, id)
}
