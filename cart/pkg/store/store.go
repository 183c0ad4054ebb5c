// Package store holds the session cart: an ordered collection of line items
// keyed by product id, mutated through four total operations and observed
// through snapshot subscriptions.
package store

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Item carries the display fields copied from the catalog on first add.
type Item struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Image string          `json:"image"`
	Price decimal.Decimal `json:"price"`
}

type LineItem struct {
	Item
	Quantity int `json:"quantity"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Store struct {
	mu          sync.Mutex
	items       []LineItem
	subscribers map[int]chan Event
	nextSub     int
	closed      bool
}

func New() *Store {
	return &Store{subscribers: map[int]chan Event{}}
}

func (s *Store) indexOf(id int) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// AddToCart increments the quantity of an existing line, ignoring the
// display fields of item, or appends a new line with quantity 1.
func (s *Store) AddToCart(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, LineItem{Item: item, Quantity: 1})
	}
	s.publish(OperationAdd, item.ID)
}

// IncreaseCart is a no-op when id is not in the cart.
func (s *Store) IncreaseCart(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items[i].Quantity++
	s.publish(OperationIncrease, id)
	return true
}

// DecreaseCart removes the line once its quantity drops to zero.
func (s *Store) DecreaseCart(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items[i].Quantity--
	if s.items[i].Quantity <= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.publish(OperationDecrease, id)
	return true
}

func (s *Store) RemoveFromCart(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.publish(OperationRemove, id)
	return true
}

func (s *Store) GetItemQuantity(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// CartCount is the total number of units across all lines.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartCount(s.items)
}

// UniqueCartCount is the number of distinct products.
func (s *Store) UniqueCartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) copyItems() []LineItem {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Items:           s.copyItems(),
		CartCount:       cartCount(s.items),
		UniqueCartCount: len(s.items),
		Total:           total(s.items),
	}
}

func cartCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}
