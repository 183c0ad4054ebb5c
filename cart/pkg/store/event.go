package store

import "github.com/shopspring/decimal"

type Operation string

const (
	OperationAdd      Operation = "add"
	OperationIncrease Operation = "increase"
	OperationDecrease Operation = "decrease"
	OperationRemove   Operation = "remove"
)

type Snapshot struct {
	Items           []LineItem      `json:"items"`
	CartCount       int             `json:"cartCount"`
	UniqueCartCount int             `json:"uniqueCartCount"`
	Total           decimal.Decimal `json:"total"`
}

type Event struct {
	Operation Operation `json:"operation"`
	ProductID int       `json:"productId"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// Subscribe registers an observer. Each subscriber holds at most one pending
// event; a newer event replaces an unread one, so a slow reader always ends
// on the latest snapshot. The returned func unsubscribes and closes the
// channel.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Close ends every subscription; the cart stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// publish must be called with s.mu held.
func (s *Store) publish(op Operation, id int) {
	if len(s.subscribers) == 0 {
		return
	}
	event := Event{Operation: op, ProductID: id, Snapshot: s.snapshot()}
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}
