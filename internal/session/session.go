// Package session owns the per-session state: one cart, one category
// selection and one catalog view per browsing session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/pkg/store"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
	"github.com/Alturino/storefront/product/pkg/catalog"
	"github.com/Alturino/storefront/product/pkg/category"
)

type Session struct {
	ID       uuid.UUID
	Cart     *store.Store
	Category *category.Selection
	Catalog  *catalog.View

	lastSeen time.Time
}

func (s *Session) close() {
	s.Catalog.Unmount()
	s.Cart.Close()
}

type Registry struct {
	source      catalog.Source
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry(source catalog.Source, idleTimeout time.Duration) *Registry {
	return &Registry{
		source:      source,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    map[uuid.UUID]*Session{},
	}
}

func (r *Registry) Create() *Session {
	s := &Session{
		ID:       uuid.New(),
		Cart:     store.New(),
		Category: category.NewSelection(),
		Catalog:  catalog.NewView(r.source),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s.lastSeen = r.now()
	r.sessions[s.ID] = s
	metric.ActiveSessions.Set(float64(len(r.sessions)))
	return s
}

// Get returns a live session and refreshes its idle deadline. Sessions past
// their idle timeout are treated as ended.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expired(s, now) {
		r.remove(s)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return r.idleTimeout > 0 && now.Sub(s.lastSeen) > r.idleTimeout
}

// remove must be called with r.mu held.
func (r *Registry) remove(s *Session) {
	delete(r.sessions, s.ID)
	s.close()
	metric.ActiveSessions.Set(float64(len(r.sessions)))
}

// Remove ends the session with id, if it is still registered.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		r.remove(s)
	}
}

// Expire ends every idle session and returns how many were dropped.
func (r *Registry) Expire() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	expired := 0
	for _, s := range r.sessions {
		if r.expired(s, now) {
			r.remove(s)
			expired++
		}
	}
	return expired
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		r.remove(s)
	}
}

// Run expires idle sessions every interval until c is done.
func (r *Registry) Run(c context.Context, interval time.Duration) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Registry Run").
		Str(log.KeyProcess, "expiring sessions").
		Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped session janitor")
			return
		case <-ticker.C:
			if expired := r.Expire(); expired > 0 {
				logger.Info().
					Int(log.KeySessionCount, r.Len()).
					Msgf("expired %d idle sessions", expired)
			}
		}
	}
}

type sessionKey struct{}

func AttachToContext(c context.Context, s *Session) context.Context {
	return context.WithValue(c, sessionKey{}, s)
}

func FromContext(c context.Context) (*Session, bool) {
	s, ok := c.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
