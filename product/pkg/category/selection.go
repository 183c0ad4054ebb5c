// Package category holds the selected-category channel shared by the
// category chooser and the catalog view.
package category

import "sync"

// Selection tracks the highlighted menu entry and the category the catalog
// is filtered by. They differ when a subcategory is picked under an active
// parent.
type Selection struct {
	mu       sync.RWMutex
	active   *string
	selected *string
}

func NewSelection() *Selection {
	return &Selection{}
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Selected returns the category the catalog filters by, nil for all.
func (s *Selection) Selected() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.selected)
}

func (s *Selection) Active() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.active)
}

// Set changes the filter without touching the highlighted entry.
func (s *Selection) Set(category *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = clone(category)
}

// Toggle activates category and filters by it. Toggling the already active
// category only collapses the highlight and returns nil; the filter stays.
func (s *Selection) Toggle(category string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && *s.active == category {
		s.active = nil
		return nil
	}
	s.active = clone(&category)
	s.selected = clone(&category)
	return clone(s.active)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.selected = nil
}
