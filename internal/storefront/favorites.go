package storefront

import (
	"slices"
	"sync"
)

// Favorites is the set of items the shopper marked as favorite.
type Favorites struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewFavorites returns an empty set.
func NewFavorites() *Favorites {
	return &Favorites{ids: make(map[int64]struct{})}
}

// Toggle flips the favorite state of id and returns the new state.
func (f *Favorites) Toggle(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ids[id]; ok {
		delete(f.ids, id)
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// Has reports whether id is a favorite.
func (f *Favorites) Has(id int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ids[id]
	return ok
}

// IDs returns the favorite ids in ascending order.
func (f *Favorites) IDs() []int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]int64, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
