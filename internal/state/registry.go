package state

import (
	"sync"

	"tokoadmin/internal/models"
)

// Registry keeps one Store per operator, keyed by identity id.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Get returns the operator's store, creating it on first use.
func (r *Registry) Get(operatorID string) *Store {
	r.mu.RLock()
	s, ok := r.stores[operatorID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.stores[operatorID]; ok {
		return s
	}
	s = NewStore()
	r.stores[operatorID] = s
	return s
}

// Put installs s as the operator's store, replacing any previous one.
func (r *Registry) Put(operatorID string, s *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[operatorID] = s
}

// Lookup returns the operator's store without creating one.
func (r *Registry) Lookup(operatorID string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[operatorID]
	return s, ok
}

// Remove forgets an operator, e.g. on logout.
func (r *Registry) Remove(operatorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, operatorID)
}

// Broadcast delivers n to every authenticated operator and returns how many
// stores received it.
func (r *Registry) Broadcast(n models.Notification) int {
	r.mu.RLock()
	stores := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range stores {
		if s.State().Session.Phase != Authenticated {
			continue
		}
		s.Dispatch(NotificationReceived{Notification: n})
		delivered++
	}
	return delivered
}
