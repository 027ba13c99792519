package backends

import (
	"errors"
	"sync"

	"github.com/velox-ai/agents/models"
)

var (
	// ErrBackendNotFound is returned when no backend is registered for a tier
	ErrBackendNotFound = errors.New("no backend registered for tier")

	// ErrBackendAlreadyRegistered is returned when a tier already has a backend
	ErrBackendAlreadyRegistered = errors.New("backend already registered for tier")
)

// Registry maps each tier to the backend that serves it. Backends are
// registered once at startup; afterwards the registry is read-only and safe
// for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	backends map[models.Tier]Backend
}

// NewRegistry creates an empty backend registry
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[models.Tier]Backend),
	}
}

// Register binds a backend to its tier
func (r *Registry) Register(b Backend) error {
	if b == nil {
		return errors.New("backend cannot be nil")
	}
	tier := b.Tier()
	if !tier.Valid() {
		return errors.New("backend reports an unknown tier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[tier]; exists {
		return ErrBackendAlreadyRegistered
	}
	r.backends[tier] = b
	return nil
}

// Get retrieves the backend serving a tier
func (r *Registry) Get(tier models.Tier) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.backends[tier]
	if !exists {
		return nil, ErrBackendNotFound
	}
	return b, nil
}

// Has reports whether a tier has a registered backend
func (r *Registry) Has(tier models.Tier) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.backends[tier]
	return exists
}

// Tiers returns the tiers with a registered backend, in ascending cost order
func (r *Registry) Tiers() []models.Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tiers := make([]models.Tier, 0, len(r.backends))
	for _, tier := range models.AllTiers() {
		if _, exists := r.backends[tier]; exists {
			tiers = append(tiers, tier)
		}
	}
	return tiers
}

// Count returns the number of registered backends
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.backends)
}
