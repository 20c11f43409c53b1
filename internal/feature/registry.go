package feature

import (
	"sort"
	"sync"

	"github.com/augurlab/augur/pkg/errors"
)

// Registry manages all available features.
type Registry struct {
	features map[Type]Feature
	mu       sync.RWMutex
}

// NewRegistry creates an empty feature registry.
func NewRegistry() *Registry {
	return &Registry{
		features: make(map[Type]Feature),
		mu:       sync.RWMutex{},
	}
}

// DefaultRegistry creates a registry with every built-in feature registered,
// including momentum variants for periods 2, 3 and 5.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewHighOpenGap())
	r.Register(NewLowOpenGap())
	r.Register(NewIntradayReturn())
	r.Register(NewRangeRatio())
	r.Register(NewDailyReturn())
	r.Register(NewVolumeChange())
	r.Register(NewMomentum(2))
	r.Register(NewMomentum(3))
	r.Register(NewMomentum(5))

	return r
}

// Register adds a feature to the registry.
func (r *Registry) Register(feature Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := feature.Name()
	if _, exists := r.features[name]; exists {
		return errors.Newf(errors.ErrCodeFeatureAlreadyExists, "Register: feature with name %s already registered", name)
	}

	r.features[name] = feature

	return nil
}

// Get retrieves a feature by name.
func (r *Registry) Get(name Type) (Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feature, exists := r.features[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeFeatureNotFound, "Get: feature with name %s not found", name)
	}

	return feature, nil
}

// List returns the names of all registered features, sorted.
func (r *Registry) List() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Type, 0, len(r.features))
	for name := range r.features {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// Remove removes a feature from the registry.
func (r *Registry) Remove(name Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.features[name]; !exists {
		return errors.Newf(errors.ErrCodeFeatureNotFound, "Remove: feature with name %s not found", name)
	}

	delete(r.features, name)

	return nil
}

// Resolve maps configured feature names to features, preserving the given
// order. The returned slice's ordering defines the feature-vector layout.
func (r *Registry) Resolve(names []string) ([]Feature, error) {
	features := make([]Feature, 0, len(names))

	for _, name := range names {
		feature, err := r.Get(Type(name))
		if err != nil {
			return nil, err
		}

		features = append(features, feature)
	}

	return features, nil
}
