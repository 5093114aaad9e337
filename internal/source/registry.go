package source

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Redoni18/scriba-aggregator/internal/domain"
)

// Factory builds the adapter for one configured source.
type Factory func(src *domain.Source) (Adapter, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[domain.Platform]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[domain.Platform]Factory)}
}

// Register panics on a nil factory or a platform registered twice.
func (r *Registry) Register(platform domain.Platform, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("source: nil factory for platform %q", platform))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[platform]; ok {
		panic(fmt.Sprintf("source: platform %q registered twice", platform))
	}
	r.factories[platform] = factory
}

func (r *Registry) New(src *domain.Source) (Adapter, error) {
	r.mu.RLock()
	factory, ok := r.factories[src.Platform]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("source %s: %w: %q", src.Name, ErrUnsupportedPlatform, src.Platform)
	}

	adapter, err := factory(src)
	if err != nil {
		return nil, fmt.Errorf("build %s adapter for %s: %w", src.Platform, src.Name, err)
	}
	return adapter, nil
}

func (r *Registry) Platforms() []domain.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]domain.Platform, 0, len(r.factories))
	for p := range r.factories {
		platforms = append(platforms, p)
	}
	slices.Sort(platforms)
	return platforms
}
