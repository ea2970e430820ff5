package fetch

import (
	"fmt"

	"newsdigest/internal/ports"
)

// Registry keeps a mapping from source kinds to their fetcher strategies.
type Registry struct {
	fetchers map[string]ports.SourceFetcher
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[string]ports.SourceFetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(fetcher ports.SourceFetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]ports.SourceFetcher{}
	}
	r.fetchers[fetcher.Kind()] = fetcher
}

// Resolve returns a fetcher by kind or an error if it is absent.
func (r *Registry) Resolve(kind string) (ports.SourceFetcher, error) {
	if fetcher, ok := r.fetchers[kind]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("fetcher for kind %s is not registered", kind)
}
