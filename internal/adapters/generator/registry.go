package generator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"upscaler/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry maps provider names to generator factories.
type Registry struct {
	providers map[string]port.GeneratorFactory
}

func (r *Registry) Register(name string, factory port.GeneratorFactory) {
	if r.providers == nil {
		r.providers = make(map[string]port.GeneratorFactory)
	}

	log.Debug().Str("provider", name).Msg("adding provider to registry")
	r.providers[strings.ToLower(name)] = factory
}

func (r *Registry) Get(name string) (port.GeneratorFactory, error) {
	log.Debug().Str("provider", name).Msg("fetching provider from registry")

	if r.providers == nil {
		return nil, errors.New("can't fetch provider, registry not initialized")
	}

	factory, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s (available: %s)", name, strings.Join(r.ListProviders(), ", "))
	}

	return factory, nil
}

func (r *Registry) ListProviders() []string {
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
