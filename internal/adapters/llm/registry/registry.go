package registry

import (
	"context"
	"errors"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/sasha-s/go-deadlock"
)

// Registry holds named Provider implementations.
type Registry struct {
	mu        deadlock.RWMutex
	providers map[string]ports.Provider
}

func New() *Registry {
	return &Registry{providers: make(map[string]ports.Provider)}
}

// Build registers one provider per declaration using build.
func Build(decls []*domain.Provider, build func(*domain.Provider) (ports.Provider, error)) (*Registry, error) {
	r := New()
	for _, d := range decls {
		p, err := build(d)
		if err != nil {
			return nil, err
		}
		r.Register(d.Name, p)
	}
	return r, nil
}

func (r *Registry) Register(name string, p ports.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

func (r *Registry) Get(name string) (ports.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// HealthCheck tests every provider. Checks run outside the lock.
func (r *Registry) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	snapshot := make(map[string]ports.Provider, len(r.providers))
	for name, p := range r.providers {
		snapshot[name] = p
	}
	r.mu.RUnlock()

	out := make(map[string]error, len(snapshot))
	for name, p := range snapshot {
		if p == nil {
			out[name] = errors.New("nil provider")
			continue
		}
		out[name] = p.Test(ctx)
	}
	return out
}
