package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{ err error }

func (s stubProvider) Translate(context.Context, ports.Segment, ports.TranslateParams) (ports.TranslateResult, error) {
	return ports.TranslateResult{}, s.err
}

func (s stubProvider) ListModels(context.Context) ([]ports.ModelInfo, error) { return nil, s.err }

func (s stubProvider) Test(context.Context) error { return s.err }

func TestBuildAndHealthCheck(t *testing.T) {
	down := errors.New("connection refused")
	decls := []*domain.Provider{{Name: "local", Type: "ollama"}, {Name: "cloud", Type: "openrouter"}}
	r, err := Build(decls, func(p *domain.Provider) (ports.Provider, error) {
		if p.Type == "ollama" {
			return stubProvider{err: down}, nil
		}
		return stubProvider{}, nil
	})
	require.NoError(t, err)
	r.Register("broken", nil)

	health := r.HealthCheck(context.Background())
	assert.NoError(t, health["cloud"])
	assert.ErrorIs(t, health["local"], down)
	assert.EqualError(t, health["broken"], "nil provider")

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestBuildStopsOnError(t *testing.T) {
	_, err := Build([]*domain.Provider{{Name: "x", Type: "bogus"}}, func(*domain.Provider) (ports.Provider, error) {
		return nil, errors.New("unsupported")
	})
	assert.Error(t, err)
}
