package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/david-geiger/knowthelist/internal/adapters/llm/ollama"
	"github.com/david-geiger/knowthelist/internal/adapters/llm/openrouter"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/ports"
)

// Types lists the provider types FromProvider understands.
var Types = []string{"ollama", "openrouter"}

// FromProvider returns an HTTP-backed provider for the given declaration.
func FromProvider(p *domain.Provider, timeout time.Duration) (ports.Provider, error) {
	switch strings.ToLower(p.Type) {
	case "ollama":
		return ollama.New(p.BaseURL, p.Model, timeout), nil
	case "openrouter":
		return openrouter.New(p.APIKey, p.BaseURL, p.Model, timeout), nil
	default:
		return nil, fmt.Errorf("provider %q: unsupported type %q", p.Name, p.Type)
	}
}
