package app

import (
	"context"
	"fmt"

	"github.com/david-geiger/knowthelist/internal/adapters/llm/registry"
	"github.com/david-geiger/knowthelist/internal/ports"
)

// ProviderAPI exposes the providers declared in config. API keys never
// leave it unmasked.
type ProviderAPI struct {
	source ports.ProviderSource
	reg    *registry.Registry
}

func NewProviderAPI(source ports.ProviderSource, reg *registry.Registry) *ProviderAPI {
	return &ProviderAPI{source: source, reg: reg}
}

type ProviderDTO struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

func (a *ProviderAPI) List() []ProviderDTO {
	list := a.source.List()
	out := make([]ProviderDTO, 0, len(list))
	for _, p := range list {
		out = append(out, ProviderDTO{Name: p.Name, Type: p.Type, BaseURL: p.BaseURL, Model: p.Model, APIKey: mask(p.APIKey)})
	}
	return out
}

func (a *ProviderAPI) provider(name string) (ports.Provider, error) {
	p, ok := a.reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

func (a *ProviderAPI) ListModels(ctx context.Context, name string) ([]ports.ModelInfo, error) {
	p, err := a.provider(name)
	if err != nil {
		return nil, err
	}
	return p.ListModels(ctx)
}

// ProviderTestResult contains details of a live translate test.
type ProviderTestResult struct {
	Ok          bool   `json:"ok"`
	Translation string `json:"translation,omitempty"`
	Raw         string `json:"raw,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Test translates a short catalog string with the provider's default model.
// Provider failures are reported in the result, not as an error.
func (a *ProviderAPI) Test(ctx context.Context, name, targetLang string) (ProviderTestResult, error) {
	p, err := a.provider(name)
	if err != nil {
		return ProviderTestResult{}, err
	}
	decl, err := a.source.Get(name)
	if err != nil {
		return ProviderTestResult{}, err
	}
	if targetLang == "" {
		targetLang = "cs"
	}
	system := fmt.Sprintf("You are a professional localization translator. Translate from en to %s. Return only JSON: {\"translation\":\"...\"}.", targetLang)
	res, err := p.Translate(ctx, ports.Segment{Key: "Playlist\x04Artist", Text: "Artist", Context: "Playlist"}, ports.TranslateParams{
		SourceLang:   "en",
		TargetLang:   targetLang,
		Model:        decl.Model,
		SystemPrompt: system,
		UserPrompt:   "context: Playlist\nsource: Artist",
	})
	if err != nil {
		return ProviderTestResult{Error: err.Error()}, nil
	}
	return ProviderTestResult{Ok: true, Translation: res.Translation, Raw: res.Raw}, nil
}

// HealthCheck pings every provider; the map holds "ok" or the error text.
func (a *ProviderAPI) HealthCheck(ctx context.Context) map[string]string {
	out := map[string]string{}
	for name, err := range a.reg.HealthCheck(ctx) {
		if err != nil {
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	return out
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 4:
		return "****"
	}
	return "****" + s[len(s)-4:]
}
