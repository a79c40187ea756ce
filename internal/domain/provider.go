package domain

// Provider describes an LLM endpoint. Providers are declared in config.yml.
type Provider struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"` // ollama, openrouter
	BaseURL string `json:"base_url" yaml:"baseURL,omitempty"`
	Model   string `json:"model" yaml:"model,omitempty"`
	APIKey  string `json:"-" yaml:"apiKey,omitempty"`
}
