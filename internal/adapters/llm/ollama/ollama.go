// Package ollama talks to a local Ollama server.
package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/david-geiger/knowthelist/internal/adapters/llm/httpclient"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "http://localhost:11434"

type Client struct {
	BaseURL string
	Model   string
	http    *resty.Client
}

func New(baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Model: model, http: httpclient.New(timeout)}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format"`
	Options  map[string]any `json:"options,omitempty"`
}

func (c *Client) Translate(ctx context.Context, seg ports.Segment, p ports.TranslateParams) (ports.TranslateResult, error) {
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: p.SystemPrompt},
			{Role: "user", Content: p.UserPrompt},
		},
		Format:  "json",
		Options: map[string]any{"temperature": p.Temperature},
	}
	var resp struct {
		Message message `json:"message"`
	}
	r, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&resp).Post(c.BaseURL + "/api/chat")
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if r.IsError() {
		return ports.TranslateResult{}, httpclient.StatusError("ollama", "translate", r)
	}
	content := strings.TrimSpace(resp.Message.Content)
	tr, err := httpclient.ExtractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	r, err := c.http.R().SetContext(ctx).SetResult(&resp).Get(c.BaseURL + "/api/tags")
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, httpclient.StatusError("ollama", "list models", r)
	}
	out := make([]ports.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, ports.ModelInfo{Name: m.Name})
	}
	return out, nil
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}
