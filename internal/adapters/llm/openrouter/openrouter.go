// Package openrouter talks to the OpenRouter chat completions API.
package openrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/david-geiger/knowthelist/internal/adapters/llm/httpclient"
	"github.com/david-geiger/knowthelist/internal/ports"
	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://openrouter.ai"

type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	http    *resty.Client
}

func New(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{APIKey: apiKey, BaseURL: baseURL, Model: model, http: httpclient.New(timeout)}
}

// url builds an API URL whether BaseURL already contains /api/v1 or not.
func (c *Client) url(tail string) string {
	b := strings.TrimRight(c.BaseURL, "/")
	if idx := strings.Index(b, "/api/v1"); idx >= 0 {
		return b[:idx+len("/api/v1")] + tail
	}
	return b + "/api/v1" + tail
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).
		SetAuthToken(c.APIKey).
		SetHeader("X-Title", "knowthelist")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

var translationSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "translation",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"translation": map[string]any{"type": "string"},
			},
			"required":             []string{"translation"},
			"additionalProperties": false,
		},
	},
}

// Translate asks for a structured reply and falls back to plain JSON mode
// when the model rejects response schemas.
func (c *Client) Translate(ctx context.Context, seg ports.Segment, p ports.TranslateParams) (ports.TranslateResult, error) {
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: p.SystemPrompt},
			{Role: "user", Content: p.UserPrompt},
		},
		Temperature:    p.Temperature,
		ResponseFormat: translationSchema,
	}
	var resp chatResponse
	r, err := c.request(ctx).SetBody(body).SetResult(&resp).Post(c.url("/chat/completions"))
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if r.StatusCode() == http.StatusBadRequest {
		body.ResponseFormat = map[string]string{"type": "json_object"}
		r, err = c.request(ctx).SetBody(body).SetResult(&resp).Post(c.url("/chat/completions"))
		if err != nil {
			return ports.TranslateResult{}, err
		}
	}
	if r.IsError() {
		return ports.TranslateResult{}, httpclient.StatusError("openrouter", "translate", r)
	}
	if len(resp.Choices) == 0 {
		return ports.TranslateResult{}, errors.New("openrouter translate: no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	tr, err := httpclient.ExtractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	var resp struct {
		Data []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			ContextLength int    `json:"context_length"`
		} `json:"data"`
	}
	r, err := c.request(ctx).SetResult(&resp).Get(c.url("/models"))
	if err != nil {
		return nil, err
	}
	if r.IsError() {
		return nil, httpclient.StatusError("openrouter", "list models", r)
	}
	out := make([]ports.ModelInfo, 0, len(resp.Data))
	for _, d := range resp.Data {
		label := d.Name
		if label == "" {
			label = d.ID
		}
		out = append(out, ports.ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
	}
	return out, nil
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}
