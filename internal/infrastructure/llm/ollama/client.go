package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/scadenze/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	runner     *resilience.Runner
}

type Option func(*Client)

// WithRunner routes every generate call through a retry/circuit-breaker runner.
func WithRunner(runner *resilience.Runner) Option {
	return func(c *Client) {
		c.runner = runner
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL, genModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (c *Client) generateText(ctx context.Context, operation, prompt string) (string, error) {
	return c.generate(ctx, operation, map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	})
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	call := func(ctx context.Context) (string, error) {
		var response struct {
			Response string `json:"response"`
		}
		if err := c.postJSON(ctx, "/api/generate", reqBody, &response, operation); err != nil {
			return "", err
		}
		return strings.TrimSpace(response.Response), nil
	}

	if c.runner == nil {
		out, err := call(ctx)
		return out, resilience.MarkTemporary("ollama "+operation, err, classifyOllamaError)
	}
	out, err := resilience.Call(ctx, c.runner, "ollama."+operation, call, classifyOllamaError)
	return out, resilience.MarkTemporary("ollama "+operation, err, classifyOllamaError)
}
