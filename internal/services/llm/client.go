package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 60 * time.Second

// Supported providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrUnconfigured reports that no credentials were supplied for the backend.
var ErrUnconfigured = errors.New("llm backend not configured")

// Config captures the runtime settings required to talk to a provider.
type Config struct {
	Provider       string
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Params are the per-call model parameters.
type Params struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// CallError wraps a failed backend call. Error returns the underlying message
// unchanged so it can be surfaced to users as a failure reason.
type CallError struct {
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	if e == nil || e.Err == nil {
		return "llm call failed"
	}
	return e.Err.Error()
}

func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type emptyContentError struct {
	Provider string
	Detail   string
}

func (e *emptyContentError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: empty content", e.Provider)
	}
	return fmt.Sprintf("%s: empty content (%s)", e.Provider, e.Detail)
}

// completer performs exactly one upstream request and returns the raw text.
type completer interface {
	complete(ctx context.Context, prompt string, params Params) (string, error)
}

// Client dispatches completion requests to the configured provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	backend    completer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a client for cfg.Provider. An empty API key yields an
// unconfigured client rather than an error.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			Provider:       strings.ToLower(strings.TrimSpace(cfg.Provider)),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.Provider == "" {
		client.cfg.Provider = ProviderGemini
	}
	if client.cfg.APIKey == "" {
		if !knownProvider(client.cfg.Provider) {
			return nil, fmt.Errorf("llm: unsupported provider %q", client.cfg.Provider)
		}
		return client, nil
	}

	var err error
	switch client.cfg.Provider {
	case ProviderGemini:
		client.backend, err = newGeminiBackend(ctx, client.cfg, client.httpClient)
	case ProviderOpenAI:
		client.backend = newOpenAIBackend(client.cfg, client.httpClient)
	case ProviderAnthropic:
		client.backend = newAnthropicBackend(client.cfg, client.httpClient)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", client.cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("llm: init %s: %w", client.cfg.Provider, err)
	}
	return client, nil
}

func knownProvider(name string) bool {
	switch name {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return true
	}
	return false
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	if c == nil {
		return ""
	}
	return c.cfg.Provider
}

// Configured reports whether credentials were present at construction.
func (c *Client) Configured() bool {
	return c != nil && c.backend != nil
}

// Complete sends prompt to the provider and returns the raw response text.
// It returns ErrUnconfigured without network I/O when no credentials exist.
func (c *Client) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	if !c.Configured() {
		return "", ErrUnconfigured
	}
	if strings.TrimSpace(params.Model) == "" {
		return "", &CallError{Provider: c.cfg.Provider, Err: errors.New("model name required")}
	}
	raw, err := c.backend.complete(ctx, prompt, params)
	if err != nil {
		return "", &CallError{Provider: c.cfg.Provider, Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &CallError{Provider: c.cfg.Provider, Err: &emptyContentError{Provider: c.cfg.Provider}}
	}
	return raw, nil
}
