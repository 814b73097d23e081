package llm

import (
	"context"
	"net/http"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
}

func newGeminiBackend(ctx context.Context, cfg Config, httpClient *http.Client) (*geminiBackend, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}
	return &geminiBackend{client: client}, nil
}

func (b *geminiBackend) complete(ctx context.Context, prompt string, params Params) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(params.Temperature)),
		ResponseMIMEType: "application/json",
	}
	if params.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = int32(params.MaxOutputTokens)
	}
	resp, err := b.client.Models.GenerateContent(ctx, params.Model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", &emptyContentError{Provider: ProviderGemini}
	}
	text := resp.Text()
	if text == "" && len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		return "", &emptyContentError{Provider: ProviderGemini, Detail: "finish_reason=" + string(resp.Candidates[0].FinishReason)}
	}
	return text, nil
}
