package llm

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type openAIBackend struct {
	client openai.Client
}

func newOpenAIBackend(cfg Config, httpClient *http.Client) *openAIBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIBackend{client: openai.NewClient(opts...)}
}

func (b *openAIBackend) complete(ctx context.Context, prompt string, params Params) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(params.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(params.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if params.MaxOutputTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(params.MaxOutputTokens))
	}
	resp, err := b.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &emptyContentError{Provider: ProviderOpenAI, Detail: "no choices"}
	}
	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		detail := "finish_reason=" + choice.FinishReason
		if choice.Message.Refusal != "" {
			detail += ", refusal=" + choice.Message.Refusal
		}
		return "", &emptyContentError{Provider: ProviderOpenAI, Detail: detail}
	}
	return choice.Message.Content, nil
}
