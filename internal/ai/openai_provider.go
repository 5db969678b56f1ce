package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/model"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider sends prompts to the OpenAI chat completions endpoint.
// The prompt is sent as a single system message.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a provider targeting an OpenAI-compatible API.
// SDK retries are disabled; wrap the provider with retry.RetryGenerator instead.
func NewOpenAIProvider(baseURL, apiKey, modelName string, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(clientOptions(baseURL, apiKey, httpClient)...),
		model:  modelName,
	}
}

func clientOptions(baseURL, apiKey string, httpClient *http.Client) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return opts
}

// Complete returns the text of the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
		},
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", asHTTPError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// asHTTPError converts SDK API errors into model.HTTPError so the retry
// decorator can classify them.
func asHTTPError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	httpErr := &model.HTTPError{StatusCode: apiErr.StatusCode, Err: err}
	if apiErr.Response != nil {
		httpErr.RetryAfter = adapter.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	return httpErr
}
