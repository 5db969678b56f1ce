package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/model"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider sends prompts to Google Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider. Call Close when done.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{client: client, model: modelName}, nil
}

// Complete generates text for prompt, capped at maxTokens output tokens.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m := p.client.GenerativeModel(p.model)
	if maxTokens > 0 {
		m.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", geminiHTTPError(err))
	}
	return textFromResponse(resp)
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// geminiHTTPError maps REST and gRPC API errors onto model.HTTPError.
// Errors without a status are returned unchanged.
func geminiHTTPError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &model.HTTPError{
			StatusCode: gErr.Code,
			RetryAfter: adapter.ParseRetryAfter(gErr.Header.Get("Retry-After")),
			Err:        err,
		}
	}

	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	code := apiErr.HTTPCode()
	if code <= 0 && apiErr.GRPCStatus() != nil {
		code = grpcToHTTP(apiErr.GRPCStatus().Code())
	}
	if code <= 0 {
		return err
	}
	httpErr := &model.HTTPError{StatusCode: code, Err: err}
	if ri := apiErr.Details().RetryInfo; ri != nil && ri.GetRetryDelay() != nil {
		httpErr.RetryAfter = ri.GetRetryDelay().AsDuration()
	}
	return httpErr
}

func grpcToHTTP(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Internal, codes.Unknown, codes.DataLoss:
		return http.StatusInternalServerError
	}
	return 0
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	var b strings.Builder
	for _, part := range c.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text parts")
	}
	return strings.TrimSpace(b.String()), nil
}
