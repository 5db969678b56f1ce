package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// GeneratorOptions selects and configures a text-generation backend.
type GeneratorOptions struct {
	Provider   string
	BaseURL    string // openai only
	APIKey     string
	Model      string
	HTTPClient *http.Client // openai only
}

// NewGenerator builds the configured provider. The returned close func is never nil.
func NewGenerator(ctx context.Context, opts GeneratorOptions) (model.TextGenerator, func() error, error) {
	nop := func() error { return nil }

	switch opts.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIProvider(opts.BaseURL, opts.APIKey, opts.Model, opts.HTTPClient), nop, nil
	case ProviderGemini:
		p, err := NewGeminiProvider(ctx, opts.APIKey, opts.Model)
		if err != nil {
			return nil, nop, err
		}
		return p, p.Close, nil
	default:
		return nil, nop, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
