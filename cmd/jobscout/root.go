package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/agent"
	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/breaker"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/planner"
	"github.com/amishk599/jobscout/internal/present"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/retry"
	"github.com/amishk599/jobscout/internal/store"
	"github.com/amishk599/jobscout/internal/tools"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job search assistant",
	Long: "jobscout researches a job title: key skills, a sample resume and cover letter,\n" +
		"current job listings and related posts from around the web.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path, parses it and fills missing
// credentials from the environment and .env.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml" > defaults
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if p := config.ResolvePath(path); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}
	creds.Apply(cfg)
	return cfg, nil
}

func setupLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mustLoad loads config or exits, logging to logger.
func mustLoad(logger *slog.Logger) *config.Config {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

// setupGenerator builds the LLM provider wrapped with retry. Without an API
// key every call fails, which the configured failure policy then handles.
func setupGenerator(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.TextGenerator, func() error, error) {
	nop := func() error { return nil }

	var gen model.TextGenerator
	closeFn := nop
	if cfg.LLM.APIKey == "" {
		logger.Warn("no llm api key configured, generation will fail", "provider", cfg.LLM.Provider)
		gen = ai.NewUnavailableGenerator("no api key for " + cfg.LLM.Provider)
	} else {
		g, c, err := ai.NewGenerator(ctx, ai.GeneratorOptions{
			Provider:   cfg.LLM.Provider,
			BaseURL:    cfg.LLM.BaseURL,
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, nop, fmt.Errorf("create llm provider: %w", err)
		}
		gen, closeFn = g, c
		logger.Info("llm configured", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	return retry.NewRetryGenerator(gen, cfg.LLM.MaxRetries, cfg.LLM.RetryBaseDelay, logger), closeFn, nil
}

// setupSearchers builds both search backends behind the shared rate limiter.
// The job searcher is also guarded by a circuit breaker.
func setupSearchers(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.JobSearcher, model.PostSearcher, error) {
	limiter := ratelimit.NewBackendRateLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.BackendOverrides)
	logger.Debug("rate limiter configured", "min_delay", cfg.RateLimit.MinDelay.String())

	var jobs model.JobSearcher
	if cfg.Jobs.APIKey == "" {
		logger.Warn("no RapidAPI key configured, job search disabled")
		jobs = adapter.Unavailable{Backend: ratelimit.BackendJobs, Reason: "no api key"}
	} else {
		js, err := adapter.NewJSearchAdapter(adapter.JSearchOptions{
			BaseURL:    cfg.Jobs.BaseURL,
			Host:       cfg.Jobs.Host,
			APIKey:     cfg.Jobs.APIKey,
			Country:    cfg.Jobs.Country,
			MaxResults: cfg.Jobs.MaxResults,
			Timeout:    cfg.Jobs.Timeout,
		}, httpClient)
		if err != nil {
			return nil, nil, err
		}
		jobs = ratelimit.NewRateLimitedJobSearcher(js, limiter)
	}
	jobs = breaker.NewJobSearcher(jobs, cfg.Breaker.Failures, cfg.Breaker.Cooldown, logger)

	var posts model.PostSearcher
	if cfg.Posts.APIKey == "" || cfg.Posts.CSEID == "" {
		logger.Warn("no Google search key or engine id configured, post search disabled")
		posts = adapter.Unavailable{Backend: ratelimit.BackendPosts, Reason: "no api key or cse id"}
	} else {
		var opts []option.ClientOption
		if cfg.Posts.Endpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.Posts.Endpoint))
		}
		cse, err := adapter.NewCSEAdapter(ctx, cfg.Posts.APIKey, cfg.Posts.CSEID, cfg.Posts.Num, cfg.Posts.Timeout, opts...)
		if err != nil {
			return nil, nil, err
		}
		posts = ratelimit.NewRateLimitedPostSearcher(cse, limiter)
	}

	return jobs, posts, nil
}

// buildExecutor wires the full agent. The returned close func is never nil.
func buildExecutor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*agent.Executor, func() error, error) {
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}

	gen, closeFn, err := setupGenerator(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, closeFn, err
	}

	searchClient := &http.Client{Timeout: 30 * time.Second}
	jobs, posts, err := setupSearchers(ctx, cfg, searchClient, logger)
	if err != nil {
		return nil, closeFn, err
	}

	policy, err := tools.ParseLLMFailurePolicy(cfg.LLM.OnFailure)
	if err != nil {
		return nil, closeFn, err
	}

	drafter := ai.NewDrafter(gen, ai.DefaultPrompts, logger)
	dispatcher := tools.NewDispatcher(drafter, jobs, posts, tools.Options{
		CacheDerivedSkills: cfg.Agent.CacheDerivedSkills,
		OnLLMFailure:       policy,
	}, logger)

	return agent.NewExecutor(planner.StaticPlanner{}, dispatcher, cfg.Agent.PreviewChars, logger), closeFn, nil
}

// setupPublishers returns the Slack publisher when a webhook is configured and wanted.
func setupPublishers(cfg *config.Config, wanted bool, logger *slog.Logger) []present.Publisher {
	if !wanted {
		return nil
	}
	if cfg.Output.SlackWebhookURL == "" {
		logger.Warn("slack requested but output.slack_webhook_url is not set")
		return nil
	}
	logger.Info("publishing to slack")
	return []present.Publisher{present.NewSlackPublisher(cfg.Output.SlackWebhookURL, &http.Client{Timeout: 30 * time.Second}, logger)}
}

// setupCaptionStore opens the caption store, or a no-op store when captions are disabled.
func setupCaptionStore(cfg *config.Config, logger *slog.Logger) (model.CaptionStore, error) {
	if !cfg.Captions.Enabled {
		logger.Info("captions disabled, using no-op store")
		return store.NewNopCaptionStore(), nil
	}
	apiKey, baseURL := cfg.LLM.APIKey, cfg.LLM.BaseURL
	if cfg.LLM.Provider != ai.ProviderOpenAI {
		logger.Warn("caption embeddings use the OpenAI API regardless of llm.provider")
		creds, err := config.LoadCredentials()
		if err != nil {
			return nil, err
		}
		apiKey, baseURL = creds.OpenAIKey, ""
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	emb := ai.NewOpenAIEmbedder(baseURL, apiKey, cfg.Captions.EmbeddingModel, cfg.Captions.Dimensions, &http.Client{Timeout: cfg.LLM.Timeout})
	return store.NewSQLiteCaptionStore(cfg.Captions.DBPath, emb)
}
