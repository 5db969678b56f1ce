package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given.
const EnvConfigPath = "JOBSCOUT_CONFIG"

// DefaultPath is used when present in the working directory.
const DefaultPath = "config.yaml"

// Config is the root configuration for jobscout.
type Config struct {
	LLM       LLMConfig
	Jobs      JobsConfig
	Posts     PostsConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
	Agent     AgentConfig
	Captions  CaptionsConfig
	Output    OutputConfig
	Batch     BatchConfig
}

// LLMConfig selects and tunes the text generation backend.
type LLMConfig struct {
	Provider       string // "openai" or "gemini"
	BaseURL        string // defaults to https://api.openai.com/v1
	Model          string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	OnFailure      string // "propagate" or "placeholder"
}

// JobsConfig configures the JSearch job-search backend.
type JobsConfig struct {
	BaseURL    string
	Host       string
	APIKey     string
	Country    string
	Timeout    time.Duration
	MaxResults int
}

// PostsConfig configures the Google Programmable Search backend.
type PostsConfig struct {
	APIKey   string
	CSEID    string
	Endpoint string // overrides the API endpoint, mainly for tests
	Timeout  time.Duration
	Num      int
}

// RateLimitConfig controls backend-level rate limiting.
type RateLimitConfig struct {
	MinDelay         time.Duration            // minimum gap between requests to the same backend
	BackendOverrides map[string]time.Duration // per-backend overrides, keyed by backend name
}

// MinDelayFor returns the configured delay for the given backend, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(backend string) time.Duration {
	if d, ok := r.BackendOverrides[backend]; ok {
		return d
	}
	return r.MinDelay
}

// BreakerConfig controls the job-search circuit breaker.
type BreakerConfig struct {
	Failures uint32        // consecutive failures before opening
	Cooldown time.Duration // time spent open before a trial request
}

// AgentConfig holds defaults for a single agent run.
type AgentConfig struct {
	Location           string
	Company            string
	CacheDerivedSkills bool
	PreviewChars       int
	SuggestedTitles    []string
}

// CaptionsConfig controls the optional caption similarity store.
type CaptionsConfig struct {
	Enabled        bool
	DBPath         string
	EmbeddingModel string
	Dimensions     int
}

// OutputConfig controls where results are delivered besides the terminal.
type OutputConfig struct {
	SlackWebhookURL string
}

// BatchConfig controls `jobscout batch`.
type BatchConfig struct {
	Pause time.Duration
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-1.5-flash"
	defaultJSearchURL    = "https://jsearch.p.rapidapi.com"
	defaultJSearchHost   = "jsearch.p.rapidapi.com"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	LLM       rawLLMConfig       `yaml:"llm"`
	Jobs      rawJobsConfig      `yaml:"jobs"`
	Posts     rawPostsConfig     `yaml:"posts"`
	RateLimit rawRateLimitConfig `yaml:"rate_limit"`
	Breaker   rawBreakerConfig   `yaml:"breaker"`
	Agent     rawAgentConfig     `yaml:"agent"`
	Captions  rawCaptionsConfig  `yaml:"captions"`
	Output    rawOutputConfig    `yaml:"output"`
	Batch     rawBatchConfig     `yaml:"batch"`
}

type rawLLMConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	Timeout        string `yaml:"timeout"`
	MaxRetries     *int   `yaml:"max_retries"`
	RetryBaseDelay string `yaml:"retry_base_delay"`
	OnFailure      string `yaml:"on_failure"`
}

type rawJobsConfig struct {
	BaseURL    string `yaml:"base_url"`
	Host       string `yaml:"host"`
	APIKey     string `yaml:"api_key"`
	Country    string `yaml:"country"`
	Timeout    string `yaml:"timeout"`
	MaxResults int    `yaml:"max_results"`
}

type rawPostsConfig struct {
	APIKey   string `yaml:"api_key"`
	CSEID    string `yaml:"cse_id"`
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
	Num      int    `yaml:"num"`
}

type rawRateLimitConfig struct {
	MinDelay         string            `yaml:"min_delay"`
	BackendOverrides map[string]string `yaml:"backend_overrides"`
}

type rawBreakerConfig struct {
	Failures uint32 `yaml:"failures"`
	Cooldown string `yaml:"cooldown"`
}

type rawAgentConfig struct {
	Location           string   `yaml:"location"`
	Company            string   `yaml:"company"`
	CacheDerivedSkills bool     `yaml:"cache_derived_skills"`
	PreviewChars       int      `yaml:"preview_chars"`
	SuggestedTitles    []string `yaml:"suggested_titles"`
}

type rawCaptionsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	DBPath         string `yaml:"db_path"`
	EmbeddingModel string `yaml:"embedding_model"`
	Dimensions     int    `yaml:"dimensions"`
}

type rawOutputConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

type rawBatchConfig struct {
	Pause string `yaml:"pause"`
}

// Credentials are read from the environment (and a .env file, if any).
type Credentials struct {
	OpenAIKey   string `envconfig:"OPENAI_API_KEY"`
	GeminiKey   string `envconfig:"GEMINI_API_KEY"`
	RapidAPIKey string `envconfig:"RAPIDAPI_KEY"`
	GoogleKey   string `envconfig:"GOOGLE_API_KEY"`
	GoogleCSEID string `envconfig:"GOOGLE_CSE_ID"`
}

// LoadCredentials loads .env from the working directory when present and
// reads the API credentials from the environment.
func LoadCredentials() (Credentials, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Credentials{}, fmt.Errorf("load .env: %w", err)
	}
	var c Credentials
	if err := envconfig.Process("", &c); err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	return c, nil
}

// Apply fills any key the YAML left empty.
func (c Credentials) Apply(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "gemini":
			cfg.LLM.APIKey = c.GeminiKey
		default:
			cfg.LLM.APIKey = c.OpenAIKey
		}
	}
	if cfg.Jobs.APIKey == "" {
		cfg.Jobs.APIKey = c.RapidAPIKey
	}
	if cfg.Posts.APIKey == "" {
		cfg.Posts.APIKey = c.GoogleKey
	}
	if cfg.Posts.CSEID == "" {
		cfg.Posts.CSEID = c.GoogleCSEID
	}
}

// ResolvePath picks the config file: the flag value, then $JOBSCOUT_CONFIG,
// then ./config.yaml if it exists. An empty result means built-in defaults.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg, err := parse(rawConfig{})
	if err != nil {
		// the zero rawConfig only contains defaults
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := parse(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(raw rawConfig) (*Config, error) {
	var err error
	cfg := &Config{}

	// llm
	cfg.LLM = LLMConfig{
		Provider:  strings.ToLower(strings.TrimSpace(raw.LLM.Provider)),
		BaseURL:   raw.LLM.BaseURL,
		Model:     raw.LLM.Model,
		APIKey:    raw.LLM.APIKey,
		OnFailure: raw.LLM.OnFailure,
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.BaseURL == "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultOpenAIModel
		if cfg.LLM.Provider == "gemini" {
			cfg.LLM.Model = defaultGeminiModel
		}
	}
	if cfg.LLM.OnFailure == "" {
		cfg.LLM.OnFailure = "propagate"
	}
	if cfg.LLM.Timeout, err = durationOr(raw.LLM.Timeout, 60*time.Second, "llm.timeout"); err != nil {
		return nil, err
	}
	if cfg.LLM.RetryBaseDelay, err = durationOr(raw.LLM.RetryBaseDelay, 2*time.Second, "llm.retry_base_delay"); err != nil {
		return nil, err
	}
	cfg.LLM.MaxRetries = 2
	if raw.LLM.MaxRetries != nil {
		cfg.LLM.MaxRetries = *raw.LLM.MaxRetries
	}

	// jobs
	cfg.Jobs = JobsConfig{
		BaseURL:    orDefault(raw.Jobs.BaseURL, defaultJSearchURL),
		Host:       orDefault(raw.Jobs.Host, defaultJSearchHost),
		APIKey:     raw.Jobs.APIKey,
		Country:    orDefault(raw.Jobs.Country, "us"),
		MaxResults: raw.Jobs.MaxResults,
	}
	if cfg.Jobs.MaxResults == 0 {
		cfg.Jobs.MaxResults = 10
	}
	if cfg.Jobs.Timeout, err = durationOr(raw.Jobs.Timeout, 30*time.Second, "jobs.timeout"); err != nil {
		return nil, err
	}

	// posts
	cfg.Posts = PostsConfig{
		APIKey:   raw.Posts.APIKey,
		CSEID:    raw.Posts.CSEID,
		Endpoint: raw.Posts.Endpoint,
		Num:      raw.Posts.Num,
	}
	if cfg.Posts.Num == 0 {
		cfg.Posts.Num = 5
	}
	if cfg.Posts.Timeout, err = durationOr(raw.Posts.Timeout, 15*time.Second, "posts.timeout"); err != nil {
		return nil, err
	}

	// rate_limit
	if cfg.RateLimit.MinDelay, err = durationOr(raw.RateLimit.MinDelay, time.Second, "rate_limit.min_delay"); err != nil {
		return nil, err
	}
	cfg.RateLimit.BackendOverrides = make(map[string]time.Duration)
	for backend, s := range raw.RateLimit.BackendOverrides {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.backend_overrides[%q]: %w", backend, err)
		}
		cfg.RateLimit.BackendOverrides[backend] = d
	}

	// breaker
	cfg.Breaker.Failures = raw.Breaker.Failures
	if cfg.Breaker.Failures == 0 {
		cfg.Breaker.Failures = 3
	}
	if cfg.Breaker.Cooldown, err = durationOr(raw.Breaker.Cooldown, time.Minute, "breaker.cooldown"); err != nil {
		return nil, err
	}

	// agent
	cfg.Agent = AgentConfig{
		Location:           raw.Agent.Location,
		Company:            raw.Agent.Company,
		CacheDerivedSkills: raw.Agent.CacheDerivedSkills,
		PreviewChars:       raw.Agent.PreviewChars,
		SuggestedTitles:    raw.Agent.SuggestedTitles,
	}
	if cfg.Agent.PreviewChars == 0 {
		cfg.Agent.PreviewChars = 600
	}

	// captions
	cfg.Captions = CaptionsConfig{
		Enabled:        raw.Captions.Enabled,
		DBPath:         orDefault(raw.Captions.DBPath, "captions.db"),
		EmbeddingModel: orDefault(raw.Captions.EmbeddingModel, "text-embedding-3-small"),
		Dimensions:     raw.Captions.Dimensions,
	}
	if cfg.Captions.Dimensions == 0 {
		cfg.Captions.Dimensions = 256
	}

	cfg.Output.SlackWebhookURL = raw.Output.SlackWebhookURL

	if cfg.Batch.Pause, err = durationOr(raw.Batch.Pause, 5*time.Second, "batch.pause"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationOr(s string, def time.Duration, key string) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, s, err)
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func validate(cfg *Config) error {
	switch cfg.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be \"openai\" or \"gemini\", got %q", cfg.LLM.Provider)
	}
	switch cfg.LLM.OnFailure {
	case "propagate", "placeholder":
	default:
		return fmt.Errorf("llm.on_failure must be \"propagate\" or \"placeholder\", got %q", cfg.LLM.OnFailure)
	}
	if cfg.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %v", cfg.LLM.Timeout)
	}

	if cfg.Jobs.MaxResults < 1 || cfg.Jobs.MaxResults > 10 {
		return fmt.Errorf("jobs.max_results must be between 1 and 10, got %d", cfg.Jobs.MaxResults)
	}
	if cfg.Posts.Num < 1 || cfg.Posts.Num > 10 {
		return fmt.Errorf("posts.num must be between 1 and 10, got %d", cfg.Posts.Num)
	}

	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}
	if cfg.Breaker.Cooldown <= 0 {
		return fmt.Errorf("breaker.cooldown must be positive, got %v", cfg.Breaker.Cooldown)
	}
	if cfg.Agent.PreviewChars < 0 {
		return fmt.Errorf("agent.preview_chars must not be negative, got %d", cfg.Agent.PreviewChars)
	}

	if cfg.Captions.Enabled && cfg.Captions.DBPath == "" {
		return fmt.Errorf("captions.db_path is required when captions.enabled is true")
	}

	if url := cfg.Output.SlackWebhookURL; url != "" && !strings.HasPrefix(url, slackWebhookPrefix) {
		return fmt.Errorf("output.slack_webhook_url must start with %s", slackWebhookPrefix)
	}

	return nil
}
