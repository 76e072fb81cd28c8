package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/codescout/internal/research"
)

// Supported provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderGoogleAI  = "googleai"
	ProviderAnthropic = "anthropic"
)

// Default models per provider.
const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultGoogleAIModel  = "gemini-1.5-flash"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4096
	defaultRateLimit   = 2.0 // requests per second
	defaultBurst       = 4
)

var (
	// ErrInvalidConfig indicates invalid provider configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Config holds provider configuration. Name selects the backend; the zero
// values of the remaining fields fall back to per-provider defaults.
type Config struct {
	// Name is the provider identifier: openai, googleai or anthropic.
	Name string

	// Model overrides the provider's default model.
	Model string

	// APIKey authenticates against the provider.
	APIKey string

	// BaseURL overrides the provider endpoint (openai-compatible servers).
	// Ignored by googleai and anthropic.
	BaseURL string

	// Temperature for all calls. Zero means the default (0.7).
	Temperature float64

	// MaxTokens per completion. Zero means the default (4096).
	MaxTokens int

	// RequestsPerSecond caps the call rate. Zero means the default (2).
	RequestsPerSecond float64
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Name {
	case ProviderOpenAI, ProviderGoogleAI, ProviderAnthropic:
	case "":
		return fmt.Errorf("%w: provider name required", ErrInvalidConfig)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Name)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: API key required for %s", ErrInvalidConfig, c.Name)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be in [0, 2]", ErrInvalidConfig)
	}
	return nil
}

// Suite implements the three LLM-backed research capabilities over a single
// langchaingo model.
type Suite struct {
	llm         llms.Model
	logger      *zap.Logger
	limiter     *rate.Limiter
	temperature float64
	maxTokens   int
}

// New builds the model for the configured provider and wraps it in a Suite.
// The googleai client dials during construction, hence the context.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Suite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		llm llms.Model
		err error
	)
	switch cfg.Name {
	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(modelOrDefault(cfg.Model, defaultOpenAIModel)),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	case ProviderGoogleAI:
		llm, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(modelOrDefault(cfg.Model, defaultGoogleAIModel)),
		)
	case ProviderAnthropic:
		llm, err = anthropic.New(
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(modelOrDefault(cfg.Model, defaultAnthropicModel)),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Name, err)
	}

	return NewWithModel(llm, cfg, logger)
}

// NewWithModel wraps an existing model in a Suite. Used by New and by tests
// that script model responses.
func NewWithModel(llm llms.Model, cfg Config, logger *zap.Logger) (*Suite, error) {
	if llm == nil {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = defaultRateLimit
	}

	return &Suite{
		llm:         llm,
		logger:      logger.Named("providers"),
		limiter:     rate.NewLimiter(rate.Limit(rps), defaultBurst),
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// complete runs one model call with the suite's defaults applied.
func (s *Suite) complete(ctx context.Context, prompt string, extra ...llms.CallOption) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	opts := append([]llms.CallOption{
		llms.WithTemperature(s.temperature),
		llms.WithMaxTokens(s.maxTokens),
	}, extra...)

	resp, err := s.llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		opts...,
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// Compile-time checks: the Suite covers every LLM-backed capability.
var (
	_ research.QueryGenerator = (*Suite)(nil)
	_ research.Extractor      = (*Suite)(nil)
	_ research.Reporter       = (*Suite)(nil)
)
