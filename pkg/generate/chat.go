package generate

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/matzehuels/rose/pkg/cache"
	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/observability"
)

// Defaults for Config.
const (
	ProviderOpenAI = "openai"

	DefaultModel       = "gpt-5-mini"
	DefaultTemperature = 0.7
	DefaultRateLimit   = 2.0 // requests per second
)

// Config configures a ChatGenerator backed by an OpenAI-compatible model.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	// RateLimit caps model requests per second; zero means DefaultRateLimit.
	RateLimit float64
	// PromptsDir optionally overrides the built-in prompt templates.
	PromptsDir string
	Logger     *log.Logger
}

// WithDefaults returns a copy with zero fields set to their defaults.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	return c
}

// ChatGenerator implements Generator on top of an eino chat model.
type ChatGenerator struct {
	model   model.BaseChatModel
	limiter *rate.Limiter
	prompts Prompts
	logger  *log.Logger

	// retry runs a model call; swapped in tests to avoid backoff sleeps.
	retry func(context.Context, func() error) error
}

// NewChatGenerator creates a generator for cfg.Provider. Only "openai"
// (any OpenAI-compatible endpoint) is supported.
func NewChatGenerator(ctx context.Context, cfg Config) (*ChatGenerator, error) {
	cfg = cfg.WithDefaults()
	if cfg.Provider != ProviderOpenAI {
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported provider %q", cfg.Provider)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "%s API key is not configured (set OPENAI_API_KEY)", strings.ToUpper(cfg.Provider))
	}

	temperature := cfg.Temperature
	mcfg := &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &temperature,
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		mcfg.MaxTokens = &maxTokens
	}
	m, err := openai.NewChatModel(ctx, mcfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeneration, err, "create chat model")
	}
	return NewChatGeneratorFromModel(m, cfg)
}

// NewChatGeneratorFromModel wraps an existing chat model. Provider, key and
// model fields of cfg are ignored.
func NewChatGeneratorFromModel(m model.BaseChatModel, cfg Config) (*ChatGenerator, error) {
	cfg = cfg.WithDefaults()
	prompts, err := LoadPrompts(cfg.PromptsDir)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &ChatGenerator{
		model:   m,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		prompts: prompts,
		logger:  logger,
		retry:   cache.RetryWithBackoff,
	}, nil
}

// Related implements Generator.
func (g *ChatGenerator) Related(ctx context.Context, req RelatedRequest) (concepts []Concept, err error) {
	start := time.Now()
	observability.Generate().OnGenerateStart(ctx, "related", req.Word)
	defer func() {
		observability.Generate().OnGenerateComplete(ctx, "related", req.Word, len(concepts), time.Since(start), err)
	}()

	reply, err := g.complete(ctx, g.prompts.RelatedPrompt(req))
	if err != nil {
		return nil, err
	}
	concepts, err = ParseConcepts(reply)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeneration, err, "related concepts for %q", req.Word)
	}
	if len(concepts) == 0 {
		return nil, errors.New(errors.ErrCodeGeneration, "no related concepts for %q", req.Word)
	}
	g.logger.Debug("generated concepts", "word", req.Word, "count", len(concepts), "duration", time.Since(start))
	return concepts, nil
}

// Explain implements Generator.
func (g *ChatGenerator) Explain(ctx context.Context, req ExplainRequest) (text string, err error) {
	start := time.Now()
	observability.Generate().OnGenerateStart(ctx, "explain", req.Word)
	defer func() {
		n := 0
		if text != "" {
			n = 1
		}
		observability.Generate().OnGenerateComplete(ctx, "explain", req.Word, n, time.Since(start), err)
	}()

	reply, err := g.complete(ctx, g.prompts.ExplainPrompt(req))
	if err != nil {
		return "", err
	}
	text, err = ParseExplanation(reply)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeGeneration, err, "explain %q", req.Word)
	}
	g.logger.Debug("generated explanation", "word", req.Word, "duration", time.Since(start))
	return text, nil
}

// complete sends one user prompt and returns the reply text. Model errors
// are retried with backoff.
func (g *ChatGenerator) complete(ctx context.Context, prompt string) (string, error) {
	var reply string
	err := g.retry(ctx, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		msg, err := g.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
		if err != nil {
			g.logger.Warn("model request failed", "error", err)
			return cache.Retryable(err)
		}
		reply = msg.Content
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(errors.ErrCodeTimeout, err, "generation cancelled")
		}
		return "", errors.Wrap(errors.ErrCodeGeneration, err, "model request")
	}
	return reply, nil
}
