package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/models"
)

// slowGenerateThreshold is the duration above which generation calls are logged at WARN.
const slowGenerateThreshold = 20 * time.Second

// Router dispatches requests to the backend registered for their provider
// and records timing and token usage.
type Router struct {
	backends map[models.AIProvider]Generator
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// Compile-time check that Router implements Generator.
var _ Generator = (*Router)(nil)

// NewRouter creates a router with no backends registered.
func NewRouter(collector *metrics.Collector, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		backends: make(map[models.AIProvider]Generator),
		metrics:  collector,
		logger:   logger,
	}
}

// NewDefaultRouter wires Gemini through genai and OpenAI/Ollama through langchaingo.
func NewDefaultRouter(geminiModel, openAIModel, ollamaModel string, collector *metrics.Collector, logger *slog.Logger) *Router {
	r := NewRouter(collector, logger)
	lc := NewLangChainGenerator(openAIModel, ollamaModel)
	r.Register(models.ProviderGemini, NewGeminiGenerator(geminiModel, logger))
	r.Register(models.ProviderOpenAI, lc)
	r.Register(models.ProviderOllama, lc)
	return r
}

// Register sets the backend for a provider.
func (r *Router) Register(provider models.AIProvider, g Generator) {
	r.backends[provider] = g
}

// Generate forwards req to the provider's backend.
func (r *Router) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	backend, ok := r.backends[req.Provider]
	if !ok {
		err := fmt.Errorf("no backend registered for provider %q", req.Provider)
		return GenerateResponse{}, &APIError{Kind: KindOther, Message: err.Error(), Err: err}
	}

	start := time.Now()
	resp, err := backend.Generate(ctx, req)
	duration := time.Since(start)
	r.metrics.RecordLLMUsage(metrics.OpLLMGenerate, duration, resp.InputTokens, resp.OutputTokens, err)

	attrs := []any{
		"provider", req.Provider,
		"turns", len(req.Turns),
		"duration_ms", duration.Milliseconds(),
	}
	switch {
	case err != nil:
		kind, _ := KindOf(err)
		r.logger.Warn("generation failed", append(attrs, "kind", kind.String(), "error", err)...)
	case duration > slowGenerateThreshold:
		r.logger.Warn("slow generation", attrs...)
	default:
		r.logger.Debug("generation complete", append(attrs, "output_tokens", resp.OutputTokens)...)
	}
	return resp, err
}
