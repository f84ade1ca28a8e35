package llm

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainGenerator serves the OpenAI and Ollama providers through langchaingo.
// A client is built per call because the credential is read live from settings.
type LangChainGenerator struct {
	openAIModel string
	ollamaModel string
}

// Compile-time check that LangChainGenerator implements Generator.
var _ Generator = (*LangChainGenerator)(nil)

// NewLangChainGenerator creates a generator for the given model names.
func NewLangChainGenerator(openAIModel, ollamaModel string) *LangChainGenerator {
	return &LangChainGenerator{openAIModel: openAIModel, ollamaModel: ollamaModel}
}

func (g *LangChainGenerator) modelFor(req GenerateRequest) (llms.Model, error) {
	switch req.Provider {
	case models.ProviderOllama:
		model, err := ollama.New(
			ollama.WithModel(g.ollamaModel),
			ollama.WithServerURL(req.Credential),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
		return model, nil

	case models.ProviderOpenAI:
		model, err := openai.New(
			openai.WithToken(req.Credential),
			openai.WithModel(g.openAIModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return model, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", req.Provider)
	}
}

// Generate sends the conversation as chat messages.
func (g *LangChainGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	model, err := g.modelFor(req)
	if err != nil {
		return GenerateResponse{}, &APIError{Kind: KindOther, Message: err.Error(), Err: err}
	}

	response, err := model.GenerateContent(ctx, messageContents(req),
		llms.WithTemperature(float64(req.Config.Temperature)),
		llms.WithTopK(req.Config.TopK),
		llms.WithTopP(float64(req.Config.TopP)),
		llms.WithMaxTokens(req.Config.MaxOutputTokens),
		llms.WithCandidateCount(req.Config.CandidateCount),
	)
	if err != nil {
		return GenerateResponse{}, classify(fmt.Errorf("generate with %s: %w", req.Provider, err))
	}

	var out GenerateResponse
	for _, choice := range response.Choices {
		if choice == nil {
			continue
		}
		out.Candidates = append(out.Candidates, choice.Content)
		out.InputTokens += tokenCount(choice.GenerationInfo, "PromptTokens", "prompt_eval_count")
		out.OutputTokens += tokenCount(choice.GenerationInfo, "CompletionTokens", "eval_count")
	}
	return out, nil
}

func messageContents(req GenerateRequest) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Turns)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemInstruction))
	}
	for _, turn := range req.Turns {
		role := llms.ChatMessageTypeAI
		if turn.Role == models.RoleUser {
			role = llms.ChatMessageTypeHuman
		}
		messages = append(messages, llms.TextParts(role, turn.Text))
	}
	return messages
}

// tokenCount reads the first present key from a provider's generation info.
func tokenCount(info map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
